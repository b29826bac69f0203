package models

import "time"

type (
	ContractStatus string // Статус контракта (оффера)
	ContractAction string // Ответ исполнителя на оффер
)

const (
	PendingContract   ContractStatus = "pending"   // Оффер отправлен, ждёт ответа исполнителя
	AcceptedContract  ContractStatus = "accepted"  // Исполнитель принял оффер
	RejectedContract  ContractStatus = "rejected"  // Исполнитель отклонил оффер
	CancelledContract ContractStatus = "cancelled" // Заказчик отозвал оффер

	AcceptAction ContractAction = "accept"
	RejectAction ContractAction = "reject"
)

// Contract представляет оффер заказчика конкретному исполнителю. Контракт
// встроен в агрегат проекта: у проекта одновременно не больше одного
// контракта в статусе pending.
type Contract struct {
	FreelancerID string         `json:"freelancerId"`
	Price        float64        `json:"price"`
	Deadline     time.Time      `json:"deadline"`
	Status       ContractStatus `json:"status"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// ContractRequest представляет структуру запроса для создания или обновления оффера.
type ContractRequest struct {
	FreelancerID string     `json:"freelancerId"`
	Price        *float64   `json:"price"`
	Deadline     *time.Time `json:"deadline"`
}

// ContractActionRequest представляет структуру запроса с решением исполнителя.
type ContractActionRequest struct {
	Action ContractAction `json:"action"`
}

// IsTerminal сообщает, разрешён ли контракт: после конечного статуса заказчик
// может отправить новый оффер.
func (s ContractStatus) IsTerminal() bool {
	return s == AcceptedContract || s == RejectedContract || s == CancelledContract
}
