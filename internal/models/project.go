package models

import "time"

type ProjectStatus string // Статус проекта

const (
	OpenProject       ProjectStatus = "open"        // Проект открыт для предложений
	InProgressProject ProjectStatus = "in progress" // Исполнитель назначен, работа идёт
	CompletedProject  ProjectStatus = "completed"   // Работа завершена исполнителем
	CancelledProject  ProjectStatus = "cancelled"   // Проект отменён заказчиком
)

// Project представляет модель проекта.
type Project struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Requirements string        `json:"requirements,omitempty"`
	Deadline     *time.Time    `json:"deadline,omitempty"`
	ClientID     string        `json:"clientId"`
	Status       ProjectStatus `json:"status"`
	Contract     *Contract     `json:"contract,omitempty"`
	Version      int32         `json:"version"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// ProjectRequest представляет структуру запроса для создания или обновления проекта.
type ProjectRequest struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Requirements string     `json:"requirements"`
	Deadline     *time.Time `json:"deadline"`
}

// IsTerminal сообщает, является ли статус конечным: из него проект уже не выходит.
func (s ProjectStatus) IsTerminal() bool {
	return s == CompletedProject || s == CancelledProject
}
