package models

import "time"

type (
	BidStatus  string // Статус предложения
	BidSortKey string // Ключ сортировки списка предложений
	BidFilter  string // Фильтр списка предложений по статусу
)

const (
	PendingBid  BidStatus = "pending"  // Предложение подано и ждёт решения
	AcceptedBid BidStatus = "accepted" // Предложение принято по итогам переговоров
	RejectedBid BidStatus = "rejected" // Предложение отклонено по итогам переговоров

	LatestSort BidSortKey = "latest" // Сначала самые свежие предложения
	AmountSort BidSortKey = "amount" // По возрастанию суммы

	AllBids          BidFilter = "all"
	PendingBidsOnly  BidFilter = "pending"
	AcceptedBidsOnly BidFilter = "accepted"
	RejectedBidsOnly BidFilter = "rejected"
)

// Bid представляет модель предложения исполнителя по проекту. Seq - сквозной
// порядок вставки, используется как стабильный разделитель при равных
// временных метках.
type Bid struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"projectId"`
	FreelancerID string    `json:"freelancerId"`
	Amount       float64   `json:"amount"`
	Message      string    `json:"message,omitempty"`
	Status       BidStatus `json:"status"`
	Seq          int64     `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// BidRequest представляет структуру запроса для создания или изменения предложения.
type BidRequest struct {
	Amount  *float64 `json:"amount"`
	Message *string  `json:"message"`
}

// BidAnalytics - сводка по всем предложениям проекта независимо от статуса.
type BidAnalytics struct {
	Count         int     `json:"count"`
	AverageAmount float64 `json:"averageAmount"`
}
