package models

import "time"

// Review представляет отзыв заказчика о работе исполнителя по завершённому проекту.
type Review struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"projectId"`
	ClientID     string    `json:"clientId"`
	FreelancerID string    `json:"freelancerId"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment,omitempty"`
	Response     string    `json:"response,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ReviewRequest представляет структуру запроса для создания отзыва.
type ReviewRequest struct {
	ProjectID    string `json:"projectId"`
	FreelancerID string `json:"freelancerId"`
	Rating       int    `json:"rating"`
	Comment      string `json:"comment"`
}
