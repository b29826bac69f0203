package models

import "time"

// Message представляет сообщение между двумя пользователями. После создания
// меняется только флаг Read, и только действием получателя.
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender"`
	ReceiverID string    `json:"receiver"`
	Content    string    `json:"content"`
	Read       bool      `json:"read"`
	Seq        int64     `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
}

// MessageRequest представляет структуру запроса для отправки сообщения.
type MessageRequest struct {
	ReceiverID string `json:"receiver"`
	Content    string `json:"content"`
}

// Thread - производная сущность: собеседник пользователя с последним
// сообщением и числом непрочитанных. Треды нигде не хранятся, а выводятся
// из множества сообщений.
type Thread struct {
	CounterpartID string    `json:"counterpartId"`
	LastMessage   Message   `json:"lastMessage"`
	UnreadCount   int64     `json:"unreadCount"`
	LastActivity  time.Time `json:"lastActivity"`
}
