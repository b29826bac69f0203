package services

import (
	"errors"

	"github.com/senyabanana/freelance-service/internal/models"
	"github.com/senyabanana/freelance-service/internal/repository"
)

// Имена событий реального времени, которые сервер шлёт подписчикам комнат.
const (
	BidUpdateEvent  = "bidUpdate"
	NewMessageEvent = "newMessage"
)

// Broadcaster - способность разослать событие всем участникам комнаты.
// Доставка best-effort: без истории, без подтверждений; ошибка доставки
// никогда не попадает к инициатору мутации.
type Broadcaster interface {
	Publish(room, event string, data interface{})
}

// NopBroadcaster - заглушка для тестов и запуска без реального времени.
type NopBroadcaster struct{}

func (NopBroadcaster) Publish(room, event string, data interface{}) {}

// ProjectRoom - ключ комнаты проекта: в неё рассылаются изменения реестра предложений.
func ProjectRoom(projectID string) string {
	return "project:" + projectID
}

// UserRoom - ключ персональной комнаты пользователя: в неё доставляются новые сообщения.
func UserRoom(userID string) string {
	return "user:" + userID
}

// BidUpdatePayload - снимок реестра предложений проекта, рассылаемый в комнату проекта.
type BidUpdatePayload struct {
	ProjectID string       `json:"projectId"`
	Bids      []models.Bid `json:"bids"`
}

// wrapRepoError переводит ошибки хранилища в типизированные ошибки операции.
// Неопознанные ошибки возвращаются как есть и превращаются в 500 на границе HTTP.
func wrapRepoError(err error, entity string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return models.NewNotFoundError(entity + " not found")
	case errors.Is(err, repository.ErrVersionConflict):
		return models.NewConflictError(entity + " was modified concurrently")
	default:
		return err
	}
}
