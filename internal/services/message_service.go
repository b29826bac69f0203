package services

import (
	"context"
	"strings"

	"github.com/senyabanana/freelance-service/internal/models"
	"github.com/senyabanana/freelance-service/internal/repository"
)

type MessageService struct {
	Repo        repository.MessageRepository
	Broadcaster Broadcaster
}

// NewMessageService создает новый экземпляр MessageService.
func NewMessageService(repo repository.MessageRepository, broadcaster Broadcaster) *MessageService {
	return &MessageService{Repo: repo, Broadcaster: broadcaster}
}

// SendMessage сохраняет сообщение и доставляет его в персональную комнату получателя.
func (s *MessageService) SendMessage(ctx context.Context, senderID string, req models.MessageRequest) (*models.Message, error) {
	if req.ReceiverID == "" {
		return nil, models.NewValidationError("receiver is required")
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, models.NewValidationError("message content must not be empty")
	}

	message, err := s.Repo.CreateMessage(ctx, senderID, req.ReceiverID, req.Content)
	if err != nil {
		return nil, wrapRepoError(err, "message")
	}

	s.Broadcaster.Publish(UserRoom(req.ReceiverID), NewMessageEvent, message)
	return message, nil
}

// GetConversation возвращает историю переписки актора с собеседником.
func (s *MessageService) GetConversation(ctx context.Context, actorID, counterpartID string) ([]models.Message, error) {
	if counterpartID == "" {
		return nil, models.NewValidationError("counterpart user id is required")
	}
	messages, err := s.Repo.ListConversation(ctx, actorID, counterpartID)
	if err != nil {
		return nil, wrapRepoError(err, "message")
	}
	return messages, nil
}

// MarkRead помечает прочитанными все сообщения собеседника к актору.
// Операция идемпотентна: повторный вызов ничего не меняет.
func (s *MessageService) MarkRead(ctx context.Context, readerID, counterpartID string) (int64, error) {
	if counterpartID == "" {
		return 0, models.NewValidationError("counterpart user id is required")
	}
	updated, err := s.Repo.MarkRead(ctx, readerID, counterpartID)
	if err != nil {
		return 0, wrapRepoError(err, "message")
	}
	return updated, nil
}

// GetThreads возвращает список собеседников актора по убыванию последней активности.
func (s *MessageService) GetThreads(ctx context.Context, userID string) ([]models.Thread, error) {
	threads, err := s.Repo.ListThreads(ctx, userID)
	if err != nil {
		return nil, wrapRepoError(err, "message")
	}
	return threads, nil
}
