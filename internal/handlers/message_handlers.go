package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/senyabanana/freelance-service/internal/models"
	"github.com/senyabanana/freelance-service/internal/services"
	"github.com/senyabanana/freelance-service/internal/utils"
)

// MessageHandler - структура для обработки HTTP-запросов переписки.
type MessageHandler struct {
	Service *services.MessageService
	Logger  *log.Logger
	Timeout time.Duration
}

// NewMessageHandler создает новый экземпляр MessageHandler.
func NewMessageHandler(service *services.MessageService, logger *log.Logger, timeout time.Duration) *MessageHandler {
	return &MessageHandler{Service: service, Logger: logger, Timeout: timeout}
}

// SendMessage обрабатывает запросы для отправки сообщения.
func (h *MessageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var req models.MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	message, err := h.Service.SendMessage(ctx, utils.UserIDFromContext(r.Context()), req)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to send message")
		return
	}
	utils.SendJSONResponse(w, http.StatusCreated, message)
}

// GetConversation обрабатывает запросы для получения переписки с собеседником.
func (h *MessageHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	messages, err := h.Service.GetConversation(ctx, utils.UserIDFromContext(r.Context()), r.PathValue("userId"))
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to retrieve conversation")
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}
	utils.SendJSONResponse(w, http.StatusOK, messages)
}

// MarkRead обрабатывает запросы для пометки сообщений собеседника прочитанными.
func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	updated, err := h.Service.MarkRead(ctx, utils.UserIDFromContext(r.Context()), r.PathValue("userId"))
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to mark messages as read")
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, map[string]int64{"updated": updated})
}

// GetThreads обрабатывает запросы для получения списка собеседников.
func (h *MessageHandler) GetThreads(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	threads, err := h.Service.GetThreads(ctx, utils.UserIDFromContext(r.Context()))
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to retrieve threads")
		return
	}
	if threads == nil {
		threads = []models.Thread{}
	}
	utils.SendJSONResponse(w, http.StatusOK, threads)
}
