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

// OfferHandler - структура для обработки HTTP-запросов машины состояний оффера.
type OfferHandler struct {
	Service *services.NegotiationService
	Logger  *log.Logger
	Timeout time.Duration
}

// NewOfferHandler создает новый экземпляр OfferHandler.
func NewOfferHandler(service *services.NegotiationService, logger *log.Logger, timeout time.Duration) *OfferHandler {
	return &OfferHandler{Service: service, Logger: logger, Timeout: timeout}
}

// CreateOffer обрабатывает запросы для отправки оффера исполнителю.
func (h *OfferHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var req models.ContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	project, err := h.Service.CreateOffer(ctx, r.PathValue("projectId"), utils.UserIDFromContext(r.Context()), req)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to create offer")
		return
	}
	utils.SendJSONResponse(w, http.StatusCreated, project)
}

// EditOffer обрабатывает запросы для изменения действующего оффера.
func (h *OfferHandler) EditOffer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var req models.ContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	project, err := h.Service.EditOffer(ctx, r.PathValue("projectId"), utils.UserIDFromContext(r.Context()), req)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to edit offer")
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, project)
}

// CancelOffer обрабатывает запросы для отзыва действующего оффера.
func (h *OfferHandler) CancelOffer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	project, err := h.Service.CancelOffer(ctx, r.PathValue("projectId"), utils.UserIDFromContext(r.Context()))
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to cancel offer")
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, project)
}

// RespondOffer обрабатывает решение исполнителя по офферу.
func (h *OfferHandler) RespondOffer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var req models.ContractActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	project, err := h.Service.RespondOffer(ctx, r.PathValue("projectId"), utils.UserIDFromContext(r.Context()), req.Action)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to respond to offer")
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, project)
}

// CompleteProject обрабатывает запросы на завершение проекта исполнителем.
func (h *OfferHandler) CompleteProject(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	project, err := h.Service.CompleteProject(ctx, r.PathValue("projectId"), utils.UserIDFromContext(r.Context()))
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to complete project")
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, project)
}
