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

// BidHandler - структура для обработки HTTP-запросов реестра предложений.
type BidHandler struct {
	Service *services.BidService
	Logger  *log.Logger
	Timeout time.Duration
}

// NewBidHandler создает новый экземпляр BidHandler.
func NewBidHandler(service *services.BidService, logger *log.Logger, timeout time.Duration) *BidHandler {
	return &BidHandler{Service: service, Logger: logger, Timeout: timeout}
}

// SubmitBid обрабатывает запросы для подачи предложения.
func (h *BidHandler) SubmitBid(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var req models.BidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	bid, err := h.Service.SubmitBid(ctx, r.PathValue("projectId"), utils.UserIDFromContext(r.Context()), req)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to submit bid")
		return
	}
	utils.SendJSONResponse(w, http.StatusCreated, bid)
}

// AmendBid обрабатывает запросы для изменения предложения его автором.
func (h *BidHandler) AmendBid(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var req models.BidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	bid, err := h.Service.AmendBid(ctx, r.PathValue("projectId"), r.PathValue("bidId"), utils.UserIDFromContext(r.Context()), req)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to amend bid")
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, bid)
}

// GetBids обрабатывает запросы для получения списка предложений проекта.
func (h *BidHandler) GetBids(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	sortKey := models.BidSortKey(r.URL.Query().Get("sort"))
	if sortKey == "" {
		sortKey = models.LatestSort
	}
	filter := models.BidFilter(r.URL.Query().Get("filter"))
	if filter == "" {
		filter = models.AllBids
	}

	bids, err := h.Service.ListBids(ctx, r.PathValue("projectId"), sortKey, filter)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to retrieve bids")
		return
	}
	if bids == nil {
		bids = []models.Bid{}
	}
	utils.SendJSONResponse(w, http.StatusOK, bids)
}

// GetBidAnalytics обрабатывает запросы для получения сводки по предложениям.
func (h *BidHandler) GetBidAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	analytics, err := h.Service.GetBidAnalytics(ctx, r.PathValue("projectId"))
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to retrieve bid analytics")
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, analytics)
}
