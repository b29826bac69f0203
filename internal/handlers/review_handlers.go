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

// ReviewHandler - структура для обработки HTTP-запросов отзывов.
type ReviewHandler struct {
	Service *services.ReviewService
	Logger  *log.Logger
	Timeout time.Duration
}

// NewReviewHandler создает новый экземпляр ReviewHandler.
func NewReviewHandler(service *services.ReviewService, logger *log.Logger, timeout time.Duration) *ReviewHandler {
	return &ReviewHandler{Service: service, Logger: logger, Timeout: timeout}
}

// CreateReview обрабатывает запросы для создания отзыва.
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var req models.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	review, err := h.Service.CreateReview(ctx, utils.UserIDFromContext(r.Context()), req)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to create review")
		return
	}
	utils.SendJSONResponse(w, http.StatusCreated, review)
}

// GetFreelancerReviews обрабатывает запросы для получения отзывов об исполнителе.
func (h *ReviewHandler) GetFreelancerReviews(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	reviews, err := h.Service.GetFreelancerReviews(ctx, r.PathValue("freelancerId"), r.URL.Query().Get("rating"))
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to retrieve reviews")
		return
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	utils.SendJSONResponse(w, http.StatusOK, reviews)
}

// GetAverageRating обрабатывает запросы для получения среднего рейтинга исполнителя.
func (h *ReviewHandler) GetAverageRating(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	average, count, err := h.Service.GetAverageRating(ctx, r.PathValue("freelancerId"))
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to retrieve average rating")
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, map[string]interface{}{"average": average, "count": count})
}

// RespondReview обрабатывает ответ исполнителя на отзыв.
func (h *ReviewHandler) RespondReview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var req struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	review, err := h.Service.RespondReview(ctx, r.PathValue("reviewId"), utils.UserIDFromContext(r.Context()), req.Response)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to respond to review")
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, review)
}
