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

// ProjectHandler - структура для обработки HTTP-запросов жизненного цикла проекта.
type ProjectHandler struct {
	Service *services.ProjectService
	Logger  *log.Logger
	Timeout time.Duration
}

// NewProjectHandler создает новый экземпляр ProjectHandler.
func NewProjectHandler(service *services.ProjectService, logger *log.Logger, timeout time.Duration) *ProjectHandler {
	return &ProjectHandler{Service: service, Logger: logger, Timeout: timeout}
}

// CreateProject обрабатывает запросы для создания проекта.
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var req models.ProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	project, err := h.Service.CreateProject(ctx, utils.UserIDFromContext(r.Context()), req)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to create project")
		return
	}
	utils.SendJSONResponse(w, http.StatusCreated, project)
}

// GetProjects обрабатывает запросы для получения списка проектов.
func (h *ProjectHandler) GetProjects(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	projects, err := h.Service.ListProjects(ctx, r.URL.Query().Get("status"), r.URL.Query().Get("clientId"))
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to retrieve projects")
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, projects)
}

// GetProject обрабатывает запросы для получения одного проекта.
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	project, err := h.Service.GetProject(ctx, r.PathValue("projectId"))
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to retrieve project")
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, project)
}

// UpdateProject обрабатывает запросы для изменения описательных полей проекта.
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var req models.ProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	project, err := h.Service.UpdateProject(ctx, r.PathValue("projectId"), utils.UserIDFromContext(r.Context()), req)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to update project")
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, project)
}

// CancelProject обрабатывает запросы для отмены проекта.
func (h *ProjectHandler) CancelProject(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	project, err := h.Service.CancelProject(ctx, r.PathValue("projectId"), utils.UserIDFromContext(r.Context()))
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to cancel project")
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, project)
}
