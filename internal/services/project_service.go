package services

import (
	"context"
	"fmt"

	"github.com/senyabanana/freelance-service/internal/models"
	"github.com/senyabanana/freelance-service/internal/repository"
)

type ProjectService struct {
	Repo repository.ProjectRepository
}

// NewProjectService создает новый экземпляр ProjectService.
func NewProjectService(repo repository.ProjectRepository) *ProjectService {
	return &ProjectService{Repo: repo}
}

// CreateProject создает новый проект от имени заказчика.
func (s *ProjectService) CreateProject(ctx context.Context, clientID string, req models.ProjectRequest) (*models.Project, error) {
	if req.Title == "" || req.Description == "" {
		return nil, models.NewValidationError("title and description are required")
	}
	project, err := s.Repo.CreateProject(ctx, clientID, req)
	if err != nil {
		return nil, wrapRepoError(err, "project")
	}
	return project, nil
}

// GetProject возвращает проект по ID.
func (s *ProjectService) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	project, err := s.Repo.GetProject(ctx, projectID)
	if err != nil {
		return nil, wrapRepoError(err, "project")
	}
	return project, nil
}

// ListProjects возвращает список проектов с необязательными фильтрами.
func (s *ProjectService) ListProjects(ctx context.Context, status, clientID string) ([]models.Project, error) {
	if status != "" {
		switch models.ProjectStatus(status) {
		case models.OpenProject, models.InProgressProject, models.CompletedProject, models.CancelledProject:
		default:
			return nil, models.NewValidationError("invalid status filter")
		}
	}
	projects, err := s.Repo.ListProjects(ctx, models.ProjectStatus(status), clientID)
	if err != nil {
		return nil, wrapRepoError(err, "project")
	}
	return projects, nil
}

// UpdateProject меняет описательные поля проекта. Разрешено только владельцу
// и только пока проект открыт.
func (s *ProjectService) UpdateProject(ctx context.Context, projectID, actorID string, req models.ProjectRequest) (*models.Project, error) {
	project, err := s.Repo.GetProject(ctx, projectID)
	if err != nil {
		return nil, wrapRepoError(err, "project")
	}
	if project.ClientID != actorID {
		return nil, models.NewForbiddenError("only the project owner may edit the project")
	}
	if project.Status != models.OpenProject {
		return nil, models.NewConflictError(fmt.Sprintf("invalid project status: expected %s, actual %s", models.OpenProject, project.Status))
	}

	updateFields := make(map[string]interface{})
	if req.Title != "" {
		updateFields["title"] = req.Title
	}
	if req.Description != "" {
		updateFields["description"] = req.Description
	}
	if req.Requirements != "" {
		updateFields["requirements"] = req.Requirements
	}
	if req.Deadline != nil {
		updateFields["deadline"] = *req.Deadline
	}

	updated, err := s.Repo.UpdateProject(ctx, projectID, project.Version, updateFields)
	if err != nil {
		return nil, wrapRepoError(err, "project")
	}
	return updated, nil
}

// CancelProject переводит проект в cancelled из любого неконечного статуса.
func (s *ProjectService) CancelProject(ctx context.Context, projectID, actorID string) (*models.Project, error) {
	project, err := s.Repo.GetProject(ctx, projectID)
	if err != nil {
		return nil, wrapRepoError(err, "project")
	}
	if project.ClientID != actorID {
		return nil, models.NewForbiddenError("only the project owner may cancel the project")
	}
	if project.Status.IsTerminal() {
		return nil, models.NewConflictError(fmt.Sprintf("invalid project status: expected %s or %s, actual %s",
			models.OpenProject, models.InProgressProject, project.Status))
	}

	cancelled, err := s.Repo.UpdateProjectStatus(ctx, projectID, project.Version, models.CancelledProject)
	if err != nil {
		return nil, wrapRepoError(err, "project")
	}
	return cancelled, nil
}
