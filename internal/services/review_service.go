package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/senyabanana/freelance-service/internal/models"
	"github.com/senyabanana/freelance-service/internal/repository"
)

type ReviewService struct {
	Repo     repository.ReviewRepository
	Projects repository.ProjectRepository
}

// NewReviewService создает новый экземпляр ReviewService.
func NewReviewService(repo repository.ReviewRepository, projects repository.ProjectRepository) *ReviewService {
	return &ReviewService{Repo: repo, Projects: projects}
}

// CreateReview создает отзыв заказчика о работе исполнителя. Отзыв возможен
// только по завершённому проекту и только от его владельца.
func (s *ReviewService) CreateReview(ctx context.Context, clientID string, req models.ReviewRequest) (*models.Review, error) {
	if req.ProjectID == "" || req.FreelancerID == "" {
		return nil, models.NewValidationError("projectId and freelancerId are required")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, models.NewValidationError("rating must be an integer between 1 and 5")
	}

	project, err := s.Projects.GetProject(ctx, req.ProjectID)
	if err != nil {
		return nil, wrapRepoError(err, "project")
	}
	if project.ClientID != clientID {
		return nil, models.NewForbiddenError("only the project owner may leave a review")
	}
	if project.Status != models.CompletedProject {
		return nil, models.NewConflictError(fmt.Sprintf("invalid project status: expected %s, actual %s", models.CompletedProject, project.Status))
	}

	review, err := s.Repo.CreateReview(ctx, clientID, req)
	if err != nil {
		return nil, wrapRepoError(err, "review")
	}
	return review, nil
}

// GetFreelancerReviews возвращает отзывы об исполнителе с необязательным фильтром по оценке.
func (s *ReviewService) GetFreelancerReviews(ctx context.Context, freelancerID, ratingStr string) ([]models.Review, error) {
	var rating int
	if ratingStr != "" {
		var err error
		rating, err = strconv.Atoi(ratingStr)
		if err != nil || rating < 1 || rating > 5 {
			return nil, models.NewValidationError("invalid rating filter, must be an integer between 1 and 5")
		}
	}
	reviews, err := s.Repo.ListFreelancerReviews(ctx, freelancerID, rating)
	if err != nil {
		return nil, wrapRepoError(err, "review")
	}
	return reviews, nil
}

// RespondReview записывает ответ исполнителя на отзыв о нём.
func (s *ReviewService) RespondReview(ctx context.Context, reviewID, actorID, response string) (*models.Review, error) {
	if strings.TrimSpace(response) == "" {
		return nil, models.NewValidationError("response must not be empty")
	}

	review, err := s.Repo.GetReview(ctx, reviewID)
	if err != nil {
		return nil, wrapRepoError(err, "review")
	}
	if review.FreelancerID != actorID {
		return nil, models.NewForbiddenError("only the reviewed freelancer may respond")
	}

	updated, err := s.Repo.UpdateReviewResponse(ctx, reviewID, response)
	if err != nil {
		return nil, wrapRepoError(err, "review")
	}
	return updated, nil
}

// GetAverageRating возвращает средний рейтинг исполнителя и число отзывов.
func (s *ReviewService) GetAverageRating(ctx context.Context, freelancerID string) (float64, int, error) {
	average, count, err := s.Repo.GetAverageRating(ctx, freelancerID)
	if err != nil {
		return 0, 0, wrapRepoError(err, "review")
	}
	return average, count, nil
}
