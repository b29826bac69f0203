package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/senyabanana/freelance-service/internal/models"
	"github.com/senyabanana/freelance-service/internal/repository"
)

type BidService struct {
	Repo        repository.BidRepository
	Projects    repository.ProjectRepository
	Broadcaster Broadcaster
}

// NewBidService создает новый экземпляр BidService.
func NewBidService(repo repository.BidRepository, projects repository.ProjectRepository, broadcaster Broadcaster) *BidService {
	return &BidService{Repo: repo, Projects: projects, Broadcaster: broadcaster}
}

// SubmitBid добавляет предложение исполнителя к открытому проекту и рассылает
// снимок реестра в комнату проекта.
func (s *BidService) SubmitBid(ctx context.Context, projectID, freelancerID string, req models.BidRequest) (*models.Bid, error) {
	if req.Amount == nil || *req.Amount <= 0 {
		return nil, models.NewValidationError("bid amount must be a positive number")
	}

	project, err := s.Projects.GetProject(ctx, projectID)
	if err != nil {
		return nil, wrapRepoError(err, "project")
	}
	if project.Status != models.OpenProject {
		return nil, models.NewConflictError(fmt.Sprintf("invalid project status: expected %s, actual %s", models.OpenProject, project.Status))
	}

	var message string
	if req.Message != nil {
		message = *req.Message
	}
	bid, err := s.Repo.CreateBid(ctx, projectID, project.Version, freelancerID, *req.Amount, message)
	if err != nil {
		return nil, wrapRepoError(err, "project")
	}

	s.publishBidUpdate(ctx, projectID)
	return bid, nil
}

// AmendBid меняет сумму или сообщение предложения. Доступно только автору и
// только пока предложение в статусе pending; статус предложения автор менять
// не может ни при каких условиях.
func (s *BidService) AmendBid(ctx context.Context, projectID, bidID, actorID string, req models.BidRequest) (*models.Bid, error) {
	if req.Amount == nil && req.Message == nil {
		return nil, models.NewValidationError("no valid fields to update")
	}
	if req.Amount != nil && *req.Amount <= 0 {
		return nil, models.NewValidationError("bid amount must be a positive number")
	}

	project, err := s.Projects.GetProject(ctx, projectID)
	if err != nil {
		return nil, wrapRepoError(err, "project")
	}
	bid, err := s.Repo.GetBid(ctx, projectID, bidID)
	if err != nil {
		return nil, wrapRepoError(err, "bid")
	}
	if bid.FreelancerID != actorID {
		return nil, models.NewForbiddenError("only the bid author may amend the bid")
	}
	if bid.Status != models.PendingBid {
		return nil, models.NewForbiddenError("only a pending bid may be amended")
	}

	updateFields := make(map[string]interface{})
	if req.Amount != nil {
		updateFields["amount"] = *req.Amount
	}
	if req.Message != nil {
		updateFields["message"] = *req.Message
	}

	amended, err := s.Repo.UpdateBid(ctx, projectID, project.Version, bidID, updateFields)
	if err != nil {
		return nil, wrapRepoError(err, "bid")
	}

	s.publishBidUpdate(ctx, projectID)
	return amended, nil
}

// ListBids возвращает предложения проекта, отсортированные и отфильтрованные
// по заданным ключам.
func (s *BidService) ListBids(ctx context.Context, projectID string, sortKey models.BidSortKey, filter models.BidFilter) ([]models.Bid, error) {
	if sortKey != models.LatestSort && sortKey != models.AmountSort {
		return nil, models.NewValidationError("invalid sort key, must be 'latest' or 'amount'")
	}
	switch filter {
	case models.AllBids, models.PendingBidsOnly, models.AcceptedBidsOnly, models.RejectedBidsOnly:
	default:
		return nil, models.NewValidationError("invalid status filter")
	}

	if _, err := s.Projects.GetProject(ctx, projectID); err != nil {
		return nil, wrapRepoError(err, "project")
	}
	bids, err := s.Repo.ListBids(ctx, projectID)
	if err != nil {
		return nil, wrapRepoError(err, "project")
	}
	return SortBids(FilterBids(bids, filter), sortKey), nil
}

// GetBidAnalytics возвращает сводку по предложениям проекта.
func (s *BidService) GetBidAnalytics(ctx context.Context, projectID string) (*models.BidAnalytics, error) {
	if _, err := s.Projects.GetProject(ctx, projectID); err != nil {
		return nil, wrapRepoError(err, "project")
	}
	analytics, err := s.Repo.GetBidAnalytics(ctx, projectID)
	if err != nil {
		return nil, wrapRepoError(err, "project")
	}
	return analytics, nil
}

// FilterBids возвращает предложения, прошедшие фильтр по статусу. Функция
// чистая: вход не модифицируется, относительный порядок сохраняется.
func FilterBids(bids []models.Bid, filter models.BidFilter) []models.Bid {
	if filter == models.AllBids {
		return bids
	}
	var filtered []models.Bid
	for _, bid := range bids {
		if bid.Status == models.BidStatus(filter) {
			filtered = append(filtered, bid)
		}
	}
	return filtered
}

// SortBids сортирует предложения по заданному ключу: latest - новые первыми,
// amount - по возрастанию суммы. Сортировка стабильная, при равных значениях
// сохраняется порядок вставки.
func SortBids(bids []models.Bid, sortKey models.BidSortKey) []models.Bid {
	sorted := make([]models.Bid, len(bids))
	copy(sorted, bids)
	switch sortKey {
	case models.LatestSort:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		})
	case models.AmountSort:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Amount < sorted[j].Amount
		})
	}
	return sorted
}

// publishBidUpdate рассылает актуальный снимок реестра в комнату проекта.
// Ошибка чтения снимка лишь отменяет рассылку: подписчики сверятся с REST.
func (s *BidService) publishBidUpdate(ctx context.Context, projectID string) {
	bids, err := s.Repo.ListBids(ctx, projectID)
	if err != nil {
		return
	}
	s.Broadcaster.Publish(ProjectRoom(projectID), BidUpdateEvent, BidUpdatePayload{ProjectID: projectID, Bids: bids})
}
