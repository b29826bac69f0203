package services

import (
	"context"
	"fmt"
	"time"

	"github.com/senyabanana/freelance-service/internal/models"
	"github.com/senyabanana/freelance-service/internal/repository"
)

// NegotiationService реализует машину состояний оффера поверх хранилища
// проектов. Все переходы - условные записи: мутация применяется только если
// версия проекта не изменилась с момента чтения, иначе операция завершается
// конфликтом и вызывающая сторона повторяет попытку.
type NegotiationService struct {
	Projects    repository.ProjectRepository
	Bids        repository.BidRepository
	Broadcaster Broadcaster
}

// NewNegotiationService создает новый экземпляр NegotiationService.
func NewNegotiationService(projects repository.ProjectRepository, bids repository.BidRepository, broadcaster Broadcaster) *NegotiationService {
	return &NegotiationService{Projects: projects, Bids: bids, Broadcaster: broadcaster}
}

// contractState отображает текущее состояние контракта в текст для ошибок перехода.
func contractState(contract *models.Contract) string {
	if contract == nil {
		return "none"
	}
	return string(contract.Status)
}

// CreateOffer отправляет оффер исполнителю. Разрешено владельцу открытого
// проекта, у которого нет неразрешённого контракта: пока прежний оффер в
// pending, новый не создаётся и не затирает его.
func (s *NegotiationService) CreateOffer(ctx context.Context, projectID, actorID string, req models.ContractRequest) (*models.Project, error) {
	if req.FreelancerID == "" {
		return nil, models.NewValidationError("freelancerId is required")
	}
	if req.Price == nil || *req.Price <= 0 {
		return nil, models.NewValidationError("offer price must be a positive number")
	}
	if req.Deadline == nil {
		return nil, models.NewValidationError("offer deadline is required")
	}

	project, err := s.Projects.GetProject(ctx, projectID)
	if err != nil {
		return nil, wrapRepoError(err, "project")
	}
	if project.ClientID != actorID {
		return nil, models.NewForbiddenError("only the project owner may manage the offer")
	}
	if project.Status != models.OpenProject {
		return nil, models.NewConflictError(fmt.Sprintf("invalid project status: expected %s, actual %s", models.OpenProject, project.Status))
	}
	if project.Contract != nil && !project.Contract.Status.IsTerminal() {
		return nil, models.NewConflictError(fmt.Sprintf("invalid contract state: expected none or resolved, actual %s", project.Contract.Status))
	}

	contract := &models.Contract{
		FreelancerID: req.FreelancerID,
		Price:        *req.Price,
		Deadline:     *req.Deadline,
		Status:       models.PendingContract,
		UpdatedAt:    time.Now().UTC(),
	}
	updated, err := s.Projects.SetContract(ctx, projectID, project.Version, contract)
	if err != nil {
		return nil, wrapRepoError(err, "project")
	}
	return updated, nil
}

// EditOffer меняет цену или срок действующего оффера, пока тот в pending.
func (s *NegotiationService) EditOffer(ctx context.Context, projectID, actorID string, req models.ContractRequest) (*models.Project, error) {
	if req.Price == nil && req.Deadline == nil {
		return nil, models.NewValidationError("no valid fields to update")
	}
	if req.Price != nil && *req.Price <= 0 {
		return nil, models.NewValidationError("offer price must be a positive number")
	}

	project, contract, err := s.pendingContract(ctx, projectID, actorID)
	if err != nil {
		return nil, err
	}

	if req.Price != nil {
		contract.Price = *req.Price
	}
	if req.Deadline != nil {
		contract.Deadline = *req.Deadline
	}
	contract.UpdatedAt = time.Now().UTC()

	updated, err := s.Projects.SetContract(ctx, projectID, project.Version, contract)
	if err != nil {
		return nil, wrapRepoError(err, "project")
	}
	return updated, nil
}

// CancelOffer отзывает действующий оффер: pending -> cancelled.
func (s *NegotiationService) CancelOffer(ctx context.Context, projectID, actorID string) (*models.Project, error) {
	project, contract, err := s.pendingContract(ctx, projectID, actorID)
	if err != nil {
		return nil, err
	}

	contract.Status = models.CancelledContract
	contract.UpdatedAt = time.Now().UTC()

	updated, err := s.Projects.SetContract(ctx, projectID, project.Version, contract)
	if err != nil {
		return nil, wrapRepoError(err, "project")
	}
	return updated, nil
}

// RespondOffer применяет решение названного исполнителя. Принятие атомарно
// переводит проект из open в in progress и закрывает реестр предложений:
// ожидающие предложения исполнителя принимаются, остальные отклоняются.
// Отклонение оставляет проект открытым, заказчик может отправить новый оффер.
func (s *NegotiationService) RespondOffer(ctx context.Context, projectID, actorID string, action models.ContractAction) (*models.Project, error) {
	if action != models.AcceptAction && action != models.RejectAction {
		return nil, models.NewValidationError("invalid action, must be either 'accept' or 'reject'")
	}

	project, err := s.Projects.GetProject(ctx, projectID)
	if err != nil {
		return nil, wrapRepoError(err, "project")
	}
	contract := project.Contract
	if contract == nil || contract.Status != models.PendingContract {
		return nil, models.NewConflictError(fmt.Sprintf("invalid contract state: expected %s, actual %s", models.PendingContract, contractState(contract)))
	}
	if contract.FreelancerID != actorID {
		return nil, models.NewForbiddenError("only the named freelancer may respond to the offer")
	}

	if action == models.RejectAction {
		rejected := *contract
		rejected.Status = models.RejectedContract
		rejected.UpdatedAt = time.Now().UTC()
		updated, err := s.Projects.SetContract(ctx, projectID, project.Version, &rejected)
		if err != nil {
			return nil, wrapRepoError(err, "project")
		}
		return updated, nil
	}

	updated, err := s.Projects.AcceptContract(ctx, projectID, project.Version, contract.FreelancerID)
	if err != nil {
		return nil, wrapRepoError(err, "project")
	}
	s.publishBidUpdate(ctx, projectID)
	return updated, nil
}

// CompleteProject завершает проект. Разрешено только назначенному исполнителю
// и только один раз: повторный вызов после завершения - конфликт.
func (s *NegotiationService) CompleteProject(ctx context.Context, projectID, actorID string) (*models.Project, error) {
	project, err := s.Projects.GetProject(ctx, projectID)
	if err != nil {
		return nil, wrapRepoError(err, "project")
	}
	if project.Status != models.InProgressProject {
		return nil, models.NewConflictError(fmt.Sprintf("invalid project status: expected %s, actual %s", models.InProgressProject, project.Status))
	}
	contract := project.Contract
	if contract == nil || contract.Status != models.AcceptedContract {
		return nil, models.NewConflictError(fmt.Sprintf("invalid contract state: expected %s, actual %s", models.AcceptedContract, contractState(contract)))
	}
	if contract.FreelancerID != actorID {
		return nil, models.NewForbiddenError("only the assigned freelancer may complete the project")
	}

	completed, err := s.Projects.UpdateProjectStatus(ctx, projectID, project.Version, models.CompletedProject)
	if err != nil {
		return nil, wrapRepoError(err, "project")
	}
	return completed, nil
}

// pendingContract загружает проект и проверяет, что актор владеет им и что
// контракт находится в pending. Общий guard для editOffer и cancelOffer.
func (s *NegotiationService) pendingContract(ctx context.Context, projectID, actorID string) (*models.Project, *models.Contract, error) {
	project, err := s.Projects.GetProject(ctx, projectID)
	if err != nil {
		return nil, nil, wrapRepoError(err, "project")
	}
	if project.ClientID != actorID {
		return nil, nil, models.NewForbiddenError("only the project owner may manage the offer")
	}
	if project.Contract == nil || project.Contract.Status != models.PendingContract {
		return nil, nil, models.NewConflictError(fmt.Sprintf("invalid contract state: expected %s, actual %s", models.PendingContract, contractState(project.Contract)))
	}
	contract := *project.Contract
	return project, &contract, nil
}

// publishBidUpdate рассылает снимок реестра после того, как принятие оффера
// перевело статусы предложений.
func (s *NegotiationService) publishBidUpdate(ctx context.Context, projectID string) {
	bids, err := s.Bids.ListBids(ctx, projectID)
	if err != nil {
		return
	}
	s.Broadcaster.Publish(ProjectRoom(projectID), BidUpdateEvent, BidUpdatePayload{ProjectID: projectID, Bids: bids})
}
