package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/senyabanana/freelance-service/internal/models"
	"github.com/senyabanana/freelance-service/internal/repository"

	"github.com/google/uuid"
)

// fakeStore - реализация ProjectRepository и BidRepository в памяти с той же
// CAS-семантикой, что у базы: мутация проходит только при совпадении версии
// агрегата.
type fakeStore struct {
	mu       sync.Mutex
	projects map[string]*models.Project
	bids     map[string][]*models.Bid
	nextSeq  int64
	now      func() time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		projects: make(map[string]*models.Project),
		bids:     make(map[string][]*models.Bid),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func cloneProject(p *models.Project) *models.Project {
	clone := *p
	if p.Contract != nil {
		contract := *p.Contract
		clone.Contract = &contract
	}
	return &clone
}

// casLocked проверяет версию агрегата и инкрементирует её; вызывающий держит mu.
func (s *fakeStore) casLocked(projectID string, version int32) (*models.Project, error) {
	project, ok := s.projects[projectID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if project.Version != version {
		return nil, repository.ErrVersionConflict
	}
	project.Version++
	return project, nil
}

func (s *fakeStore) CreateProject(ctx context.Context, clientID string, req models.ProjectRequest) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	project := &models.Project{
		ID:           uuid.New().String(),
		Title:        req.Title,
		Description:  req.Description,
		Requirements: req.Requirements,
		Deadline:     req.Deadline,
		ClientID:     clientID,
		Status:       models.OpenProject,
		Version:      1,
		CreatedAt:    s.now(),
	}
	s.projects[project.ID] = project
	return cloneProject(project), nil
}

func (s *fakeStore) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	project, ok := s.projects[projectID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneProject(project), nil
}

func (s *fakeStore) ListProjects(ctx context.Context, status models.ProjectStatus, clientID string) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var projects []models.Project
	for _, project := range s.projects {
		if status != "" && project.Status != status {
			continue
		}
		if clientID != "" && project.ClientID != clientID {
			continue
		}
		projects = append(projects, *cloneProject(project))
	}
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})
	return projects, nil
}

func (s *fakeStore) UpdateProject(ctx context.Context, projectID string, version int32, updateFields map[string]interface{}) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	project, err := s.casLocked(projectID, version)
	if err != nil {
		return nil, err
	}
	if title, ok := updateFields["title"].(string); ok {
		project.Title = title
	}
	if description, ok := updateFields["description"].(string); ok {
		project.Description = description
	}
	if requirements, ok := updateFields["requirements"].(string); ok {
		project.Requirements = requirements
	}
	if deadline, ok := updateFields["deadline"].(time.Time); ok {
		project.Deadline = &deadline
	}
	return cloneProject(project), nil
}

func (s *fakeStore) UpdateProjectStatus(ctx context.Context, projectID string, version int32, status models.ProjectStatus) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	project, err := s.casLocked(projectID, version)
	if err != nil {
		return nil, err
	}
	project.Status = status
	return cloneProject(project), nil
}

func (s *fakeStore) SetContract(ctx context.Context, projectID string, version int32, contract *models.Contract) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	project, err := s.casLocked(projectID, version)
	if err != nil {
		return nil, err
	}
	clone := *contract
	project.Contract = &clone
	return cloneProject(project), nil
}

func (s *fakeStore) AcceptContract(ctx context.Context, projectID string, version int32, freelancerID string) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	project, err := s.casLocked(projectID, version)
	if err != nil {
		return nil, err
	}
	project.Contract.Status = models.AcceptedContract
	project.Contract.UpdatedAt = s.now()
	project.Status = models.InProgressProject
	for _, bid := range s.bids[projectID] {
		if bid.Status != models.PendingBid {
			continue
		}
		if bid.FreelancerID == freelancerID {
			bid.Status = models.AcceptedBid
		} else {
			bid.Status = models.RejectedBid
		}
	}
	return cloneProject(project), nil
}

func (s *fakeStore) CreateBid(ctx context.Context, projectID string, projectVersion int32, freelancerID string, amount float64, message string) (*models.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.casLocked(projectID, projectVersion); err != nil {
		return nil, err
	}
	s.nextSeq++
	bid := &models.Bid{
		ID:           uuid.New().String(),
		ProjectID:    projectID,
		FreelancerID: freelancerID,
		Amount:       amount,
		Message:      message,
		Status:       models.PendingBid,
		Seq:          s.nextSeq,
		CreatedAt:    s.now(),
	}
	s.bids[projectID] = append(s.bids[projectID], bid)
	clone := *bid
	return &clone, nil
}

func (s *fakeStore) GetBid(ctx context.Context, projectID, bidID string) (*models.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, bid := range s.bids[projectID] {
		if bid.ID == bidID {
			clone := *bid
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeStore) UpdateBid(ctx context.Context, projectID string, projectVersion int32, bidID string, updateFields map[string]interface{}) (*models.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.casLocked(projectID, projectVersion); err != nil {
		return nil, err
	}
	for _, bid := range s.bids[projectID] {
		if bid.ID != bidID {
			continue
		}
		if amount, ok := updateFields["amount"].(float64); ok {
			bid.Amount = amount
		}
		if message, ok := updateFields["message"].(string); ok {
			bid.Message = message
		}
		clone := *bid
		return &clone, nil
	}
	return nil, repository.ErrNotFound
}

func (s *fakeStore) ListBids(ctx context.Context, projectID string) ([]models.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var bids []models.Bid
	for _, bid := range s.bids[projectID] {
		bids = append(bids, *bid)
	}
	return bids, nil
}

func (s *fakeStore) GetBidAnalytics(ctx context.Context, projectID string) (*models.BidAnalytics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	analytics := &models.BidAnalytics{}
	var total float64
	for _, bid := range s.bids[projectID] {
		analytics.Count++
		total += bid.Amount
	}
	if analytics.Count > 0 {
		analytics.AverageAmount = total / float64(analytics.Count)
	}
	return analytics, nil
}

// fakeMessageRepo - реализация MessageRepository в памяти. Часы подменяемы,
// чтобы проверять разрешение равных временных меток по порядку вставки.
type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []*models.Message
	nextSeq  int64
	now      func() time.Time
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{now: func() time.Time { return time.Now().UTC() }}
}

func (s *fakeMessageRepo) CreateMessage(ctx context.Context, senderID, receiverID, content string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSeq++
	message := &models.Message{
		ID:         uuid.New().String(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Seq:        s.nextSeq,
		CreatedAt:  s.now(),
	}
	s.messages = append(s.messages, message)
	clone := *message
	return &clone, nil
}

func (s *fakeMessageRepo) ListConversation(ctx context.Context, userA, userB string) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var messages []models.Message
	for _, m := range s.messages {
		if (m.SenderID == userA && m.ReceiverID == userB) || (m.SenderID == userB && m.ReceiverID == userA) {
			messages = append(messages, *m)
		}
	}
	sort.SliceStable(messages, func(i, j int) bool {
		if !messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].CreatedAt.Before(messages[j].CreatedAt)
		}
		return messages[i].Seq < messages[j].Seq
	})
	return messages, nil
}

func (s *fakeMessageRepo) MarkRead(ctx context.Context, readerID, senderID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var updated int64
	for _, m := range s.messages {
		if m.ReceiverID == readerID && m.SenderID == senderID && !m.Read {
			m.Read = true
			updated++
		}
	}
	return updated, nil
}

func (s *fakeMessageRepo) ListThreads(ctx context.Context, userID string) ([]models.Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	latest := make(map[string]*models.Message)
	unread := make(map[string]int64)
	for _, m := range s.messages {
		var counterpart string
		switch userID {
		case m.SenderID:
			counterpart = m.ReceiverID
		case m.ReceiverID:
			counterpart = m.SenderID
		default:
			continue
		}
		last, ok := latest[counterpart]
		if !ok || m.CreatedAt.After(last.CreatedAt) || (m.CreatedAt.Equal(last.CreatedAt) && m.Seq > last.Seq) {
			latest[counterpart] = m
		}
		if m.ReceiverID == userID && !m.Read {
			unread[counterpart]++
		}
	}

	var threads []models.Thread
	for counterpart, last := range latest {
		threads = append(threads, models.Thread{
			CounterpartID: counterpart,
			LastMessage:   *last,
			UnreadCount:   unread[counterpart],
			LastActivity:  last.CreatedAt,
		})
	}
	sort.Slice(threads, func(i, j int) bool {
		return threads[i].LastActivity.After(threads[j].LastActivity)
	})
	return threads, nil
}

// fakeReviewRepo - реализация ReviewRepository в памяти.
type fakeReviewRepo struct {
	mu      sync.Mutex
	reviews []*models.Review
}

func (s *fakeReviewRepo) CreateReview(ctx context.Context, clientID string, req models.ReviewRequest) (*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	review := &models.Review{
		ID:           uuid.New().String(),
		ProjectID:    req.ProjectID,
		ClientID:     clientID,
		FreelancerID: req.FreelancerID,
		Rating:       req.Rating,
		Comment:      req.Comment,
		CreatedAt:    time.Now().UTC(),
	}
	s.reviews = append(s.reviews, review)
	clone := *review
	return &clone, nil
}

func (s *fakeReviewRepo) GetReview(ctx context.Context, reviewID string) (*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, review := range s.reviews {
		if review.ID == reviewID {
			clone := *review
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeReviewRepo) ListFreelancerReviews(ctx context.Context, freelancerID string, rating int) ([]models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var reviews []models.Review
	for _, review := range s.reviews {
		if review.FreelancerID != freelancerID {
			continue
		}
		if rating > 0 && review.Rating != rating {
			continue
		}
		reviews = append(reviews, *review)
	}
	sort.Slice(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
	return reviews, nil
}

func (s *fakeReviewRepo) UpdateReviewResponse(ctx context.Context, reviewID, response string) (*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, review := range s.reviews {
		if review.ID == reviewID {
			review.Response = response
			clone := *review
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeReviewRepo) GetAverageRating(ctx context.Context, freelancerID string) (float64, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total, count int
	for _, review := range s.reviews {
		if review.FreelancerID == freelancerID {
			total += review.Rating
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(total) / float64(count), count, nil
}

// recordingBroadcaster запоминает опубликованные события для проверок.
type recordingBroadcaster struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	Room  string
	Event string
	Data  interface{}
}

func (b *recordingBroadcaster) Publish(room, event string, data interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, publishedEvent{Room: room, Event: event, Data: data})
}

func (b *recordingBroadcaster) published() []publishedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]publishedEvent(nil), b.events...)
}
