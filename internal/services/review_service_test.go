package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/senyabanana/freelance-service/internal/models"
)

func completedProject(t *testing.T, store *fakeStore, clientID, freelancerID string) *models.Project {
	t.Helper()
	negotiation := NewNegotiationService(store, store, NopBroadcaster{})
	project := newOpenProject(t, store, clientID)
	if _, err := negotiation.CreateOffer(context.Background(), project.ID, clientID, offerRequest(freelancerID)); err != nil {
		t.Fatalf("create offer: %v", err)
	}
	if _, err := negotiation.RespondOffer(context.Background(), project.ID, freelancerID, models.AcceptAction); err != nil {
		t.Fatalf("accept offer: %v", err)
	}
	completed, err := negotiation.CompleteProject(context.Background(), project.ID, freelancerID)
	if err != nil {
		t.Fatalf("complete project: %v", err)
	}
	return completed
}

func TestCreateReview(t *testing.T) {
	store := newFakeStore()
	service := NewReviewService(&fakeReviewRepo{}, store)
	project := completedProject(t, store, "client-1", "freelancer-1")

	review, err := service.CreateReview(context.Background(), "client-1", models.ReviewRequest{
		ProjectID:    project.ID,
		FreelancerID: "freelancer-1",
		Rating:       5,
		Comment:      "delivered ahead of schedule",
	})
	if err != nil {
		t.Fatalf("create review: %v", err)
	}
	if review.Rating != 5 || review.FreelancerID != "freelancer-1" {
		t.Fatalf("review fields not recorded: %+v", review)
	}
}

func TestCreateReviewValidation(t *testing.T) {
	store := newFakeStore()
	service := NewReviewService(&fakeReviewRepo{}, store)
	project := completedProject(t, store, "client-1", "freelancer-1")

	tests := []struct {
		name string
		req  models.ReviewRequest
	}{
		{"missing project", models.ReviewRequest{FreelancerID: "freelancer-1", Rating: 4}},
		{"missing freelancer", models.ReviewRequest{ProjectID: project.ID, Rating: 4}},
		{"rating too low", models.ReviewRequest{ProjectID: project.ID, FreelancerID: "freelancer-1", Rating: 0}},
		{"rating too high", models.ReviewRequest{ProjectID: project.ID, FreelancerID: "freelancer-1", Rating: 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.CreateReview(context.Background(), "client-1", tt.req)
			assertTypedError(t, err, http.StatusBadRequest)
		})
	}
}

func TestCreateReviewGuards(t *testing.T) {
	store := newFakeStore()
	service := NewReviewService(&fakeReviewRepo{}, store)
	completed := completedProject(t, store, "client-1", "freelancer-1")
	open := newOpenProject(t, store, "client-1")

	_, err := service.CreateReview(context.Background(), "client-2", models.ReviewRequest{
		ProjectID: completed.ID, FreelancerID: "freelancer-1", Rating: 4,
	})
	assertTypedError(t, err, http.StatusForbidden)

	_, err = service.CreateReview(context.Background(), "client-1", models.ReviewRequest{
		ProjectID: open.ID, FreelancerID: "freelancer-1", Rating: 4,
	})
	assertTypedError(t, err, http.StatusConflict)

	_, err = service.CreateReview(context.Background(), "client-1", models.ReviewRequest{
		ProjectID: "missing", FreelancerID: "freelancer-1", Rating: 4,
	})
	assertTypedError(t, err, http.StatusNotFound)
}

func TestGetFreelancerReviews(t *testing.T) {
	store := newFakeStore()
	repo := &fakeReviewRepo{}
	service := NewReviewService(repo, store)

	for i, rating := range []int{5, 3, 5} {
		project := completedProject(t, store, "client-1", "freelancer-1")
		if _, err := service.CreateReview(context.Background(), "client-1", models.ReviewRequest{
			ProjectID: project.ID, FreelancerID: "freelancer-1", Rating: rating,
		}); err != nil {
			t.Fatalf("create review %d: %v", i, err)
		}
	}

	all, err := service.GetFreelancerReviews(context.Background(), "freelancer-1", "")
	if err != nil {
		t.Fatalf("list reviews: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 reviews, got %d", len(all))
	}

	fives, err := service.GetFreelancerReviews(context.Background(), "freelancer-1", "5")
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(fives) != 2 {
		t.Fatalf("expected 2 five-star reviews, got %d", len(fives))
	}

	for _, bad := range []string{"0", "6", "great"} {
		if _, err := service.GetFreelancerReviews(context.Background(), "freelancer-1", bad); err == nil {
			t.Fatalf("rating filter %q must be rejected", bad)
		}
	}
}

func TestRespondReview(t *testing.T) {
	store := newFakeStore()
	service := NewReviewService(&fakeReviewRepo{}, store)
	project := completedProject(t, store, "client-1", "freelancer-1")

	review, err := service.CreateReview(context.Background(), "client-1", models.ReviewRequest{
		ProjectID: project.ID, FreelancerID: "freelancer-1", Rating: 4,
	})
	if err != nil {
		t.Fatalf("create review: %v", err)
	}

	_, err = service.RespondReview(context.Background(), review.ID, "freelancer-1", "  ")
	assertTypedError(t, err, http.StatusBadRequest)

	_, err = service.RespondReview(context.Background(), review.ID, "freelancer-2", "thanks")
	assertTypedError(t, err, http.StatusForbidden)

	updated, err := service.RespondReview(context.Background(), review.ID, "freelancer-1", "thanks for the feedback")
	if err != nil {
		t.Fatalf("respond review: %v", err)
	}
	if updated.Response != "thanks for the feedback" {
		t.Fatalf("response not recorded: %q", updated.Response)
	}

	_, err = service.RespondReview(context.Background(), "missing", "freelancer-1", "thanks")
	assertTypedError(t, err, http.StatusNotFound)
}

func TestGetAverageRating(t *testing.T) {
	store := newFakeStore()
	service := NewReviewService(&fakeReviewRepo{}, store)

	average, count, err := service.GetAverageRating(context.Background(), "freelancer-1")
	if err != nil {
		t.Fatalf("average on empty history: %v", err)
	}
	if average != 0 || count != 0 {
		t.Fatalf("empty history must report zeros, got %v/%d", average, count)
	}

	for _, rating := range []int{5, 4} {
		project := completedProject(t, store, "client-1", "freelancer-1")
		if _, err := service.CreateReview(context.Background(), "client-1", models.ReviewRequest{
			ProjectID: project.ID, FreelancerID: "freelancer-1", Rating: rating,
		}); err != nil {
			t.Fatalf("create review: %v", err)
		}
	}

	average, count, err = service.GetAverageRating(context.Background(), "freelancer-1")
	if err != nil {
		t.Fatalf("average: %v", err)
	}
	if average != 4.5 || count != 2 {
		t.Fatalf("expected 4.5 over 2 reviews, got %v/%d", average, count)
	}
}
