package router

import (
	"net/http"

	"github.com/senyabanana/freelance-service/internal/handlers"
	"github.com/senyabanana/freelance-service/internal/models"
	"github.com/senyabanana/freelance-service/internal/utils"
)

// Handlers - набор обработчиков, которыми комплектуется маршрутизатор.
type Handlers struct {
	Project *handlers.ProjectHandler
	Bid     *handlers.BidHandler
	Offer   *handlers.OfferHandler
	Message *handlers.MessageHandler
	Review  *handlers.ReviewHandler
	WS      *handlers.WSHandler
}

// InitRoutes настраивает маршруты. Роль актора проверяется здесь, один раз на
// границе операции; сервисы дальше проверяют только владение сущностью.
func InitRoutes(h Handlers, jwtSecret string) http.Handler {
	auth := func(next http.HandlerFunc) http.HandlerFunc {
		return utils.Authenticate(jwtSecret, next)
	}
	client := func(next http.HandlerFunc) http.HandlerFunc {
		return auth(utils.RequireRole(models.ClientRole, next))
	}
	freelancer := func(next http.HandlerFunc) http.HandlerFunc {
		return auth(utils.RequireRole(models.FreelancerRole, next))
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/api/ping", handlers.PingHandler)

	mux.HandleFunc("POST /api/projects", client(h.Project.CreateProject))
	mux.HandleFunc("GET /api/projects", h.Project.GetProjects)
	mux.HandleFunc("GET /api/projects/{projectId}", h.Project.GetProject)
	mux.HandleFunc("PUT /api/projects/{projectId}", client(h.Project.UpdateProject))
	mux.HandleFunc("POST /api/projects/{projectId}/cancel", client(h.Project.CancelProject))

	mux.HandleFunc("POST /api/projects/{projectId}/bids", freelancer(h.Bid.SubmitBid))
	mux.HandleFunc("PUT /api/projects/{projectId}/bids/{bidId}", freelancer(h.Bid.AmendBid))
	mux.HandleFunc("GET /api/projects/{projectId}/bids", auth(h.Bid.GetBids))
	mux.HandleFunc("GET /api/projects/{projectId}/bids/analytics", auth(h.Bid.GetBidAnalytics))

	mux.HandleFunc("POST /api/projects/{projectId}/offer", client(h.Offer.CreateOffer))
	mux.HandleFunc("PUT /api/projects/{projectId}/offer", client(h.Offer.EditOffer))
	mux.HandleFunc("POST /api/projects/{projectId}/offer/cancel", client(h.Offer.CancelOffer))
	mux.HandleFunc("POST /api/projects/{projectId}/offer/respond", freelancer(h.Offer.RespondOffer))
	mux.HandleFunc("POST /api/projects/{projectId}/complete", freelancer(h.Offer.CompleteProject))

	mux.HandleFunc("POST /api/messages", auth(h.Message.SendMessage))
	mux.HandleFunc("GET /api/messages/threads", auth(h.Message.GetThreads))
	mux.HandleFunc("GET /api/messages/{userId}", auth(h.Message.GetConversation))
	mux.HandleFunc("PUT /api/messages/read/{userId}", auth(h.Message.MarkRead))

	mux.HandleFunc("POST /api/reviews", client(h.Review.CreateReview))
	mux.HandleFunc("GET /api/reviews/freelancer/{freelancerId}", h.Review.GetFreelancerReviews)
	mux.HandleFunc("GET /api/reviews/freelancer/{freelancerId}/average", h.Review.GetAverageRating)
	mux.HandleFunc("PUT /api/reviews/{reviewId}/response", freelancer(h.Review.RespondReview))

	mux.HandleFunc("GET /api/ws", auth(h.WS.ServeWS))

	return mux
}
