package handlers

import (
	"log"
	"net/http"

	"github.com/senyabanana/freelance-service/internal/hub"
	"github.com/senyabanana/freelance-service/internal/utils"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// Источник проверяет обратный прокси перед сервисом.
		return true
	},
}

// WSHandler - структура для обработки подключений канала реального времени.
type WSHandler struct {
	Hub    *hub.Hub
	Logger *log.Logger
}

// NewWSHandler создает новый экземпляр WSHandler.
func NewWSHandler(h *hub.Hub, logger *log.Logger) *WSHandler {
	return &WSHandler{Hub: h, Logger: logger}
}

// ServeWS поднимает websocket-соединение аутентифицированного пользователя и
// обслуживает его до разрыва. Личность соединения установлена middleware.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := utils.UserIDFromContext(r.Context())
	if userID == "" {
		utils.SendErrorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Printf("websocket upgrade failed for user %s: %v", userID, err)
		return
	}

	client := hub.NewClient(h.Hub, conn, userID)
	client.Run()
}
