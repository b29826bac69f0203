package hub

import (
	"encoding/json"
	"time"

	"github.com/senyabanana/freelance-service/internal/services"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4096
)

// Входящие кадры от клиента: управление подписками на комнаты проектов.
const (
	joinProjectRoomEvent  = "joinProjectRoom"
	leaveProjectRoomEvent = "leaveProjectRoom"
)

// Client - одно websocket-соединение аутентифицированного пользователя.
// При подключении клиент сразу попадает в свою персональную комнату, комнаты
// проектов он выбирает сам кадрами joinProjectRoom/leaveProjectRoom.
type Client struct {
	UserID string

	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	rooms  map[string]bool // под мьютексом hub
	closed bool            // под мьютексом hub
}

// NewClient регистрирует соединение в хабе и подписывает его на персональную комнату.
func NewClient(h *Hub, conn *websocket.Conn, userID string) *Client {
	client := &Client{
		UserID: userID,
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 256),
		rooms:  make(map[string]bool),
	}
	h.Join(client, services.UserRoom(userID))
	return client
}

// Run запускает насосы чтения и записи и блокируется до разрыва соединения.
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// readPump читает кадры клиента и обрабатывает смену подписок. Любая ошибка
// чтения завершает соединение; хаб снимает все подписки клиента.
func (c *Client) readPump() {
	defer func() {
		c.hub.RemoveClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Printf("websocket read error for user %s: %v", c.UserID, err)
			}
			return
		}

		var frame struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(payload, &frame); err != nil {
			c.hub.logger.Printf("malformed frame from user %s: %v", c.UserID, err)
			continue
		}

		switch frame.Event {
		case joinProjectRoomEvent, leaveProjectRoomEvent:
			var projectID string
			if err := json.Unmarshal(frame.Data, &projectID); err != nil || projectID == "" {
				c.hub.logger.Printf("malformed %s frame from user %s", frame.Event, c.UserID)
				continue
			}
			if frame.Event == joinProjectRoomEvent {
				c.hub.Join(c, services.ProjectRoom(projectID))
			} else {
				c.hub.Leave(c, services.ProjectRoom(projectID))
			}
		default:
			c.hub.logger.Printf("unknown frame %q from user %s", frame.Event, c.UserID)
		}
	}
}

// writePump переносит события из очереди клиента в соединение и поддерживает
// его пингами.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
