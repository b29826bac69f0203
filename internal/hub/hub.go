package hub

import (
	"encoding/json"
	"log"
	"sync"
)

// Envelope - кадр, которым обмениваются сервер и подключённые клиенты.
type Envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub ведёт членство соединений в комнатах и рассылает события. Комната - это
// просто строковый ключ; истории у комнат нет: кто не был подписан в момент
// публикации, сверяется с состоянием через REST.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[*Client]bool
	logger *log.Logger
}

// NewHub создает новый экземпляр Hub.
func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		rooms:  make(map[string]map[*Client]bool),
		logger: logger,
	}
}

// Join подписывает клиента на комнату.
func (h *Hub) Join(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client.closed {
		return
	}
	if _, ok := h.rooms[room]; !ok {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][client] = true
	client.rooms[room] = true
}

// Leave отписывает клиента от комнаты.
func (h *Hub) Leave(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropFromRoom(client, room)
}

// RemoveClient выводит клиента из всех комнат и закрывает его очередь отправки.
// Вызывается при разрыве соединения и при переполнении буфера подписчика.
func (h *Hub) RemoveClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client.closed {
		return
	}
	for room := range client.rooms {
		h.dropFromRoom(client, room)
	}
	client.closed = true
	close(client.send)
}

// Publish рассылает событие всем участникам комнаты. Доставка не блокирует
// вызывающую сторону: подписчик с переполненным буфером отключается, чтобы
// не тормозить остальных и путь записи.
func (h *Hub) Publish(room, event string, data interface{}) {
	payload, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		h.logger.Printf("failed to encode %s event: %v", event, err)
		return
	}

	var stalled []*Client
	h.mu.RLock()
	for client := range h.rooms[room] {
		select {
		case client.send <- payload:
		default:
			stalled = append(stalled, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range stalled {
		h.logger.Printf("dropping slow subscriber %s from room %s", client.UserID, room)
		h.RemoveClient(client)
	}
}

// RoomSize возвращает число подписчиков комнаты.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// dropFromRoom снимает подписку без захвата мьютекса; вызывающий держит h.mu.
func (h *Hub) dropFromRoom(client *Client, room string) {
	delete(client.rooms, room)
	if members, ok := h.rooms[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}
