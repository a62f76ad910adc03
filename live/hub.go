// Package live fans out JSON messages to websocket clients grouped in rooms,
// one room per event.
package live

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
)

// Message is the envelope every client receives.
type Message struct {
	Type    string      `json:"type"`              // например "participants_updated", "event_updated"
	Payload interface{} `json:"payload"`
	RoomID  string      `json:"room_id,omitempty"`
}

const (
	MessageParticipantsUpdated = "participants_updated"
	MessageEventUpdated        = "event_updated"
)

// EventRoom returns the room name for an event.
func EventRoom(eventID int) string {
	return "event_" + strconv.Itoa(eventID)
}

type Hub struct {
	Register   chan *Client
	Unregister chan *Client
	rooms      map[string]map[*Client]bool
	mu         sync.RWMutex
	done       chan struct{}
	logger     *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run processes registrations until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.Room]; !ok {
				h.rooms[client.Room] = make(map[*Client]bool)
			}
			h.rooms[client.Room][client] = true
			size := len(h.rooms[client.Room])
			h.mu.Unlock()
			h.logger.Debug("websocket client registered", slog.String("room", client.Room), slog.Int("clients", size))

		case client := <-h.Unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.Room]; ok {
				if _, okClient := clients[client]; okClient {
					client.closeSend()
					delete(clients, client)
					if len(clients) == 0 {
						delete(h.rooms, client.Room)
					}
				}
			}
			h.mu.Unlock()
			h.logger.Debug("websocket client unregistered", slog.String("room", client.Room))

		case <-h.done:
			h.mu.Lock()
			for room, clients := range h.rooms {
				for client := range clients {
					client.closeSend()
				}
				delete(h.rooms, room)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop terminates Run and closes every client's send channel.
func (h *Hub) Stop() {
	close(h.done)
}

// RoomSize returns the number of clients currently in room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// BroadcastToRoom отправляет сообщение всем клиентам в указанной комнате.
// Slow clients whose buffers are full miss the message.
func (h *Hub) BroadcastToRoom(roomID string, message interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	roomClients, ok := h.rooms[roomID]
	if !ok {
		return
	}

	messageBytes, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal websocket message", slog.String("room", roomID), slog.Any("error", err))
		return
	}

	for client := range roomClients {
		if !client.trySend(messageBytes) {
			h.logger.Warn("websocket client send buffer full, message dropped", slog.String("room", roomID))
		}
	}
}

// PublishEvent broadcasts msgType with payload to the event's room.
func (h *Hub) PublishEvent(eventID int, msgType string, payload interface{}) {
	room := EventRoom(eventID)
	h.BroadcastToRoom(room, Message{Type: msgType, Payload: payload, RoomID: room})
}
