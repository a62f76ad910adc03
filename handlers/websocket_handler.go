package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/sport-events/live"
)

type WebSocketHandler struct {
	hub *live.Hub
}

func NewWebSocketHandler(hub *live.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// ServeWs подключает клиента к комнате события.
// Клиент должен подключаться к /ws/events/{eventID}
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := live.ServeRoom(h.hub, w, r, live.EventRoom(eventID)); err != nil {
		// Upgrader уже записал ответ с ошибкой.
		logger.Warn("websocket upgrade failed", slog.Int("event_id", eventID), slog.Any("error", err))
	}
}
