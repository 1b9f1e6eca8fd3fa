package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"slices"

	"github.com/Dosada05/scorebridge/brackets"
	"github.com/Dosada05/scorebridge/services"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub               *brackets.Hub
	tournamentService services.TournamentService
	upgrader          websocket.Upgrader
}

// NewWebSocketHandler accepts upgrades from allowedOrigins; a "*" entry allows any origin.
func NewWebSocketHandler(hub *brackets.Hub, ts services.TournamentService, allowedOrigins []string) *WebSocketHandler {
	allowAll := slices.Contains(allowedOrigins, "*")
	return &WebSocketHandler{
		hub:               hub,
		tournamentService: ts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowAll || origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// ServeWs обрабатывает WebSocket запросы для конкретного турнира.
// Клиент должен подключаться к /ws/tournaments/{key}
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	entry, err := h.tournamentService.Get(key)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader.Upgrade сам отправляет HTTP ошибку клиенту
		log.Printf("Failed to upgrade connection for tournament %s: %v", key, err)
		return
	}

	roomID := brackets.TournamentRoom(key)
	client := brackets.NewClient(h.hub, conn, roomID)
	client.Hub.Register <- client

	// Сразу отправляем текущее состояние, чтобы клиент не ждал следующего обновления.
	initial, err := json.Marshal(brackets.WebSocketMessage{
		Type:    brackets.MessageViewUpdated,
		Payload: entry.Summary(),
		RoomID:  roomID,
	})
	if err == nil {
		client.Send <- initial
	}

	go client.WritePump()
	go client.ReadPump()

	log.Printf("Client registered and pumps started for room %s.", roomID)
}
