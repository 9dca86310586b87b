// Package ws serves the persistent chat channel. Each connection
// binds to one chat: the first inbound frame must be the join control
// frame, after which content frames are persisted and relayed to
// every participant attached to the chat.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/nvthuy/salon-support/internal/model/chat"
	chatService "github.com/nvthuy/salon-support/internal/service/chat"
	"github.com/nvthuy/salon-support/internal/service/hub"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	joinWait   = 10 * time.Second
)

// Handler upgrades chat connections and runs their pumps.
type Handler struct {
	chatSvc  *chatService.Service
	hub      *hub.Hub
	upgrader websocket.Upgrader
}

// New creates the websocket handler.
func New(chatSvc *chatService.Service, h *hub.Hub) *Handler {
	return &Handler{
		chatSvc: chatSvc,
		hub:     h,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the channel endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/chat", h.handleChat)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	chatID := r.URL.Query().Get("chatId")
	if chatID == "" {
		http.Error(w, "chatId is required", http.StatusBadRequest)
		return
	}
	if _, err := h.chatSvc.Chat(r.Context(), chatID); err != nil {
		http.Error(w, "chat not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed for chat=%s: %v", chatID, err)
		return
	}

	join, err := readJoin(conn, chatID)
	if err != nil {
		log.Printf("[ws] rejecting connection for chat=%s: %v", chatID, err)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "join frame required"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}

	client := hub.NewClient(chatID, join.Role)
	h.hub.Register(client)
	log.Printf("[ws] %s joined chat=%s", join.Role, chatID)

	go h.writePump(conn, client)
	h.readPump(conn, client)
}

// readJoin enforces the channel handshake: one join frame for the
// chat the connection was opened for, within the join window.
func readJoin(conn *websocket.Conn, chatID string) (chat.Frame, error) {
	conn.SetReadDeadline(time.Now().Add(joinWait))

	var frame chat.Frame
	if err := conn.ReadJSON(&frame); err != nil {
		return chat.Frame{}, err
	}
	if frame.Type != chat.FrameJoin || frame.ChatID != chatID {
		return chat.Frame{}, errBadJoin(frame)
	}
	return frame, nil
}

type badJoinError struct {
	frame chat.Frame
}

func errBadJoin(f chat.Frame) error { return badJoinError{frame: f} }

func (e badJoinError) Error() string {
	return "first frame must join the connection's chat, got type=" + e.frame.Type
}

// readPump reads content frames, persists them, and hands them to the
// hub. Undecodable frames are dropped without closing the connection.
func (h *Handler) readPump(conn *websocket.Conn, client *hub.Client) {
	defer func() {
		h.hub.Unregister(client)
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[ws] read error on chat=%s: %v", client.ChatID, err)
			}
			return
		}

		var frame chat.Frame
		if err := json.Unmarshal(payload, &frame); err != nil {
			log.Printf("[ws] dropping undecodable frame on chat=%s: %v", client.ChatID, err)
			continue
		}
		if !frame.IsContent() || frame.Content == "" {
			continue
		}

		message := frame.AsMessage()
		message.ChatID = client.ChatID
		if message.CreatedAt.IsZero() {
			message.CreatedAt = time.Now().UTC()
		}

		stored, err := h.chatSvc.AppendMessage(context.Background(), message)
		if err != nil {
			log.Printf("[ws] failed to store message on chat=%s: %v", client.ChatID, err)
			continue
		}

		h.hub.Broadcast(client.ChatID, chat.MessageFrame(stored))
	}
}

// writePump drains the client's send queue and keeps the connection
// alive with pings.
func (h *Handler) writePump(conn *websocket.Conn, client *hub.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case frame, ok := <-client.Send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(frame); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
