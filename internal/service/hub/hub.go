// Package hub tracks the live websocket connections of each chat and
// fans frames out to every participant on that chat. Both sides of a
// conversation, and any number of admin viewers, may be attached to
// the same chat id at once.
package hub

import (
	"context"
	"sync"

	"github.com/nvthuy/salon-support/internal/model/chat"
)

// Client is one attached connection. Send is drained by the
// connection's write pump; a client that cannot keep up is dropped.
type Client struct {
	ChatID string
	Role   string
	Send   chan chat.Frame
}

// NewClient builds a client for the given chat.
func NewClient(chatID, role string) *Client {
	return &Client{
		ChatID: chatID,
		Role:   role,
		Send:   make(chan chat.Frame, 32),
	}
}

type broadcast struct {
	chatID string
	frame  chat.Frame
}

// Hub maintains active clients per chat and relays frames.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcast

	mu      sync.RWMutex
	clients map[string]map[*Client]bool
}

// New builds an idle hub; call Run to start processing.
func New() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcast, 64),
		clients:    make(map[string]map[*Client]bool),
	}
}

// Run processes registrations and broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.ChatID] == nil {
				h.clients[client.ChatID] = make(map[*Client]bool)
			}
			h.clients[client.ChatID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.ChatID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.Send)
					if len(clients) == 0 {
						delete(h.clients, client.ChatID)
					}
				}
			}
			h.mu.Unlock()

		case b := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients[b.chatID] {
				select {
				case client.Send <- b.frame:
				default:
					delete(h.clients[b.chatID], client)
					close(client.Send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Register attaches a client to its chat.
func (h *Hub) Register(c *Client) {
	h.register <- c
}

// Unregister detaches a client and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.unregister <- c
}

// Broadcast relays a frame to every client on the chat, the sender
// included; clients drop their own echo by correlation id.
func (h *Hub) Broadcast(chatID string, frame chat.Frame) {
	h.broadcast <- broadcast{chatID: chatID, frame: frame}
}

// Attached reports how many clients are on a chat.
func (h *Hub) Attached(chatID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[chatID])
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for chatID, clients := range h.clients {
		for client := range clients {
			close(client.Send)
		}
		delete(h.clients, chatID)
	}
}
