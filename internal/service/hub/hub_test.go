package hub

import (
	"context"
	"testing"
	"time"

	"github.com/nvthuy/salon-support/internal/model/chat"
)

func runHub(t *testing.T) *Hub {
	t.Helper()
	h := New()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.Run(ctx)
	return h
}

func waitFrame(t *testing.T, c *Client) chat.Frame {
	t.Helper()
	select {
	case f := <-c.Send:
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return chat.Frame{}
	}
}

func waitAttached(t *testing.T, h *Hub, chatID string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.Attached(chatID) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("chat %s never reached %d attached clients", chatID, want)
}

func TestBroadcastReachesAllChatParticipants(t *testing.T) {
	h := runHub(t)

	guest := NewClient("42", "guest")
	admin := NewClient("42", "admin")
	other := NewClient("7", "guest")
	h.Register(guest)
	h.Register(admin)
	h.Register(other)
	waitAttached(t, h, "42", 2)

	h.Broadcast("42", chat.Frame{Type: chat.FrameMessage, ChatID: "42", Content: "hello"})

	if got := waitFrame(t, guest); got.Content != "hello" {
		t.Fatalf("guest got %q", got.Content)
	}
	if got := waitFrame(t, admin); got.Content != "hello" {
		t.Fatalf("admin got %q", got.Content)
	}

	select {
	case f := <-other.Send:
		t.Fatalf("client on another chat received frame: %+v", f)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestUnregisterClosesSendChannel(t *testing.T) {
	h := runHub(t)

	client := NewClient("42", "guest")
	h.Register(client)
	waitAttached(t, h, "42", 1)

	h.Unregister(client)
	waitAttached(t, h, "42", 0)

	select {
	case _, open := <-client.Send:
		if open {
			t.Fatal("expected closed send channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("send channel not closed on unregister")
	}
}
