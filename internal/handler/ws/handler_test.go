package ws

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/nvthuy/salon-support/internal/model/chat"
	chatservice "github.com/nvthuy/salon-support/internal/service/chat"
	"github.com/nvthuy/salon-support/internal/service/hub"
)

type wsFixture struct {
	srv     *httptest.Server
	chatSvc *chatservice.Service
}

func setup(t *testing.T) *wsFixture {
	t.Helper()

	chatSvc, err := chatservice.NewService(filepath.Join(t.TempDir(), "chat.db"))
	if err != nil {
		t.Fatalf("NewService err: %v", err)
	}
	t.Cleanup(func() { chatSvc.Close() })

	hubSvc := hub.New()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hubSvc.Run(ctx)

	r := chi.NewRouter()
	New(chatSvc, hubSvc).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &wsFixture{srv: srv, chatSvc: chatSvc}
}

func (f *wsFixture) endpoint(chatID string) string {
	return "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/ws/chat?chatId=" + chatID
}

func (f *wsFixture) dialAndJoin(t *testing.T, chatID, role string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(f.endpoint(chatID), nil)
	if err != nil {
		t.Fatalf("dial err: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := conn.WriteJSON(chat.Frame{Type: chat.FrameJoin, ChatID: chatID, Role: role}); err != nil {
		t.Fatalf("join frame err: %v", err)
	}
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) chat.Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame chat.Frame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read frame err: %v", err)
	}
	return frame
}

func TestRelayBetweenParticipants(t *testing.T) {
	f := setup(t)
	session, err := f.chatSvc.CreateChat(context.Background(), "Lan", "0901")
	if err != nil {
		t.Fatalf("CreateChat err: %v", err)
	}

	guest := f.dialAndJoin(t, session.ID, "guest")
	admin := f.dialAndJoin(t, session.ID, "admin")

	// Both pumps must be attached before the send or the broadcast
	// may miss the admin; the join frames above are processed in
	// order, so a short settle is enough.
	time.Sleep(50 * time.Millisecond)

	sent := chat.Frame{
		Type:          chat.FrameMessage,
		ChatID:        session.ID,
		Content:       "xin chào",
		SenderRole:    "Lan",
		CorrelationID: "corr-1",
	}
	if err := guest.WriteJSON(sent); err != nil {
		t.Fatalf("guest send err: %v", err)
	}

	got := readFrame(t, admin)
	if got.Content != "xin chào" || got.SenderRole != "Lan" || got.ChatID != session.ID {
		t.Fatalf("admin received wrong frame: %+v", got)
	}

	// The sender gets its own echo back, correlation id intact.
	echo := readFrame(t, guest)
	if echo.CorrelationID != "corr-1" {
		t.Fatalf("echo lost correlation id: %+v", echo)
	}

	messages, err := f.chatSvc.Messages(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("Messages err: %v", err)
	}
	if len(messages) != 1 || messages[0].Content != "xin chào" {
		t.Fatalf("message not persisted: %+v", messages)
	}
}

func TestUndecodableFrameDoesNotCloseConnection(t *testing.T) {
	f := setup(t)
	session, err := f.chatSvc.CreateChat(context.Background(), "Lan", "0901")
	if err != nil {
		t.Fatalf("CreateChat err: %v", err)
	}

	guest := f.dialAndJoin(t, session.ID, "guest")
	time.Sleep(50 * time.Millisecond)

	if err := guest.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write err: %v", err)
	}
	if err := guest.WriteJSON(chat.Frame{Type: chat.FrameMessage, ChatID: session.ID, Content: "still here", SenderRole: "Lan"}); err != nil {
		t.Fatalf("write err: %v", err)
	}

	got := readFrame(t, guest)
	if got.Content != "still here" {
		t.Fatalf("valid frame after a dropped one not relayed: %+v", got)
	}
}

func TestConnectionWithoutJoinIsRejected(t *testing.T) {
	f := setup(t)
	session, err := f.chatSvc.CreateChat(context.Background(), "Lan", "0901")
	if err != nil {
		t.Fatalf("CreateChat err: %v", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(f.endpoint(session.ID), nil)
	if err != nil {
		t.Fatalf("dial err: %v", err)
	}
	defer conn.Close()

	// Content before join violates the handshake.
	if err := conn.WriteJSON(chat.Frame{Type: chat.FrameMessage, ChatID: session.ID, Content: "hi"}); err != nil {
		t.Fatalf("write err: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame chat.Frame
	err = conn.ReadJSON(&frame)
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("expected policy-violation close, got %v (frame %+v)", err, frame)
	}
}

func TestUnknownChatRejectedBeforeUpgrade(t *testing.T) {
	f := setup(t)

	_, resp, err := websocket.DefaultDialer.Dial(f.endpoint("missing"), nil)
	if err == nil {
		t.Fatal("expected handshake failure for unknown chat")
	}
	if resp == nil || resp.StatusCode != 404 {
		t.Fatalf("expected 404 handshake response, got %+v", resp)
	}
}
