package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nvthuy/salon-support/internal/config"
	chatmodel "github.com/nvthuy/salon-support/internal/model/chat"
	chatservice "github.com/nvthuy/salon-support/internal/service/chat"
	"github.com/nvthuy/salon-support/internal/service/hub"
)

var testAuth = config.AuthConfig{
	JWTSecret:     "test-secret",
	AdminUser:     "admin",
	AdminPassword: "s3cret",
	TokenTTL:      time.Hour,
}

func setupRouter(t *testing.T) (*chi.Mux, *chatservice.Service) {
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
	New(chatSvc, hubSvc, nil, testAuth).RegisterRoutes(r)
	return r, chatSvc
}

func login(t *testing.T, r *chi.Mux) string {
	t.Helper()
	payload, _ := json.Marshal(map[string]string{"username": "admin", "password": "s3cret"})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(payload))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", resp.Code)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil || out.Token == "" {
		t.Fatalf("login response missing token: %v", err)
	}
	return out.Token
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	r, _ := setupRouter(t)
	payload, _ := json.Marshal(map[string]string{"username": "admin", "password": "wrong"})

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(payload))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestNotificationsRequireToken(t *testing.T) {
	r, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/notifications", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.Code)
	}
}

func TestNotificationsListPendingChats(t *testing.T) {
	r, svc := setupRouter(t)
	token := login(t, r)

	session, err := svc.CreateChat(context.Background(), "Lan", "0901")
	if err != nil {
		t.Fatalf("CreateChat err: %v", err)
	}
	if _, err := svc.AppendMessage(context.Background(), chatmodel.Message{
		ChatID: session.ID, Content: "cần tư vấn", SenderRole: "Lan",
	}); err != nil {
		t.Fatalf("AppendMessage err: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/notifications", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var summaries []chatmodel.RequestSummary
	if err := json.Unmarshal(resp.Body.Bytes(), &summaries); err != nil {
		t.Fatalf("decode summaries: %v", err)
	}
	if len(summaries) != 1 || summaries[0].ChatID != session.ID || summaries[0].Preview() != "cần tư vấn" {
		t.Fatalf("unexpected summaries: %+v", summaries)
	}
}

func TestLegacyReplyPersists(t *testing.T) {
	r, svc := setupRouter(t)
	token := login(t, r)

	session, err := svc.CreateChat(context.Background(), "Lan", "0901")
	if err != nil {
		t.Fatalf("CreateChat err: %v", err)
	}

	payload, _ := json.Marshal(map[string]string{"chatId": session.ID, "content": "chào chị Lan"})
	req := httptest.NewRequest(http.MethodPost, "/reply-chat", bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.Code)
	}

	messages, err := svc.Messages(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("Messages err: %v", err)
	}
	if len(messages) != 1 || messages[0].SenderRole != "Admin" {
		t.Fatalf("reply not persisted as admin message: %+v", messages)
	}
}

func TestSuggestUnavailableWithoutAssist(t *testing.T) {
	r, svc := setupRouter(t)
	token := login(t, r)

	session, err := svc.CreateChat(context.Background(), "Lan", "0901")
	if err != nil {
		t.Fatalf("CreateChat err: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/chat/"+session.ID+"/suggest", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without assist service, got %d", resp.Code)
	}
}
