package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nvthuy/salon-support/internal/auth"
)

func protected(t *testing.T, secret string) http.Handler {
	t.Helper()
	return RequireAdmin(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(Subject(r.Context())))
	}))
}

func TestRequireAdminMissingToken(t *testing.T) {
	h := protected(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/admin/notifications", nil)
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestRequireAdminInvalidToken(t *testing.T) {
	h := protected(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/admin/notifications", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestRequireAdminValidToken(t *testing.T) {
	token, err := auth.Mint("secret", "admin@salon", time.Hour)
	if err != nil {
		t.Fatalf("Mint err: %v", err)
	}
	h := protected(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/admin/notifications", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if resp.Body.String() != "admin@salon" {
		t.Fatalf("subject not propagated, got %q", resp.Body.String())
	}
}
