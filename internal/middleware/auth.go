package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/nvthuy/salon-support/internal/auth"
	"github.com/nvthuy/salon-support/pkg/utils"
)

type contextKey string

const subjectKey contextKey = "auth.subject"

// RequireAdmin guards admin-only routes. A missing or invalid bearer
// token yields 401; the client surfaces it without retrying.
func RequireAdmin(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				utils.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			subject, err := auth.Verify(secret, strings.TrimSpace(raw))
			if err != nil {
				utils.RespondError(w, http.StatusUnauthorized, "invalid bearer token")
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Subject returns the authenticated admin identity, empty when the
// request did not pass RequireAdmin.
func Subject(ctx context.Context) string {
	subject, _ := ctx.Value(subjectKey).(string)
	return subject
}
