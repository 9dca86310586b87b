// Package admin exposes the credentialed back-office endpoints:
// login, the notification feed, the legacy REST reply path, and reply
// suggestions.
package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nvthuy/salon-support/internal/auth"
	"github.com/nvthuy/salon-support/internal/config"
	"github.com/nvthuy/salon-support/internal/middleware"
	"github.com/nvthuy/salon-support/internal/model/chat"
	"github.com/nvthuy/salon-support/internal/service/assist"
	chatService "github.com/nvthuy/salon-support/internal/service/chat"
	"github.com/nvthuy/salon-support/internal/service/hub"
	"github.com/nvthuy/salon-support/pkg/utils"
)

// Handler serves the admin-side endpoints. assistSvc may be nil when
// suggestions are not configured.
type Handler struct {
	chatSvc   *chatService.Service
	hub       *hub.Hub
	assistSvc *assist.Service
	authCfg   config.AuthConfig
}

// New creates the admin handler.
func New(chatSvc *chatService.Service, h *hub.Hub, assistSvc *assist.Service, authCfg config.AuthConfig) *Handler {
	return &Handler{
		chatSvc:   chatSvc,
		hub:       h,
		assistSvc: assistSvc,
		authCfg:   authCfg,
	}
}

// RegisterRoutes mounts login publicly and the rest behind the bearer
// check.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(h.authCfg.JWTSecret))
		r.Get("/admin/notifications", h.handleNotifications)
		r.Post("/reply-chat", h.handleReply)
		r.Get("/admin/chat/{chatID}/suggest", h.handleSuggest)
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Username != h.authCfg.AdminUser || payload.Password != h.authCfg.AdminPassword {
		utils.RespondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := auth.Mint(h.authCfg.JWTSecret, payload.Username, h.authCfg.TokenTTL)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) handleNotifications(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.chatSvc.PendingChats(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load notifications")
		return
	}
	utils.RespondJSON(w, http.StatusOK, summaries)
}

// handleReply is the legacy REST send path. The persistent channel is
// the primary path; this one remains for the older admin frontend. The
// reply is persisted and relayed so live viewers still see it.
func (h *Handler) handleReply(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ChatID  string `json:"chatId"`
		Content string `json:"content"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.ChatID == "" || payload.Content == "" {
		utils.RespondError(w, http.StatusBadRequest, "chatId and content are required")
		return
	}

	message, err := h.chatSvc.AppendMessage(r.Context(), chat.Message{
		ChatID:     payload.ChatID,
		Content:    payload.Content,
		SenderRole: "Admin",
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, chatService.ErrChatNotFound) {
			utils.RespondError(w, http.StatusNotFound, "chat not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to store reply")
		return
	}

	h.hub.Broadcast(message.ChatID, chat.MessageFrame(message))
	utils.RespondJSON(w, http.StatusAccepted, message)
}

func (h *Handler) handleSuggest(w http.ResponseWriter, r *http.Request) {
	if h.assistSvc == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "reply suggestions unavailable")
		return
	}

	chatID := chi.URLParam(r, "chatID")
	session, err := h.chatSvc.Chat(r.Context(), chatID)
	if err != nil {
		if errors.Is(err, chatService.ErrChatNotFound) {
			utils.RespondError(w, http.StatusNotFound, "chat not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to load chat")
		return
	}

	history, err := h.chatSvc.Messages(r.Context(), chatID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load messages")
		return
	}

	suggestion, err := h.assistSvc.Suggest(r.Context(), session, history)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to draft suggestion")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"suggestion": suggestion})
}
