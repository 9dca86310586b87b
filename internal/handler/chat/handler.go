// Package chat exposes the public REST surface of the support chat:
// session creation for guests, session info, and history.
package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	chatService "github.com/nvthuy/salon-support/internal/service/chat"
	"github.com/nvthuy/salon-support/pkg/utils"
)

// Handler serves the guest-facing chat endpoints.
type Handler struct {
	chatSvc *chatService.Service
}

// New creates the chat handler.
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes mounts the public chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/create-chat", h.handleCreateChat)
	r.Get("/chat/{chatID}", h.handleChatInfo)
	r.Get("/chat/{chatID}/messages", h.handleMessages)
}

func (h *Handler) handleCreateChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		GuestName  string `json:"guestName"`
		GuestPhone string `json:"guestPhone"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.chatSvc.CreateChat(r.Context(), payload.GuestName, payload.GuestPhone)
	if err != nil {
		if errors.Is(err, chatService.ErrGuestRequired) {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to create chat")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleChatInfo(w http.ResponseWriter, r *http.Request) {
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

	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleMessages(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")

	messages, err := h.chatSvc.Messages(r.Context(), chatID)
	if err != nil {
		if errors.Is(err, chatService.ErrChatNotFound) {
			utils.RespondError(w, http.StatusNotFound, "chat not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to load messages")
		return
	}

	utils.RespondJSON(w, http.StatusOK, messages)
}
