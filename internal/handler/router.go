package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nvthuy/salon-support/internal/config"
	adminHandler "github.com/nvthuy/salon-support/internal/handler/admin"
	chatHandler "github.com/nvthuy/salon-support/internal/handler/chat"
	wsHandler "github.com/nvthuy/salon-support/internal/handler/ws"
	middlewarePkg "github.com/nvthuy/salon-support/internal/middleware"
	"github.com/nvthuy/salon-support/internal/service/assist"
	chatService "github.com/nvthuy/salon-support/internal/service/chat"
	"github.com/nvthuy/salon-support/internal/service/hub"
)

// NewRouter wires HTTP routes to core services. assistSvc may be nil.
func NewRouter(chatSvc *chatService.Service, hubSvc *hub.Hub, assistSvc *assist.Service, authCfg config.AuthConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Route("/api", func(api chi.Router) {
		chatHandler.New(chatSvc).RegisterRoutes(api)
		adminHandler.New(chatSvc, hubSvc, assistSvc, authCfg).RegisterRoutes(api)
		wsHandler.New(chatSvc, hubSvc).RegisterRoutes(api)
	})

	return r
}
