package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nvthuy/salon-support/internal/config"
	"github.com/nvthuy/salon-support/internal/handler"
	"github.com/nvthuy/salon-support/internal/service/assist"
	"github.com/nvthuy/salon-support/internal/service/chat"
	"github.com/nvthuy/salon-support/internal/service/hub"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	chatService, err := chat.NewService(cfg.Store.Path)
	if err != nil {
		log.Fatalf("failed to open chat store: %v", err)
	}
	defer chatService.Close()

	hubService := hub.New()
	go hubService.Run(ctx)

	var assistService *assist.Service
	if cfg.Assist.Enabled() {
		chatModel, err := cfg.Assist.NewChatModel(ctx)
		if err != nil {
			log.Printf("warning: failed to initialize suggestion model: %v", err)
		} else if assistService, err = assist.NewService(ctx, chatModel); err != nil {
			log.Printf("warning: failed to initialize suggestion service: %v", err)
			assistService = nil
		} else {
			log.Println("reply suggestion service initialized")
		}
	} else {
		log.Println("Ark credentials not configured, running without reply suggestions")
	}

	router := handler.NewRouter(chatService, hubService, assistService, cfg.Auth)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("support chat backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
