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

	"github.com/abhishekr/deepchat/internal/config"
	"github.com/abhishekr/deepchat/internal/handler"
	chatModel "github.com/abhishekr/deepchat/internal/model/chat"
	"github.com/abhishekr/deepchat/internal/service/ai"
	chatService "github.com/abhishekr/deepchat/internal/service/chat"
	"github.com/abhishekr/deepchat/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	conversations := chatModel.NewMemoryStore()

	// A broken model backend is fatal: the process must not start
	// serving traffic it cannot answer.
	gateway, err := ai.New(ctx, cfg.AI)
	if err != nil {
		log.Fatalf("failed to initialize model gateway: %v", err)
	}

	chatSvc := chatService.NewService(conversations, gateway)

	attachments, err := storage.NewStore(cfg.Upload.Dir)
	if err != nil {
		log.Fatalf("failed to initialize attachment store: %v", err)
	}

	router, err := handler.NewRouter(chatSvc, attachments, cfg.Upload.MaxBytes)
	if err != nil {
		log.Fatalf("failed to build router: %v", err)
	}

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("DeepChat relay listening on %s", addr)
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
