package main

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/joho/godotenv"

	"github.com/havenlabs/haven/backend/internal/analysis/distress"
	"github.com/havenlabs/haven/backend/internal/config"
	"github.com/havenlabs/haven/backend/internal/handler"
	"github.com/havenlabs/haven/backend/internal/service/ai"
	"github.com/havenlabs/haven/backend/internal/service/analytics"
	"github.com/havenlabs/haven/backend/internal/service/chat"
	"github.com/havenlabs/haven/backend/internal/service/conversation"
	"github.com/havenlabs/haven/backend/internal/service/escalation"
	sentimentservice "github.com/havenlabs/haven/backend/internal/service/sentiment"
	"github.com/havenlabs/haven/backend/internal/store"
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

	sink := newStore(cfg.Storage)
	defer func() {
		if err := sink.Close(); err != nil {
			log.Printf("warning: failed to close store: %v", err)
		}
	}()

	chatService := chat.NewService()

	// Generation service is optional; without credentials the rule-based
	// responder carries every reply.
	var aiService *ai.Service
	if cfg.AI.Enabled() {
		aiService, err = ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing with rule-based replies only - check the Ark model environment variables")
		} else {
			log.Println("AI service initialized successfully")
		}
	} else {
		log.Println("Ark credentials not configured, skipping AI generation")
	}

	var chatModelForSentiment model.ChatModel
	if aiService != nil {
		chatModelForSentiment = aiService.GetChatModel()
	}
	sentimentSvc, err := sentimentservice.NewService(ctx, chatModelForSentiment, sentimentservice.Config{
		Enabled: cfg.AI.SentimentLLMEnabled,
	})
	if err != nil {
		log.Fatalf("failed to initialize sentiment service: %v", err)
	}
	if sentimentSvc.Enabled() {
		log.Println("Sentiment classifier service enabled")
	} else if cfg.AI.SentimentLLMEnabled {
		log.Println("Sentiment classifier requested but chat model unavailable, falling back to heuristics")
	} else {
		log.Println("Sentiment classifier disabled by configuration")
	}

	classifier := distress.NewClassifier(distress.Config{
		Enabled:                    cfg.Detection.Enabled,
		NegativeSentimentThreshold: cfg.Detection.NegativeSentimentThreshold,
		HighMagnitudeThreshold:     cfg.Detection.HighMagnitudeThreshold,
		Keywords:                   cfg.Detection.Keywords,
	})

	responder := ai.NewResponder(rand.New(rand.NewSource(time.Now().UnixNano())))
	flow := escalation.NewFlow(chatService, sink)

	var generator conversation.Generator
	if aiService != nil {
		generator = aiService
	}
	turns := conversation.NewService(chatService, sentimentSvc, classifier, generator, responder, flow, sink)

	deps := handler.Deps{
		ChatSvc:   chatService,
		Turns:     turns,
		Flow:      flow,
		Responder: responder,
		Summaries: analytics.NewService(sink),
		Sink:      sink,
	}
	if aiService != nil {
		deps.Generator = aiService
	}

	startServer(ctx, cfg.Server, handler.NewRouter(deps))
}

// newStore opens the sqlite store when a path is configured, otherwise
// everything stays in memory for the process lifetime.
func newStore(cfg config.StorageConfig) store.Store {
	if cfg.Path == "" {
		log.Println("HAVEN_DB_PATH not set, using in-memory storage")
		return store.NewMemory()
	}

	sqlStore, err := store.NewSQLite(cfg.Path)
	if err != nil {
		log.Printf("warning: failed to open sqlite store at %s: %v", cfg.Path, err)
		log.Println("falling back to in-memory storage")
		return store.NewMemory()
	}

	log.Printf("sqlite store ready at %s", cfg.Path)
	return sqlStore
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Haven backend listening on %s", addr)
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
