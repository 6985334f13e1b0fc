package handler

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	chatHandler "github.com/havenlabs/haven/backend/internal/handler/chat"
	escalationHandler "github.com/havenlabs/haven/backend/internal/handler/escalation"
	"github.com/havenlabs/haven/backend/internal/handler/live"
	"github.com/havenlabs/haven/backend/internal/handler/stream"
	wellnessHandler "github.com/havenlabs/haven/backend/internal/handler/wellness"
	middlewarePkg "github.com/havenlabs/haven/backend/internal/middleware"
	"github.com/havenlabs/haven/backend/internal/service/ai"
	"github.com/havenlabs/haven/backend/internal/service/analytics"
	chatService "github.com/havenlabs/haven/backend/internal/service/chat"
	"github.com/havenlabs/haven/backend/internal/service/conversation"
	escalationService "github.com/havenlabs/haven/backend/internal/service/escalation"
	"github.com/havenlabs/haven/backend/internal/store"
	"github.com/havenlabs/haven/backend/pkg/utils"
)

// Deps bundles the services the router wires to routes.
type Deps struct {
	ChatSvc   *chatService.Service
	Turns     *conversation.Service
	Flow      *escalationService.Flow
	Generator wellnessHandler.Generator
	Responder *ai.Responder
	Summaries *analytics.Service
	Sink      store.Store
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	chatH := chatHandler.New(deps.ChatSvc, deps.Turns)
	wellnessH := wellnessHandler.New(deps.Sink, deps.ChatSvc, deps.Generator, deps.Responder, deps.Summaries)
	escalationH := escalationHandler.New(deps.Flow)
	streamH := stream.New(deps.Turns)
	liveH := live.New(deps.ChatSvc, deps.Turns, deps.Flow)

	r.Route("/api", func(api chi.Router) {
		chatH.RegisterRoutes(api)
		wellnessH.RegisterRoutes(api)
		escalationH.RegisterRoutes(api)
		liveH.RegisterRoutes(api)

		api.Get("/stream/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
			sessionID := chi.URLParam(r, "sessionID")
			userMessage := r.URL.Query().Get("message")

			if userMessage == "" {
				utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
				return
			}

			if err := streamH.HandleStreamRequest(r.Context(), w, sessionID, userMessage); err != nil {
				log.Printf("[stream] error handling request: %v", err)
			}
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
