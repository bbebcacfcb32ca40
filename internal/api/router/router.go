// Package router assembles the HTTP API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/LionGab/lyla-erl/internal/http/handlers"
	httpmiddleware "github.com/LionGab/lyla-erl/internal/http/middleware"
	"github.com/LionGab/lyla-erl/internal/webchat"
	"github.com/LionGab/lyla-erl/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	Diagnostic         *handlers.DiagnosticHandler
	Simulation         *handlers.SimulationHandler
	Threads            *handlers.ThreadsHandler
	Chat               *handlers.ChatHandler
	Onboarding         *handlers.OnboardingHandler
	Recommend          *handlers.RecommendHandler
	Funnel             *handlers.FunnelHandler
	WebChat            *webchat.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// AuthJWTSecret signs user tokens. Empty disables token validation and
	// every request runs under the anonymous namespace.
	AuthJWTSecret string
}

// New creates a new Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		// Anonymous use is a product feature: pre-login data lives under a
		// shared namespace and is migrated on first login by the client.
		api.Use(httpmiddleware.UserAuth(cfg.AuthJWTSecret, true))

		if cfg.Diagnostic != nil {
			api.Route("/diagnostic", func(r chi.Router) {
				r.Get("/questions", cfg.Diagnostic.Questions)
				r.Post("/", cfg.Diagnostic.Submit)
				r.Get("/", cfg.Diagnostic.Latest)
			})
		}
		if cfg.Simulation != nil {
			api.Route("/simulation", func(r chi.Router) {
				r.Post("/", cfg.Simulation.Run)
				r.Get("/", cfg.Simulation.Latest)
			})
		}
		if cfg.Threads != nil {
			api.Route("/threads", func(r chi.Router) {
				r.Get("/", cfg.Threads.List)
				r.Post("/", cfg.Threads.Create)
				r.Post("/migrate", cfg.Threads.Migrate)
				r.Route("/{threadID}", func(r chi.Router) {
					r.Get("/messages", cfg.Threads.Messages)
					r.Put("/messages", cfg.Threads.SaveMessages)
					r.Delete("/", cfg.Threads.Delete)
				})
			})
		}
		if cfg.Chat != nil {
			api.Get("/agents", cfg.Chat.Agents)
			api.Route("/conversations", func(r chi.Router) {
				r.Post("/", cfg.Chat.Start)
				r.Route("/{conversationID}", func(r chi.Router) {
					r.Post("/messages", cfg.Chat.Send)
					r.Get("/messages", cfg.Chat.History)
				})
			})
		}
		if cfg.Onboarding != nil {
			api.Route("/onboarding", func(r chi.Router) {
				r.Get("/", cfg.Onboarding.Get)
				r.Put("/", cfg.Onboarding.Put)
			})
		}
		if cfg.Recommend != nil {
			api.Route("/recommendations", func(r chi.Router) {
				r.Post("/", cfg.Recommend.Generate)
				r.Get("/", cfg.Recommend.Latest)
			})
		}
		if cfg.Funnel != nil {
			api.Route("/funnels", func(r chi.Router) {
				r.Post("/", cfg.Funnel.Generate)
				r.Get("/", cfg.Funnel.List)
			})
		}
		if cfg.WebChat != nil {
			api.Get("/ws/chat/{conversationID}", cfg.WebChat.Serve)
		}
	})

	return r
}
