package api

import (
	"net/http"
	"strings"

	"github.com/dom/sticky-notes/internal/api/handlers"
	"github.com/dom/sticky-notes/internal/api/middleware"
	"github.com/dom/sticky-notes/internal/config"
	"github.com/dom/sticky-notes/internal/service"
	"github.com/dom/sticky-notes/internal/websocket"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func NewRouter(services *service.Services, hub *websocket.Hub, cfg *config.Config, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.RequestLogger(log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth, log)
	noteHandler := handlers.NewNoteHandler(services.Note, log)
	profileHandler := handlers.NewProfileHandler(services.Profile, cfg.Storage.AvatarMaxBytes, log)
	wsHandler := handlers.NewWebSocketHandler(hub, services.Auth, cfg.AllowedOrigins, log)

	requireAuth := middleware.Auth(services.Auth, log)

	r.Route("/api", func(r chi.Router) {
		r.Route("/user", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.With(requireAuth).Get("/me", authHandler.Me)
			r.Get("/{username}", profileHandler.Get)
			r.With(requireAuth).Put("/{username}", profileHandler.Update)
		})

		r.Route("/notes", func(r chi.Router) {
			// Token comes from the query string, checked by the handler
			r.Get("/ws", wsHandler.Handle)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/", noteHandler.List)
				r.Post("/", noteHandler.Create)
				r.Put("/order", noteHandler.Reorder)
				r.Put("/{id}", noteHandler.Update)
				r.Delete("/{id}", noteHandler.Delete)
			})
		})
	})

	if cfg.Storage.Driver == config.StorageDriverLocal {
		prefix := "/" + strings.Trim(cfg.Storage.PublicUploadPath, "/")
		fs := http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.Storage.UploadDir)))
		r.Handle(prefix+"/*", fs)
	}

	return r
}
