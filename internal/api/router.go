package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tasktrack/tasktrack/internal/api/handler"
	"github.com/tasktrack/tasktrack/internal/api/middleware"
	"github.com/tasktrack/tasktrack/internal/realtime"
	"github.com/tasktrack/tasktrack/internal/service"
)

// RouterConfig carries what the router needs beyond the services.
type RouterConfig struct {
	Deps        service.Deps
	JWTSecret   string
	FrontendURL string
	Hub         *realtime.Hub
}

// NewRouter creates and configures the HTTP router.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()
	log := cfg.Deps.Log

	// Global middleware chain
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logging(log, cfg.Deps.Metrics))
	r.Use(middleware.Recovery(log))
	r.Use(chimiddleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	systemHandler := handler.NewSystemHandler(cfg.Deps.Store, log)
	taskHandler := handler.NewTaskHandler(cfg.Deps)
	transitionHandler := handler.NewTransitionHandler(cfg.Deps)
	dependencyHandler := handler.NewDependencyHandler(cfg.Deps)
	notificationHandler := handler.NewNotificationHandler(cfg.Deps)
	auditHandler := handler.NewAuditHandler(cfg.Deps)

	validIDs := middleware.ValidIDParams("id", "taskId", "projectId", "notificationId")

	// Public routes
	r.Get("/v1/health", systemHandler.Health)
	if cfg.Deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Deps.Metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		if cfg.Hub != nil {
			r.With(middleware.UpgradeAuth(cfg.JWTSecret)).Get("/ws", handler.NewRealtimeHandler(cfg.Hub).Subscribe)
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTSecret))

			// Task registry
			r.Post("/tasks", taskHandler.CreateTask)
			r.With(validIDs).Get("/tasks/{id}", taskHandler.GetTask)
			r.With(validIDs).Patch("/tasks/{id}", taskHandler.UpdateTask)
			r.Post("/users", taskHandler.UpsertUser)
			r.Post("/boards", taskHandler.CreateBoard)

			r.Route("/dependencies", func(r chi.Router) {
				// Inline so URL params are resolved before the check runs.
				r = r.With(validIDs)

				r.Post("/", dependencyHandler.CreateDependency)
				r.Post("/check-circular", dependencyHandler.CheckCircular)
				r.Get("/projects/{projectId}", dependencyHandler.ListProjectDependencies)

				r.Get("/tasks/{taskId}", dependencyHandler.ListTaskDependencies)
				r.Get("/tasks/{taskId}/chain", dependencyHandler.Chain)
				r.Post("/tasks/{taskId}/validate", transitionHandler.ValidateTransition)

				// Notifications
				r.Get("/notifications/preferences", notificationHandler.GetPreferences)
				r.Put("/notifications/preferences", notificationHandler.UpdatePreferences)
				r.Get("/notifications/preferences/{projectId}", notificationHandler.GetPreferences)
				r.Put("/notifications/preferences/{projectId}", notificationHandler.UpdatePreferences)
				r.Get("/notifications/analytics", notificationHandler.Analytics)
				r.Get("/notifications/user", notificationHandler.UserFeed)
				r.Put("/notifications/{notificationId}/read", notificationHandler.MarkAsRead)

				r.Put("/{id}", dependencyHandler.UpdateDependency)
				r.Delete("/{id}", dependencyHandler.DeleteDependency)
				r.Get("/{id}/history", auditHandler.GetDependencyHistory)
				r.Post("/{id}/notify", notificationHandler.Notify)
				r.Get("/{id}/notifications", notificationHandler.History)
				r.Post("/{id}/test-notification", notificationHandler.TestNotification)
			})
		})
	})

	return r
}
