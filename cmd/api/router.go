package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/georgemunganga/catalog-service/internal/modules/audit"
	"github.com/georgemunganga/catalog-service/internal/modules/auth"
	"github.com/georgemunganga/catalog-service/internal/modules/catalog"
	"github.com/georgemunganga/catalog-service/internal/modules/metrics"
	"github.com/georgemunganga/catalog-service/internal/modules/user"
	"github.com/georgemunganga/catalog-service/internal/platform/httpx"
)

type services struct {
	auth     auth.Service
	users    user.Service
	catalog  catalog.Service
	audit    audit.Service
	tracker  *metrics.Tracker
	gatherer prometheus.Gatherer
}

func newRouter(svc services, allowedOrigins []string, log *zap.Logger) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(httpx.RequestLogger(log))
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.Respond(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Handle("/metrics", metrics.ExpositionHandler(svc.gatherer))

	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate(svc.auth))

		auth.NewHandler(svc.auth, log).RegisterRoutes(r)
		catalog.NewHandler(svc.catalog, log).RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(user.RoleAdmin))
			user.NewHandler(svc.users, log).RegisterRoutes(r)
			metrics.NewHandler(svc.tracker).RegisterRoutes(r)
			audit.NewHandler(svc.audit, log).RegisterRoutes(r)
		})
	})
	return router
}
