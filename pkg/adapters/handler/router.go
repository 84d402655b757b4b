package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/wadjakorntonsri/go-linkbio/pkg/config"
	"github.com/wadjakorntonsri/go-linkbio/pkg/ports"
)

// Services bundles what the router needs
type Services struct {
	Links    ports.LinkService
	Ordering ports.OrderingService
	Profiles ports.ProfileService
}

// NewRouter creates and configures the main application router
func NewRouter(cfg *config.Config, svc Services, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	lh := NewLinkHandler(svc.Links, logger)
	oh := NewOrderingHandler(svc.Ordering, logger)
	ph := NewProfileHandler(svc.Profiles, logger)
	mw := NewMiddleware(cfg, logger)
	authHandler := NewAuthHandler(cfg, logger)

	mux := http.NewServeMux()

	// Public Routes
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	mux.HandleFunc("GET /u/{handle}", ph.GetPublic)
	mux.HandleFunc("GET /auth/google/login", authHandler.Login)
	mux.HandleFunc("GET /auth/google/callback", authHandler.Callback)
	mux.HandleFunc("GET /auth/logout", authHandler.Logout)

	// Protected Routes
	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("POST /api/v1/links", lh.Create)
	protectedMux.HandleFunc("GET /api/v1/links", lh.List)
	protectedMux.HandleFunc("PUT /api/v1/links/order", lh.Reorder)
	protectedMux.HandleFunc("PUT /api/v1/links/{id}", lh.Update)
	protectedMux.HandleFunc("DELETE /api/v1/links/{id}", lh.Delete)
	protectedMux.HandleFunc("POST /api/v1/links/{id}/move", lh.Move)
	protectedMux.HandleFunc("GET /api/v1/activity", lh.Activity)
	protectedMux.HandleFunc("PUT /api/v1/profile", ph.Save)

	// Ordering diagnostics
	protectedMux.HandleFunc("GET /api/v1/ordering/diagnose", oh.Diagnose)
	protectedMux.HandleFunc("POST /api/v1/ordering/repair", oh.Repair)

	mux.Handle("/api/v1/", mw.AuthMiddleware(protectedMux))

	return mw.RequestLogger(mux)
}
