package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/popeskul/webhook-inbox/internal/handler"
	"github.com/popeskul/webhook-inbox/internal/middleware"
)

func setupRouter(h *handler.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Metrics)

	r.Get("/", h.Root)

	r.Post("/webhook", h.Webhook)
	r.Get("/messages", h.GetMessages)
	r.Get("/stats", h.GetStats)

	r.Get("/health", h.ReadinessCheck)
	r.Get("/health/live", h.LivenessCheck)
	r.Get("/health/ready", h.ReadinessCheck)

	r.Handle("/metrics", promhttp.Handler())

	// Serve the dashboard UI
	r.Get("/ui", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/ui/", http.StatusMovedPermanently)
	})
	r.Get("/ui/*", func(w http.ResponseWriter, req *http.Request) {
		http.StripPrefix("/ui/", http.FileServer(http.Dir("static"))).ServeHTTP(w, req)
	})

	return r
}
