package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RouterConfig carries everything the API routes need.
type RouterConfig struct {
	// Handler serves the JSON endpoints. Required.
	Handler *Handler

	// AuthEnabled and AuthToken control Bearer-token auth on all routes.
	AuthEnabled bool
	AuthToken   string

	// Events, if non-nil, is mounted at GET /events inside the auth group
	// (the SSE feed).
	Events http.Handler
}

// NewRouter creates a chi router with all API routes mounted.
func NewRouter(cfg RouterConfig) chi.Router {
	h := cfg.Handler

	r := chi.NewRouter()
	r.Use(AuthMiddleware(cfg.AuthEnabled, cfg.AuthToken))

	// Image analysis and text simplification.
	r.Post("/analyze-image", h.AnalyzeImage)
	r.Post("/simplify-text", h.SimplifyText)

	// Notes and captions (append-only collections).
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Get("/captions", h.ListCaptions)
	r.Post("/captions", h.CreateCaption)

	// Accessibility settings.
	r.Get("/settings", h.GetSettings)
	r.Post("/settings", h.UpdateSettings)

	// Reader voice commands.
	r.Post("/voice-command", h.VoiceCommand)

	// Full-text search over notes and captions.
	r.Get("/search", h.Search)

	// SSE feed (protected by the same auth middleware).
	if cfg.Events != nil {
		r.Get("/events", cfg.Events.ServeHTTP)
	}

	return r
}
