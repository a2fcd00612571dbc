// Package site serves the rendered pages and the read-only JSON API.
package site

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/worklog/internal/pages"
)

// Options holds the optional handlers mounted next to the content routes.
type Options struct {
	// Events, if non-nil, is mounted at GET /api/events.
	Events http.Handler
	// Metrics, if non-nil, is mounted at GET /metrics.
	Metrics http.Handler
}

// NewRouter creates a chi router with the page, API, and health routes.
func NewRouter(svc *pages.Service, opts Options) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()

	r.Get("/health/live", health)
	r.Get("/health/ready", health)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/sections", h.ListSections)
		r.Get("/sections/{section}/posts", h.ListPosts)
		r.Get("/sections/{section}/tags", h.ListTags)
		r.Get("/sections/{section}/posts/*", h.GetPost)
		if opts.Events != nil {
			r.Get("/events", opts.Events.ServeHTTP)
		}
	})

	r.Get("/", h.Home)
	r.Get("/{section}", h.Section)
	r.Get("/{section}/*", h.Post)

	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
