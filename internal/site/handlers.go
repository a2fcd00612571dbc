package site

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/worklog/internal/apperr"
	"github.com/starford/worklog/internal/checksum"
	"github.com/starford/worklog/internal/content"
	"github.com/starford/worklog/internal/models"
	"github.com/starford/worklog/internal/pages"
)

// Handler holds the site route handlers.
type Handler struct {
	svc *pages.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *pages.Service) *Handler {
	return &Handler{svc: svc}
}

// slugParts extracts the slug segments after the section. chi matches on the
// escaped path when the request has one, so only then is the wildcard
// decoded, before splitting so that encoded slashes cannot smuggle
// separators.
func slugParts(r *http.Request) []string {
	raw := strings.Trim(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return nil
	}
	if r.URL.RawPath != "" {
		if decoded, err := url.PathUnescape(raw); err == nil {
			raw = decoded
		}
	}
	return strings.Split(raw, "/")
}

// Home handles GET /.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.Home()
	h.writePage(w, r, page, err)
}

// Section handles GET /{section}.
func (h *Handler) Section(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.Section(chi.URLParam(r, "section"), r.URL.Query().Get("tag"))
	h.writePage(w, r, page, err)
}

// Post handles GET /{section}/*. A bare trailing slash serves the listing.
func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	parts := slugParts(r)
	if len(parts) == 0 {
		h.Section(w, r)
		return
	}
	page, err := h.svc.Post(chi.URLParam(r, "section"), parts)
	h.writePage(w, r, page, err)
}

func (h *Handler) writePage(w http.ResponseWriter, r *http.Request, page []byte, err error) {
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			http.Error(w, "404 page not found", http.StatusNotFound)
			return
		}
		logFailure(r, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	etag := checksum.ETag(page)
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

// ListSections handles GET /api/sections.
func (h *Handler) ListSections(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"sections": models.Sections(),
	})
}

// ListPosts handles GET /api/sections/{section}/posts.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	section, ok := h.section(w, r)
	if !ok {
		return
	}
	var (
		posts []models.Post
		err   error
	)
	if tag := r.URL.Query().Get("tag"); tag != "" {
		posts, err = h.svc.Source().ListPostsByTag(section, tag)
	} else {
		posts, err = h.svc.Source().ListPosts(section)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"posts": posts,
	})
}

// ListTags handles GET /api/sections/{section}/tags.
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	section, ok := h.section(w, r)
	if !ok {
		return
	}
	tags, err := h.svc.Source().ListTags(section)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if tags == nil {
		tags = []models.TagCount{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tags": tags,
	})
}

// GetPost handles GET /api/sections/{section}/posts/*.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	section, ok := h.section(w, r)
	if !ok {
		return
	}
	parts := slugParts(r)
	if len(parts) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("slug is required"))
		return
	}
	doc, err := h.svc.Source().GetPost(section, parts)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) section(w http.ResponseWriter, r *http.Request) (models.Section, bool) {
	section, ok := models.ParseSection(chi.URLParam(r, "section"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("unknown section"))
	}
	return section, ok
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, apperr.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	logFailure(r, err)
	writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
}

func logFailure(r *http.Request, err error) {
	attrs := []any{
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	}
	var le *content.LoadError
	if errors.As(err, &le) {
		attrs = append(attrs, slog.String("document", le.Path))
	}
	slog.Error("request failed", attrs...)
}
