// Package pages assembles rendered HTML pages from the content index.
package pages

import (
	"bytes"
	"fmt"

	"github.com/starford/worklog/internal/apperr"
	"github.com/starford/worklog/internal/content"
	"github.com/starford/worklog/internal/models"
	"github.com/starford/worklog/internal/render"
)

// Service coordinates content queries and rendering. Pages are rendered into
// a buffer so a failing query never produces a partial page.
type Service struct {
	src      content.Source
	renderer *render.Renderer
}

// NewService creates a page service.
func NewService(src content.Source, renderer *render.Renderer) *Service {
	return &Service{src: src, renderer: renderer}
}

// Source returns the content source backing the pages.
func (s *Service) Source() content.Source { return s.src }

// Home renders the landing page.
func (s *Service) Home() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.renderer.Home(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Section renders the listing of raw, optionally filtered by tag. An unknown
// section yields apperr.ErrNotFound.
func (s *Service) Section(raw, tag string) ([]byte, error) {
	section, ok := models.ParseSection(raw)
	if !ok {
		return nil, fmt.Errorf("pages: section %q: %w", raw, apperr.ErrNotFound)
	}
	tags, err := s.src.ListTags(section)
	if err != nil {
		return nil, err
	}

	var posts []models.Post
	if tag != "" {
		posts, err = s.src.ListPostsByTag(section, tag)
	} else {
		posts, err = s.src.ListPosts(section)
	}
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := s.renderer.Section(&buf, section, tags, posts, tag); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Post renders one document. Unknown sections and slugs yield
// apperr.ErrNotFound.
func (s *Service) Post(raw string, slugParts []string) ([]byte, error) {
	section, ok := models.ParseSection(raw)
	if !ok {
		return nil, fmt.Errorf("pages: section %q: %w", raw, apperr.ErrNotFound)
	}
	doc, err := s.src.GetPost(section, slugParts)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := s.renderer.Post(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
