// Package content indexes markdown documents stored under per-section
// directories of a content root.
//
// Every query re-reads the file system: an Index holds no state besides its
// storage provider. Caching and instrumentation are layered on top as
// decorators implementing the same Source interface.
package content

import (
	"fmt"

	"github.com/starford/worklog/internal/apperr"
	"github.com/starford/worklog/internal/models"
)

// Source answers listing and lookup queries over the content tree.
type Source interface {
	// ListPosts returns every post in section, newest first.
	ListPosts(section models.Section) ([]models.Post, error)
	// ListTags returns the tag histogram of section, most used first.
	ListTags(section models.Section) ([]models.TagCount, error)
	// ListPostsByTag returns the ListPosts subsequence carrying tag.
	ListPostsByTag(section models.Section, tag string) ([]models.Post, error)
	// GetPost resolves slugParts to a document. A missing document yields an
	// error matching apperr.ErrNotFound.
	GetPost(section models.Section, slugParts []string) (*models.Document, error)
}

// LoadError reports a document that could not be loaded. It aborts the whole
// operation that touched the document.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("content: load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func checkSection(section models.Section) error {
	if !section.Valid() {
		return fmt.Errorf("content: unknown section %q: %w", section, apperr.ErrNotFound)
	}
	return nil
}
