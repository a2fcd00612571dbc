// Package apperr holds sentinel errors shared across layers.
package apperr

import "errors"

var (
	// ErrNotFound marks an expected absent result (unknown section or slug).
	ErrNotFound = errors.New("not found")
	// ErrMissingTitle marks a document whose frontmatter lacks "title".
	ErrMissingTitle = errors.New(`missing required frontmatter "title"`)
)
