// Package storage defines the content file-system abstraction.
package storage

import "strings"

// MarkdownExtensions lists the markdown-family extensions in lookup
// precedence order: when both exist for the same slug the first one wins.
var MarkdownExtensions = []string{".mdx", ".md"}

// IsMarkdown reports whether name carries a markdown-family extension.
func IsMarkdown(name string) bool {
	for _, ext := range MarkdownExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// Provider is the interface for content file operations. All paths are
// slash-separated and relative to the provider root.
type Provider interface {
	// List returns every markdown-family file under dir in lexical order.
	// A missing dir yields an empty result.
	List(dir string) ([]string, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Exists reports whether path is an existing regular file.
	Exists(path string) bool
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// RemoveAll deletes path and everything below it.
	RemoveAll(path string) error
}
