// Package testutil provides shared test helpers for building content trees.
package testutil

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/starford/worklog/internal/storage"
)

// Root is the content root used by in-memory trees.
const Root = "/content"

// Doc renders a document with a YAML header. Empty fields are omitted.
func Doc(title, date string, tags ...string) string {
	var b strings.Builder
	b.WriteString("---\n")
	if title != "" {
		fmt.Fprintf(&b, "title: %q\n", title)
	}
	if date != "" {
		fmt.Fprintf(&b, "date: %q\n", date)
	}
	if len(tags) > 0 {
		b.WriteString("tags:\n")
		for _, t := range tags {
			fmt.Fprintf(&b, "  - %q\n", t)
		}
	}
	b.WriteString("---\n")
	fmt.Fprintf(&b, "Body of %s.\n", title)
	return b.String()
}

// MemContent creates an in-memory content tree from root-relative paths
// (e.g. "til/go/slices.md") and returns the file system and a provider.
func MemContent(t *testing.T, files map[string]string) (afero.Fs, *storage.FS) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for rel, body := range files {
		p := filepath.Join(Root, filepath.FromSlash(rel))
		if err := fsys.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", rel, err)
		}
		if err := afero.WriteFile(fsys, p, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	store, err := storage.NewFS(fsys, Root)
	if err != nil {
		t.Fatal(err)
	}
	return fsys, store
}

// DiskContent creates a content tree in a temporary directory and returns
// its path and a provider.
func DiskContent(t *testing.T, files map[string]string) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(afero.NewOsFs(), dir)
	if err != nil {
		t.Fatal(err)
	}
	for rel, body := range files {
		if err := store.Write(rel, []byte(body)); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	return dir, store
}
