package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

func tempContent(t *testing.T) *FS {
	t.Helper()
	s, err := NewFS(afero.NewOsFs(), t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return s
}

func TestWriteAndRead(t *testing.T) {
	s := tempContent(t)
	content := []byte("---\ntitle: Hello\n---\nWorld\n")
	if err := s.Write("til/note.md", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("til/note.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestExists(t *testing.T) {
	s := tempContent(t)
	_ = s.Write("notes/a.md", []byte("a"))

	if !s.Exists("notes/a.md") {
		t.Error("expected notes/a.md to exist")
	}
	if s.Exists("notes/b.md") {
		t.Error("notes/b.md should not exist")
	}
	if s.Exists("notes") {
		t.Error("directory should not count as a file")
	}
	if s.Exists("notes/a.md/child.md") {
		t.Error("path under a file should not exist")
	}
}

func TestList(t *testing.T) {
	s := tempContent(t)
	_ = s.Write("til/b.md", []byte("b"))
	_ = s.Write("til/go/a.mdx", []byte("a"))
	_ = s.Write("til/readme.txt", []byte("not md"))
	_ = s.Write("notes/c.md", []byte("c"))

	items, err := s.List("til")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"til/b.md", "til/go/a.mdx"}
	if len(items) != len(want) {
		t.Fatalf("items = %v, want %v", items, want)
	}
	for i := range want {
		if items[i] != want[i] {
			t.Errorf("items[%d] = %q, want %q", i, items[i], want[i])
		}
	}
}

func TestList_MissingDir(t *testing.T) {
	s := tempContent(t)
	items, err := s.List("recipes")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected no items, got %v", items)
	}
}

func TestList_MemFs(t *testing.T) {
	fsys := afero.NewMemMapFs()
	_ = fsys.MkdirAll("/content/workouts", 0o755)
	_ = afero.WriteFile(fsys, "/content/workouts/legs.md", []byte("x"), 0o644)
	s, err := NewFS(fsys, "/content")
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	items, err := s.List("workouts")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0] != "workouts/legs.md" {
		t.Errorf("items = %v", items)
	}
}

func TestRemoveAll(t *testing.T) {
	s := tempContent(t)
	_ = s.Write("til/x/y.md", []byte("y"))
	if err := s.RemoveAll("til"); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}
	if s.Exists("til/x/y.md") {
		t.Error("file should be gone")
	}
	if err := s.RemoveAll("til"); err != nil {
		t.Errorf("second RemoveAll should be a no-op: %v", err)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempContent(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.md",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
		if s.Exists(p) {
			t.Errorf("Exists(%q) should be false", p)
		}
	}
}

func TestAtomicWriteNoLeftovers(t *testing.T) {
	s := tempContent(t)
	_ = s.Write("atomic.md", []byte("original content"))

	updated := []byte("updated content")
	if err := s.Write("atomic.md", updated); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("atomic.md")
	if string(got) != string(updated) {
		t.Errorf("expected updated content, got %q", got)
	}

	matches, _ := filepath.Glob(filepath.Join(s.Root(), ".worklog-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "worklog-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	if _, err := NewFS(afero.NewOsFs(), f.Name()); err == nil {
		t.Error("expected error when root is a file")
	}
}

func TestIsMarkdown(t *testing.T) {
	for name, want := range map[string]bool{
		"a.md":      true,
		"a.mdx":     true,
		"a.txt":     false,
		"a.md.bak":  false,
		"markdown":  false,
		"notes.MDX": false,
	} {
		if got := IsMarkdown(name); got != want {
			t.Errorf("IsMarkdown(%q) = %v, want %v", name, got, want)
		}
	}
}
