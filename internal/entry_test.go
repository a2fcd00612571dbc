package internal

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/starford/worklog/internal/apperr"
	"github.com/starford/worklog/internal/content"
	"github.com/starford/worklog/internal/contentsync"
)

func testApp(t *testing.T, files map[string]string) (afero.Fs, *Config) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for name, body := range files {
		if err := afero.WriteFile(fsys, "/content/"+name, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	cfg := NewDefaultConfig()
	cfg.Content.Root = "/content"
	cfg.Build.OutputDir = "/public"
	return fsys, cfg
}

const slicesDoc = "---\ntitle: Slices\ndate: 2024-06-01\ntags: [go]\n---\nbody\n"

func TestConfigRequired(t *testing.T) {
	for name, fn := range map[string]func(context.Context, ...Option) error{
		"run":    Run,
		"build":  Build,
		"routes": Routes,
		"sync":   Sync,
		"mcp":    ServeMCP,
	} {
		if err := fn(context.Background()); err == nil {
			t.Errorf("%s without config should fail", name)
		}
	}
}

func TestSource_CacheLayer(t *testing.T) {
	fsys, cfg := testApp(t, nil)
	app := newApplication([]Option{WithConfig(cfg), WithFs(fsys)})

	if _, cache, err := app.source(nil, false); err != nil || cache != nil {
		t.Errorf("uncached source: cache = %v, err = %v", cache, err)
	}
	src, cache, err := app.source(nil, true)
	if err != nil || cache == nil {
		t.Fatalf("cached source: cache = %v, err = %v", cache, err)
	}
	if src != content.Source(cache) {
		t.Error("cached source should be the cache itself")
	}
}

func TestRoutesCommand(t *testing.T) {
	fsys, cfg := testApp(t, map[string]string{"til/go/slices.md": slicesDoc})
	var out bytes.Buffer
	err := Routes(context.Background(), WithConfig(cfg), WithFs(fsys), WithOutput(&out), WithLogOutput(io.Discard))
	if err != nil {
		t.Fatalf("Routes: %v", err)
	}
	want := "/til\n/til/go/slices\n/notes\n/recipes\n/workouts\n"
	if out.String() != want {
		t.Errorf("routes = %q, want %q", out.String(), want)
	}
}

func TestRoutesCommand_LoadError(t *testing.T) {
	fsys, cfg := testApp(t, map[string]string{"notes/bad.md": "no header"})
	err := Routes(context.Background(), WithConfig(cfg), WithFs(fsys), WithOutput(io.Discard), WithLogOutput(io.Discard))
	if !errors.Is(err, apperr.ErrMissingTitle) {
		t.Errorf("err = %v, want ErrMissingTitle", err)
	}
}

func TestBuildCommand(t *testing.T) {
	fsys, cfg := testApp(t, map[string]string{"til/go/slices.md": slicesDoc})
	err := Build(context.Background(), WithConfig(cfg), WithFs(fsys), WithLogOutput(io.Discard))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, name := range []string{
		"/public/index.html",
		"/public/til/go/slices/index.html",
		"/public/til/tags/go/index.html",
	} {
		if ok, _ := afero.Exists(fsys, name); !ok {
			t.Errorf("missing %s", name)
		}
	}
	page, _ := afero.ReadFile(fsys, "/public/til/index.html")
	if strings.Contains(string(page), "EventSource") {
		t.Error("static pages should not carry the live reload script")
	}
}

func TestSyncCommand_LocalContent(t *testing.T) {
	fsys, cfg := testApp(t, map[string]string{"til/go/slices.md": slicesDoc})
	if err := Sync(context.Background(), WithConfig(cfg), WithFs(fsys), WithLogOutput(io.Discard)); err != nil {
		t.Errorf("Sync: %v", err)
	}

	empty, cfg := testApp(t, nil)
	err := Sync(context.Background(), WithConfig(cfg), WithFs(empty), WithLogOutput(io.Discard))
	if !errors.Is(err, contentsync.ErrNoContent) {
		t.Errorf("err = %v, want ErrNoContent", err)
	}
}
