// Package build renders the whole site into a directory of static files.
package build

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/starford/worklog/internal/content"
	"github.com/starford/worklog/internal/pages"
	"github.com/starford/worklog/internal/render"
)

// Builder writes every route of the site below an output directory. Pages
// are addressed as directories holding an index.html.
type Builder struct {
	svc    *pages.Service
	fs     afero.Fs
	outDir string
	min    *render.Minifier
	logger *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithMinify minifies every written page.
func WithMinify(m *render.Minifier) Option {
	return func(b *Builder) { b.min = m }
}

// WithLogger sets the logger used for progress output.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// New creates a Builder. svc must render with render.StaticLinks so that
// links resolve against the written layout.
func New(svc *pages.Service, fsys afero.Fs, outDir string, opts ...Option) *Builder {
	b := &Builder{svc: svc, fs: fsys, outDir: outDir, logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Stats summarises a build.
type Stats struct {
	Sections int
	Tags     int
	Posts    int
}

// Pages returns the total number of written pages, the home page included.
func (s Stats) Pages() int { return 1 + s.Sections + s.Tags + s.Posts }

// Build renders the site. The output directory is cleared first; the first
// load or render error aborts the build.
func (b *Builder) Build(ctx context.Context) (Stats, error) {
	var stats Stats

	routes, err := content.Routes(b.svc.Source())
	if err != nil {
		return stats, fmt.Errorf("build: enumerate routes: %w", err)
	}
	if err := b.fs.RemoveAll(b.outDir); err != nil {
		return stats, fmt.Errorf("build: clear %s: %w", b.outDir, err)
	}

	home, err := b.svc.Home()
	if err != nil {
		return stats, fmt.Errorf("build: home: %w", err)
	}
	if err := b.write("", home); err != nil {
		return stats, err
	}

	for _, route := range routes {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		section := string(route.Section)

		if len(route.SlugParts) > 0 {
			page, err := b.svc.Post(section, route.SlugParts)
			if err != nil {
				return stats, fmt.Errorf("build: %s: %w", route.Path(), err)
			}
			if err := b.write(route.Path(), page); err != nil {
				return stats, err
			}
			stats.Posts++
			continue
		}

		page, err := b.svc.Section(section, "")
		if err != nil {
			return stats, fmt.Errorf("build: %s: %w", route.Path(), err)
		}
		if err := b.write(route.Path(), page); err != nil {
			return stats, err
		}
		stats.Sections++

		tags, err := b.svc.Source().ListTags(route.Section)
		if err != nil {
			return stats, fmt.Errorf("build: %s tags: %w", section, err)
		}
		for _, t := range tags {
			page, err := b.svc.Section(section, t.Tag)
			if err != nil {
				return stats, fmt.Errorf("build: %s tag %q: %w", section, t.Tag, err)
			}
			if err := b.write(path.Join("/", section, render.TagDir, render.TagSegment(t.Tag)), page); err != nil {
				return stats, err
			}
			stats.Tags++
		}
	}

	b.logger.Info("site built",
		slog.String("output", b.outDir),
		slog.Int("pages", stats.Pages()),
		slog.Int("posts", stats.Posts),
		slog.Int("tags", stats.Tags))
	return stats, nil
}

func (b *Builder) write(urlPath string, page []byte) error {
	if b.min != nil {
		out, err := b.min.HTML(page)
		if err != nil {
			return fmt.Errorf("build: minify %s: %w", urlPath, err)
		}
		page = out
	}
	dir := filepath.Join(b.outDir, filepath.FromSlash(urlPath))
	if err := b.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("build: mkdir %s: %w", dir, err)
	}
	target := filepath.Join(dir, "index.html")
	if err := afero.WriteFile(b.fs, target, page, 0o644); err != nil {
		return fmt.Errorf("build: write %s: %w", target, err)
	}
	return nil
}
