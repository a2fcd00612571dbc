// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/worklog/internal/build"
	"github.com/starford/worklog/internal/content"
	"github.com/starford/worklog/internal/contentsync"
	"github.com/starford/worklog/internal/mcpserver"
	"github.com/starford/worklog/internal/metrics"
	"github.com/starford/worklog/internal/pages"
	"github.com/starford/worklog/internal/render"
	"github.com/starford/worklog/internal/site"
	"github.com/starford/worklog/internal/sse"
	"github.com/starford/worklog/internal/storage"
	"github.com/starford/worklog/internal/watch"
)

// Version is reported by the MCP server.
const Version = "1.0.0"

// setup validates the options and installs the structured JSON logger.
func setup(opts []Option) (*application, *slog.Logger, error) {
	app := newApplication(opts)
	if app.config == nil {
		return nil, nil, fmt.Errorf("config is required")
	}

	logger := slog.New(slog.NewJSONHandler(app.logOut, &slog.HandlerOptions{
		Level: app.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return app, logger, nil
}

// source opens the content tree and layers instrumentation and, when
// cached, the query cache on top of the index. Long-running callers may only
// cache when something invalidates the cache on change.
func (a *application) source(obs content.Observer, cached bool) (content.Source, *content.Cache, error) {
	store, err := storage.NewFS(a.fs, a.config.Content.Root)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}
	src := content.Instrument(content.NewIndex(store), obs)
	if !cached {
		return src, nil, nil
	}
	cache := content.NewCache(src)
	return cache, cache, nil
}

func (a *application) site(liveReload bool) render.Site {
	return render.Site{
		Title:      a.config.App.Site.Title,
		Owner:      a.config.App.Site.Owner,
		LiveReload: liveReload,
	}
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, logger, err := setup(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("content_root", cfg.Content.Root),
		slog.Bool("cache", cfg.Content.Cache),
		slog.Bool("watch", cfg.Content.Watch),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure content directory exists so it can be watched.
	if err := app.fs.MkdirAll(cfg.Content.Root, 0o755); err != nil {
		return fmt.Errorf("create content dir: %w", err)
	}

	recorder := metrics.NewPrometheusRecorder(nil)
	if cfg.Content.Cache && !cfg.Content.ServeCached() {
		logger.Warn("content cache disabled: it needs the watcher to invalidate it")
	}
	src, cache, err := app.source(recorder, cfg.Content.ServeCached())
	if err != nil {
		return err
	}

	renderer, err := render.New(app.site(cfg.Content.Watch), render.ServerLinks{})
	if err != nil {
		return fmt.Errorf("init renderer: %w", err)
	}

	siteOpts := site.Options{Metrics: recorder.Handler()}
	var broker *sse.Broker
	if cfg.Content.Watch {
		broker = sse.NewBroker(time.Second)
		defer broker.Close()
		siteOpts.Events = broker
	}

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Mount("/", site.NewRouter(pages.NewService(src, renderer), siteOpts))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher with cache invalidation and SSE callback.
	if cfg.Content.Watch {
		g.Go(func() error {
			return watch.Watch(gCtx, cfg.Content.Root, logger, func(ev watch.Event) {
				if cache != nil {
					cache.Invalidate()
				}
				broker.PublishContentEvent(ev.Kind, ev.Section.String(), ev.Path)
			})
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// Open event streams never go idle; closing the broker ends them.
		if broker != nil {
			broker.Close()
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group once the server has been shut down so the
// watcher stops too.
var errShutdown = errors.New("shutdown")

// Build renders the site into the configured output directory.
func Build(ctx context.Context, opts ...Option) error {
	app, logger, err := setup(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	src, _, err := app.source(nil, cfg.Content.Cache)
	if err != nil {
		return err
	}
	renderer, err := render.New(app.site(false), render.StaticLinks{})
	if err != nil {
		return fmt.Errorf("init renderer: %w", err)
	}

	buildOpts := []build.Option{build.WithLogger(logger)}
	if cfg.Build.Minify {
		buildOpts = append(buildOpts, build.WithMinify(render.NewMinifier()))
	}
	b := build.New(pages.NewService(src, renderer), app.fs, cfg.Build.OutputDir, buildOpts...)
	if _, err := b.Build(ctx); err != nil {
		return err
	}
	return nil
}

// Routes prints the URL path of every section and post, one per line.
func Routes(_ context.Context, opts ...Option) error {
	app, _, err := setup(opts)
	if err != nil {
		return err
	}
	src, _, err := app.source(nil, app.config.Content.Cache)
	if err != nil {
		return err
	}
	routes, err := content.Routes(src)
	if err != nil {
		return err
	}
	for _, r := range routes {
		if _, err := fmt.Fprintln(app.stdout, r.Path()); err != nil {
			return err
		}
	}
	return nil
}

// Sync replaces the content tree with the configured repository's content.
func Sync(ctx context.Context, opts ...Option) error {
	app, logger, err := setup(opts)
	if err != nil {
		return err
	}
	return contentsync.New(app.config.Sync.Syncer(), app.fs, app.config.Content.Root, logger).Sync(ctx)
}

// ServeMCP serves the read-only MCP tools on stdin/stdout.
func ServeMCP(_ context.Context, opts ...Option) error {
	app, logger, err := setup(opts)
	if err != nil {
		return err
	}
	src, _, err := app.source(nil, false)
	if err != nil {
		return err
	}
	logger.Info("MCP server starting", slog.String("content_root", app.config.Content.Root))
	return mcpserver.New(src, Version).ServeStdio()
}
