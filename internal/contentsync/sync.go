// Package contentsync replaces the local content tree with the content/
// directory of a GitHub repository tarball.
package contentsync

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"

	"github.com/starford/worklog/internal/storage"
)

// Errors returned by Sync.
var (
	ErrNoContent         = errors.New("contentsync: no token and no local content")
	ErrMissingRepo       = errors.New("contentsync: owner and repo are required")
	ErrContentDirMissing = errors.New("contentsync: archive has no content directory")
)

const (
	// DefaultAPIBaseURL is the public GitHub REST endpoint.
	DefaultAPIBaseURL = "https://api.github.com"
	// DefaultRef is used when no ref is configured.
	DefaultRef = "main"

	contentDir = "content"
	stageExt   = ".sync-tmp"
	userAgent  = "worklog-site"
	apiVersion = "2022-11-28"
)

// Config selects the repository to pull content from.
type Config struct {
	APIBaseURL string
	Owner      string
	Repo       string
	Ref        string
	Token      string
	Timeout    time.Duration
}

// Syncer downloads a repository tarball and installs its content directory.
type Syncer struct {
	cfg    Config
	fs     afero.Fs
	dest   string
	client *resty.Client
	logger *slog.Logger
}

// New creates a Syncer writing to dest on fsys.
func New(cfg Config, fsys afero.Fs, dest string, logger *slog.Logger) *Syncer {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	if cfg.Ref == "" {
		cfg.Ref = DefaultRef
	}
	if logger == nil {
		logger = slog.Default()
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.APIBaseURL, "/")).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/vnd.github+json").
		SetHeader("X-GitHub-Api-Version", apiVersion)
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}
	return &Syncer{cfg: cfg, fs: fsys, dest: dest, client: client, logger: logger}
}

// Sync fetches the configured ref and replaces the destination tree. Without
// a token an existing local tree is kept as is.
func (s *Syncer) Sync(ctx context.Context) error {
	if s.cfg.Token == "" {
		ok, err := s.hasLocalContent()
		if err != nil {
			return err
		}
		if !ok {
			return ErrNoContent
		}
		s.logger.Info("content token not set, using local content", slog.String("dest", s.dest))
		return nil
	}
	if s.cfg.Owner == "" || s.cfg.Repo == "" {
		return ErrMissingRepo
	}

	s.logger.Info("fetching content",
		slog.String("owner", s.cfg.Owner),
		slog.String("repo", s.cfg.Repo),
		slog.String("ref", s.cfg.Ref))

	resp, err := s.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetPathParams(map[string]string{
			"owner": s.cfg.Owner,
			"repo":  s.cfg.Repo,
			"ref":   s.cfg.Ref,
		}).
		Get("/repos/{owner}/{repo}/tarball/{ref}")
	if err != nil {
		return fmt.Errorf("contentsync: download: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() || resp.StatusCode() >= 300 {
		text, _ := io.ReadAll(io.LimitReader(body, 64<<10))
		return fmt.Errorf("contentsync: download failed: %s: %s", resp.Status(), strings.TrimSpace(string(text)))
	}

	staging := s.dest + stageExt
	if err := s.fs.RemoveAll(staging); err != nil {
		return fmt.Errorf("contentsync: clear staging: %w", err)
	}
	defer func() { _ = s.fs.RemoveAll(staging) }()

	n, err := s.extract(body, staging)
	if err != nil {
		return err
	}
	if err := s.install(staging); err != nil {
		return err
	}
	s.logger.Info("content synced", slog.String("dest", s.dest), slog.Int("files", n))
	return nil
}

func (s *Syncer) hasLocalContent() (bool, error) {
	store, err := storage.NewFS(s.fs, s.dest)
	if err != nil {
		return false, err
	}
	files, err := store.List("")
	if err != nil {
		return false, err
	}
	return len(files) > 0, nil
}

// extract writes every regular file below <root>/content/ of the gzipped
// tarball into staging and returns the number of files written.
func (s *Syncer) extract(r io.Reader, staging string) (int, error) {
	if err := s.fs.MkdirAll(staging, 0o755); err != nil {
		return 0, fmt.Errorf("contentsync: mkdir staging: %w", err)
	}
	store, err := storage.NewFS(s.fs, staging)
	if err != nil {
		return 0, err
	}

	zr, err := gzip.NewReader(r)
	if err != nil {
		return 0, fmt.Errorf("contentsync: gunzip: %w", err)
	}
	defer zr.Close()

	var (
		root  string
		found bool
		count int
	)
	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("contentsync: read archive: %w", err)
		}
		if hdr.Typeflag != tar.TypeDir && hdr.Typeflag != tar.TypeReg {
			continue
		}

		top, rest, nested := strings.Cut(strings.TrimPrefix(path.Clean(hdr.Name), "./"), "/")
		if top == "" || strings.HasPrefix(top, ".") || (!nested && hdr.Typeflag != tar.TypeDir) {
			continue
		}
		if root == "" {
			root = top
		}
		if top != root {
			continue
		}

		rel, ok := underContent(rest)
		if !ok {
			continue
		}
		found = true
		if hdr.Typeflag != tar.TypeReg || rel == "" {
			continue
		}

		data, err := io.ReadAll(tr)
		if err != nil {
			return 0, fmt.Errorf("contentsync: read %s: %w", hdr.Name, err)
		}
		if err := store.Write(rel, data); err != nil {
			return 0, fmt.Errorf("contentsync: stage %s: %w", hdr.Name, err)
		}
		count++
	}
	if !found {
		return 0, ErrContentDirMissing
	}
	return count, nil
}

func underContent(rest string) (string, bool) {
	if rest == contentDir {
		return "", true
	}
	rel, ok := strings.CutPrefix(rest, contentDir+"/")
	return rel, ok
}

// install replaces the destination with the staged tree.
func (s *Syncer) install(staging string) error {
	if err := s.fs.RemoveAll(s.dest); err != nil {
		return fmt.Errorf("contentsync: remove %s: %w", s.dest, err)
	}
	err := afero.Walk(s.fs, staging, func(p string, info fs.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(staging, p)
		if err != nil {
			return err
		}
		target := filepath.Join(s.dest, rel)
		if info.IsDir() {
			return s.fs.MkdirAll(target, 0o755)
		}
		data, err := afero.ReadFile(s.fs, p)
		if err != nil {
			return err
		}
		return afero.WriteFile(s.fs, target, data, 0o644)
	})
	if err != nil {
		return fmt.Errorf("contentsync: install: %w", err)
	}
	return nil
}
