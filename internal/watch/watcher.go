// Package watch reports changes to markdown documents under a content root.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/worklog/internal/models"
	"github.com/starford/worklog/internal/storage"
)

// Event kinds.
const (
	KindCreated = "created"
	KindUpdated = "updated"
	KindDeleted = "deleted"
)

// Event describes one change to a document.
type Event struct {
	Kind    string
	Section models.Section
	// Path is root-relative and slash separated, e.g. "til/go/slices.md".
	Path string
}

// Callback is called for every reported change.
type Callback func(Event)

// Watch starts an fsnotify watcher on root and reports document changes
// until ctx is cancelled. Directories created at runtime are added to the
// watch list and the documents already inside them are reported as created.
// Files outside a known section are ignored.
func Watch(ctx context.Context, root string, logger *slog.Logger, cb Callback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	emit := func(kind, absPath string) {
		ev, ok := newEvent(root, kind, absPath)
		if !ok {
			return
		}
		logger.Debug("watcher: change",
			slog.String("path", ev.Path),
			slog.String("op", ev.Kind))
		if cb != nil {
			cb(ev)
		}
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					_ = filepath.WalkDir(ev.Name, func(p string, d fs.DirEntry, err error) error {
						if err == nil && !d.IsDir() {
							emit(KindCreated, p)
						}
						return nil
					})
					continue
				}
			}

			switch {
			case ev.Op&fsnotify.Create != 0:
				emit(KindCreated, ev.Name)
			case ev.Op&fsnotify.Write != 0:
				emit(KindUpdated, ev.Name)
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				// Rename fires on the old path only; the new path arrives
				// as a separate Create.
				emit(KindDeleted, ev.Name)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func newEvent(root, kind, absPath string) (Event, bool) {
	if !storage.IsMarkdown(absPath) {
		return Event{}, false
	}
	rel, err := filepath.Rel(root, absPath)
	if err != nil {
		return Event{}, false
	}
	rel = filepath.ToSlash(rel)
	first, _, nested := strings.Cut(rel, "/")
	if !nested {
		return Event{}, false
	}
	section, ok := models.ParseSection(first)
	if !ok {
		return Event{}, false
	}
	return Event{Kind: kind, Section: section, Path: rel}, true
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
