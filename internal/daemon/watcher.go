// SPDX-License-Identifier: MIT

package daemon

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const (
	// catalogDebounce coalesces the burst of filesystem events an editor
	// emits for a single save.
	catalogDebounce = 500 * time.Millisecond

	reexportTimeout = time.Minute
)

// catalogWatcher republishes the dataset when a curated catalog file
// (tracks, series or watchlist) changes on disk.
type catalogWatcher struct {
	logger   zerolog.Logger
	runner   Runner
	paths    map[string]struct{}
	debounce time.Duration
	watcher  *fsnotify.Watcher
}

func newCatalogWatcher(logger zerolog.Logger, runner Runner, files ...string) *catalogWatcher {
	paths := make(map[string]struct{}, len(files))
	for _, f := range files {
		if f == "" {
			continue
		}
		if abs, err := filepath.Abs(f); err == nil {
			paths[filepath.Clean(abs)] = struct{}{}
		}
	}
	return &catalogWatcher{
		logger:   logger,
		runner:   runner,
		paths:    paths,
		debounce: catalogDebounce,
	}
}

// start begins watching the parent directories of the catalog files.
// Editors replace files on save, so watching the directory survives the
// rename cycle that a direct file watch would lose.
func (w *catalogWatcher) start(ctx context.Context) error {
	if len(w.paths) == 0 {
		return errors.New("no catalog files configured")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	dirs := make(map[string]struct{}, len(w.paths))
	for p := range w.paths {
		dirs[filepath.Dir(p)] = struct{}{}
	}

	watched := 0
	for d := range dirs {
		if err := watcher.Add(d); err != nil {
			w.logger.Warn().
				Err(err).
				Str("dir", d).
				Msg("cannot watch catalog directory")
			continue
		}
		watched++
	}
	if watched == 0 {
		_ = watcher.Close()
		return errors.New("no catalog directories watchable")
	}

	w.watcher = watcher
	w.logger.Info().
		Str("event", "catalog.watcher_started").
		Int("files", len(w.paths)).
		Int("dirs", watched).
		Msg("watching catalog files for changes")

	go w.loop(ctx)
	return nil
}

func (w *catalogWatcher) loop(ctx context.Context) {
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		_ = w.watcher.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().
				Str("event", "catalog.watcher_stopped").
				Msg("catalog watcher stopped")
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if _, tracked := w.paths[filepath.Clean(event.Name)]; !tracked {
				continue
			}
			w.logger.Debug().
				Str("event", "catalog.file_changed").
				Str("path", event.Name).
				Str("op", event.Op.String()).
				Msg("catalog file changed")

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, w.reexport)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error().
				Err(err).
				Str("event", "catalog.watcher_error").
				Msg("catalog watcher error")
		}
	}
}

func (w *catalogWatcher) reexport() {
	ctx, cancel := context.WithTimeout(context.Background(), reexportTimeout)
	defer cancel()

	start := time.Now()
	st, err := w.runner.Reexport(ctx)
	if err != nil {
		w.logger.Error().
			Err(err).
			Str("event", "catalog.reexport_failed").
			Dur("elapsed", time.Since(start)).
			Msg("reexport after catalog change failed")
		return
	}
	w.logger.Info().
		Str("event", "catalog.reexport_complete").
		Str("job_id", st.JobID).
		Int("total", st.Total).
		Dur("elapsed", time.Since(start)).
		Msg("dataset reexported after catalog change")
}
