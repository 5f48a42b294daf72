package docstore

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeCallback is invoked after the document file changes on disk. The
// store's own writes cannot be distinguished from external edits, so the
// callback fires for both; consumers treat it as a reload signal.
type ChangeCallback func()

// Watch starts an fsnotify watcher on the document's directory and invokes cb
// (debounced) whenever the document file is written, created, or renamed.
// It blocks until ctx is cancelled.
//
// The directory rather than the file is watched because atomic writes replace
// the file via rename, which would drop a file-level watch.
func Watch(ctx context.Context, store *Store, logger *slog.Logger, cb ChangeCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(store.Path())
	if err := w.Add(dir); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("document", store.Path()))

	// Debounce bursts: an atomic write emits create+rename in quick
	// succession and editors often write twice.
	var timer *time.Timer
	var fire <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(200 * time.Millisecond)
			fire = timer.C
		} else {
			timer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			if cb != nil {
				cb()
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != store.Path() {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				schedule()
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher: error", slog.String("error", err.Error()))
		}
	}
}
