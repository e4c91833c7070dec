package board

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 300 * time.Millisecond

// FeedWatcher calls onChange once a burst of writes to a local feed file
// has settled. It watches the parent directory so editors that replace the
// file by rename are still seen.
type FeedWatcher struct {
	path     string
	debounce time.Duration
	onChange func()
	log      *zap.Logger
}

func NewFeedWatcher(path string, onChange func(), log *zap.Logger) *FeedWatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &FeedWatcher{
		path:     filepath.Clean(path),
		debounce: defaultDebounce,
		onChange: onChange,
		log:      log,
	}
}

// Run blocks until ctx is done or the underlying watcher fails to start.
func (w *FeedWatcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.log.Info("watching feed", zap.String("path", w.path))

	tick := time.NewTicker(w.debounce / 3)
	defer tick.Stop()
	var lastEvent time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			w.log.Debug("feed event", zap.String("op", ev.Op.String()))
			lastEvent = time.Now()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("feed watcher error", zap.Error(err))
		case <-tick.C:
			if lastEvent.IsZero() || time.Since(lastEvent) < w.debounce {
				continue
			}
			lastEvent = time.Time{}
			w.onChange()
		}
	}
}
