package landmark

import (
	"context"
	"path/filepath"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/kneelab/femurtrack/logging"
)

// ReloadDelay is how long Watch waits for writes to a catalog to settle before reloading it.
const ReloadDelay = 100 * time.Millisecond

// Watch reloads the catalog at path into holder whenever the file is written or replaced,
// until ctx is done. The directory is watched rather than the file so that editors which save
// by renaming a temporary file are picked up. A burst of writes causes one reload.
func Watch(ctx context.Context, path string, holder *Holder, logger logging.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating catalog watcher")
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			logger.Debugw("closing catalog watcher", "error", err)
		}
	}()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return errors.Wrapf(err, "watching %q", filepath.Dir(abs))
	}

	debounced := debounce.New(ReloadDelay)
	reload := func() {
		if ctx.Err() != nil {
			return
		}
		result := holder.Reload(path, logger)
		logger.Infow("landmark catalog reloaded", "path", path, "state", result.State.String(), "landmarks", result.Catalog.Len())
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			debounced(reload)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("catalog watcher error", "error", err)
		}
	}
}
