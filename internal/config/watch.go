package config

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"ticksched/internal/logging"
)

const debounceDelay = 250 * time.Millisecond

// Watch reloads path whenever it changes and hands every valid, changed config
// to fn. It watches the directory so editors that replace the file are seen.
// Invalid files are logged and skipped. Watch returns when ctx is done.
func Watch(ctx context.Context, path string, current Config, log logging.Logger, fn func(Config)) error {
	dir := filepath.Dir(path)
	file := filepath.Base(path)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}

	var (
		mu    sync.Mutex
		last  = current
		timer *time.Timer
	)

	reload := func() {
		cfg, err := Load(path)
		if err != nil {
			log.Warn("config reload rejected", logging.String("path", path), logging.Err(err))
			return
		}

		mu.Lock()
		unchanged := cfg == last
		if !unchanged {
			last = cfg
		}
		mu.Unlock()

		if unchanged {
			log.Debug("config unchanged; skipping", logging.String("path", path))
			return
		}
		if ctx.Err() != nil {
			return
		}

		log.Info("config reloaded", logging.String("path", path))
		fn(cfg)
	}

	debounce := func() {
		mu.Lock()
		defer mu.Unlock()

		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounceDelay, reload)
	}

	log.Debug("config watcher started", logging.String("dir", dir), logging.String("file", file))

	for {
		select {
		case <-ctx.Done():
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			mu.Unlock()
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.EqualFold(filepath.Base(ev.Name), file) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				debounce()
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("config watch error", logging.String("dir", dir), logging.Err(err))
		}
	}
}
