package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceDelay = 500 * time.Millisecond

// Watch reloads path after it changes and passes every configuration that loads and
// validates to fn. Bursts of events within the debounce delay cause one reload. Watch
// blocks until ctx is done.
func Watch(ctx context.Context, path string, fn func(*Config)) error {
	return watch(ctx, path, debounceDelay, fn)
}

func watch(ctx context.Context, path string, delay time.Duration, fn func(*Config)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	// Editors replace files on save, so watch the directory.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	reload := func() {
		cfg, err := Load(abs)
		if err == nil {
			err = cfg.Validate()
		}
		if err != nil {
			slog.Error("Config reload rejected", slog.String("file", abs), slog.String("err", err.Error()))
			return
		}
		slog.Info("Config reloaded", slog.String("file", abs))
		fn(cfg)
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	debounce := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(delay, reload)
	}
	defer func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				debounce()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("Watcher error", slog.String("err", err.Error()))
		case <-ctx.Done():
			return nil
		}
	}
}
