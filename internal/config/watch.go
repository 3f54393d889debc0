package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"voxbatch/internal/logging"
)

// Watch reloads path whenever it is written or recreated and passes the
// validated settings to onChange. Invalid files are logged and skipped.
// The watcher stops when ctx is cancelled.
func Watch(ctx context.Context, path string, onChange func(Settings)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config watcher: %w", err)
	}
	// Editors often replace the file, so watch the directory.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("config watcher: %w", err)
	}

	target := filepath.Clean(path)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				s, err := Load(path)
				if err != nil {
					logging.Warnf("config reload ignored: %v", err)
					continue
				}
				logging.Infof("config reloaded from %s", path)
				onChange(s)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.Errorf("config watcher: %v", err)
			}
		}
	}()
	return nil
}
