package server

import (
	"context"

	"github.com/fsnotify/fsnotify"
)

// watchRoot logs files appearing and disappearing below the served root
// while the server runs. Purely observational, listings are always produced
// from a fresh directory read.
func (s *FileServer) watchRoot(ctx context.Context) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		Logger.Errorf("Failed to create watcher: %v", err)
		return
	}
	defer watcher.Close()

	if err := watcher.Add(s.config.RootDir); err != nil {
		Logger.Errorf("Failed to watch %s: %v", s.config.RootDir, err)
		return
	}

	Logger.Infof("Watching %s for changes", s.config.RootDir)

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			switch {
			case ev.Has(fsnotify.Create):
				Logger.Infof("File appeared: %s", ev.Name)
			case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
				Logger.Infof("File disappeared: %s", ev.Name)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			Logger.Warningf("Watcher error: %v", err)
		}
	}
}
