package config

import (
	"context"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/i474232898/weather-insights/internal/weather"
)

// WatchLocations monitors path and calls onChange with the reloaded locations
// each time the file is written. It runs until ctx is cancelled.
//
// A reload that fails to parse is logged and the previous list stays active.
// The parent directory is watched so that atomic saves, which replace the
// file, keep being noticed.
func WatchLocations(ctx context.Context, path string, onChange func([]weather.Location)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	path = filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	log.Printf("INFO: config: watching %s for location changes", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			// Editors often save via rename, so Create counts as a write.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			locs, err := LoadLocations(path)
			if err != nil {
				log.Printf("ERROR: config: reload of %s failed, keeping previous locations: %v", path, err)
				continue
			}

			log.Printf("INFO: config: reloaded %d locations from %s", len(locs), path)
			onChange(locs)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("ERROR: config: watcher error: %v", err)
		}
	}
}
