package hook

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay groups bursts of file events into one rediscovery.
const reloadDelay = 250 * time.Millisecond

// Watch rediscovers hooks whenever the hook directory or one of its hook
// directories changes. It blocks until ctx is done.
func (m *Manager) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(m.dir); err != nil {
		return err
	}
	m.watchSubdirs(watcher)

	var reload <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watcher.Add(event.Name); err != nil {
						log.Printf("Failed to watch %s: %v", event.Name, err)
					}
				}
			}
			if reload == nil {
				reload = time.After(reloadDelay)
			}

		case <-reload:
			reload = nil
			if err := m.Discover(); err != nil {
				log.Printf("Failed to reload hooks: %v", err)
				continue
			}
			log.Printf("Reloaded %d hooks from %s", len(m.List()), m.dir)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Hook watcher error: %v", err)
		}
	}
}

func (m *Manager) watchSubdirs(watcher *fsnotify.Watcher) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(m.dir, entry.Name())
		if err := watcher.Add(path); err != nil {
			log.Printf("Failed to watch %s: %v", path, err)
		}
	}
}
