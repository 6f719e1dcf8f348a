package vocabulary

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/dmitrijs2005/vetintake/internal/logging"
)

// Loader reads a vocabulary YAML file and keeps a Normalizer in sync with it.
type Loader struct {
	path string
	norm *Normalizer
	log  logging.Logger
}

// NewLoader binds a file to a normalizer. An empty path means the embedded
// default table is used and WatchAndReload has nothing to watch.
func NewLoader(path string, n *Normalizer, log logging.Logger) *Loader {
	return &Loader{path: path, norm: n, log: log}
}

// Load reads the file (or the embedded default), validates it and installs it.
func (l *Loader) Load() (*Table, error) {
	if l.path == "" {
		t := DefaultTable()
		l.norm.Swap(t)
		return t, nil
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary %q: %w", l.path, err)
	}
	t, err := ParseTable(data)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", l.path, err)
	}
	l.norm.Swap(t)
	return t, nil
}

// WatchAndReload reloads the table whenever the file is written or replaced.
// A file that fails validation is logged and the previous table stays active.
// It blocks until done is closed.
func (l *Loader) WatchAndReload(done <-chan struct{}) error {
	if l.path == "" {
		<-done
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// editors often replace the file, so the directory is watched
	dir := filepath.Dir(l.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch dir %q: %w", dir, err)
	}
	target := filepath.Clean(l.path)
	ctx := context.Background()

	for {
		select {
		case <-done:
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			t, err := l.Load()
			if err != nil {
				l.log.Warn(ctx, "vocabulary reload failed", "path", l.path, "error", err)
				continue
			}
			l.log.Info(ctx, "vocabulary reloaded", "path", l.path, "entries", t.Len())
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}
