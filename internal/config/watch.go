package config

import (
	"context"
	"fmt"
	"os"
	"time"
)

// fileStamp identifies one version of a file on disk. Restoring an older
// areas.yaml changes the stamp too, so rollbacks are picked up.
type fileStamp struct {
	modTime time.Time
	size    int64
}

func (s fileStamp) same(o fileStamp) bool {
	return s.size == o.size && s.modTime.Equal(o.modTime)
}

func stampOf(path string) (fileStamp, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{}, err
	}
	return fileStamp{modTime: info.ModTime(), size: info.Size()}, nil
}

type areasWatcher struct {
	path     string
	last     fileStamp
	onUpdate func(*AreasConfig)
}

// reload applies the file if its stamp moved. A file that fails validation
// leaves the previous catalog in place until a later poll loads cleanly.
func (w *areasWatcher) reload() {
	stamp, err := stampOf(w.path)
	if err != nil || stamp.same(w.last) {
		return
	}
	cfg, err := LoadAreasConfig(w.path)
	if err != nil {
		return
	}
	w.last = stamp
	w.onUpdate(cfg)
}

// WatchAreas loads the area catalog at path, hands it to onUpdate, and keeps
// polling every interval until ctx is done. The initial load must succeed.
func WatchAreas(ctx context.Context, path string, interval time.Duration, onUpdate func(*AreasConfig)) error {
	if path == "" {
		path = "configs/areas.yaml"
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if onUpdate == nil {
		onUpdate = func(*AreasConfig) {}
	}

	stamp, err := stampOf(path)
	if err != nil {
		return fmt.Errorf("watch areas: %w", err)
	}
	cfg, err := LoadAreasConfig(path)
	if err != nil {
		return err
	}
	onUpdate(cfg)

	w := &areasWatcher{path: path, last: stamp, onUpdate: onUpdate}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.reload()
			}
		}
	}()
	return nil
}
