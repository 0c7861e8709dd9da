package file

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
	"github.com/custodia-labs/clientdesk/internal/logger"
)

// watchDebounce coalesces the burst of events editors emit on save.
const watchDebounce = 100 * time.Millisecond

// Watch calls onChange with freshly loaded settings whenever the settings
// file is written, created or renamed into place. It blocks until ctx is done.
// A file that fails to parse is logged and skipped.
func (s *SettingsStore) Watch(ctx context.Context, onChange func(domain.Settings)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory: editors often replace the file instead of writing it.
	dir := filepath.Dir(s.filePath)
	if err := watcher.Add(dir); err != nil {
		return err
	}
	target := filepath.Clean(s.filePath)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			settings, err := s.Load()
			if err != nil {
				logger.Warn("ignoring invalid settings file", "path", s.filePath, "error", err)
				continue
			}
			logger.Debug("settings file changed", "path", s.filePath)
			onChange(settings)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("settings watcher error", "error", err)
		}
	}
}
