package server

import (
	"context"

	"github.com/conneroisu/ciclowiki/internal/errors"
	"github.com/conneroisu/ciclowiki/internal/watcher"
)

// contentWatcher watches the configured content directory and reloads the
// library after each burst of markdown changes.
func (s *Server) contentWatcher() (*watcher.FileWatcher, error) {
	fw, err := watcher.NewFileWatcher(watcher.DefaultDebounce, s.logger)
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeWatcherStart, "failed to create content watcher", err)
	}

	fw.AddFilter(watcher.MarkdownFilter)
	fw.AddFilter(watcher.NoHiddenFilter)
	fw.AddFilter(watcher.NoBackupFilter)
	fw.AddHandler(s.reloadContent)

	if err := fw.AddRecursive(s.config.Content.Dir); err != nil {
		fw.Stop()
		return nil, errors.NewContentError(errors.ErrCodeWatcherStart,
			"failed to watch content directory", err).WithContext("dir", s.config.Content.Dir)
	}
	return fw, nil
}

// reloadContent re-reads every source. A failed reload keeps the previous
// documents, so open tabs keep working while the author fixes the file.
// Successful reloads reach the tabs through refreshOnChange.
func (s *Server) reloadContent(ctx context.Context, events []watcher.ChangeEvent) error {
	err := s.library.Load()
	s.metrics.ContentReloaded(err)
	if err != nil {
		return errors.NewContentError(errors.ErrCodeContentLoad, "content reload failed", err)
	}

	files := make([]string, 0, len(events))
	for _, e := range events {
		files = append(files, e.Path)
	}
	s.logger.Info(ctx, "Content reloaded", "files", files)
	return nil
}
