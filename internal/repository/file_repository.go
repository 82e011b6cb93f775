package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"

	"github.com/bassista/mkdoc/internal/hasher"
	"github.com/bassista/mkdoc/internal/logger"
)

// notifyDebounce coalesces write+chmod/rename bursts into a single hint.
const notifyDebounce = 100 * time.Millisecond

// FileRepository reads the markdown source and template from disk and writes
// the rendered page atomically.
type FileRepository struct {
	paths   Paths
	outDir  string
	outBase string
	mu      sync.Mutex
}

// NewFileRepository creates a repository for the given job paths.
// It returns the repository interface to avoid leaking implementation details.
func NewFileRepository(paths Paths) (Repository, error) {
	if err := validator.New().Struct(paths); err != nil {
		return nil, fmt.Errorf("invalid paths: %w", err)
	}

	dir := filepath.Dir(paths.Output)
	if dir == "" {
		dir = "."
	}
	return &FileRepository{
		paths:   paths,
		outDir:  dir,
		outBase: filepath.Base(paths.Output),
	}, nil
}

func (r *FileRepository) Paths() Paths {
	return r.paths
}

// ReadSource returns the current markdown text.
func (r *FileRepository) ReadSource() (string, error) {
	data, err := os.ReadFile(r.paths.Input)
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	return string(data), nil
}

// ReadTemplate returns the template text.
func (r *FileRepository) ReadTemplate() (string, error) {
	data, err := os.ReadFile(r.paths.Template)
	if err != nil {
		return "", fmt.Errorf("read template: %w", err)
	}
	return string(data), nil
}

// SourceModTime returns the source's modification time.
func (r *FileRepository) SourceModTime() (time.Time, error) {
	info, err := os.Stat(r.paths.Input)
	if err != nil {
		return time.Time{}, fmt.Errorf("stat source: %w", err)
	}
	return info.ModTime(), nil
}

// SourceDigest returns the content digest of the source.
func (r *FileRepository) SourceDigest() (string, error) {
	return hasher.Digest(r.paths.Input)
}

// WriteOutput replaces the output file atomically (temp file + rename), so a
// browser reloading the page never sees a half-written document.
func (r *FileRepository) WriteOutput(html string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tmpFile, err := os.CreateTemp(r.outDir, r.outBase+".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
	}()

	if _, err := tmpFile.WriteString(html); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	// CreateTemp uses 0600; the page is meant to be world-readable.
	if err := os.Chmod(tmpFile.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), r.paths.Output); err != nil {
		return fmt.Errorf("replace output file: %w", err)
	}

	return nil
}

// StartNotifier sends on the returned channel whenever the source file is
// touched. It watches the parent directory (not the file) so editors that save
// via temp+rename are still observed. Events are filtered by basename and
// debounced. Hints are dropped while one is already pending. The channel is
// never closed; the goroutine exits when ctx is cancelled.
func (r *FileRepository) StartNotifier(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	dir := filepath.Dir(r.paths.Input)
	base := filepath.Base(r.paths.Input)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch dir: %w", err)
	}

	hints := make(chan struct{}, 1)
	notify := func() {
		select {
		case hints <- struct{}{}:
		default:
		}
	}

	go func() {
		defer watcher.Close()

		var debounce *time.Timer
		defer func() {
			if debounce != nil {
				debounce.Stop()
			}
		}()
		schedule := func() {
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(notifyDebounce, notify)
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != base {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Chmod|fsnotify.Rename|fsnotify.Remove) != 0 {
					logger.WithComponent("repo").Tracef("fs event %s on %s", event.Op, event.Name)
					schedule()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.WithComponent("repo").Warnf("watcher error: %v", err)
			}
		}
	}()

	return hints, nil
}

// IsNotExist reports whether err was caused by a missing file.
func IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
