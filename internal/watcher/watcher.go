package watcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bassista/mkdoc/internal/logger"
	"github.com/bassista/mkdoc/internal/report"
	"github.com/bassista/mkdoc/internal/repository"
	"github.com/bassista/mkdoc/internal/status"
)

// DefaultPoll is the interval between two checks of the source file.
const DefaultPoll = time.Second

var (
	// ErrNoSave means the source modification time did not advance.
	ErrNoSave = errors.New("no save detected")
	// ErrNoChange means the source was saved but its content is unchanged.
	ErrNoChange = errors.New("no changes detected")
)

// PageRenderer renders a markdown document into a template.
type PageRenderer interface {
	Render(document, template string) (string, error)
}

// WatchState is the last source revision that was rendered successfully.
type WatchState struct {
	ModTime time.Time
	Digest  string
}

// PollingWatcher checks the source on a fixed interval and re-renders it when
// both its modification time and its content digest changed.
//
// Semantics:
// - A modification time that is not strictly newer than the stored one is ignored.
// - A newer modification time with identical content only advances the stored time.
// - Digest and time are committed together, only after the output was written.
// - A failed render leaves the state untouched, so the next poll retries.
//
// NOTE: State is in-memory only and owned by the loop goroutine.
type PollingWatcher struct {
	source   repository.SourceReader
	out      repository.OutputWriter
	renderer PageRenderer
	template string
	poll     time.Duration

	hints    <-chan struct{}
	status   status.Recorder
	reporter report.Reporter

	state WatchState
}

func NewPollingWatcher(source repository.SourceReader, out repository.OutputWriter, r PageRenderer, template string, poll time.Duration) *PollingWatcher {
	if poll <= 0 {
		poll = DefaultPoll
	}

	return &PollingWatcher{
		source:   source,
		out:      out,
		renderer: r,
		template: template,
		poll:     poll,
		reporter: report.Nop{},
	}
}

// SetHints makes the loop also check the source whenever a value arrives on hints.
func (w *PollingWatcher) SetHints(hints <-chan struct{}) {
	w.hints = hints
}

func (w *PollingWatcher) SetStatus(rec status.Recorder) {
	w.status = rec
}

func (w *PollingWatcher) SetReporter(rep report.Reporter) {
	if rep == nil {
		rep = report.Nop{}
	}
	w.reporter = rep
}

// State returns the stored revision. Only call it while the loop is not running.
func (w *PollingWatcher) State() WatchState {
	return w.state
}

// Start records the current source revision as the baseline and runs the
// polling loop in a goroutine until ctx is cancelled. The returned channel is
// closed once the loop has exited; an in-flight render always completes first.
func (w *PollingWatcher) Start(ctx context.Context) (<-chan struct{}, error) {
	modTime, err := w.source.SourceModTime()
	if err != nil {
		return nil, fmt.Errorf("baseline: %w", err)
	}
	digest, err := w.source.SourceDigest()
	if err != nil {
		return nil, fmt.Errorf("baseline: %w", err)
	}
	w.state = WatchState{ModTime: modTime, Digest: digest}
	if w.status != nil {
		w.status.SetWatching(true)
	}

	logger.WithComponent("watch").Debugf("starting watcher with interval: %v, baseline digest: %s", w.poll, digest)
	done := make(chan struct{})
	ticker := time.NewTicker(w.poll)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				if w.status != nil {
					w.status.SetWatching(false)
				}
				logger.WithComponent("watch").Info("stopped watcher")
				return
			case <-ticker.C:
				w.tick(ctx)
			case <-w.hints:
				logger.WithComponent("watch").Trace("change hint received")
				w.tick(ctx)
			}
		}
	}()
	return done, nil
}

func (w *PollingWatcher) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	err := w.check()
	switch {
	case err == nil:
		logger.WithComponent("watch").Infof("html regenerated (digest %s)", w.state.Digest)
	case errors.Is(err, ErrNoSave):
		// nothing to do
	case errors.Is(err, ErrNoChange):
		logger.WithComponent("watch").Debugf("source saved without changes")
	default:
		logger.WithComponent("watch").Errorf("watch error: %v", err)
		if w.status != nil {
			w.status.RecordError(err)
		}
		w.reporter.Report(err, "watch")
	}
}

// check runs one iteration of the change detection. It returns ErrNoSave or
// ErrNoChange when there is nothing to render.
func (w *PollingWatcher) check() error {
	modTime, err := w.source.SourceModTime()
	if err != nil {
		return err
	}
	if !modTime.After(w.state.ModTime) {
		return ErrNoSave
	}

	digest, err := w.source.SourceDigest()
	if err != nil {
		return err
	}
	if digest == w.state.Digest {
		w.state.ModTime = modTime
		return ErrNoChange
	}

	logger.WithComponent("watch").Info("generating html...")
	text, err := w.source.ReadSource()
	if err != nil {
		return err
	}
	html, err := w.renderer.Render(text, w.template)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := w.out.WriteOutput(html); err != nil {
		return err
	}

	w.state = WatchState{ModTime: modTime, Digest: digest}
	if w.status != nil {
		w.status.RecordRender(digest, modTime)
	}
	return nil
}
