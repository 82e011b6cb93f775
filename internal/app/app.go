package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bassista/mkdoc/internal/config"
	"github.com/bassista/mkdoc/internal/hasher"
	"github.com/bassista/mkdoc/internal/logger"
	"github.com/bassista/mkdoc/internal/renderer"
	"github.com/bassista/mkdoc/internal/report"
	"github.com/bassista/mkdoc/internal/repository"
	"github.com/bassista/mkdoc/internal/status"
	"github.com/bassista/mkdoc/internal/watcher"
)

// App is the application container (immutable dependencies + lifecycle context).
// The template is loaded once in New and never re-read.
type App struct {
	Config   *config.Config
	Repo     repository.Repository
	Renderer *renderer.Renderer
	Status   *status.Store
	Reporter report.Reporter
	Template string

	BaseCtx context.Context
	Cancel  context.CancelFunc
}

func New(cfg *config.Config, repo repository.Repository, r *renderer.Renderer, rep report.Reporter) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if repo == nil {
		return nil, errors.New("repo is nil")
	}
	if r == nil {
		return nil, errors.New("renderer is nil")
	}
	if rep == nil {
		rep = report.Nop{}
	}

	tmpl, err := repo.ReadTemplate()
	if err != nil {
		return nil, err
	}
	if !renderer.HasMarker(tmpl) {
		logger.WithComponent("render").Warnf("template %s has no %s marker; the rendered body will be dropped",
			repo.Paths().Template, renderer.Marker)
	}

	paths := repo.Paths()
	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		Config:   cfg,
		Repo:     repo,
		Renderer: r,
		Status:   status.NewStore(paths.Input, paths.Output),
		Reporter: rep,
		Template: tmpl,
		BaseCtx:  ctx,
		Cancel:   cancel,
	}, nil
}

func (a *App) Shutdown() {
	if a == nil || a.Cancel == nil {
		return
	}
	a.Cancel()
}

// Build renders the source once and writes the output.
func (a *App) Build() error {
	text, err := a.Repo.ReadSource()
	if err != nil {
		return err
	}
	html, err := a.Renderer.Render(text, a.Template)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := a.Repo.WriteOutput(html); err != nil {
		return err
	}

	digest, err := hasher.DigestReader(strings.NewReader(text))
	if err != nil {
		return err
	}
	modTime, err := a.Repo.SourceModTime()
	if err != nil {
		return err
	}
	a.Status.RecordRender(digest, modTime)
	logger.WithComponent("render").Infof("wrote %s", a.Repo.Paths().Output)
	return nil
}

// StartWatcher starts the watch loop bound to BaseCtx. The returned channel
// is closed when the loop has finished its last iteration after Shutdown.
func (a *App) StartWatcher() (<-chan struct{}, error) {
	w := watcher.NewPollingWatcher(a.Repo, a.Repo, a.Renderer, a.Template, a.Config.Watch.PollInterval)
	w.SetStatus(a.Status)
	w.SetReporter(a.Reporter)

	if a.Config.Watch.Notify {
		hints, err := a.Repo.StartNotifier(a.BaseCtx)
		if err != nil {
			return nil, fmt.Errorf("cannot start file notifier: %w", err)
		}
		w.SetHints(hints)
	}

	return w.Start(a.BaseCtx)
}
