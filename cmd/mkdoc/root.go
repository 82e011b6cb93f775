package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bassista/mkdoc/internal/api/route"
	"github.com/bassista/mkdoc/internal/app"
	"github.com/bassista/mkdoc/internal/config"
	"github.com/bassista/mkdoc/internal/logger"
	"github.com/bassista/mkdoc/internal/markdown"
	"github.com/bassista/mkdoc/internal/renderer"
	"github.com/bassista/mkdoc/internal/report"
	"github.com/bassista/mkdoc/internal/repository"
	"github.com/bassista/mkdoc/internal/watcher"
)

type options struct {
	output    string
	watch     bool
	configDir string
}

// flagBindings maps viper keys to the flags that override them.
var flagBindings = map[string]string{
	"render.template":     "template",
	"watch.poll_interval": "interval",
	"watch.notify":        "notify",
	"server.addr":         "serve",
	"misc.log_level":      "log-level",
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "mkdoc [flags] input",
		Short: "Generate beautified HTML from markdown text.",
		Long: `mkdoc converts a markdown file into an HTML page using a template.

The template must contain the marker {%body%} where the rendered markdown
goes. Content following each heading is wrapped in a <section>, nested by
heading level.

Examples:
  mkdoc notes.md                         # writes notes.html
  mkdoc -t layout.html -o out.html a.md  # explicit template and output
  mkdoc -w notes.md                      # regenerate on every change
  mkdoc -w --serve :8080 notes.md        # ...and preview on http://localhost:8080`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.StringP("template", "t", repository.DefaultTemplate, "path to template file")
	flags.StringVarP(&opts.output, "output", "o", "", "path to output file (default: <input name>.html)")
	flags.BoolVarP(&opts.watch, "watch", "w", false, "watch the file for changes")
	flags.DurationP("interval", "i", watcher.DefaultPoll, "poll interval in watch mode")
	flags.Bool("notify", false, "also react to filesystem notifications in watch mode")
	flags.String("serve", "", "serve a preview on this address in watch mode, e.g. :8080")
	flags.StringVar(&opts.configDir, "config", "", "directory containing mkdoc.yaml (default is $MKDOC_CONFIG_PATH or .)")
	flags.StringP("log-level", "l", "info", "log level (trace, debug, info, warn, error)")

	bindFlags(flags)

	return cmd
}

// bindFlags lets explicitly set flags override config file and env values.
func bindFlags(flags *pflag.FlagSet) {
	for key, name := range flagBindings {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			logger.WithComponent("main").Warnf("cannot bind flag %s: %v", name, err)
		}
	}
}

func run(ctx context.Context, input string, opts *options) error {
	cfg, err := config.LoadConfig(opts.configDir)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if err := logger.SetLevel(cfg.Misc.LogLevel); err != nil {
		logger.WithComponent("main").Warnf("%v, keeping %s", err, logger.Logger.GetLevel())
	}

	paths, err := repository.ResolvePaths(input, cfg.Render.TemplatePath, opts.output)
	if err != nil {
		return err
	}
	if opts.output == "" && repository.TruncatesName(input) {
		logger.WithComponent("main").Warnf("output name is cut at the first dot of %q: writing %s", input, paths.Output)
	}

	repo, err := repository.NewFileRepository(paths)
	if err != nil {
		return fmt.Errorf("cannot init repository: %w", err)
	}

	rep := report.New(logger.WithComponent("report"))
	defer rep.Flush()

	r := renderer.New(markdown.NewGoldmarkConverter(cfg.Markdown.Options()))
	a, err := app.New(cfg, repo, r, rep)
	if err != nil {
		return fmt.Errorf("cannot init app: %w", err)
	}
	defer a.Shutdown()

	if !opts.watch {
		return a.Build()
	}
	return watch(ctx, a)
}

// watch runs the watch loop until ctx is cancelled, then waits for the loop's
// in-flight iteration to finish.
func watch(ctx context.Context, a *app.App) error {
	logger.WithComponent("main").Infof("watching: %s", a.Repo.Paths().Input)

	done, err := a.StartWatcher()
	if err != nil {
		return fmt.Errorf("cannot start watcher: %w", err)
	}

	var serverDone <-chan struct{}
	if addr := a.Config.Server.Addr; addr != "" {
		serverDone = servePreview(a, addr)
	}

	<-ctx.Done()
	logger.WithComponent("main").Info("exiting.")
	a.Shutdown()
	<-done

	if serverDone != nil {
		select {
		case <-serverDone:
		case <-time.After(a.Config.Server.ShutDownTimeout + time.Second):
			logger.WithComponent("http").Warn("preview server did not stop in time")
		}
	}
	return nil
}

func servePreview(a *app.App, addr string) <-chan struct{} {
	gin.SetMode(a.Config.Misc.GinMode)
	gin.DefaultWriter = logger.Logger.Writer()
	gin.DefaultErrorWriter = logger.Logger.Writer()

	srv := createGraceHttpServer(a.BaseCtx, "preview", a.Config.Server, route.NewEngine(a))

	done := make(chan struct{})
	go func() {
		defer close(done)
		logger.WithComponent("http").Infof("preview on %s", addr)
		if err := srv.ListenAndServe(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithComponent("http").Errorf("preview server error: %v", err)
			a.Reporter.Report(err, "http")
		}
	}()
	return done
}
