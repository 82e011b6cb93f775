// Package report forwards unexpected errors to Honeybadger when configured.
package report

import (
	"os"

	honeybadger "github.com/honeybadger-io/honeybadger-go"
	"github.com/sirupsen/logrus"
)

// Reporter surfaces unexpected errors beyond the local log.
type Reporter interface {
	Report(err error, tags ...string)
	Enabled() bool
	Flush()
}

// Nop discards reports.
type Nop struct{}

func (Nop) Report(error, ...string) {}

func (Nop) Enabled() bool { return false }

func (Nop) Flush() {}

// Honeybadger sends reports to Honeybadger.
type Honeybadger struct {
	notify func(err interface{}, extra ...interface{}) (string, error)
	flush  func()
	logger *logrus.Entry
}

func (h *Honeybadger) Report(err error, tags ...string) {
	if err == nil {
		return
	}
	if _, nerr := h.notify(err, honeybadger.Tags(tags)); nerr != nil {
		h.logger.Warnf("honeybadger notify failed: %v", nerr)
	}
}

func (h *Honeybadger) Enabled() bool { return true }

func (h *Honeybadger) Flush() { h.flush() }

// New returns a Honeybadger reporter when HONEYBADGER_API_KEY is set, and a
// Nop reporter otherwise.
func New(logger *logrus.Entry) Reporter {
	apiKey := os.Getenv("HONEYBADGER_API_KEY")
	if apiKey == "" {
		logger.Debug("Honeybadger is not active. To enable error reporting, set the HONEYBADGER_API_KEY environment variable.")
		return Nop{}
	}

	honeybadger.Configure(honeybadger.Configuration{
		APIKey: apiKey,
		Env:    os.Getenv("GO_ENV"),
	})
	logger.Info("Honeybadger error reporting is enabled.")

	return &Honeybadger{
		notify: honeybadger.Notify,
		flush:  honeybadger.Flush,
		logger: logger,
	}
}
