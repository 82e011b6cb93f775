package report

import (
	"errors"
	"io"
	"os"
	"testing"

	honeybadger "github.com/honeybadger-io/honeybadger-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func quietEntry() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestNew_WithoutAPIKey(t *testing.T) {
	_ = os.Unsetenv("HONEYBADGER_API_KEY")

	r := New(quietEntry())
	assert.IsType(t, Nop{}, r)
	assert.False(t, r.Enabled())

	// must not panic
	r.Report(errors.New("ignored"), "watch")
	r.Flush()
}

func TestNew_WithAPIKey(t *testing.T) {
	_ = os.Setenv("HONEYBADGER_API_KEY", "test-key")
	defer func() { _ = os.Unsetenv("HONEYBADGER_API_KEY") }()

	r := New(quietEntry())
	assert.True(t, r.Enabled())
	assert.IsType(t, &Honeybadger{}, r)
}

func TestHoneybadger_Report(t *testing.T) {
	var gotErr interface{}
	var gotExtra []interface{}
	flushed := false
	h := &Honeybadger{
		notify: func(err interface{}, extra ...interface{}) (string, error) {
			gotErr = err
			gotExtra = extra
			return "id", nil
		},
		flush:  func() { flushed = true },
		logger: quietEntry(),
	}

	boom := errors.New("stat source: permission denied")
	h.Report(boom, "watch", "render")
	h.Flush()

	assert.Equal(t, boom, gotErr)
	assert.Equal(t, []interface{}{honeybadger.Tags{"watch", "render"}}, gotExtra)
	assert.True(t, flushed)
}

func TestHoneybadger_ReportNil(t *testing.T) {
	called := false
	h := &Honeybadger{
		notify: func(interface{}, ...interface{}) (string, error) {
			called = true
			return "", nil
		},
		logger: quietEntry(),
	}

	h.Report(nil)
	assert.False(t, called)
}

func TestHoneybadger_ReportNotifyFailure(t *testing.T) {
	h := &Honeybadger{
		notify: func(interface{}, ...interface{}) (string, error) {
			return "", errors.New("network down")
		},
		logger: quietEntry(),
	}

	// logged, not propagated
	h.Report(errors.New("x"))
}
