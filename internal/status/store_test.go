package status

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNewStore(t *testing.T) {
	s := NewStore("notes.md", "notes.html")
	snap := s.Snapshot()

	assert.Equal(t, "notes.md", snap.Input)
	assert.Equal(t, "notes.html", snap.Output)
	assert.False(t, snap.Watching)
	assert.Zero(t, snap.Renders)
	assert.Zero(t, snap.Errors)
}

func TestStore_RecordRender(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	mod := now.Add(-time.Second)
	s := NewStore("a.md", "a.html")
	s.now = fixedClock(now)

	s.RecordError(errors.New("stat source: no such file"))
	s.RecordRender("abc123", mod)

	snap := s.Snapshot()
	assert.Equal(t, 1, snap.Renders)
	assert.Equal(t, now, snap.LastRender)
	assert.Equal(t, "abc123", snap.LastDigest)
	assert.Equal(t, mod, snap.LastModTime)
	assert.Empty(t, snap.LastError, "render clears the last error")
	assert.Equal(t, 1, snap.Errors, "error count is cumulative")
}

func TestStore_RecordError(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	s := NewStore("a.md", "a.html")
	s.now = fixedClock(now)

	s.RecordError(nil)
	assert.Zero(t, s.Snapshot().Errors)

	s.RecordError(errors.New("permission denied"))
	snap := s.Snapshot()
	assert.Equal(t, 1, snap.Errors)
	assert.Equal(t, "permission denied", snap.LastError)
	assert.Equal(t, now, snap.LastErrorAt)
}

func TestStore_SetWatching(t *testing.T) {
	s := NewStore("a.md", "a.html")
	s.SetWatching(true)
	assert.True(t, s.Snapshot().Watching)
	s.SetWatching(false)
	assert.False(t, s.Snapshot().Watching)
}

func TestStore_SnapshotIsCopy(t *testing.T) {
	s := NewStore("a.md", "a.html")
	snap := s.Snapshot()
	snap.Renders = 42

	assert.Zero(t, s.Snapshot().Renders)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewStore("a.md", "a.html")
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.RecordRender("d", time.Now())
		}()
		go func() {
			defer wg.Done()
			_ = s.Snapshot()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, s.Snapshot().Renders)
}
