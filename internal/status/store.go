// Package status keeps a concurrency-safe record of build progress for the
// preview server and logs.
package status

import (
	"sync"
	"time"
)

// Snapshot is a point-in-time copy of the build status.
type Snapshot struct {
	Input       string    `json:"input"`
	Output      string    `json:"output"`
	Watching    bool      `json:"watching"`
	Renders     int       `json:"renders"`
	LastRender  time.Time `json:"lastRender,omitzero"`
	LastDigest  string    `json:"lastDigest,omitempty"`
	LastModTime time.Time `json:"lastModTime,omitzero"`
	Errors      int       `json:"errors"`
	LastError   string    `json:"lastError,omitempty"`
	LastErrorAt time.Time `json:"lastErrorAt,omitzero"`
}

// Reader is the read side used by HTTP handlers.
type Reader interface {
	Snapshot() Snapshot
}

// Recorder is the write side used by the build and watch loop.
type Recorder interface {
	SetWatching(watching bool)
	RecordRender(digest string, modTime time.Time)
	RecordError(err error)
}

// Store keeps the current status in memory.
type Store struct {
	mu   sync.RWMutex
	data Snapshot
	now  func() time.Time
}

func NewStore(input, output string) *Store {
	return &Store{
		data: Snapshot{Input: input, Output: output},
		now:  time.Now,
	}
}

func (s *Store) SetWatching(watching bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Watching = watching
}

// RecordRender notes a successful render and clears the last error.
func (s *Store) RecordRender(digest string, modTime time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Renders++
	s.data.LastRender = s.now()
	s.data.LastDigest = digest
	s.data.LastModTime = modTime
	s.data.LastError = ""
}

func (s *Store) RecordError(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Errors++
	s.data.LastError = err.Error()
	s.data.LastErrorAt = s.now()
}

// Snapshot returns a copy of the current status.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}
