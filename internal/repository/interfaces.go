package repository

import (
	"context"
	"time"
)

// OutputWriter persists a rendered page.
type OutputWriter interface {
	WriteOutput(html string) error
}

// SourceReader is what the watch loop needs from the markdown source.
type SourceReader interface {
	ReadSource() (string, error)
	SourceModTime() (time.Time, error)
	SourceDigest() (string, error)
}

// Repository abstracts file access for one conversion job.
// FileRepository implements this interface.
type Repository interface {
	SourceReader
	OutputWriter
	ReadTemplate() (string, error)
	Paths() Paths
	StartNotifier(ctx context.Context) (<-chan struct{}, error)
}
