package ports

import (
	"context"
	"time"

	"vaeval/domain/core"
	"vaeval/domain/va"
)

// DatasetReader loads features and labels for a validation run
type DatasetReader interface {
	ReadDataset(ctx context.Context, path string) (va.Frame, va.Series, error)
}

// RunInfo is the metadata stored alongside a run's tables
type RunInfo struct {
	ID        core.RunID
	Stem      string
	Tags      va.RunTags
	CreatedAt time.Time
}

// RunReader provides read-only access to stored run metadata
type RunReader interface {
	GetRun(ctx context.Context, stem string) (*RunInfo, error)
}
