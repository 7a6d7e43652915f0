package ports

import (
	"context"

	"vaeval/domain/va"
)

// ResultStore persists the four validation tables under the caller's tags
type ResultStore interface {
	Save(ctx context.Context, tags va.RunTags, result *va.Result) error
}

// ResultLoader reads back results written by a ResultStore
type ResultLoader interface {
	// Load returns the tables stored under the given filename stem
	Load(ctx context.Context, stem string) (*va.Result, error)
}

// ResultIndex lists stored stems, e.g. the shards of a partitioned run
type ResultIndex interface {
	Stems(ctx context.Context, prefix string) ([]string, error)
}

// ResultArchive is a store that can also list and read back its results
type ResultArchive interface {
	ResultStore
	ResultLoader
	ResultIndex
}
