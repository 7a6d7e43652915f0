package validation

import (
	"context"
	"fmt"
	"iter"
	"time"

	"vaeval/domain/core"
	"vaeval/domain/va"
	"vaeval/internal"
	"vaeval/ports"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// ShardPlan describes how a run's splits are cut into independent shards
type ShardPlan struct {
	RunID       core.RunID
	NSplits     int
	Shards      int   // number of contiguous split ranges
	MaxParallel int64 // shards allowed to run at once
	BaseSeed    uint64
	RNG         ports.RNGPort
}

// Shard is one contiguous range of splits with its own result
type Shard struct {
	Subset va.Subset
	Result *va.Result
}

// RunShards runs Validate independently over contiguous ranges of the split
// sequence, the in-process analogue of partitioning a run across batch jobs.
// Every shard gets a fresh classifier from factory and its own resampling
// and classifier streams keyed by the run id and its range, so shard results
// do not depend on scheduling. When opts.Subset is set only that range is partitioned.
// The first shard error cancels the others and is returned.
func RunShards(ctx context.Context, plan ShardPlan, X va.Frame, y va.Series, factory ports.ClassifierFactory, splits iter.Seq[va.Split], opts Options) ([]Shard, error) {
	if err := ValidateSplitCount(plan.NSplits); err != nil {
		return nil, err
	}
	if plan.RNG == nil {
		return nil, fmt.Errorf("%w: shard plan has no RNG port", core.ErrInvalidArgument)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	span := va.Subset{Start: 0, Stop: plan.NSplits - 1}
	if opts.Subset != nil {
		span = *opts.Subset
	}
	ranges, err := va.PartitionSubsets(span.Len(), plan.Shards)
	if err != nil {
		return nil, err
	}
	for i := range ranges {
		ranges[i].Start += span.Start
		ranges[i].Stop += span.Start
	}

	logger := opts.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}
	maxParallel := plan.MaxParallel
	if maxParallel < 1 {
		maxParallel = 1
	}

	start := time.Now()
	shards := make([]Shard, len(ranges))
	sem := semaphore.NewWeighted(maxParallel)
	g, gctx := errgroup.WithContext(ctx)
	for i, subset := range ranges {
		shards[i].Subset = subset
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			shardID := core.NewShardID(subset.Start, subset.Stop)
			rng, err := plan.RNG.Stream(gctx, string(plan.RunID), "resample", string(shardID), plan.BaseSeed)
			if err != nil {
				return fmt.Errorf("shard %s: %w", shardID, err)
			}
			clfRNG, err := plan.RNG.Stream(gctx, string(plan.RunID), "classifier", string(shardID), plan.BaseSeed)
			if err != nil {
				return fmt.Errorf("shard %s: %w", shardID, err)
			}
			clf, err := factory(clfRNG)
			if err != nil {
				return fmt.Errorf("shard %s: %w", shardID, err)
			}

			shardOpts := opts
			shardOpts.Subset = &subset
			shardOpts.RNG = rng
			logger.Debug("[RunShards] starting shard %s", shardID)
			res, err := Validate(gctx, X, y, clf, splits, shardOpts)
			if err != nil {
				return fmt.Errorf("shard %s: %w", shardID, err)
			}
			shards[i].Result = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info("[RunShards] %d shards over %d splits finished in %v", len(shards), span.Len(), time.Since(start))
	return shards, nil
}

// CombineShards concatenates shard results in shard order
func CombineShards(shards []Shard) *va.Result {
	results := make([]*va.Result, len(shards))
	for i, s := range shards {
		results[i] = s.Result
	}
	return va.Concat(results...)
}
