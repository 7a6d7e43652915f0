package app

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"

	"vaeval/domain/va"
	"vaeval/internal"
	"vaeval/internal/errors"
	"vaeval/internal/validation"
	"vaeval/ports"
)

// ResultsService merges shard outputs and summarizes stored runs
type ResultsService struct {
	archive     ports.ResultArchive
	logger      *internal.Logger
	bootstraps  int
	summarySeed uint64
}

func NewResultsService(archive ports.ResultArchive, logger *internal.Logger) *ResultsService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ResultsService{
		archive:     archive,
		logger:      logger,
		bootstraps:  500,
		summarySeed: validation.SummarySeed,
	}
}

// WithSummary overrides the bootstrap settings used by Summarize
func (s *ResultsService) WithSummary(bootstraps int, seed uint64) *ResultsService {
	s.bootstraps = bootstraps
	s.summarySeed = seed
	return s
}

// Combine concatenates every stored shard of the run described by tags, in
// split order, and stores the result under the full-run stem. tags.Subset is
// ignored. Returns the combined stem.
func (s *ResultsService) Combine(ctx context.Context, tags va.RunTags) (string, *va.Result, error) {
	tags.Subset = nil
	base, err := tags.BaseStem()
	if err != nil {
		return "", nil, errors.WithCode(errors.CodeInvalidInput, err)
	}
	out, _ := tags.Stem()

	found, err := s.archive.Stems(ctx, base+"_")
	if err != nil {
		return "", nil, errors.IOError("failed to list stored runs", err)
	}
	type shard struct {
		stem  string
		start int
	}
	var shards []shard
	for _, stem := range found {
		if stem == out {
			continue
		}
		subset, ok := va.SubsetOf(stem)
		if !ok {
			s.logger.Warn("[ResultsService] skipping %s: no split range", stem)
			continue
		}
		shards = append(shards, shard{stem: stem, start: subset.Start})
	}
	if len(shards) == 0 {
		return "", nil, errors.NotFound(fmt.Sprintf("shards of %s", base))
	}
	slices.SortStableFunc(shards, func(a, b shard) int {
		return a.start - b.start
	})
	stems := make([]string, len(shards))
	for i, sh := range shards {
		stems[i] = sh.stem
	}

	results := make([]*va.Result, 0, len(stems))
	for _, stem := range stems {
		r, err := s.archive.Load(ctx, stem)
		if err != nil {
			return "", nil, errors.Wrapf(err, "failed to load %s", stem)
		}
		results = append(results, r)
	}
	combined := va.Concat(results...)
	if tags.NSplits > 0 && combined.NumSplits() != tags.NSplits {
		s.logger.Warn("[ResultsService] %s: combined %d splits from %d shards, expected %d", base, combined.NumSplits(), len(stems), tags.NSplits)
	}

	if err := s.archive.Save(ctx, tags, combined); err != nil {
		return "", nil, errors.Wrapf(err, "failed to save %s", out)
	}
	s.logger.Info("[ResultsService] combined %d shards into %s", len(stems), out)
	return out, combined, nil
}

// RunSummary is the across-split summary of one stored run
type RunSummary struct {
	Stem     string
	Accuracy validation.AccuracySummary
	Causes   []validation.CauseSummary
}

// Summarize reports medians and uncertainty intervals for a stored run
func (s *ResultsService) Summarize(ctx context.Context, stem string) (*RunSummary, error) {
	result, err := s.archive.Load(ctx, stem)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", stem)
	}

	rng := rand.New(rand.NewPCG(s.summarySeed, s.summarySeed))
	accuracy, err := validation.SummarizeAccuracy(result.Accuracy, s.bootstraps, rng)
	if err != nil {
		return nil, errors.Wrap(err, "failed to summarize accuracy")
	}
	causes, err := validation.SummarizeCauseSpecific(result.Predictions, s.bootstraps, rng)
	if err != nil {
		return nil, errors.Wrap(err, "failed to summarize cause-specific accuracy")
	}
	return &RunSummary{Stem: stem, Accuracy: accuracy, Causes: causes}, nil
}
