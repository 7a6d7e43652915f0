package app

import (
	"context"
	"fmt"
	"iter"
	"math/rand/v2"
	"time"

	"vaeval/adapters/classifier"
	"vaeval/domain/core"
	"vaeval/domain/va"
	"vaeval/internal"
	"vaeval/internal/errors"
	"vaeval/internal/validation"
	"vaeval/ports"
)

// ValidationRequest describes one validation run
type ValidationRequest struct {
	Tags       va.RunTags
	DataPath   string
	Classifier string
	Params     classifier.Params

	TestSize     float64
	SplitSeed    *uint64
	ResampleSeed *uint64
	ResampleTest bool
	ResampleSize float64

	Shards      int
	MaxParallel int64
}

// ValidationRun is the outcome of a run
type ValidationRun struct {
	RunID   core.RunID
	Stem    string
	Result  *va.Result
	Summary validation.AccuracySummary
}

// ValidationService loads a dataset, measures a classifier over the splits
// of the requested analysis and stores the result tables
type ValidationService struct {
	reader      ports.DatasetReader
	store       ports.ResultStore
	rng         ports.RNGPort
	logger      *internal.Logger
	bootstraps  int
	summarySeed uint64
}

func NewValidationService(reader ports.DatasetReader, store ports.ResultStore, rng ports.RNGPort, logger *internal.Logger) *ValidationService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ValidationService{
		reader:      reader,
		store:       store,
		rng:         rng,
		logger:      logger,
		bootstraps:  500,
		summarySeed: validation.SummarySeed,
	}
}

// WithSummary overrides the bootstrap settings used for run summaries
func (s *ValidationService) WithSummary(bootstraps int, seed uint64) *ValidationService {
	s.bootstraps = bootstraps
	s.summarySeed = seed
	return s
}

// Run executes the request end to end
func (s *ValidationService) Run(ctx context.Context, req ValidationRequest) (*ValidationRun, error) {
	start := time.Now()
	if req.Tags.NSplits < 1 {
		return nil, errors.InvalidInput("number of splits must be at least 1")
	}
	stem, err := req.Tags.Stem()
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}

	X, y, err := s.reader.ReadDataset(ctx, req.DataPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read dataset %s", req.DataPath)
	}
	s.logger.Info("[ValidationService] %s: %d deaths, %d causes", stem, X.Len(), len(y.Unique()))

	run, err := s.Evaluate(ctx, req, X, y)
	if err != nil {
		return nil, err
	}
	run.Stem = stem

	if s.store != nil {
		if err := s.store.Save(ctx, req.Tags, run.Result); err != nil {
			return nil, errors.Wrapf(err, "failed to save %s", stem)
		}
	}
	s.logger.Info("[ValidationService] %s finished in %v", stem, time.Since(start))
	return run, nil
}

// Evaluate runs the validation over an in-memory dataset without storing it
func (s *ValidationService) Evaluate(ctx context.Context, req ValidationRequest, X va.Frame, y va.Series) (*ValidationRun, error) {
	splits, err := s.splitsFor(req, y)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate splits")
	}

	resampleSeed := rand.Uint64()
	if req.ResampleSeed != nil {
		resampleSeed = *req.ResampleSeed
	}
	runID := s.runID(req, X, y, resampleSeed)

	factory, err := classifier.NewFactory(req.Classifier, req.Params)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build classifier")
	}

	opts := validation.Options{
		Subset:       req.Tags.Subset,
		ResampleTest: req.ResampleTest,
		ResampleSize: req.ResampleSize,
		Logger:       s.logger,
	}
	plan := validation.ShardPlan{
		RunID:       runID,
		NSplits:     req.Tags.NSplits,
		Shards:      max(req.Shards, 1),
		MaxParallel: max(req.MaxParallel, 1),
		BaseSeed:    resampleSeed,
		RNG:         s.rng,
	}
	shards, err := validation.RunShards(ctx, plan, X, y, factory, splits, opts)
	if err != nil {
		return nil, errors.Wrap(err, "validation failed")
	}
	result := validation.CombineShards(shards)

	summary, err := validation.SummarizeAccuracy(result.Accuracy, s.bootstraps, rand.New(rand.NewPCG(s.summarySeed, s.summarySeed)))
	if err != nil {
		return nil, errors.Wrap(err, "failed to summarize accuracy")
	}
	return &ValidationRun{RunID: runID, Result: result, Summary: summary}, nil
}

func (s *ValidationService) splitsFor(req ValidationRequest, y va.Series) (iter.Seq[va.Split], error) {
	n := y.Len()
	switch req.Tags.Analysis {
	case va.AnalysisNoTrain:
		return validation.NoTrainingSplits(n, req.Tags.NSplits), nil
	case va.AnalysisInSample:
		return validation.InSampleSplits(n, req.Tags.NSplits), nil
	case va.AnalysisValidate:
		return validation.OutOfSampleSplits(y.Values, req.Tags.NSplits, req.TestSize, req.SplitSeed)
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unknown analysis %q", req.Tags.Analysis))
	}
}

// runID is name-based when every seed is fixed, so a rerun reproduces the
// same resampling streams; otherwise it is a fresh time-ordered id
func (s *ValidationService) runID(req ValidationRequest, X va.Frame, y va.Series, resampleSeed uint64) core.RunID {
	seeded := req.ResampleSeed != nil && (req.Tags.Analysis != va.AnalysisValidate || req.SplitSeed != nil)
	if !seeded {
		return core.NewRunID()
	}
	base, _ := req.Tags.BaseStem()
	params := make(map[string]interface{}, len(req.Params)+4)
	for k, v := range req.Params {
		params[k] = v
	}
	params["classifier"] = req.Classifier
	params["test_size"] = req.TestSize
	params["resample_test"] = req.ResampleTest
	params["resample_size"] = req.ResampleSize
	splitSeed := uint64(0)
	if req.SplitSeed != nil {
		splitSeed = *req.SplitSeed
	}
	name := fmt.Sprintf("%s|%s|%s|%d|%d|%d", base,
		core.ComputeDatasetHash(X.Index, y.Strings()),
		core.ComputeParamsHash(params),
		req.Tags.NSplits, splitSeed, resampleSeed)
	return core.NewSeededRunID(name)
}
