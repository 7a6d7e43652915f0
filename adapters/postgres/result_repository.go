package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"vaeval/domain/core"
	"vaeval/domain/va"
	"vaeval/ports"

	"github.com/jmoiron/sqlx"
)

// insertBatch bounds the rows per multi-VALUES insert so the bind parameter
// count stays under driver limits
const insertBatch = 500

// ResultRepository stores validation results in the validation_runs table
// family. Undefined metric values are stored as NULL.
type ResultRepository struct {
	db *sqlx.DB
}

var (
	_ ports.ResultStore  = (*ResultRepository)(nil)
	_ ports.ResultLoader = (*ResultRepository)(nil)
	_ ports.ResultIndex  = (*ResultRepository)(nil)
	_ ports.RunReader    = (*ResultRepository)(nil)
)

// NewResultRepository creates a new result repository
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

type runRecord struct {
	ID          string        `db:"id"`
	Stem        string        `db:"stem"`
	Analysis    string        `db:"analysis"`
	Classifier  string        `db:"classifier"`
	Module      string        `db:"module"`
	HCE         bool          `db:"hce"`
	CauseList   string        `db:"cause_list"`
	Symptoms    string        `db:"symptoms"`
	SubsetStart sql.NullInt64 `db:"subset_start"`
	SubsetStop  sql.NullInt64 `db:"subset_stop"`
	NSplits     int           `db:"n_splits"`
	CreatedAt   time.Time     `db:"created_at"`
}

type predictionRecord struct {
	RunID      string `db:"run_id"`
	Position   int    `db:"position"`
	ID         string `db:"observation_id"`
	Actual     string `db:"actual"`
	Prediction string `db:"prediction"`
	Split      int    `db:"split"`
}

type csmfRecord struct {
	RunID      string  `db:"run_id"`
	Position   int     `db:"position"`
	Cause      string  `db:"cause"`
	Actual     float64 `db:"actual"`
	Prediction float64 `db:"prediction"`
	Split      int     `db:"split"`
}

// cccRecord is the long form of one cell of the wide CCC table
type cccRecord struct {
	RunID    string          `db:"run_id"`
	Position int             `db:"position"`
	Split    int             `db:"split"`
	Cause    string          `db:"cause"`
	CCC      sql.NullFloat64 `db:"ccc"`
}

type accuracyRecord struct {
	RunID          string          `db:"run_id"`
	Position       int             `db:"position"`
	MeanCCC        sql.NullFloat64 `db:"mean_ccc"`
	MedianCCC      sql.NullFloat64 `db:"median_ccc"`
	CSMFAccuracy   sql.NullFloat64 `db:"csmf_accuracy"`
	CCCSMFAccuracy sql.NullFloat64 `db:"cccsmf_accuracy"`
	Converged      int             `db:"converged"`
	Split          int             `db:"split"`
}

func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func orNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

func newRunRecord(id core.RunID, stem string, tags va.RunTags) runRecord {
	rec := runRecord{
		ID:         id.String(),
		Stem:       stem,
		Analysis:   tags.Analysis,
		Classifier: tags.Classifier,
		Module:     tags.Module,
		HCE:        tags.HCE,
		CauseList:  tags.CauseList,
		Symptoms:   tags.Symptoms,
		NSplits:    tags.NSplits,
		CreatedAt:  core.Now().Time(),
	}
	if tags.Subset != nil {
		rec.SubsetStart = sql.NullInt64{Int64: int64(tags.Subset.Start), Valid: true}
		rec.SubsetStop = sql.NullInt64{Int64: int64(tags.Subset.Stop), Valid: true}
	}
	return rec
}

// tags rebuilds the run tags a record was saved with
func (r runRecord) tags() va.RunTags {
	t := va.RunTags{
		Analysis:   r.Analysis,
		Classifier: r.Classifier,
		Module:     r.Module,
		HCE:        r.HCE,
		CauseList:  r.CauseList,
		Symptoms:   r.Symptoms,
		NSplits:    r.NSplits,
	}
	if r.SubsetStart.Valid && r.SubsetStop.Valid {
		t.Subset = &va.Subset{Start: int(r.SubsetStart.Int64), Stop: int(r.SubsetStop.Int64)}
	}
	return t
}

// resultRecords flattens a result into table rows keyed by runID
func resultRecords(runID string, result *va.Result) ([]predictionRecord, []csmfRecord, []cccRecord, []accuracyRecord) {
	preds := make([]predictionRecord, len(result.Predictions))
	for i, p := range result.Predictions {
		preds[i] = predictionRecord{RunID: runID, Position: i, ID: p.ID, Actual: string(p.Actual), Prediction: string(p.Prediction), Split: p.Split}
	}
	csmf := make([]csmfRecord, len(result.CSMF))
	for i, c := range result.CSMF {
		csmf[i] = csmfRecord{RunID: runID, Position: i, Cause: string(c.Cause), Actual: c.Actual, Prediction: c.Prediction, Split: c.Split}
	}
	var ccc []cccRecord
	for i, row := range result.CCC {
		causes := make(va.CSMF, len(row.Values))
		for cause := range row.Values {
			causes[cause] = 0
		}
		for _, cause := range causes.Causes() {
			ccc = append(ccc, cccRecord{RunID: runID, Position: i, Split: row.Split, Cause: string(cause), CCC: nullable(row.Values[cause])})
		}
	}
	acc := make([]accuracyRecord, len(result.Accuracy))
	for i, a := range result.Accuracy {
		acc[i] = accuracyRecord{
			RunID: runID, Position: i,
			MeanCCC: nullable(a.MeanCCC), MedianCCC: nullable(a.MedianCCC),
			CSMFAccuracy: nullable(a.CSMFAccuracy), CCCSMFAccuracy: nullable(a.CCCSMFAccuracy),
			Converged: a.Converged, Split: a.Split,
		}
	}
	return preds, csmf, ccc, acc
}

// resultFromRecords is the inverse of resultRecords. Records must be ordered
// by position.
func resultFromRecords(preds []predictionRecord, csmf []csmfRecord, ccc []cccRecord, acc []accuracyRecord) *va.Result {
	result := &va.Result{}
	for _, p := range preds {
		result.Predictions = append(result.Predictions, va.PredictionRow{ID: p.ID, Actual: va.Cause(p.Actual), Prediction: va.Cause(p.Prediction), Split: p.Split})
	}
	for _, c := range csmf {
		result.CSMF = append(result.CSMF, va.CSMFRow{Cause: va.Cause(c.Cause), Actual: c.Actual, Prediction: c.Prediction, Split: c.Split})
	}
	last := -1
	for _, c := range ccc {
		if c.Position != last {
			result.CCC = append(result.CCC, va.CCCRow{Split: c.Split, Values: make(map[va.Cause]float64)})
			last = c.Position
		}
		result.CCC[len(result.CCC)-1].Values[va.Cause(c.Cause)] = orNaN(c.CCC)
	}
	for _, a := range acc {
		result.Accuracy = append(result.Accuracy, va.AccuracyRow{
			MeanCCC: orNaN(a.MeanCCC), MedianCCC: orNaN(a.MedianCCC),
			CSMFAccuracy: orNaN(a.CSMFAccuracy), CCCSMFAccuracy: orNaN(a.CCCSMFAccuracy),
			Converged: a.Converged, Split: a.Split,
		})
	}
	return result
}

// Save stores result under the stem derived from tags, replacing any earlier
// run with the same stem. All tables are written in one transaction.
func (r *ResultRepository) Save(ctx context.Context, tags va.RunTags, result *va.Result) error {
	stem, err := tags.Stem()
	if err != nil {
		return err
	}
	_, err = r.SaveRun(ctx, core.NewRunID(), stem, tags, result)
	return err
}

// SaveStem stores result under an existing stem, recovering its tags from
// the stem. A range of "0-n" covering all n splits of result is a full run.
func (r *ResultRepository) SaveStem(ctx context.Context, stem string, result *va.Result) error {
	tags, err := va.ParseStem(stem)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrInvalidArgument, err)
	}
	tags.NSplits = result.NumSplits()
	if tags.Subset.Start == 0 && tags.Subset.Stop == tags.NSplits {
		tags.Subset = nil
	}
	_, err = r.SaveRun(ctx, core.NewRunID(), stem, tags, result)
	return err
}

// SaveRun stores result with an explicit run id and stem
func (r *ResultRepository) SaveRun(ctx context.Context, runID core.RunID, stem string, tags va.RunTags, result *va.Result) (core.RunID, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := deleteRunByStem(ctx, tx, stem); err != nil {
		return "", err
	}

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO validation_runs (
			id, stem, analysis, classifier, module, hce, cause_list, symptoms,
			subset_start, subset_stop, n_splits, created_at
		) VALUES (
			:id, :stem, :analysis, :classifier, :module, :hce, :cause_list, :symptoms,
			:subset_start, :subset_stop, :n_splits, :created_at
		)`, newRunRecord(runID, stem, tags))
	if err != nil {
		return "", fmt.Errorf("failed to create validation run: %w", err)
	}

	preds, csmf, ccc, acc := resultRecords(runID.String(), result)
	if err := insertBatches(ctx, tx, `
		INSERT INTO validation_predictions (run_id, position, observation_id, actual, prediction, split)
		VALUES (:run_id, :position, :observation_id, :actual, :prediction, :split)`, preds); err != nil {
		return "", fmt.Errorf("failed to insert predictions: %w", err)
	}
	if err := insertBatches(ctx, tx, `
		INSERT INTO validation_csmf (run_id, position, cause, actual, prediction, split)
		VALUES (:run_id, :position, :cause, :actual, :prediction, :split)`, csmf); err != nil {
		return "", fmt.Errorf("failed to insert csmf: %w", err)
	}
	if err := insertBatches(ctx, tx, `
		INSERT INTO validation_ccc (run_id, position, split, cause, ccc)
		VALUES (:run_id, :position, :split, :cause, :ccc)`, ccc); err != nil {
		return "", fmt.Errorf("failed to insert ccc: %w", err)
	}
	if err := insertBatches(ctx, tx, `
		INSERT INTO validation_accuracy (run_id, position, mean_ccc, median_ccc, csmf_accuracy, cccsmf_accuracy, converged, split)
		VALUES (:run_id, :position, :mean_ccc, :median_ccc, :csmf_accuracy, :cccsmf_accuracy, :converged, :split)`, acc); err != nil {
		return "", fmt.Errorf("failed to insert accuracy: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit validation run: %w", err)
	}
	return runID, nil
}

func insertBatches[T any](ctx context.Context, tx *sqlx.Tx, query string, rows []T) error {
	for start := 0; start < len(rows); start += insertBatch {
		stop := min(start+insertBatch, len(rows))
		if _, err := tx.NamedExecContext(ctx, query, rows[start:stop]); err != nil {
			return err
		}
	}
	return nil
}

func deleteRunByStem(ctx context.Context, tx *sqlx.Tx, stem string) error {
	var ids []string
	if err := tx.SelectContext(ctx, &ids, tx.Rebind(`SELECT id FROM validation_runs WHERE stem = ?`), stem); err != nil {
		return fmt.Errorf("failed to look up existing run: %w", err)
	}
	for _, id := range ids {
		for _, table := range []string{"validation_predictions", "validation_csmf", "validation_ccc", "validation_accuracy"} {
			if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM `+table+` WHERE run_id = ?`), id); err != nil {
				return fmt.Errorf("failed to delete %s of run %s: %w", table, id, err)
			}
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM validation_runs WHERE id = ?`), id); err != nil {
			return fmt.Errorf("failed to delete run %s: %w", id, err)
		}
	}
	return nil
}

// Load reads back the result saved under stem
func (r *ResultRepository) Load(ctx context.Context, stem string) (*va.Result, error) {
	run, err := r.GetRun(ctx, stem)
	if err != nil {
		return nil, err
	}

	var preds []predictionRecord
	if err := r.db.SelectContext(ctx, &preds, r.db.Rebind(`
		SELECT run_id, position, observation_id, actual, prediction, split
		FROM validation_predictions WHERE run_id = ? ORDER BY position`), run.ID); err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	var csmf []csmfRecord
	if err := r.db.SelectContext(ctx, &csmf, r.db.Rebind(`
		SELECT run_id, position, cause, actual, prediction, split
		FROM validation_csmf WHERE run_id = ? ORDER BY position`), run.ID); err != nil {
		return nil, fmt.Errorf("failed to query csmf: %w", err)
	}
	var ccc []cccRecord
	if err := r.db.SelectContext(ctx, &ccc, r.db.Rebind(`
		SELECT run_id, position, split, cause, ccc
		FROM validation_ccc WHERE run_id = ? ORDER BY position, cause`), run.ID); err != nil {
		return nil, fmt.Errorf("failed to query ccc: %w", err)
	}
	var acc []accuracyRecord
	if err := r.db.SelectContext(ctx, &acc, r.db.Rebind(`
		SELECT run_id, position, mean_ccc, median_ccc, csmf_accuracy, cccsmf_accuracy, converged, split
		FROM validation_accuracy WHERE run_id = ? ORDER BY position`), run.ID); err != nil {
		return nil, fmt.Errorf("failed to query accuracy: %w", err)
	}
	return resultFromRecords(preds, csmf, ccc, acc), nil
}

// GetRun retrieves run metadata by stem
func (r *ResultRepository) GetRun(ctx context.Context, stem string) (*ports.RunInfo, error) {
	var rec runRecord
	err := r.db.GetContext(ctx, &rec, r.db.Rebind(`
		SELECT id, stem, analysis, classifier, module, hce, cause_list, symptoms,
		       subset_start, subset_stop, n_splits, created_at
		FROM validation_runs WHERE stem = ?`), stem)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.NewNotFoundError("validation run", stem)
		}
		return nil, fmt.Errorf("failed to get validation run: %w", err)
	}
	return &ports.RunInfo{ID: core.RunID(rec.ID), Stem: rec.Stem, Tags: rec.tags(), CreatedAt: rec.CreatedAt}, nil
}

// Stems lists stored stems starting with prefix in lexical order
func (r *ResultRepository) Stems(ctx context.Context, prefix string) ([]string, error) {
	var stems []string
	err := r.db.SelectContext(ctx, &stems, r.db.Rebind(`
		SELECT stem FROM validation_runs WHERE substr(stem, 1, ?) = ? ORDER BY stem`), len(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list validation runs: %w", err)
	}
	return stems, nil
}
