package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vaeval/domain/va"
	"vaeval/ports"

	"github.com/xuri/excelize/v2"
)

// CSVStore writes each result table to <dir>/<stem>_<table>.csv without an
// index column
type CSVStore struct {
	dir string
}

var (
	_ ports.ResultStore  = (*CSVStore)(nil)
	_ ports.ResultLoader = (*CSVStore)(nil)
	_ ports.ResultIndex  = (*CSVStore)(nil)
)

func NewCSVStore(dir string) *CSVStore {
	return &CSVStore{dir: dir}
}

// Path returns the file a table of stem is written to
func (s *CSVStore) Path(stem, table string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s.csv", stem, table))
}

// Save writes the four tables under the stem derived from tags
func (s *CSVStore) Save(ctx context.Context, tags va.RunTags, result *va.Result) error {
	stem, err := tags.Stem()
	if err != nil {
		return err
	}
	return s.SaveStem(ctx, stem, result)
}

// SaveStem writes the four tables under an explicit stem
func (s *CSVStore) SaveStem(ctx context.Context, stem string, result *va.Result) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	grids := encodeTables(result)
	for _, table := range Tables {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeCSV(s.Path(stem, table), grids[table]); err != nil {
			return err
		}
	}
	log.Printf("[CSVStore] wrote %s (%d splits) to %s", stem, result.NumSplits(), s.dir)
	return nil
}

func writeCSV(path string, grid [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(grid); err != nil {
		f.Close()
		return fmt.Errorf("failed to write CSV file %s: %w", path, err)
	}
	return f.Close()
}

// Load reads back the tables written under stem
func (s *CSVStore) Load(ctx context.Context, stem string) (*va.Result, error) {
	grids := make(map[string][][]string, len(Tables))
	for _, table := range Tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		grid, err := readCSV(s.Path(stem, table))
		if err != nil {
			return nil, err
		}
		grids[table] = grid
	}
	return decodeTables(grids)
}

// Stems lists the stems in the store directory starting with prefix.
// Stems are derived from the accuracy files so each is listed once.
func (s *CSVStore) Stems(ctx context.Context, prefix string) ([]string, error) {
	return globStems(s.dir, prefix, "_"+TableAccuracy+".csv")
}

func globStems(dir, prefix, suffix string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, prefix+"*"+suffix))
	if err != nil {
		return nil, err
	}
	stems := make([]string, 0, len(matches))
	for _, m := range matches {
		stems = append(stems, strings.TrimSuffix(filepath.Base(m), suffix))
	}
	return stems, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file %s: %w", path, err)
	}
	return rows, nil
}

// WorkbookStore writes one <dir>/<stem>.xlsx per run with a sheet per table
type WorkbookStore struct {
	dir string
}

var (
	_ ports.ResultStore  = (*WorkbookStore)(nil)
	_ ports.ResultLoader = (*WorkbookStore)(nil)
	_ ports.ResultIndex  = (*WorkbookStore)(nil)
)

func NewWorkbookStore(dir string) *WorkbookStore {
	return &WorkbookStore{dir: dir}
}

// Path returns the workbook a stem is written to
func (s *WorkbookStore) Path(stem string) string {
	return filepath.Join(s.dir, stem+".xlsx")
}

func (s *WorkbookStore) Save(ctx context.Context, tags va.RunTags, result *va.Result) error {
	stem, err := tags.Stem()
	if err != nil {
		return err
	}
	return s.SaveStem(ctx, stem, result)
}

// SaveStem writes the workbook under an explicit stem
func (s *WorkbookStore) SaveStem(ctx context.Context, stem string, result *va.Result) error {
	start := time.Now()
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	grids := encodeTables(result)
	for i, table := range Tables {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i == 0 {
			if err := f.SetSheetName("Sheet1", table); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(table); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", table, err)
		}
		if err := writeSheet(f, table, grids[table]); err != nil {
			return err
		}
	}

	if err := f.SaveAs(s.Path(stem)); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	log.Printf("[WorkbookStore] wrote %s in %.2fms", s.Path(stem), float64(time.Since(start).Nanoseconds())/1e6)
	return nil
}

func writeSheet(f *excelize.File, sheet string, grid [][]string) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to open sheet %s: %w", sheet, err)
	}
	for i, row := range grid {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, cells); err != nil {
			return fmt.Errorf("failed to write sheet %s row %d: %w", sheet, i+1, err)
		}
	}
	return sw.Flush()
}

// Stems lists the workbooks in the store directory starting with prefix
func (s *WorkbookStore) Stems(ctx context.Context, prefix string) ([]string, error) {
	return globStems(s.dir, prefix, ".xlsx")
}

// Load reads back a workbook written by Save
func (s *WorkbookStore) Load(ctx context.Context, stem string) (*va.Result, error) {
	f, err := excelize.OpenFile(s.Path(stem))
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	grids := make(map[string][][]string, len(Tables))
	for _, table := range Tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := f.GetRows(table)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", table, err)
		}
		grids[table] = rows
	}
	return decodeTables(grids)
}

// Combine loads every stem and concatenates the results in order, the way
// shard outputs of a partitioned run are merged
func Combine(ctx context.Context, loader ports.ResultLoader, stems []string) (*va.Result, error) {
	results := make([]*va.Result, 0, len(stems))
	for _, stem := range stems {
		r, err := loader.Load(ctx, stem)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", stem, err)
		}
		results = append(results, r)
	}
	return va.Concat(results...), nil
}
