package excel

import (
	"fmt"
	"math"
	"strconv"

	"vaeval/domain/core"
	"vaeval/domain/va"
)

// Table names, shared by CSV file suffixes and workbook sheet names
const (
	TablePredictions = "predictions"
	TableCSMF        = "csmf"
	TableCCC         = "ccc"
	TableAccuracy    = "accuracy"
)

// Tables lists the output tables in write order
var Tables = []string{TablePredictions, TableCSMF, TableCCC, TableAccuracy}

var (
	predictionHeader = []string{"ID", "actual", "prediction", "split"}
	csmfHeader       = []string{"cause", "actual", "prediction", "split"}
	accuracyHeader   = []string{"mean_ccc", "median_ccc", "csmf_accuracy", "cccsmf_accuracy", "converged", "split"}
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// encodeTables renders a result as header-first string grids. The CCC table
// is wide: one column per cause seen in any split, blank where the cause was
// absent from a split and NaN where its CCC was undefined.
func encodeTables(result *va.Result) map[string][][]string {
	out := make(map[string][][]string, len(Tables))

	preds := [][]string{predictionHeader}
	for _, r := range result.Predictions {
		preds = append(preds, []string{r.ID, string(r.Actual), string(r.Prediction), strconv.Itoa(r.Split)})
	}
	out[TablePredictions] = preds

	csmf := [][]string{csmfHeader}
	for _, r := range result.CSMF {
		csmf = append(csmf, []string{string(r.Cause), formatFloat(r.Actual), formatFloat(r.Prediction), strconv.Itoa(r.Split)})
	}
	out[TableCSMF] = csmf

	causes := result.CCCColumns()
	header := make([]string, 0, len(causes)+1)
	for _, c := range causes {
		header = append(header, string(c))
	}
	ccc := [][]string{append(header, "split")}
	for _, r := range result.CCC {
		row := make([]string, 0, len(causes)+1)
		for _, c := range causes {
			v, ok := r.Values[c]
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, formatFloat(v))
		}
		ccc = append(ccc, append(row, strconv.Itoa(r.Split)))
	}
	out[TableCCC] = ccc

	acc := [][]string{accuracyHeader}
	for _, r := range result.Accuracy {
		acc = append(acc, []string{
			formatFloat(r.MeanCCC), formatFloat(r.MedianCCC),
			formatFloat(r.CSMFAccuracy), formatFloat(r.CCCSMFAccuracy),
			strconv.Itoa(r.Converged), strconv.Itoa(r.Split),
		})
	}
	out[TableAccuracy] = acc
	return out
}

// decodeTables is the inverse of encodeTables
func decodeTables(grids map[string][][]string) (*va.Result, error) {
	result := &va.Result{}

	rows, err := body(grids, TablePredictions, predictionHeader)
	if err != nil {
		return nil, err
	}
	for i, r := range rows {
		split, err := parseInt(r[3], TablePredictions, i)
		if err != nil {
			return nil, err
		}
		result.Predictions = append(result.Predictions, va.PredictionRow{
			ID: r[0], Actual: va.Cause(r[1]), Prediction: va.Cause(r[2]), Split: split,
		})
	}

	rows, err = body(grids, TableCSMF, csmfHeader)
	if err != nil {
		return nil, err
	}
	for i, r := range rows {
		vals, err := parseFloats(r[1:3], TableCSMF, i)
		if err != nil {
			return nil, err
		}
		split, err := parseInt(r[3], TableCSMF, i)
		if err != nil {
			return nil, err
		}
		result.CSMF = append(result.CSMF, va.CSMFRow{Cause: va.Cause(r[0]), Actual: vals[0], Prediction: vals[1], Split: split})
	}

	if err := decodeCCC(grids[TableCCC], result); err != nil {
		return nil, err
	}

	rows, err = body(grids, TableAccuracy, accuracyHeader)
	if err != nil {
		return nil, err
	}
	for i, r := range rows {
		vals, err := parseFloats(r[0:4], TableAccuracy, i)
		if err != nil {
			return nil, err
		}
		converged, err := parseInt(r[4], TableAccuracy, i)
		if err != nil {
			return nil, err
		}
		split, err := parseInt(r[5], TableAccuracy, i)
		if err != nil {
			return nil, err
		}
		result.Accuracy = append(result.Accuracy, va.AccuracyRow{
			MeanCCC: vals[0], MedianCCC: vals[1], CSMFAccuracy: vals[2], CCCSMFAccuracy: vals[3],
			Converged: converged, Split: split,
		})
	}
	return result, nil
}

func decodeCCC(grid [][]string, result *va.Result) error {
	if len(grid) == 0 {
		return fmt.Errorf("%w: table %s has no header", core.ErrInvalidArgument, TableCCC)
	}
	header := grid[0]
	splitCol := -1
	for j, h := range header {
		if h == "split" {
			splitCol = j
		}
	}
	if splitCol < 0 {
		return fmt.Errorf("%w: table %s has no split column", core.ErrInvalidArgument, TableCCC)
	}
	for i, r := range grid[1:] {
		r = pad(r, len(header))
		split, err := parseInt(r[splitCol], TableCCC, i)
		if err != nil {
			return err
		}
		row := va.CCCRow{Split: split, Values: make(map[va.Cause]float64)}
		for j, h := range header {
			if j == splitCol || r[j] == "" {
				continue
			}
			v, err := strconv.ParseFloat(r[j], 64)
			if err != nil {
				return fmt.Errorf("%w: table %s row %d column %s: %v", core.ErrInvalidArgument, TableCCC, i+1, h, err)
			}
			row.Values[va.Cause(h)] = v
		}
		result.CCC = append(result.CCC, row)
	}
	return nil
}

// body checks the header and returns the data rows padded to header width.
// Spreadsheet readers drop trailing empty cells.
func body(grids map[string][][]string, table string, header []string) ([][]string, error) {
	grid, ok := grids[table]
	if !ok || len(grid) == 0 {
		return nil, fmt.Errorf("%w: table %s is missing", core.ErrInvalidArgument, table)
	}
	for j, h := range header {
		if j >= len(grid[0]) || grid[0][j] != h {
			return nil, fmt.Errorf("%w: table %s header %v, want %v", core.ErrInvalidArgument, table, grid[0], header)
		}
	}
	rows := make([][]string, 0, len(grid)-1)
	for _, r := range grid[1:] {
		rows = append(rows, pad(r, len(header)))
	}
	return rows, nil
}

func pad(r []string, n int) []string {
	for len(r) < n {
		r = append(r, "")
	}
	return r
}

func parseInt(s, table string, row int) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: table %s row %d: %v", core.ErrInvalidArgument, table, row+1, err)
	}
	return v, nil
}

func parseFloats(cells []string, table string, row int) ([]float64, error) {
	out := make([]float64, len(cells))
	for i, s := range cells {
		if s == "" {
			out[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: table %s row %d: %v", core.ErrInvalidArgument, table, row+1, err)
		}
		out[i] = v
	}
	return out, nil
}
