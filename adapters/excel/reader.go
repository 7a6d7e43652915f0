package excel

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"vaeval/domain/core"
	"vaeval/domain/va"
	"vaeval/ports"

	"github.com/xuri/excelize/v2"
)

// RawRowData represents a row of raw data as column -> cell text
type RawRowData map[string]string

// ExcelData represents a complete sheet or CSV file
type ExcelData struct {
	Headers []string
	Rows    []RawRowData
}

// ReaderConfig selects the columns of a VA dataset
type ReaderConfig struct {
	CauseColumn string   // required
	IDColumn    string   // empty means auto-detect
	Sheet       string   // xlsx sheet, default Sheet1
	DropColumns []string // columns that are neither features nor labels
}

// DefaultReaderConfig matches the layout of the PHMRC-style files
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		CauseColumn: "cause",
		Sheet:       "Sheet1",
	}
}

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	sheet    string
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType, sheet: "Sheet1"}
}

// ReadData reads data from Excel or CSV files into structured format
func (r *DataReader) ReadData() (*ExcelData, error) {
	log.Printf("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSVData()
	case "xlsx":
		return r.readExcelData()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

func (r *DataReader) readExcelData() (*ExcelData, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(r.sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.sheet, err)
	}
	log.Printf("[DataReader] %s read in %.2fms (%d rows)", r.sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, fmt.Errorf("Excel file must have at least a header row and one data row")
	}
	return r.processRows(rows)
}

func (r *DataReader) readCSVData() (*ExcelData, error) {
	readStart := time.Now()
	rows, err := readCSV(r.filePath)
	if err != nil {
		return nil, err
	}
	log.Printf("[DataReader] CSV file read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, fmt.Errorf("CSV file must have at least a header row and one data row")
	}
	return r.processRows(rows)
}

// processRows converts raw string rows into ExcelData format
func (r *DataReader) processRows(rows [][]string) (*ExcelData, error) {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(header)
	}

	dataRows := make([]RawRowData, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rowData := make(RawRowData, len(headers))
		for j, cell := range row {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		dataRows = append(dataRows, rowData)
	}
	return &ExcelData{Headers: headers, Rows: dataRows}, nil
}

// DetectIDColumn finds the observation id column: a well-known name holding
// unique non-empty values, else the first column if it qualifies
func (r *DataReader) DetectIDColumn(data *ExcelData) (string, error) {
	if len(data.Rows) == 0 {
		return "", fmt.Errorf("no data rows found")
	}

	commonIDColumns := []string{"sid", "id", "va_id", "newid", "record_id", "key"}
	for _, colName := range commonIDColumns {
		for _, header := range data.Headers {
			if strings.ToLower(header) == colName && isUniqueColumn(data, header) {
				return header, nil
			}
		}
	}
	if len(data.Headers) > 0 && isUniqueColumn(data, data.Headers[0]) {
		return data.Headers[0], nil
	}
	return "", fmt.Errorf("could not detect an observation id column")
}

func isUniqueColumn(data *ExcelData, column string) bool {
	seen := make(map[string]bool, len(data.Rows))
	for _, row := range data.Rows {
		v := row[column]
		if v == "" || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

// DatasetReader loads a VA dataset: one row per death, an id column, a cause
// column and symptom columns coded as numbers or yes/no words
type DatasetReader struct {
	config ReaderConfig
}

var _ ports.DatasetReader = (*DatasetReader)(nil)

func NewDatasetReader(config ReaderConfig) *DatasetReader {
	if config.Sheet == "" {
		config.Sheet = "Sheet1"
	}
	return &DatasetReader{config: config}
}

// ReadDataset reads features and labels from an xlsx or csv file
func (d *DatasetReader) ReadDataset(ctx context.Context, path string) (va.Frame, va.Series, error) {
	reader := NewDataReader(path)
	reader.sheet = d.config.Sheet
	data, err := reader.ReadData()
	if err != nil {
		return va.Frame{}, va.Series{}, err
	}
	if err := ctx.Err(); err != nil {
		return va.Frame{}, va.Series{}, err
	}
	return d.toDataset(reader, data)
}

func (d *DatasetReader) toDataset(reader *DataReader, data *ExcelData) (va.Frame, va.Series, error) {
	if len(data.Rows) == 0 {
		return va.Frame{}, va.Series{}, core.ErrEmptyDataset
	}
	if !contains(data.Headers, d.config.CauseColumn) {
		return va.Frame{}, va.Series{}, fmt.Errorf("%w: cause column %q not found", core.ErrInvalidArgument, d.config.CauseColumn)
	}

	idColumn := d.config.IDColumn
	if idColumn == "" {
		var err error
		if idColumn, err = reader.DetectIDColumn(data); err != nil {
			return va.Frame{}, va.Series{}, err
		}
	} else if !isUniqueColumn(data, idColumn) {
		return va.Frame{}, va.Series{}, fmt.Errorf("%w: id column %q must hold unique non-empty values", core.ErrInvalidArgument, idColumn)
	}

	skip := map[string]bool{idColumn: true, d.config.CauseColumn: true}
	for _, c := range d.config.DropColumns {
		skip[c] = true
	}
	var columns []string
	for _, h := range data.Headers {
		if !skip[h] {
			columns = append(columns, h)
		}
	}

	index := make([]string, len(data.Rows))
	labels := make([]va.Cause, len(data.Rows))
	rows := make([][]float64, len(data.Rows))
	for i, raw := range data.Rows {
		index[i] = raw[idColumn]
		labels[i] = va.Cause(raw[d.config.CauseColumn])
		if labels[i] == "" {
			return va.Frame{}, va.Series{}, fmt.Errorf("%w: row %d has no cause", core.ErrInvalidArgument, i+2)
		}
		row := make([]float64, len(columns))
		for j, col := range columns {
			v, err := coerceSymptom(raw[col])
			if err != nil {
				return va.Frame{}, va.Series{}, fmt.Errorf("%w: row %d column %s: %v", core.ErrInvalidArgument, i+2, col, err)
			}
			row[j] = v
		}
		rows[i] = row
	}

	X, err := va.NewFrame(index, columns, rows)
	if err != nil {
		return va.Frame{}, va.Series{}, err
	}
	y, err := va.NewSeries(append([]string(nil), index...), labels)
	if err != nil {
		return va.Frame{}, va.Series{}, err
	}
	log.Printf("[DatasetReader] loaded %d deaths, %d symptoms, %d causes", X.Len(), len(columns), len(y.Unique()))
	return X, y, nil
}

// coerceSymptom maps a cell to a number. Blank and "don't know" answers
// count as not endorsed.
func coerceSymptom(cell string) (float64, error) {
	switch strings.ToLower(cell) {
	case "", "no", "n", "false", "don't know", "dk", "refused":
		return 0, nil
	case "yes", "y", "true":
		return 1, nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot read %q as a symptom value", cell)
	}
	if math.IsNaN(v) {
		return 0, nil
	}
	return v, nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
