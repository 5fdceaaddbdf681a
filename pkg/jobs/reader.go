// Package jobs turns tabular pickup exports into dispatch jobs.
package jobs

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/sherine-k/pickups/pkg/config"
	"github.com/sherine-k/pickups/pkg/dispatch"
)

// Format identifies a tabular input encoding
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ErrUnsupportedFormat is returned for inputs that are neither xlsx nor csv
var ErrUnsupportedFormat = errors.New("unsupported input format")

// Options selects where the job fields live in the table
type Options struct {
	DateColumn     string
	TimeColumn     string
	LocationColumn string
	// Sheet is the xlsx sheet to read; empty selects the first sheet.
	Sheet string
	// Location is the time zone pickups are expressed in; nil means UTC.
	Location *time.Location
}

// OptionsFromConfig builds reader options from the tool configuration
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		DateColumn:     cfg.Columns.Date,
		TimeColumn:     cfg.Columns.Time,
		LocationColumn: cfg.Columns.Location,
		Sheet:          cfg.Sheet,
	}
}

// FormatFromName infers the format from a file name extension
func FormatFromName(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// ReadFile reads all jobs from an xlsx or csv file
func ReadFile(path string, opts Options) ([]dispatch.Job, error) {
	format, err := FormatFromName(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open jobs file: %w", err)
	}
	defer f.Close()

	return Read(f, format, opts)
}

// Read reads all jobs from r. Rows are returned in table order; blank rows
// are skipped. The first non-blank row is the header.
func Read(r io.Reader, format Format, opts Options) ([]dispatch.Job, error) {
	var (
		rows [][]string
		err  error
	)
	switch format {
	case FormatXLSX:
		rows, err = readXLSX(r, opts.Sheet)
	case FormatCSV:
		rows, err = readCSV(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}

	return parseRows(rows, opts)
}

func readXLSX(r io.Reader, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	// raw values keep dates and times as serial numbers whatever their display format
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	return rows, nil
}

type columnIndex struct {
	date, time, location int
}

func parseRows(rows [][]string, opts Options) ([]dispatch.Job, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	header := -1
	for i, row := range rows {
		if !isBlank(row) {
			header = i
			break
		}
	}
	if header < 0 {
		return []dispatch.Job{}, nil
	}

	cols, err := locateColumns(rows[header], opts)
	if err != nil {
		return nil, err
	}

	jobs := make([]dispatch.Job, 0, len(rows)-header-1)
	for i := header + 1; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}
		rowNum := i + 1

		dateCell := cell(row, cols.date)
		if dateCell == "" {
			return nil, &dispatch.MalformedJobError{Row: rowNum, Field: opts.DateColumn, Reason: "missing"}
		}
		date, err := ParseDate(dateCell, loc)
		if err != nil {
			return nil, &dispatch.MalformedJobError{Row: rowNum, Field: opts.DateColumn, Value: dateCell, Reason: err.Error()}
		}

		timeCell := cell(row, cols.time)
		if timeCell == "" {
			return nil, &dispatch.MalformedJobError{Row: rowNum, Field: opts.TimeColumn, Reason: "missing"}
		}
		clock, err := ParseClock(timeCell)
		if err != nil {
			return nil, &dispatch.MalformedJobError{Row: rowNum, Field: opts.TimeColumn, Value: timeCell, Reason: err.Error()}
		}

		jobs = append(jobs, dispatch.Job{
			PickupDate: date,
			PickupTime: clock,
			Location:   cell(row, cols.location),
			Row:        rowNum,
		})
	}

	return jobs, nil
}

func locateColumns(header []string, opts Options) (columnIndex, error) {
	find := func(name string) (int, error) {
		want := strings.ToLower(strings.TrimSpace(name))
		for i, h := range header {
			if strings.ToLower(strings.TrimSpace(h)) == want {
				return i, nil
			}
		}
		return -1, fmt.Errorf("missing column %q", name)
	}

	var (
		cols columnIndex
		err  error
	)
	if cols.date, err = find(opts.DateColumn); err != nil {
		return cols, err
	}
	if cols.time, err = find(opts.TimeColumn); err != nil {
		return cols, err
	}
	if cols.location, err = find(opts.LocationColumn); err != nil {
		return cols, err
	}
	return cols, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
