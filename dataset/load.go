package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// LoadCSV reads a CSV document whose first record is the header.
func LoadCSV(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("CSV is empty")
	}
	return FromRecords(records[0], records[1:])
}

// LoadXLSX reads the first sheet of an Excel workbook whose first row is the
// header.
func LoadXLSX(r io.Reader) (*Frame, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}
	return FromRecords(rows[0], rows[1:])
}

// FromRecords builds a frame from textual records, inferring each column's
// kind. Short records are padded with missing values.
func FromRecords(header []string, records [][]string) (*Frame, error) {
	cols := make([]*Column, 0, len(header))
	for j, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if name == "" {
			name = fmt.Sprintf("column_%d", j+1)
		}
		values := make([]string, len(records))
		for i, rec := range records {
			if j < len(rec) {
				values[i] = strings.TrimSpace(rec[j])
			}
		}
		cols = append(cols, inferColumn(name, values))
	}
	return NewFrame(cols...)
}

// FromRows builds a frame from driver values as returned by database/sql.
func FromRows(header []string, rows [][]any) (*Frame, error) {
	records := make([][]string, len(rows))
	for i, row := range rows {
		rec := make([]string, len(row))
		for j, v := range row {
			rec[j] = formatValue(v)
		}
		records[i] = rec
	}
	return FromRecords(header, records)
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case string:
		return val
	case time.Time:
		return val.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case bool:
		if val {
			return "Yes"
		}
		return "No"
	default:
		return fmt.Sprintf("%v", val)
	}
}

func inferColumn(name string, values []string) *Column {
	nonEmpty := 0
	numeric, binary := true, true
	for _, v := range values {
		if v == "" {
			continue
		}
		nonEmpty++
		if numeric {
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				numeric = false
			}
		}
		if binary {
			switch strings.ToLower(v) {
			case "yes", "no", "true", "false":
			default:
				binary = false
			}
		}
	}

	switch {
	case nonEmpty > 0 && numeric:
		num := make([]float64, len(values))
		for i, v := range values {
			if v == "" {
				num[i] = math.NaN()
				continue
			}
			num[i], _ = strconv.ParseFloat(v, 64)
		}
		return NewNumeric(name, num)
	case nonEmpty > 0 && binary:
		return NewBoolean(name, values)
	default:
		return NewCategorical(name, values)
	}
}
