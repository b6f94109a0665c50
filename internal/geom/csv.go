package geom

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

var (
	latColumn = regexp.MustCompile(`(?i)^(lat|latitude|y)$`)
	lonColumn = regexp.MustCompile(`(?i)^(lon|lng|longitude|long|x)$`)
	numeric   = regexp.MustCompile(`^\s*-?(\d+\.?|\.\d+|\d+\.\d+)([eE][-+]?\d+)?\s*$`)
)

// Table is a parsed CSV: the header row plus one typed record per data row.
type Table struct {
	Headers []string
	Rows    []map[string]any
}

// ColumnsRequired is returned by DecodeCSV when the latitude/longitude
// columns cannot be detected. The caller picks them and calls Table.Points.
type ColumnsRequired struct {
	Table *Table
}

func (e *ColumnsRequired) Error() string {
	return "csv: latitude/longitude columns not found"
}

// ParseCSV reads a header-keyed table. Blank lines are skipped and numeric or
// boolean looking cells are typed; empty cells become nil. Rows with a field
// count different from the header are a syntax error.
func ParseCSV(data []byte) (*Table, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return &Table{}, nil
	}
	if err != nil {
		return nil, &ParseError{Format: CSV, Err: err}
	}
	t := &Table{Headers: header}
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ParseError{Format: CSV, Err: err}
		}
		row := make(map[string]any, len(header))
		for i, h := range header {
			row[h] = inferCell(rec[i])
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func inferCell(s string) any {
	switch {
	case s == "":
		return nil
	case s == "true" || s == "TRUE":
		return true
	case s == "false" || s == "FALSE":
		return false
	case numeric.MatchString(s):
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	}
	return s
}

// DetectGeoColumns finds the first header matching each geocolumn alias.
func DetectGeoColumns(headers []string) (lat, lon string, ok bool) {
	for _, h := range headers {
		if lat == "" && latColumn.MatchString(h) {
			lat = h
		}
		if lon == "" && lonColumn.MatchString(h) {
			lon = h
		}
	}
	return lat, lon, lat != "" && lon != ""
}

// Points converts every row with numeric values in both columns to a Point
// feature whose properties are the whole row. Other rows are dropped.
func (t *Table) Points(lat, lon string) []Candidate {
	out := make([]Candidate, 0, len(t.Rows))
	for _, row := range t.Rows {
		y, ok1 := cellFloat(row[lat])
		x, ok2 := cellFloat(row[lon])
		if !ok1 || !ok2 {
			continue
		}
		out = append(out, &FeatureCandidate{
			Geometry:   typed(orb.Point{x, y}),
			Properties: clone(row),
		})
	}
	return out
}

func cellFloat(v any) (float64, bool) {
	if n, ok := number(v); ok {
		return n, true
	}
	s, ok := v.(string)
	if !ok || !numeric.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil
}

// DecodeCSV parses the table and converts it using the detected geocolumns.
// A table without headers yields no candidates.
func DecodeCSV(data []byte) ([]Candidate, error) {
	t, err := ParseCSV(data)
	if err != nil {
		return nil, err
	}
	if len(t.Headers) == 0 {
		return nil, nil
	}
	lat, lon, ok := DetectGeoColumns(t.Headers)
	if !ok {
		return nil, &ColumnsRequired{Table: t}
	}
	return t.Points(lat, lon), nil
}
