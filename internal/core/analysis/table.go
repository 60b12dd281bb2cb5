package analysis

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
)

// Column names of the measurement table. These are a contract with the
// external cell-selection tool, which reads the table and hands it back
// with the process column filled in.
var tableHeader = []string{
	"fov_id", "cell_label", "cell_id",
	"before_stim", "after_stim", "ratio",
	"centroid_y", "centroid_x", "fov_y", "fov_x",
	"process", "before_light", "after_light",
}

// WriteTable encodes measurements as CSV. Undefined values (NaN) are
// written as empty cells.
func WriteTable(w io.Writer, rows []Measurement) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tableHeader); err != nil {
		return fmt.Errorf("failed to write table header: %w", err)
	}
	for _, m := range rows {
		rec := []string{
			m.FOVID,
			strconv.Itoa(m.Label),
			m.CellID,
			formatFloat(m.BeforeStim),
			formatFloat(m.AfterStim),
			formatFloat(m.Ratio),
			formatFloat(m.CentroidY),
			formatFloat(m.CentroidX),
			formatFloat(m.FOVY),
			formatFloat(m.FOVX),
			strconv.FormatBool(m.Process),
			formatFloat(m.PreIllum),
			formatFloat(m.PostIllum),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", m.CellID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadTable decodes a measurement table written by WriteTable (possibly
// updated by the selection tool). Empty cells decode as NaN.
func ReadTable(r io.Reader) ([]Measurement, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read measurement table: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("measurement table is empty")
	}
	if len(records[0]) != len(tableHeader) {
		return nil, fmt.Errorf("measurement table has %d columns, want %d", len(records[0]), len(tableHeader))
	}

	rows := make([]Measurement, 0, len(records)-1)
	for i, rec := range records[1:] {
		label, err := strconv.Atoi(rec[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: bad cell label %q: %w", i+1, rec[1], err)
		}
		process, err := strconv.ParseBool(rec[10])
		if err != nil {
			return nil, fmt.Errorf("row %d: bad process flag %q: %w", i+1, rec[10], err)
		}
		m := Measurement{
			FOVID:      rec[0],
			Label:      label,
			CellID:     rec[2],
			BeforeStim: parseFloat(rec[3]),
			AfterStim:  parseFloat(rec[4]),
			Ratio:      parseFloat(rec[5]),
			CentroidY:  parseFloat(rec[6]),
			CentroidX:  parseFloat(rec[7]),
			FOVY:       parseFloat(rec[8]),
			FOVX:       parseFloat(rec[9]),
			Process:    process,
			PreIllum:   parseFloat(rec[11]),
			PostIllum:  parseFloat(rec[12]),
		}
		rows = append(rows, m)
	}
	return rows, nil
}

// GroupByFOV slices the table per FOV, preserving row order within each
// group. Workers receive their own slice so the parallel sections never
// share mutable rows.
func GroupByFOV(rows []Measurement) map[string][]Measurement {
	out := map[string][]Measurement{}
	for _, m := range rows {
		out[m.FOVID] = append(out[m.FOVID], m)
	}
	return out
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseFloat(s string) float64 {
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
