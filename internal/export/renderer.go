// Package export writes the final schedule in the format downstream tooling
// reads, and parses it back.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/fakeyudi/labclock/internal/schedule"
)

// TimestampLayout is the cell format of planned_start / planned_end.
const TimestampLayout = "2006-01-02 15:04:05"

// Header is the fixed column order of the CSV export.
var Header = []string{"name", "duration", "planned_start", "planned_end"}

// Row is one exported task.
type Row struct {
	Name         string    `json:"name"`
	Duration     int       `json:"duration"` // nominal seconds
	PlannedStart time.Time `json:"planned_start"`
	PlannedEnd   time.Time `json:"planned_end"`
}

// Rows converts a schedule to export rows.
func Rows(s schedule.Schedule) []Row {
	rows := make([]Row, len(s))
	for i, t := range s {
		rows[i] = Row{
			Name:         t.Name,
			Duration:     int(t.Duration / time.Second),
			PlannedStart: t.PlannedStart,
			PlannedEnd:   t.PlannedEnd,
		}
	}
	return rows
}

// Renderer serializes a schedule to bytes.
type Renderer interface {
	Render(s schedule.Schedule) ([]byte, error)
	Ext() string
}

// CSVRenderer renders the schedule as the name,duration,planned_start,planned_end table.
type CSVRenderer struct{}

func (r *CSVRenderer) Ext() string { return ".csv" }

func (r *CSVRenderer) Render(s schedule.Schedule) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Header); err != nil {
		return nil, err
	}
	for _, row := range Rows(s) {
		rec := []string{
			row.Name,
			strconv.Itoa(row.Duration),
			row.PlannedStart.Format(TimestampLayout),
			row.PlannedEnd.Format(TimestampLayout),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

// JSONRenderer renders the schedule rows as indented JSON.
type JSONRenderer struct{}

func (r *JSONRenderer) Ext() string { return ".json" }

func (r *JSONRenderer) Render(s schedule.Schedule) ([]byte, error) {
	return json.MarshalIndent(Rows(s), "", "  ")
}

// ForFormat returns the renderer for "csv" or "json". Anything else is CSV.
func ForFormat(format string) Renderer {
	if format == "json" {
		return &JSONRenderer{}
	}
	return &CSVRenderer{}
}
