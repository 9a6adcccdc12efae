package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"
)

// Parser deserializes an exported schedule back into rows.
type Parser interface {
	Parse(data []byte) ([]Row, error)
}

// JSONParser parses the output of JSONRenderer.
type JSONParser struct{}

func (p *JSONParser) Parse(data []byte) ([]Row, error) {
	var rows []Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse JSON schedule: %w", err)
	}
	return rows, nil
}

// CSVParser parses the output of CSVRenderer. Timestamps are read in loc;
// nil means local time, matching how they were written.
type CSVParser struct {
	Location *time.Location
}

func (p *CSVParser) Parse(data []byte) ([]Row, error) {
	loc := p.Location
	if loc == nil {
		loc = time.Local
	}
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = len(Header)

	head, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("not a valid schedule export: empty file")
		}
		return nil, fmt.Errorf("not a valid schedule export: %w", err)
	}
	for i, col := range Header {
		if head[i] != col {
			return nil, fmt.Errorf("not a valid schedule export: column %d is %q, want %q", i+1, head[i], col)
		}
	}

	var rows []Row
	for line := 2; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("not a valid schedule export: %w", err)
		}
		dur, err := strconv.Atoi(rec[1])
		if err != nil {
			return nil, fmt.Errorf("not a valid schedule export: line %d: bad duration %q", line, rec[1])
		}
		start, err := time.ParseInLocation(TimestampLayout, rec[2], loc)
		if err != nil {
			return nil, fmt.Errorf("not a valid schedule export: line %d: bad planned_start: %w", line, err)
		}
		end, err := time.ParseInLocation(TimestampLayout, rec[3], loc)
		if err != nil {
			return nil, fmt.Errorf("not a valid schedule export: line %d: bad planned_end: %w", line, err)
		}
		rows = append(rows, Row{Name: rec[0], Duration: dur, PlannedStart: start, PlannedEnd: end})
	}
	return rows, nil
}

// ForFile picks a parser from the file extension.
func ForFile(ext string) Parser {
	if ext == ".json" {
		return &JSONParser{}
	}
	return &CSVParser{}
}
