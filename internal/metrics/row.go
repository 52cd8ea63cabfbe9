package metrics

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"tracekit/internal/trace"
)

// Row is the flattened view of one exported span: just enough to
// aggregate. WallNS is never negative in a well-formed export.
type Row struct {
	Kind   string
	Name   string
	WallNS int64
}

// requiredColumns are the csv columns the compiler cannot do without.
var requiredColumns = []string{"kind", "name", "wall_ns"}

// LoadRows reads rows from an exported trace file. Files ending in ".mp"
// are decoded as binary snapshots; everything else is parsed as the
// tabular csv export. Any malformed required field fails the whole load:
// there is no partial or best-effort output.
func LoadRows(path string) ([]Row, error) {
	if strings.EqualFold(filepath.Ext(path), ".mp") {
		return loadSnapshotRows(path)
	}
	return loadCSVRows(path)
}

func loadCSVRows(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("trace file missing required column %q", name)
		}
	}

	var rows []Row
	line := 1
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}
		line++
		row, err := parseRow(rec, col)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(rec []string, col map[string]int) (Row, error) {
	field := func(name string) (string, error) {
		i := col[name]
		if i >= len(rec) {
			return "", fmt.Errorf("missing field %q", name)
		}
		return rec[i], nil
	}

	kind, err := field("kind")
	if err != nil {
		return Row{}, err
	}
	if kind == "" {
		return Row{}, errors.New("empty kind field")
	}
	name, err := field("name")
	if err != nil {
		return Row{}, err
	}
	if name == "" {
		return Row{}, errors.New("empty name field")
	}
	wallStr, err := field("wall_ns")
	if err != nil {
		return Row{}, err
	}
	wall, err := strconv.ParseInt(strings.TrimSpace(wallStr), 10, 64)
	if err != nil {
		return Row{}, fmt.Errorf("unparsable wall_ns %q: %w", wallStr, err)
	}
	if wall < 0 {
		return Row{}, fmt.Errorf("negative wall_ns %d", wall)
	}
	return Row{Kind: kind, Name: name, WallNS: wall}, nil
}

func loadSnapshotRows(path string) ([]Row, error) {
	snap, err := trace.ReadSnapshot(path)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(snap.Spans))
	for i, s := range snap.Spans {
		if s.WallNS < 0 {
			return nil, fmt.Errorf("span %d: negative wall_ns %d", i, s.WallNS)
		}
		if s.Name == "" {
			return nil, fmt.Errorf("span %d: empty name", i)
		}
		rows = append(rows, Row{Kind: s.Kind.String(), Name: s.Name, WallNS: s.WallNS})
	}
	return rows, nil
}
