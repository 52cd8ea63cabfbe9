package trace

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/errgroup"
)

// csvHeader is the fixed column order of the tabular export.
var csvHeader = []string{
	"kind", "name",
	"start_ns", "end_ns", "wall_ns",
	"cpu_start_ns", "cpu_end_ns", "cpu_ns",
	"meta",
}

// snapshotSchemaVersion guards the snapshot payload layout. Bump it when
// SnapshotPayload or Span changes shape.
const snapshotSchemaVersion uint16 = 1

// SnapshotPayload is the binary (msgpack) form of one exported run.
type SnapshotPayload struct {
	Schema uint16 `msgpack:"schema"`
	RunID  string `msgpack:"run_id"`
	Spans  []Span `msgpack:"spans"`
}

// ExportPaths lists the files written by Save.
type ExportPaths struct {
	CSV      string
	JSON     string
	Snapshot string
}

// Save flushes a snapshot of the ledger to <outDir>/<runID>.{csv,json,mp}.
// All three files carry every span exactly once, in ledger order. Save
// only reads the ledger, so it may be called again after further spans are
// recorded.
func (t *Tracer) Save() (ExportPaths, error) {
	spans := t.Snapshot()
	if err := os.MkdirAll(t.outDir, 0o755); err != nil {
		return ExportPaths{}, fmt.Errorf("failed to create output directory: %w", err)
	}
	paths := ExportPaths{
		CSV:      filepath.Join(t.outDir, t.runID+".csv"),
		JSON:     filepath.Join(t.outDir, t.runID+".json"),
		Snapshot: filepath.Join(t.outDir, t.runID+".mp"),
	}

	var g errgroup.Group
	g.Go(func() error { return writeCSV(paths.CSV, spans) })
	g.Go(func() error { return writeJSON(paths.JSON, spans) })
	g.Go(func() error { return writeSnapshot(paths.Snapshot, t.runID, spans) })
	if err := g.Wait(); err != nil {
		return ExportPaths{}, err
	}
	return paths, nil
}

func writeCSV(path string, spans []Span) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv export: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, s := range spans {
		meta, err := metaJSON(s.Meta)
		if err != nil {
			return err
		}
		rec := []string{
			s.Kind.String(),
			s.Name,
			strconv.FormatInt(s.StartNS, 10),
			strconv.FormatInt(s.EndNS, 10),
			strconv.FormatInt(s.WallNS, 10),
			strconv.FormatInt(s.CPUStartNS, 10),
			strconv.FormatInt(s.CPUEndNS, 10),
			strconv.FormatInt(s.CPUNS, 10),
			meta,
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush csv export: %w", err)
	}
	return nil
}

// metaJSON serializes a metadata map for the csv meta cell. Empty maps
// serialize as an empty object so the column stays parseable.
func metaJSON(m Meta) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to encode span meta: %w", err)
	}
	return string(data), nil
}

func writeJSON(path string, spans []Span) error {
	if spans == nil {
		spans = []Span{}
	}
	data, err := json.MarshalIndent(spans, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode json export: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write json export: %w", err)
	}
	return nil
}

func writeSnapshot(path, runID string, spans []Span) error {
	payload := SnapshotPayload{
		Schema: snapshotSchemaVersion,
		RunID:  runID,
		Spans:  spans,
	}
	data, err := msgpack.Marshal(&payload)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot loads a msgpack snapshot previously written by Save.
func ReadSnapshot(path string) (SnapshotPayload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SnapshotPayload{}, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var payload SnapshotPayload
	if err := msgpack.Unmarshal(data, &payload); err != nil {
		return SnapshotPayload{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if payload.Schema != snapshotSchemaVersion {
		return SnapshotPayload{}, fmt.Errorf("unsupported snapshot schema %d (want %d)", payload.Schema, snapshotSchemaVersion)
	}
	return payload, nil
}
