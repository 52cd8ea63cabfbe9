package trace

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func recordSampleSpans(t *testing.T) *Tracer {
	t.Helper()
	tr := New("sample", t.TempDir())
	tr.API("Store.Fetch", Meta{"library": "demo"}).End()
	tr.API("Store.Store", nil).End()
	tr.Program("", nil).End()
	return tr
}

func TestSaveWritesAllFormats(t *testing.T) {
	tr := recordSampleSpans(t)

	paths, err := tr.Save()
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	for _, p := range []string{paths.CSV, paths.JSON, paths.Snapshot} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("missing export file %s: %v", p, err)
		}
	}
	if filepath.Base(paths.CSV) != "sample.csv" {
		t.Fatalf("csv export named %s, want sample.csv", filepath.Base(paths.CSV))
	}
}

func TestCSVExportShape(t *testing.T) {
	tr := recordSampleSpans(t)
	paths, err := tr.Save()
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	f, err := os.Open(paths.CSV)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if !reflect.DeepEqual(records[0], csvHeader) {
		t.Fatalf("csv header = %v, want %v", records[0], csvHeader)
	}
	if len(records) != 4 {
		t.Fatalf("csv has %d records, want header + 3 rows", len(records))
	}

	// Meta column: json object, empty object when no metadata was attached.
	if records[1][8] != `{"library":"demo"}` {
		t.Fatalf("meta cell = %q, want encoded map", records[1][8])
	}
	if records[2][8] != "{}" {
		t.Fatalf("empty meta cell = %q, want {}", records[2][8])
	}
}

func TestExportRoundTrip(t *testing.T) {
	tr := recordSampleSpans(t)
	want := tr.Snapshot()

	paths, err := tr.Save()
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	// JSON form decodes back into identical spans.
	data, err := os.ReadFile(paths.JSON)
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	var fromJSON []Span
	if err := json.Unmarshal(data, &fromJSON); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if !reflect.DeepEqual(fromJSON, want) {
		t.Fatalf("json round-trip mismatch:\n got %+v\nwant %+v", fromJSON, want)
	}

	// Snapshot form carries the same spans in the same order.
	snap, err := ReadSnapshot(paths.Snapshot)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if snap.RunID != "sample" {
		t.Fatalf("snapshot run id = %q, want sample", snap.RunID)
	}
	if !reflect.DeepEqual(snap.Spans, want) {
		t.Fatalf("snapshot round-trip mismatch:\n got %+v\nwant %+v", snap.Spans, want)
	}

	// CSV form agrees on (kind, name, wall_ns) in ledger order.
	f, err := os.Open(paths.CSV)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	for i, s := range want {
		rec := records[i+1]
		if rec[0] != s.Kind.String() || rec[1] != s.Name {
			t.Fatalf("csv row %d = (%s, %s), want (%s, %s)", i, rec[0], rec[1], s.Kind, s.Name)
		}
	}
}

func TestSaveDoesNotClearLedger(t *testing.T) {
	tr := recordSampleSpans(t)
	if _, err := tr.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := tr.Len(); got != 3 {
		t.Fatalf("ledger has %d spans after Save, want 3", got)
	}
	// A second Save sees the same snapshot plus anything recorded since.
	tr.API("late", nil).End()
	if _, err := tr.Save(); err != nil {
		t.Fatalf("second Save: %v", err)
	}
}

func TestReadSnapshotRejectsUnknownSchema(t *testing.T) {
	dir := t.TempDir()
	tr := New("run", dir)
	tr.API("a", nil).End()
	paths, err := tr.Save()
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Corrupted payloads fail loudly rather than degrading.
	if err := os.WriteFile(paths.Snapshot, []byte("not msgpack"), 0o644); err != nil {
		t.Fatalf("overwrite snapshot: %v", err)
	}
	if _, err := ReadSnapshot(paths.Snapshot); err == nil {
		t.Fatal("expected error for corrupt snapshot")
	}
}

func TestKindJSONRoundTrip(t *testing.T) {
	cases := []struct {
		kind Kind
		want string
	}{
		{KindAPI, `"api"`},
		{KindProgram, `"program"`},
	}
	for _, tc := range cases {
		data, err := json.Marshal(tc.kind)
		if err != nil {
			t.Fatalf("marshal %v: %v", tc.kind, err)
		}
		if string(data) != tc.want {
			t.Fatalf("marshal %v = %s, want %s", tc.kind, data, tc.want)
		}
		var back Kind
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if back != tc.kind {
			t.Fatalf("round-trip %v = %v", tc.kind, back)
		}
	}

	var k Kind
	if err := json.Unmarshal([]byte(`"bogus"`), &k); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
