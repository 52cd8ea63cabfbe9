package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func sampleResults() ([]APIMetrics, RunSummary) {
	perAPI := []APIMetrics{
		{Name: "A", Count: 2, CumulativeNS: 400, MeanNS: 200},
		{Name: "B", Count: 1, CumulativeNS: 50, MeanNS: 50},
	}
	summary := RunSummary{
		ProgramDurationNS: 1000,
		APICumulativeNS:   450,
		NonAPINS:          550,
		APISharePct:       45,
		HasProgram:        true,
	}
	return perAPI, summary
}

func TestSummaryPath(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"report.csv", "report_summary.csv"},
		{"out/report.csv", filepath.Join("out", "report_summary.csv")},
		{"report.txt", "report_summary.csv"},
		{"report", "report_summary.csv"},
	}
	for _, tc := range cases {
		if got := SummaryPath(tc.input); got != tc.want {
			t.Fatalf("SummaryPath(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestWriteCSVReports(t *testing.T) {
	perAPI, summary := sampleResults()
	path := filepath.Join(t.TempDir(), "report.csv")

	summaryPath, err := WriteCSVReports(path, perAPI, summary, UnitNS)
	if err != nil {
		t.Fatalf("WriteCSVReports: %v", err)
	}
	if summaryPath != SummaryPath(path) {
		t.Fatalf("summary path = %q, want %q", summaryPath, SummaryPath(path))
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open per-api report: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read per-api report: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("per-api report has %d records, want header + 2", len(records))
	}
	if records[1][0] != "A" || records[1][1] != "2" {
		t.Fatalf("first report row = %v, want label A with count 2", records[1])
	}
	// Machine-readable durations use plain six-decimal notation.
	if records[1][2] != "400.000000" {
		t.Fatalf("cumulative cell = %q, want 400.000000", records[1][2])
	}

	sf, err := os.Open(summaryPath)
	if err != nil {
		t.Fatalf("open summary report: %v", err)
	}
	defer sf.Close()
	srecords, err := csv.NewReader(sf).ReadAll()
	if err != nil {
		t.Fatalf("read summary report: %v", err)
	}
	if len(srecords) != 5 {
		t.Fatalf("summary report has %d records, want header + 4", len(srecords))
	}
	if srecords[1][0] != "Program Duration (ns)" {
		t.Fatalf("summary metric = %q, want unit-labeled name", srecords[1][0])
	}
}

func TestWriteCSVReportsWithoutProgram(t *testing.T) {
	perAPI := []APIMetrics{{Name: "A", Count: 1, CumulativeNS: 100, MeanNS: 100}}
	path := filepath.Join(t.TempDir(), "report.csv")

	summaryPath, err := WriteCSVReports(path, perAPI, RunSummary{APICumulativeNS: 100}, UnitMS)
	if err != nil {
		t.Fatalf("WriteCSVReports: %v", err)
	}
	data, err := os.ReadFile(summaryPath)
	if err != nil {
		t.Fatalf("read summary report: %v", err)
	}
	if got := strings.Count(string(data), notApplicable); got != 3 {
		t.Fatalf("summary report has %d n/a markers, want 3:\n%s", got, data)
	}
}

func TestWriteMarkdown(t *testing.T) {
	perAPI, summary := sampleResults()
	path := filepath.Join(t.TempDir(), "report.md")

	if err := WriteMarkdown(path, perAPI, summary, UnitMS); err != nil {
		t.Fatalf("WriteMarkdown: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read markdown report: %v", err)
	}
	text := string(data)

	for _, want := range []string{
		"## Per-API Runtime Summary",
		"## Run-Level Summary",
		"| API",
		"Program Duration (ms)",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("markdown missing %q:\n%s", want, text)
		}
	}

	// Every line of a table has the same width thanks to padding.
	var tableLines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "|") {
			tableLines = append(tableLines, line)
			continue
		}
		if len(tableLines) > 1 {
			break
		}
	}
	if len(tableLines) < 3 {
		t.Fatalf("expected a pipe table, got:\n%s", text)
	}
	width := len(tableLines[0])
	for _, line := range tableLines {
		if len(line) != width {
			t.Fatalf("unaligned markdown table line %q (width %d, want %d)", line, len(line), width)
		}
	}
}
