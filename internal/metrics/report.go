package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// WriteMarkdown writes the human-readable report: the same two sections as
// the console output, as aligned markdown pipe tables.
func WriteMarkdown(path string, perAPI []APIMetrics, summary RunSummary, u Unit) error {
	var sb strings.Builder
	sb.WriteString("## Per-API Runtime Summary\n\n")
	writeMarkdownTable(&sb, perAPIHeaders(u), perAPICells(perAPI, u))
	sb.WriteString("\n## Run-Level Summary\n\n")
	writeMarkdownTable(&sb, []string{"Metric", "Value"}, summaryLabeledCells(summary, u))
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write markdown report: %w", err)
	}
	return nil
}

// writeMarkdownTable emits one pipe table with cells padded to display
// width so the report source stays readable. The first column is
// left-aligned, the rest right-aligned.
func writeMarkdownTable(sb *strings.Builder, headers []string, rows [][]string) {
	widths := columnWidths(headers, rows)

	sb.WriteString("|")
	for i, h := range headers {
		sb.WriteString(" " + runewidth.FillRight(h, widths[i]) + " |")
	}
	sb.WriteString("\n|")
	for i := range headers {
		if i == 0 {
			sb.WriteString(" :" + strings.Repeat("-", widths[i]-1) + " |")
		} else {
			sb.WriteString(" " + strings.Repeat("-", widths[i]-1) + ": |")
		}
	}
	sb.WriteString("\n")
	for _, row := range rows {
		sb.WriteString("|")
		for i, cell := range row {
			if i == 0 {
				sb.WriteString(" " + runewidth.FillRight(cell, widths[i]) + " |")
			} else {
				sb.WriteString(" " + runewidth.FillLeft(cell, widths[i]) + " |")
			}
		}
		sb.WriteString("\n")
	}
}

func columnWidths(headers []string, rows [][]string) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

// SummaryPath derives the machine-readable summary file name from the
// per-label report path: the base name plus a fixed "_summary.csv" suffix.
func SummaryPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + "_summary.csv"
}

// WriteCSVReports writes the machine-readable pair: the per-label table to
// path and the run summary to SummaryPath(path). It returns the summary
// path. Durations in the per-label file use six plain decimals for easy
// reparsing.
func WriteCSVReports(path string, perAPI []APIMetrics, summary RunSummary, u Unit) (string, error) {
	perAPIRows := make([][]string, 0, len(perAPI))
	for _, m := range perAPI {
		perAPIRows = append(perAPIRows, []string{
			m.Name,
			strconv.Itoa(m.Count),
			strconv.FormatFloat(float64(m.CumulativeNS)*u.Factor, 'f', 6, 64),
			strconv.FormatFloat(m.MeanNS*u.Factor, 'f', 6, 64),
		})
	}
	if err := writeCSVFile(path, perAPIHeaders(u), perAPIRows); err != nil {
		return "", err
	}

	summaryPath := SummaryPath(path)
	if err := writeCSVFile(summaryPath, []string{"Metric", "Value"}, summaryLabeledCells(summary, u)); err != nil {
		return "", err
	}
	return summaryPath, nil
}

func writeCSVFile(path string, header []string, rows [][]string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write report row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush report %s: %w", path, err)
	}
	return nil
}
