package metrics

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// notApplicable marks summary fields that have no value because the input
// contained no program span.
const notApplicable = "n/a"

// printer groups digits for human-facing output ("1,234.567").
var printer = message.NewPrinter(language.English)

// FormatNS scales a nanosecond duration into the display unit with grouped
// digits and three decimals.
func FormatNS(ns float64, u Unit) string {
	return printer.Sprintf("%.3f", ns*u.Factor)
}

func formatCount(n int) string {
	return printer.Sprintf("%d", n)
}

func formatOptNS(ns int64, present bool, u Unit) string {
	if !present {
		return notApplicable
	}
	return FormatNS(float64(ns), u)
}

func formatOptPct(pct float64, present bool) string {
	if !present {
		return notApplicable
	}
	return printer.Sprintf("%.2f", pct)
}

// The cell builders below feed every rendering surface (console, markdown,
// csv reports) so the surfaces cannot drift apart.

func perAPIHeaders(u Unit) []string {
	return []string{
		"API",
		"Invocation Count",
		"Cumulative Duration (" + u.Name + ")",
		"Mean Duration (" + u.Name + ")",
	}
}

func perAPICells(perAPI []APIMetrics, u Unit) [][]string {
	rows := make([][]string, 0, len(perAPI))
	for _, m := range perAPI {
		rows = append(rows, []string{
			m.Name,
			formatCount(m.Count),
			FormatNS(float64(m.CumulativeNS), u),
			FormatNS(m.MeanNS, u),
		})
	}
	return rows
}

func summaryHeaders(u Unit) []string {
	return []string{"Metric", "Value (" + u.Name + " / %)"}
}

// summaryCells renders the run summary with bare metric names; the console
// table header carries the unit instead.
func summaryCells(s RunSummary, u Unit) [][]string {
	return [][]string{
		{"Program Duration", formatOptNS(s.ProgramDurationNS, s.HasProgram, u)},
		{"API Cumulative Duration", FormatNS(float64(s.APICumulativeNS), u)},
		{"Non-API Duration (Program - API)", formatOptNS(s.NonAPINS, s.HasProgram, u)},
		{"API Share of Program (%)", formatOptPct(s.APISharePct, s.HasProgram)},
	}
}

// summaryLabeledCells carries the unit inside each metric name, for report
// files whose header has no unit column.
func summaryLabeledCells(s RunSummary, u Unit) [][]string {
	return [][]string{
		{"Program Duration (" + u.Name + ")", formatOptNS(s.ProgramDurationNS, s.HasProgram, u)},
		{"API Cumulative Duration (" + u.Name + ")", FormatNS(float64(s.APICumulativeNS), u)},
		{"Non-API Duration (" + u.Name + ")", formatOptNS(s.NonAPINS, s.HasProgram, u)},
		{"API Share of Program (%)", formatOptPct(s.APISharePct, s.HasProgram)},
	}
}

// RenderPerAPITable returns the per-label console box table.
func RenderPerAPITable(perAPI []APIMetrics, u Unit) string {
	return renderTable(perAPIHeaders(u), perAPICells(perAPI, u))
}

// RenderSummaryTable returns the run-level console box table.
func RenderSummaryTable(s RunSummary, u Unit) string {
	return renderTable(summaryHeaders(u), summaryCells(s, u))
}

func renderTable(headers []string, rows [][]string) string {
	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	labelStyle := lipgloss.NewStyle().Padding(0, 1)
	numberStyle := lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == 0 {
				return headerStyle
			}
			if col == 0 {
				return labelStyle
			}
			return numberStyle
		})
	return t.String()
}
