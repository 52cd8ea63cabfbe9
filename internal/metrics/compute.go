package metrics

import "sort"

// ProgramSpanName is the run-scope label preferred when deriving the
// program duration.
const ProgramSpanName = "entire_run"

// APIMetrics aggregates every api row sharing one label. Recomputed on
// each evaluation, never persisted on its own.
type APIMetrics struct {
	Name         string
	Count        int
	CumulativeNS int64
	MeanNS       float64
}

// RunSummary describes whole-run behavior derived from the rows.
// ProgramDurationNS, NonAPINS, and APISharePct are meaningful only when
// HasProgram is set; every rendering surface shows them as "n/a"
// otherwise.
type RunSummary struct {
	ProgramDurationNS int64
	APICumulativeNS   int64
	NonAPINS          int64
	APISharePct       float64
	HasProgram        bool
}

// Compute aggregates rows into per-label metrics ordered by cumulative
// duration descending plus the run-level summary. The sort is stable, so
// labels with equal cumulative durations keep first-seen order.
func Compute(rows []Row) ([]APIMetrics, RunSummary) {
	index := make(map[string]int)
	perAPI := make([]APIMetrics, 0)
	for _, r := range rows {
		if r.Kind != "api" {
			continue
		}
		i, ok := index[r.Name]
		if !ok {
			i = len(perAPI)
			index[r.Name] = i
			perAPI = append(perAPI, APIMetrics{Name: r.Name})
		}
		perAPI[i].Count++
		perAPI[i].CumulativeNS += r.WallNS
	}
	for i := range perAPI {
		perAPI[i].MeanNS = float64(perAPI[i].CumulativeNS) / float64(perAPI[i].Count)
	}
	sort.SliceStable(perAPI, func(i, j int) bool {
		return perAPI[i].CumulativeNS > perAPI[j].CumulativeNS
	})

	var summary RunSummary
	for _, m := range perAPI {
		summary.APICumulativeNS += m.CumulativeNS
	}
	if programNS, ok := programDuration(rows); ok {
		summary.HasProgram = true
		summary.ProgramDurationNS = programNS
		// Overlapping concurrent api spans can push this negative; the
		// approximation is kept as-is rather than clamped.
		summary.NonAPINS = programNS - summary.APICumulativeNS
		if programNS > 0 {
			summary.APISharePct = float64(summary.APICumulativeNS) / float64(programNS) * 100
		}
	}
	return perAPI, summary
}

// programDuration picks the largest program span named ProgramSpanName,
// falling back to the largest program span of any name. Reports false when
// no program span exists at all.
func programDuration(rows []Row) (int64, bool) {
	best := int64(0)
	found := false
	for _, r := range rows {
		if r.Kind == "program" && r.Name == ProgramSpanName && (!found || r.WallNS > best) {
			best = r.WallNS
			found = true
		}
	}
	if found {
		return best, true
	}
	for _, r := range rows {
		if r.Kind == "program" && (!found || r.WallNS > best) {
			best = r.WallNS
			found = true
		}
	}
	return best, found
}
