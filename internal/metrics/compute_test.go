package metrics

import (
	"reflect"
	"testing"
)

func TestComputeAggregation(t *testing.T) {
	rows := []Row{
		{Kind: "api", Name: "A", WallNS: 100},
		{Kind: "api", Name: "A", WallNS: 300},
		{Kind: "api", Name: "B", WallNS: 50},
		{Kind: "program", Name: "entire_run", WallNS: 1000},
	}

	perAPI, summary := Compute(rows)

	want := []APIMetrics{
		{Name: "A", Count: 2, CumulativeNS: 400, MeanNS: 200},
		{Name: "B", Count: 1, CumulativeNS: 50, MeanNS: 50},
	}
	if !reflect.DeepEqual(perAPI, want) {
		t.Fatalf("perAPI = %+v, want %+v", perAPI, want)
	}

	if !summary.HasProgram {
		t.Fatal("summary should have a program duration")
	}
	if summary.ProgramDurationNS != 1000 {
		t.Fatalf("program duration = %d, want 1000", summary.ProgramDurationNS)
	}
	if summary.APICumulativeNS != 450 {
		t.Fatalf("api cumulative = %d, want 450", summary.APICumulativeNS)
	}
	if summary.NonAPINS != 550 {
		t.Fatalf("non-api = %d, want 550", summary.NonAPINS)
	}
	if summary.APISharePct != 45.0 {
		t.Fatalf("api share = %v, want 45.0", summary.APISharePct)
	}
}

func TestComputeNoProgramRows(t *testing.T) {
	rows := []Row{
		{Kind: "api", Name: "A", WallNS: 100},
	}

	_, summary := Compute(rows)

	if summary.HasProgram {
		t.Fatal("summary should not have a program duration")
	}
	if summary.APICumulativeNS != 100 {
		t.Fatalf("api cumulative = %d, want 100", summary.APICumulativeNS)
	}
}

func TestComputeZeroProgramDuration(t *testing.T) {
	rows := []Row{
		{Kind: "api", Name: "A", WallNS: 100},
		{Kind: "program", Name: "entire_run", WallNS: 0},
	}

	_, summary := Compute(rows)

	if !summary.HasProgram {
		t.Fatal("zero-duration program span still counts as present")
	}
	if summary.APISharePct != 0 {
		t.Fatalf("api share = %v for zero program duration, want 0", summary.APISharePct)
	}
	if summary.NonAPINS != -100 {
		t.Fatalf("non-api = %d, want -100 (kept, not clamped)", summary.NonAPINS)
	}
}

func TestComputeProgramDurationFallback(t *testing.T) {
	cases := []struct {
		name string
		rows []Row
		want int64
	}{
		{
			name: "prefers entire_run over larger unnamed program spans",
			rows: []Row{
				{Kind: "program", Name: "entire_run", WallNS: 500},
				{Kind: "program", Name: "warmup", WallNS: 900},
			},
			want: 500,
		},
		{
			name: "takes max among entire_run duplicates",
			rows: []Row{
				{Kind: "program", Name: "entire_run", WallNS: 500},
				{Kind: "program", Name: "entire_run", WallNS: 700},
			},
			want: 700,
		},
		{
			name: "falls back to max among all program spans",
			rows: []Row{
				{Kind: "program", Name: "warmup", WallNS: 300},
				{Kind: "program", Name: "teardown", WallNS: 800},
			},
			want: 800,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, summary := Compute(tc.rows)
			if !summary.HasProgram {
				t.Fatal("expected a program duration")
			}
			if summary.ProgramDurationNS != tc.want {
				t.Fatalf("program duration = %d, want %d", summary.ProgramDurationNS, tc.want)
			}
		})
	}
}

func TestComputeSortOrderAndStability(t *testing.T) {
	rows := []Row{
		{Kind: "api", Name: "small", WallNS: 10},
		{Kind: "api", Name: "tie1", WallNS: 100},
		{Kind: "api", Name: "tie2", WallNS: 100},
		{Kind: "api", Name: "big", WallNS: 500},
	}

	for run := 0; run < 5; run++ {
		perAPI, _ := Compute(rows)
		names := make([]string, len(perAPI))
		for i, m := range perAPI {
			names[i] = m.Name
		}
		want := []string{"big", "tie1", "tie2", "small"}
		if !reflect.DeepEqual(names, want) {
			t.Fatalf("run %d: order = %v, want %v", run, names, want)
		}
	}
}

func TestComputeIgnoresNonAPIKinds(t *testing.T) {
	rows := []Row{
		{Kind: "program", Name: "entire_run", WallNS: 100},
	}
	perAPI, summary := Compute(rows)
	if len(perAPI) != 0 {
		t.Fatalf("perAPI = %+v, want empty", perAPI)
	}
	if summary.APICumulativeNS != 0 {
		t.Fatalf("api cumulative = %d, want 0", summary.APICumulativeNS)
	}
	if summary.NonAPINS != 100 {
		t.Fatalf("non-api = %d, want 100", summary.NonAPINS)
	}
}
