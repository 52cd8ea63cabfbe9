package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tracekit/internal/trace"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Record an instrumented sample run and export its trace",
	Long:  `Run a small instrumented workload end to end: install the registry, record api spans inside a program span, restore the bindings, and export the ledger. The resulting files feed tracekit eval`,
	RunE:  runDemo,
}

func init() {
	demoCmd.Flags().String("run-id", "", "run identifier used for export file names (default: timestamped)")
	demoCmd.Flags().String("out-dir", "", "directory for exported traces (default: traces)")
	demoCmd.Flags().Int("iterations", 5, "workload iterations per operation")
}

// demoStore is the sample workload the registry wraps. Label is a
// non-callable member on purpose: the registry must skip it silently.
type demoStore struct {
	Transform func(n int) int
	Label     string
}

func (demoStore) Fetch(n int) int {
	spin(n * 400)
	return n * 2
}

func (demoStore) Store(n int) int {
	spin(n * 150)
	return n
}

func (demoStore) String() string { return "demoStore" }

// spinSink keeps the spin loop observable so it is not optimized away.
var spinSink int

func spin(n int) {
	acc := 0
	for i := 0; i < n; i++ {
		acc += i % 7
	}
	spinSink += acc
}

func runDemo(cmd *cobra.Command, args []string) error {
	cleanup, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	if err := setupColor(cmd); err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	runID, err := cmd.Flags().GetString("run-id")
	if err != nil {
		return fmt.Errorf("failed to get run-id flag: %w", err)
	}
	outDir, err := cmd.Flags().GetString("out-dir")
	if err != nil {
		return fmt.Errorf("failed to get out-dir flag: %w", err)
	}
	iterations, err := cmd.Flags().GetInt("iterations")
	if err != nil {
		return fmt.Errorf("failed to get iterations flag: %w", err)
	}

	cfg, _, err := loadToolConfig(".")
	if err != nil {
		return err
	}
	if outDir == "" {
		outDir = cfg.Output.Dir
	}
	if runID == "" {
		runID = time.Now().Format("run_Jan_02_15-04-05")
	}

	tracer := trace.New(runID, outDir)
	reg := trace.NewRegistry(tracer)
	reg.InstrumentType(demoStore{Transform: func(n int) int { return n + 3 }}, trace.InstrumentConfig{
		Meta: trace.Meta{"library": "tracekit/demo"},
	})
	pause := tracer.InstrumentContext("demo.pause", func(ctx context.Context) error {
		select {
		case <-time.After(2 * time.Millisecond):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}, nil)

	prog := tracer.Program("", trace.Meta{"scenario": "demo"})
	for i := 1; i <= iterations; i++ {
		if _, err := reg.Call("demoStore.Fetch", i); err != nil {
			return err
		}
		if _, err := reg.Call("demoStore.Store", i); err != nil {
			return err
		}
		if _, err := reg.Call("demoStore.Transform", i); err != nil {
			return err
		}
		if err := pause(cmd.Context()); err != nil {
			return err
		}
	}
	prog.End()
	reg.Restore()

	paths, err := tracer.Save()
	if err != nil {
		return err
	}
	if !quiet {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "recorded %d spans\n", tracer.Len())
		fmt.Fprintf(out, "trace written to: %s, %s, %s\n", paths.CSV, paths.JSON, paths.Snapshot)
		fmt.Fprintf(out, "evaluate with: tracekit eval %s\n", paths.CSV)
	}
	return nil
}
