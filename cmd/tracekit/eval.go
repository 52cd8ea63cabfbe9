package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tracekit/internal/metrics"
)

var evalCmd = &cobra.Command{
	Use:   "eval [flags] <trace.csv|trace.mp>",
	Short: "Compile performance metrics from an exported trace",
	Long:  `Compile per-API and run-level performance metrics from a trace exported by a tracekit run. The per-label table and the run summary always print to the console; markdown and csv reports are optional`,
	Args:  cobra.ExactArgs(1),
	RunE:  runEval,
}

func init() {
	evalCmd.Flags().String("unit", "", "display unit for durations (ns|ms|s; default ms)")
	evalCmd.Flags().String("out-md", "", "write a markdown report to this path")
	evalCmd.Flags().String("out-csv", "", "write csv reports (per-API table plus a *_summary.csv sibling)")
}

var sectionHeader = color.New(color.FgCyan, color.Bold)

func runEval(cmd *cobra.Command, args []string) error {
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

	unitFlag, err := cmd.Flags().GetString("unit")
	if err != nil {
		return fmt.Errorf("failed to get unit flag: %w", err)
	}
	outMD, err := cmd.Flags().GetString("out-md")
	if err != nil {
		return fmt.Errorf("failed to get out-md flag: %w", err)
	}
	outCSV, err := cmd.Flags().GetString("out-csv")
	if err != nil {
		return fmt.Errorf("failed to get out-csv flag: %w", err)
	}

	cfg, _, err := loadToolConfig(".")
	if err != nil {
		return err
	}
	if unitFlag == "" {
		unitFlag = cfg.Eval.Unit
	}
	if unitFlag == "" {
		unitFlag = "ms"
	}
	unit, err := metrics.ParseUnit(unitFlag)
	if err != nil {
		return err
	}

	rows, err := metrics.LoadRows(args[0])
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", args[0], err)
	}
	perAPI, summary := metrics.Compute(rows)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	sectionHeader.Fprintln(out, "PER-API RUNTIME SUMMARY")
	fmt.Fprintln(out, metrics.RenderPerAPITable(perAPI, unit))
	fmt.Fprintln(out)
	sectionHeader.Fprintln(out, "RUN-LEVEL SUMMARY")
	fmt.Fprintln(out, metrics.RenderSummaryTable(summary, unit))

	if outMD != "" {
		if err := metrics.WriteMarkdown(outMD, perAPI, summary, unit); err != nil {
			return err
		}
		if !quiet {
			fmt.Fprintf(out, "\nMarkdown report written to: %s\n", outMD)
		}
	}
	if outCSV != "" {
		summaryPath, err := metrics.WriteCSVReports(outCSV, perAPI, summary, unit)
		if err != nil {
			return err
		}
		if !quiet {
			fmt.Fprintf(out, "CSV reports written to: %s and %s\n", outCSV, summaryPath)
		}
	}
	return nil
}
