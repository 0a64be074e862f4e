package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/nexcalc/nexcalc/internal/calculation"
	"github.com/nexcalc/nexcalc/internal/config"
	"github.com/nexcalc/nexcalc/internal/logging"
	"github.com/nexcalc/nexcalc/internal/output"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "nexcalc",
	Short: "Economic nexus liability calculator",
	Long:  "Determines per-jurisdiction economic nexus from a transaction history and computes tax, interest, and penalty liability year by year, with an optional voluntary-disclosure scenario.",
}

var calculateCmd = &cobra.Command{
	Use:   "calculate [analysis-file]",
	Short: "Run the nexus and liability analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		includeVda, _ := cmd.Flags().GetBool("vda")
		format, _ := cmd.Flags().GetString("format")

		zl, err := logging.NewLogger(verbose)
		if err != nil {
			return eris.Wrap(err, "calculate: build logger")
		}
		defer zl.Sync() //nolint:errcheck

		analysis, err := config.LoadFromFile(args[0])
		if err != nil {
			return eris.Wrap(err, "calculate: load analysis")
		}

		engine := calculation.NewEngine()
		engine.SetLogger(logging.EngineLogger{S: zl.Sugar()})

		report, err := engine.Run(cmd.Context(), calculation.Input{
			Transactions:    analysis.Transactions,
			Jurisdictions:   analysis.Jurisdictions,
			InterestPenalty: analysis.InterestPenalty,
			CalculationDate: analysis.CalculationDate,
			VdaFilingDate:   analysis.VdaFilingDate,
			IncludeVda:      includeVda,
		})
		if err != nil {
			return eris.Wrap(err, "calculate: run engine")
		}

		formatter := output.GetFormatterByName(format)
		if formatter == nil {
			return eris.Errorf("calculate: unsupported format %q", format)
		}
		rendered, err := formatter.Format(report)
		if err != nil {
			return eris.Wrapf(err, "calculate: render %s", format)
		}
		fmt.Print(string(rendered))
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [analysis-file]",
	Short: "Validate an analysis file without running calculations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		analysis, err := config.LoadFromFile(args[0])
		if err != nil {
			return eris.Wrap(err, "validate")
		}
		fmt.Printf("OK: %d transactions, %d jurisdictions, %d interest/penalty configs\n",
			len(analysis.Transactions), len(analysis.Jurisdictions), len(analysis.InterestPenalty))
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "nexcalc %s (commit %s, built %s)\n", version, commit, date)
		if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
			fmt.Fprintln(os.Stdout, bi.Main.Path)
		}
	},
}

func init() {
	calculateCmd.Flags().String("format", "console", "Output format: console, csv, json")
	calculateCmd.Flags().Bool("vda", false, "Include the voluntary-disclosure scenario")
	calculateCmd.Flags().Bool("verbose", false, "Enable debug logging")

	rootCmd.AddCommand(calculateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, eris.ToString(err, false))
		os.Exit(1)
	}
}
