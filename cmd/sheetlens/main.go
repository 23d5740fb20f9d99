// Package main provides the sheetlens CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sheetlens",
		Short: "Spreadsheet analysis, quality scoring and period comparison",
		Long: `Sheetlens sends workbooks to an analysis service, scores the quality of
the result, and compares KPIs between two analysed periods.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().Bool("verbose", false, "Log analysis service calls to stderr")

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newCompareCmd(),
		newScoreCmd(),
	)
	return rootCmd
}
