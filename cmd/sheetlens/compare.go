package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sheetlens/sheetlens/pkg/analysis"
	"github.com/sheetlens/sheetlens/pkg/surface"
)

func newCompareCmd() *cobra.Command {
	var outputFmt string

	cmd := &cobra.Command{
		Use:   "compare <baseline.json> <current.json>",
		Short: "Compare KPIs between two analysed periods",
		Long: `Compares two saved analyses. The first argument is the baseline; changes
and percentages are reported relative to it. KPIs present in only one of
the two analyses are left out.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := rendererFor(outputFmt)
			if err != nil {
				return err
			}

			p1, err := resolveAnalysisPath(args[0])
			if err != nil {
				return err
			}
			p2, err := resolveAnalysisPath(args[1])
			if err != nil {
				return err
			}

			r1, err := analysis.Load(p1)
			if err != nil {
				return fmt.Errorf("loading baseline: %w", err)
			}
			r2, err := analysis.Load(p2)
			if err != nil {
				return fmt.Errorf("loading current: %w", err)
			}

			cfg := loadConfigFromWD()
			report := surface.NewComparisonReport(displayName(p1), r1, displayName(p2), r2, scorerFor(cfg))
			return renderer.RenderComparison(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text or json")
	return cmd
}

func displayName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
