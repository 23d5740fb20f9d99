package main

import (
	"github.com/spf13/cobra"

	"github.com/sheetlens/sheetlens/pkg/analysis"
	"github.com/sheetlens/sheetlens/pkg/surface"
)

func newScoreCmd() *cobra.Command {
	var outputFmt string

	cmd := &cobra.Command{
		Use:   "score <analysis.json>",
		Short: "Score the data quality of a saved analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := rendererFor(outputFmt)
			if err != nil {
				return err
			}

			path, err := resolveAnalysisPath(args[0])
			if err != nil {
				return err
			}
			result, err := analysis.Load(path)
			if err != nil {
				return err
			}

			report := surface.NewQualityReport(displayName(path), result, scorerFor(loadConfigFromWD()))
			return renderer.RenderQuality(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text or json")
	return cmd
}
