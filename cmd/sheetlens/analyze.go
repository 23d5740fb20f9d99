package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sheetlens/sheetlens/internal/analyzer"
	"github.com/sheetlens/sheetlens/pkg/analysis"
	"github.com/sheetlens/sheetlens/pkg/surface"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		serviceURL string
		timeout    time.Duration
		savePath   string
		noSave     bool
		outputFmt  string
	)

	cmd := &cobra.Command{
		Use:   "analyze <workbook.xlsx>",
		Short: "Send a workbook to the analysis service and score the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), cmd, analyzeOpts{
				workbook:   args[0],
				serviceURL: serviceURL,
				timeout:    timeout,
				savePath:   savePath,
				noSave:     noSave,
				outputFmt:  outputFmt,
				logger:     loggerFor(cmd),
			})
		},
	}

	cmd.Flags().StringVar(&serviceURL, "service-url", "", "Analysis service base URL (default from config)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Request timeout (default from config)")
	cmd.Flags().StringVar(&savePath, "save", "", "Where to write the analysis JSON (default: cache directory)")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Do not write the analysis to disk")
	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text or json")

	return cmd
}

type analyzeOpts struct {
	workbook   string
	serviceURL string
	timeout    time.Duration
	savePath   string
	noSave     bool
	outputFmt  string
	logger     *zap.Logger
}

func runAnalyze(ctx context.Context, cmd *cobra.Command, opts analyzeOpts) error {
	renderer, err := rendererFor(opts.outputFmt)
	if err != nil {
		return err
	}

	cfg := loadConfigFromWD()
	url := firstNonEmpty(opts.serviceURL, cfg.Analyzer.URL)
	timeout := opts.timeout
	if timeout <= 0 {
		timeout = cfg.AnalyzerTimeout()
	}

	f, err := os.Open(opts.workbook)
	if err != nil {
		return fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	fmt.Fprintf(os.Stderr, "Analyzing %s via %s...\n", filepath.Base(opts.workbook), url)
	client := analyzer.NewClient(url, timeout,
		analyzer.WithMaxUploadSize(cfg.Analyzer.MaxUploadSize),
		analyzer.WithLogger(opts.logger))

	start := time.Now()
	result, err := client.Analyze(ctx, filepath.Base(opts.workbook), f)
	if err != nil {
		var svcErr *analysis.ServiceError
		if errors.As(err, &svcErr) {
			return fmt.Errorf("analysis service rejected %s: %s", filepath.Base(opts.workbook), svcErr.Message)
		}
		return err
	}
	fmt.Fprintf(os.Stderr, "Analysis completed in %s (%d rows)\n",
		time.Since(start).Round(time.Millisecond), result.TotalRows())

	if !opts.noSave {
		out := firstNonEmpty(opts.savePath, defaultSavePath(opts.workbook))
		if err := analysis.Save(out, result); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved: %s\n", out)
	}

	report := surface.NewQualityReport(filepath.Base(opts.workbook), result, scorerFor(cfg))
	return renderer.RenderQuality(cmd.OutOrStdout(), report)
}
