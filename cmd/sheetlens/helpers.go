package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sheetlens/sheetlens/pkg/config"
	"github.com/sheetlens/sheetlens/pkg/quality"
	"github.com/sheetlens/sheetlens/pkg/surface"
)

func loadConfig(dir string) *config.Config {
	cfgFile := config.FindConfigFile(dir)
	if cfgFile == "" {
		return config.DefaultConfig()
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		return config.DefaultConfig()
	}
	return cfg
}

func loadConfigFromWD() *config.Config {
	wd, err := os.Getwd()
	if err != nil {
		return config.DefaultConfig()
	}
	return loadConfig(wd)
}

func scorerFor(cfg *config.Config) *quality.Scorer {
	return quality.NewScorer(cfg.Weights().Penalties()...)
}

func rendererFor(format string) (surface.Renderer, error) {
	r, ok := surface.ForFormat(format)
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (want text or json)", format)
	}
	return r, nil
}

func loggerFor(cmd *cobra.Command) *zap.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// resolveAnalysisPath accepts a path to an analysis JSON file, or the bare
// name of an analysis saved by `sheetlens analyze` in the cache directory.
func resolveAnalysisPath(arg string) (string, error) {
	if _, err := os.Stat(arg); err == nil {
		return arg, nil
	}
	if !strings.ContainsRune(arg, filepath.Separator) {
		name := arg
		if filepath.Ext(name) != ".json" {
			name = strings.TrimSuffix(name, filepath.Ext(name)) + ".json"
		}
		cached := filepath.Join(config.AnalysisDir(), name)
		if _, err := os.Stat(cached); err == nil {
			return cached, nil
		}
	}
	return "", fmt.Errorf("analysis %q not found", arg)
}

// defaultSavePath is where `analyze` stores results when --save is not given.
func defaultSavePath(workbook string) string {
	base := filepath.Base(workbook)
	return filepath.Join(config.AnalysisDir(), strings.TrimSuffix(base, filepath.Ext(base))+".json")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
