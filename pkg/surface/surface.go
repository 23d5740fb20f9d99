// Package surface renders comparison and quality reports for people and
// for machines. Implementations handle different output targets: terminal
// and JSON.
package surface

import (
	"io"

	"github.com/sheetlens/sheetlens/pkg/analysis"
	"github.com/sheetlens/sheetlens/pkg/quality"
)

// ComparisonReport is a comparison plus the quality of both sides.
type ComparisonReport struct {
	Comparison *analysis.ComparisonResult
	Quality1   quality.QualityScore
	Quality2   quality.QualityScore
}

// QualityReport describes a single analysed file.
type QualityReport struct {
	FileName string
	Summary  analysis.Summary
	Quality  quality.QualityScore
	Insights *analysis.AIInsights
}

// NewComparisonReport compares r1 (baseline) with r2 and scores both sides.
func NewComparisonReport(file1 string, r1 *analysis.AnalysisResult, file2 string, r2 *analysis.AnalysisResult, scorer *quality.Scorer) *ComparisonReport {
	return &ComparisonReport{
		Comparison: analysis.Compare(file1, r1, file2, r2),
		Quality1:   scorer.Score(r1),
		Quality2:   scorer.Score(r2),
	}
}

// NewQualityReport scores a single analysis.
func NewQualityReport(fileName string, r *analysis.AnalysisResult, scorer *quality.Scorer) *QualityReport {
	rep := &QualityReport{FileName: fileName, Quality: scorer.Score(r)}
	if r != nil {
		rep.Summary = r.Summary
		rep.Insights = r.AIInsights
	}
	return rep
}

// Renderer produces formatted output from reports.
type Renderer interface {
	RenderComparison(w io.Writer, report *ComparisonReport) error
	RenderQuality(w io.Writer, report *QualityReport) error
}

// ForFormat returns the renderer for an output format name ("text" or "json").
func ForFormat(format string) (Renderer, bool) {
	switch format {
	case "", "text":
		return &TerminalRenderer{}, true
	case "json":
		return &JSONRenderer{}, true
	default:
		return nil, false
	}
}
