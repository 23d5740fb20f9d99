package surface

import (
	"encoding/json"
	"io"

	"github.com/sheetlens/sheetlens/pkg/analysis"
	"github.com/sheetlens/sheetlens/pkg/quality"
)

// JSONRenderer marshals reports to indented JSON.
type JSONRenderer struct{}

type comparisonJSON struct {
	*analysis.ComparisonResult
	Verdict      analysis.Verdict     `json:"verdict"`
	Improvements int                  `json:"improvements"`
	Degradations int                  `json:"degradations"`
	Quality1     quality.QualityScore `json:"quality1"`
	Quality2     quality.QualityScore `json:"quality2"`
}

type qualityJSON struct {
	FileName string               `json:"file_name"`
	Summary  analysis.Summary     `json:"summary"`
	Quality  quality.QualityScore `json:"quality"`
	Insights *analysis.AIInsights `json:"ai_insights,omitempty"`
}

func (r *JSONRenderer) RenderComparison(w io.Writer, report *ComparisonReport) error {
	up, down := report.Comparison.Tally()
	return encode(w, comparisonJSON{
		ComparisonResult: report.Comparison,
		Verdict:          report.Comparison.Verdict(),
		Improvements:     up,
		Degradations:     down,
		Quality1:         report.Quality1,
		Quality2:         report.Quality2,
	})
}

func (r *JSONRenderer) RenderQuality(w io.Writer, report *QualityReport) error {
	return encode(w, qualityJSON{
		FileName: report.FileName,
		Summary:  report.Summary,
		Quality:  report.Quality,
		Insights: report.Insights,
	})
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
