package surface_test

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheetlens/sheetlens/pkg/analysis"
	"github.com/sheetlens/sheetlens/pkg/quality"
	"github.com/sheetlens/sheetlens/pkg/surface"
)

func sampleReport() *surface.ComparisonReport {
	r1 := &analysis.AnalysisResult{
		Summary: analysis.Summary{TotalRows: 100, MissingValues: 3},
		KPIs: []analysis.KPI{
			{Column: "Ventes", Total: 1000},
			{Column: "Retours", Total: 80},
			{Column: "Stock", Total: 0},
		},
	}
	r2 := &analysis.AnalysisResult{
		Summary: analysis.Summary{TotalRows: 120, MissingValues: 20},
		KPIs: []analysis.KPI{
			{Column: "Ventes", Total: 1200},
			{Column: "Retours", Total: 60},
			{Column: "Stock", Total: 300},
		},
		Alerts: []analysis.Alert{{Type: analysis.AlertWarning}},
	}
	return surface.NewComparisonReport("jan.xlsx", r1, "feb.xlsx", r2, quality.NewScorer(quality.DefaultPenalties()...))
}

func TestTerminalRenderer_Comparison(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	require.NoError(t, (&surface.TerminalRenderer{}).RenderComparison(&buf, sampleReport()))
	output := buf.String()

	assert.Contains(t, output, "Comparison: jan.xlsx → feb.xlsx")
	assert.Contains(t, output, "Rows: 100 → 120 (+20)")
	assert.Contains(t, output, "Ventes")
	assert.Contains(t, output, "+200.00 (+20.00%)")
	assert.Contains(t, output, "-20.00 (-25.00%)")
	assert.Contains(t, output, "(new)")
	assert.Contains(t, output, "Alerts: 0 → 1")
	assert.Contains(t, output, "Quality: 94/100 (excellent) → 60/100 (medium)")
	assert.Contains(t, output, "Verdict: better (2 improved, 1 degraded)")
	assert.NotContains(t, output, "\033[")
}

func TestTerminalRenderer_NoCommonKPIs(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	report := surface.NewComparisonReport(
		"a.xlsx", &analysis.AnalysisResult{KPIs: []analysis.KPI{{Column: "A", Total: 1}}},
		"b.xlsx", &analysis.AnalysisResult{KPIs: []analysis.KPI{{Column: "B", Total: 1}}},
		quality.NewScorer(quality.DefaultPenalties()...),
	)

	var buf bytes.Buffer
	require.NoError(t, (&surface.TerminalRenderer{}).RenderComparison(&buf, report))

	assert.Contains(t, buf.String(), "No common KPIs.")
	assert.Contains(t, buf.String(), "Verdict: stable (0 improved, 0 degraded)")
}

func TestTerminalRenderer_Quality(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	health := 72
	r := &analysis.AnalysisResult{
		Summary:   analysis.Summary{TotalRows: 120, TotalColumns: 4, MissingValues: 20},
		Alerts:    []analysis.Alert{{}, {}},
		Anomalies: []analysis.Anomaly{{}},
		AIInsights: &analysis.AIInsights{
			Domain:      "retail",
			HealthScore: &health,
			Strengths:   []string{"Steady sales growth"},
			Conclusion:  "Data is usable but the missing values in the returns column need attention.",
		},
	}

	var buf bytes.Buffer
	report := surface.NewQualityReport("feb.xlsx", r, quality.NewScorer(quality.DefaultPenalties()...))
	require.NoError(t, (&surface.TerminalRenderer{}).RenderQuality(&buf, report))
	output := buf.String()

	assert.Contains(t, output, "Score 45/100 (low)")
	assert.Contains(t, output, "(-30) Missing values × 20")
	assert.Contains(t, output, "(-20) Alerts × 2")
	assert.Contains(t, output, "(-5) Anomalies × 1")
	assert.Contains(t, output, "Insights (retail), health 72/100:")
	assert.Contains(t, output, "+ Steady sales growth")
}

func TestTerminalRenderer_QualityClean(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	report := surface.NewQualityReport("clean.xlsx", &analysis.AnalysisResult{}, quality.NewScorer(quality.DefaultPenalties()...))
	require.NoError(t, (&surface.TerminalRenderer{}).RenderQuality(&buf, report))

	assert.Contains(t, buf.String(), "Score 100/100 (excellent)")
	assert.Contains(t, buf.String(), "No penalties.")
}

func TestTerminalRenderer_ColorRespected(t *testing.T) {
	if v, ok := os.LookupEnv("NO_COLOR"); ok {
		t.Cleanup(func() { os.Setenv("NO_COLOR", v) })
		os.Unsetenv("NO_COLOR")
	}

	var buf bytes.Buffer
	require.NoError(t, (&surface.TerminalRenderer{}).RenderComparison(&buf, sampleReport()))

	assert.Contains(t, buf.String(), "\033[")
}

func TestJSONRenderer_Comparison(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&surface.JSONRenderer{}).RenderComparison(&buf, sampleReport()))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, "better", got["verdict"])
	assert.Equal(t, float64(2), got["improvements"])
	assert.Equal(t, float64(1), got["degradations"])
	assert.Equal(t, "jan.xlsx", got["file1"])
	assert.Len(t, got["kpis_comparison"], 3)
	assert.Contains(t, got, "quality1")
}

func TestJSONRenderer_Quality(t *testing.T) {
	var buf bytes.Buffer
	report := surface.NewQualityReport("a.xlsx", nil, quality.NewScorer(quality.DefaultPenalties()...))
	require.NoError(t, (&surface.JSONRenderer{}).RenderQuality(&buf, report))

	var got struct {
		FileName string `json:"file_name"`
		Quality  struct {
			Score int    `json:"score"`
			Label string `json:"label"`
		} `json:"quality"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "a.xlsx", got.FileName)
	assert.Equal(t, 100, got.Quality.Score)
	assert.Equal(t, "excellent", got.Quality.Label)
}

func TestForFormat(t *testing.T) {
	r, ok := surface.ForFormat("json")
	assert.True(t, ok)
	assert.IsType(t, &surface.JSONRenderer{}, r)

	r, ok = surface.ForFormat("")
	assert.True(t, ok)
	assert.IsType(t, &surface.TerminalRenderer{}, r)

	_, ok = surface.ForFormat("xml")
	assert.False(t, ok)
}
