package analysis

import (
	"math"

	"github.com/montanaflynn/stats"
)

// Trend classifies how a KPI total moved between two analyses.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// Verdict is the overall outcome of a comparison.
type Verdict string

const (
	VerdictBetter Verdict = "better"
	VerdictWorse  Verdict = "worse"
	VerdictStable Verdict = "stable"
)

// KPIComparison is the before/after view of one column present in both analyses.
type KPIComparison struct {
	Column     string  `json:"column"`
	File1Total float64 `json:"file1_total"`
	File2Total float64 `json:"file2_total"`
	Change     float64 `json:"change"`
	ChangePct  float64 `json:"change_pct"`
	Trend      Trend   `json:"trend"`
}

// ComparisonSummary holds the row counts of both files.
type ComparisonSummary struct {
	File1Rows int `json:"file1_rows"`
	File2Rows int `json:"file2_rows"`
	RowsDiff  int `json:"rows_diff"`
}

// ComparisonResult is the KPI diff between two analyses.
// It is derived on demand and never persisted.
type ComparisonResult struct {
	File1          string            `json:"file1"`
	File2          string            `json:"file2"`
	Summary        ComparisonSummary `json:"summary"`
	KPIsComparison []KPIComparison   `json:"kpis_comparison"`
	Alerts1        []Alert           `json:"alerts1"`
	Alerts2        []Alert           `json:"alerts2"`
	Anomalies1     []Anomaly         `json:"anomalies1"`
	Anomalies2     []Anomaly         `json:"anomalies2"`
}

// Compare diffs the KPIs of two analyses. Only columns present in both are
// reported, in the order they first appear in r1. Nil inputs and missing
// collections are treated as empty.
func Compare(file1 string, r1 *AnalysisResult, file2 string, r2 *AnalysisResult) *ComparisonResult {
	result := &ComparisonResult{
		File1: file1,
		File2: file2,
		Summary: ComparisonSummary{
			File1Rows: r1.TotalRows(),
			File2Rows: r2.TotalRows(),
			RowsDiff:  r2.TotalRows() - r1.TotalRows(),
		},
		KPIsComparison: []KPIComparison{},
		Alerts1:        r1.AlertsOrEmpty(),
		Alerts2:        r2.AlertsOrEmpty(),
		Anomalies1:     r1.AnomaliesOrEmpty(),
		Anomalies2:     r2.AnomaliesOrEmpty(),
	}

	if r1 == nil {
		return result
	}

	idx1 := r1.IndexKPIs()
	idx2 := r2.IndexKPIs()

	emitted := make(map[string]bool, len(idx1))
	for _, k := range r1.KPIs {
		if emitted[k.Column] {
			continue
		}
		after, ok := idx2[k.Column]
		if !ok {
			continue
		}
		emitted[k.Column] = true
		result.KPIsComparison = append(result.KPIsComparison, compareKPI(idx1[k.Column], after))
	}

	return result
}

func compareKPI(before, after KPI) KPIComparison {
	f1, f2 := before.Total, after.Total

	// A zero baseline reports 0% rather than an infinite change. Baselines so
	// close to zero that the ratio overflows are treated the same way.
	var pct float64
	if f1 != 0 {
		pct = round2((f2 - f1) / math.Abs(f1) * 100)
		if math.IsInf(pct, 0) || math.IsNaN(pct) {
			pct = 0
		}
	}

	return KPIComparison{
		Column:     before.Column,
		File1Total: f1,
		File2Total: f2,
		Change:     clampFinite(round2(f2 - f1)),
		ChangePct:  pct,
		Trend:      trendOf(f1, f2),
	}
}

// clampFinite keeps results JSON-encodable: overflow saturates at the
// largest float64.
func clampFinite(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case math.IsInf(v, 1):
		return math.MaxFloat64
	case math.IsInf(v, -1):
		return -math.MaxFloat64
	}
	return v
}

func trendOf(before, after float64) Trend {
	switch {
	case after > before:
		return TrendUp
	case after < before:
		return TrendDown
	default:
		return TrendStable
	}
}

// round2 rounds half away from zero to two decimal places.
func round2(v float64) float64 {
	r, err := stats.Round(v, 2)
	if err != nil {
		return v
	}
	return r
}

// Tally counts improved and degraded KPIs.
func (c *ComparisonResult) Tally() (improvements, degradations int) {
	for _, k := range c.KPIsComparison {
		switch k.Trend {
		case TrendUp:
			improvements++
		case TrendDown:
			degradations++
		}
	}
	return improvements, degradations
}

// Verdict is better when more KPIs went up than down, worse in the opposite
// case, and stable on a tie (including when nothing was comparable).
func (c *ComparisonResult) Verdict() Verdict {
	up, down := c.Tally()
	switch {
	case up > down:
		return VerdictBetter
	case down > up:
		return VerdictWorse
	default:
		return VerdictStable
	}
}
