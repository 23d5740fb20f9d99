package quality

import (
	"github.com/sheetlens/sheetlens/pkg/analysis"
)

// MissingValuesPenalty charges for empty cells, up to a cap.
type MissingValuesPenalty struct {
	PerValue int // points per missing value
	Cap      int // max points from missing values
}

func (p *MissingValuesPenalty) Key() string  { return "missing_values" }
func (p *MissingValuesPenalty) Name() string { return "Missing values" }

func (p *MissingValuesPenalty) Evaluate(result *analysis.AnalysisResult) PenaltyResult {
	var missing int
	if result != nil {
		missing = result.Summary.MissingValues
	}

	points := missing * p.PerValue
	if points > p.Cap {
		points = p.Cap
	}

	return PenaltyResult{Key: p.Key(), Name: p.Name(), Points: points, Count: missing}
}

// AlertsPenalty charges a fixed amount per alert. Uncapped.
type AlertsPenalty struct {
	PerAlert int
}

func (p *AlertsPenalty) Key() string  { return "alerts" }
func (p *AlertsPenalty) Name() string { return "Alerts" }

func (p *AlertsPenalty) Evaluate(result *analysis.AnalysisResult) PenaltyResult {
	n := len(result.AlertsOrEmpty())
	return PenaltyResult{Key: p.Key(), Name: p.Name(), Points: n * p.PerAlert, Count: n}
}

// AnomaliesPenalty charges a fixed amount per anomaly. Uncapped.
type AnomaliesPenalty struct {
	PerAnomaly int
}

func (p *AnomaliesPenalty) Key() string  { return "anomalies" }
func (p *AnomaliesPenalty) Name() string { return "Anomalies" }

func (p *AnomaliesPenalty) Evaluate(result *analysis.AnalysisResult) PenaltyResult {
	n := len(result.AnomaliesOrEmpty())
	return PenaltyResult{Key: p.Key(), Name: p.Name(), Points: n * p.PerAnomaly, Count: n}
}
