// Package quality computes the at-a-glance data-quality score of an analysis.
// The score starts at 100 and each penalty subtracts points from it.
package quality

// Label is the qualitative band of a quality score.
type Label string

const (
	LabelExcellent Label = "excellent"
	LabelMedium    Label = "medium"
	LabelLow       Label = "low"
)

// QualityScore is the result of scoring one analysis. Derived on demand.
type QualityScore struct {
	Score     int             `json:"score"` // 0-100
	Label     Label           `json:"label"`
	Breakdown []PenaltyResult `json:"breakdown,omitempty"`
}

// PenaltyResult is the output of a single penalty.
type PenaltyResult struct {
	Key    string `json:"key"`    // machine key: "missing_values"
	Name   string `json:"name"`   // human name: "Missing values"
	Points int    `json:"points"` // points subtracted from 100, never negative
	Count  int    `json:"count"`  // raw count the penalty is based on
}

// LabelFromScore maps a score to its label.
func LabelFromScore(score int) Label {
	switch {
	case score >= 80:
		return LabelExcellent
	case score >= 60:
		return LabelMedium
	default:
		return LabelLow
	}
}
