package quality

import (
	"github.com/sheetlens/sheetlens/pkg/analysis"
)

// MaxScore is the score of an analysis with no penalties.
const MaxScore = 100

// Penalty is the interface that all quality penalties implement.
type Penalty interface {
	// Key returns the machine-readable penalty identifier.
	Key() string
	// Name returns the human-readable penalty name.
	Name() string
	// Evaluate computes the points to subtract for the given analysis.
	// A nil analysis must be handled as an empty one.
	Evaluate(result *analysis.AnalysisResult) PenaltyResult
}

// Scorer runs all configured penalties against an analysis.
type Scorer struct {
	penalties []Penalty
}

// NewScorer creates a scorer with the given penalties.
func NewScorer(penalties ...Penalty) *Scorer {
	return &Scorer{penalties: penalties}
}

// Score subtracts every penalty from MaxScore, floors the result at 0 and labels it.
func (s *Scorer) Score(result *analysis.AnalysisResult) QualityScore {
	score := MaxScore
	breakdown := make([]PenaltyResult, 0, len(s.penalties))

	for _, p := range s.penalties {
		pr := p.Evaluate(result)
		if pr.Points < 0 {
			pr.Points = 0
		}
		breakdown = append(breakdown, pr)
		score -= pr.Points
	}

	if score < 0 {
		score = 0
	}

	return QualityScore{
		Score:     score,
		Label:     LabelFromScore(score),
		Breakdown: breakdown,
	}
}

var defaultScorer = NewScorer(DefaultPenalties()...)

// Score scores an analysis with the default penalties.
func Score(result *analysis.AnalysisResult) QualityScore {
	return defaultScorer.Score(result)
}
