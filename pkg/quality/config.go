package quality

// Weights holds the penalty weights.
type Weights struct {
	MissingPerValue int
	MissingCap      int
	PerAlert        int
	PerAnomaly      int
}

// Defaults returns the standard weights: 2 points per missing value capped
// at 30, 10 per alert, 5 per anomaly.
func Defaults() Weights {
	return Weights{
		MissingPerValue: 2,
		MissingCap:      30,
		PerAlert:        10,
		PerAnomaly:      5,
	}
}

// Penalties builds the penalty set for these weights.
func (w Weights) Penalties() []Penalty {
	return []Penalty{
		&MissingValuesPenalty{PerValue: w.MissingPerValue, Cap: w.MissingCap},
		&AlertsPenalty{PerAlert: w.PerAlert},
		&AnomaliesPenalty{PerAnomaly: w.PerAnomaly},
	}
}

// DefaultPenalties returns the standard set of penalties with default weights.
func DefaultPenalties() []Penalty {
	return Defaults().Penalties()
}
