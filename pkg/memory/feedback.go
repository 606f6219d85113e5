package memory

// outcomeGain is the exponential-moving-average step applied per outcome.
const outcomeGain = 0.2

// FoldOutcome folds one usage outcome into a success rate. Drivers share this
// so the quality signal means the same thing regardless of backend. Rates
// outside [0,1] (corrupt rows) are reset to the neutral 0.5 before folding.
func FoldOutcome(rate float64, success bool) float64 {
	if rate < 0 || rate > 1 {
		rate = 0.5
	}

	v := 0.0
	if success {
		v = 1.0
	}

	return rate + (v-rate)*outcomeGain
}
