// ABOUTME: Pure scoring algebra: task scores, per-memory credit, weight updates
// ABOUTME: Deterministic functions with no storage or clock access
package scoring

import (
	"math"

	"github.com/2389-research/memelord/internal/models"
)

// Weight bounds enforced at every write
const (
	WeightMin = 0.1
	WeightMax = 5.0
)

// coldStartTasks is the baseline size below which task scores use the
// normalized-delta heuristic instead of z-scores.
const coldStartTasks = 10

// fallbackAvgTokens stands in for the average tokens per task before any
// task has finished.
const fallbackAvgTokens = 10000

// Recognized sources for user-category memories
const (
	SourceUserDenial     = "user_denial"
	SourceUserCorrection = "user_correction"
	SourceUserInput      = "user_input"
)

// TaskScore rates a finished task against the baseline; higher is better.
// Below coldStartTasks observations it uses normalized deltas, afterwards
// z-scores. Completion contributes +1, failure -1.
func TaskScore(b Baseline, o models.TaskOutcome) float64 {
	completed := -1.0
	if o.Completed {
		completed = 1.0
	}

	if b.Count < coldStartTasks {
		var tokenTerm, errorTerm float64
		if b.Count > 0 {
			tokenTerm = (b.MeanTokens - float64(o.TokensUsed)) / math.Max(b.MeanTokens, 1)
			errorTerm = (b.MeanErrors - float64(o.Errors)) / math.Max(b.MeanErrors, 1)
		}
		return tokenTerm + errorTerm - 0.5*float64(o.UserCorrections) + completed
	}

	zTokens := (float64(o.TokensUsed) - b.MeanTokens) / b.StdDevTokens()
	zErrors := (float64(o.Errors) - b.MeanErrors) / b.StdDevErrors()
	zCorrections := (float64(o.UserCorrections) - b.MeanUserCorrections) / b.StdDevUserCorrections()
	return -zTokens - zErrors - zCorrections + completed
}

// Credit computes the weight adjustment a memory earns at end-of-task.
// rating is the 0-3 self-report; rated is the number of memories that
// received a nonzero rating in the task, so credit splits across the
// memories that actually helped.
func Credit(taskScore float64, rating, rated int) float64 {
	return taskScore * (float64(rating) / 3.0) / math.Max(float64(rated), 1)
}

// UpdateWeight folds a credit into a weight with an exponential moving
// average at learning rate alpha, clamped into [WeightMin, WeightMax].
func UpdateWeight(weight, credit, alpha float64) float64 {
	return ClampWeight((1-alpha)*weight + alpha*credit)
}

// ClampWeight bounds a weight into [WeightMin, WeightMax]
func ClampWeight(w float64) float64 {
	return math.Min(math.Max(w, WeightMin), WeightMax)
}

// CorrectionWeight is the initial weight of a correction memory. Corrections
// that wasted more than an average task's tokens start proportionally above
// 1.0.
func CorrectionWeight(tokensWasted int64, avgTokensPerTask float64) float64 {
	if avgTokensPerTask <= 0 {
		avgTokensPerTask = fallbackAvgTokens
	}
	return ClampWeight(1.0 + float64(tokensWasted)/math.Max(avgTokensPerTask, 1))
}

// UserSourceWeight is the initial weight of a user-category memory by source
func UserSourceWeight(source string) float64 {
	switch source {
	case SourceUserCorrection:
		return 2.5
	case SourceUserDenial, SourceUserInput:
		return 2.0
	default:
		return 2.0
	}
}

// DecayFactor is the recency multiplier applied during retrieval ranking:
// rate^days with rate in (0,1).
func DecayFactor(rate, days float64) float64 {
	return math.Pow(rate, days)
}
