// ABOUTME: Running baseline of task outcomes using Welford's online algorithm
// ABOUTME: Immutable value object persisted as JSON under the meta "baseline" key
package scoring

import (
	"encoding/json"
	"fmt"
	"math"
)

// Baseline tracks the running mean and variance of the three task outcome
// variates: tokens used, errors, and user corrections. Updates return a new
// value; the zero value is an empty baseline.
type Baseline struct {
	Count               int64   `json:"count"`
	MeanTokens          float64 `json:"mean_tokens"`
	MeanErrors          float64 `json:"mean_errors"`
	MeanUserCorrections float64 `json:"mean_user_corrections"`
	M2Tokens            float64 `json:"m2_tokens"`
	M2Errors            float64 `json:"m2_errors"`
	M2UserCorrections   float64 `json:"m2_user_corrections"`
}

// Observe folds one finished task into the baseline and returns the result
func (b Baseline) Observe(tokens, errors, userCorrections float64) Baseline {
	n := b.Count + 1
	next := Baseline{Count: n}
	next.MeanTokens, next.M2Tokens = welford(b.MeanTokens, b.M2Tokens, tokens, n)
	next.MeanErrors, next.M2Errors = welford(b.MeanErrors, b.M2Errors, errors, n)
	next.MeanUserCorrections, next.M2UserCorrections = welford(b.MeanUserCorrections, b.M2UserCorrections, userCorrections, n)
	return next
}

// welford applies one step of Welford's online mean/variance update
func welford(mean, m2, x float64, n int64) (float64, float64) {
	delta := x - mean
	mean += delta / float64(n)
	m2 += delta * (x - mean)
	return mean, m2
}

// StdDevTokens returns the sample standard deviation of tokens used
func (b Baseline) StdDevTokens() float64 {
	return sampleStdDev(b.M2Tokens, b.Count)
}

// StdDevErrors returns the sample standard deviation of error counts
func (b Baseline) StdDevErrors() float64 {
	return sampleStdDev(b.M2Errors, b.Count)
}

// StdDevUserCorrections returns the sample standard deviation of user corrections
func (b Baseline) StdDevUserCorrections() float64 {
	return sampleStdDev(b.M2UserCorrections, b.Count)
}

// sampleStdDev is sqrt(M2/(n-1)) for n >= 2, else 1. A zero spread also maps
// to 1 so z-scores collapse to raw deltas instead of dividing by zero.
func sampleStdDev(m2 float64, n int64) float64 {
	if n < 2 {
		return 1
	}
	sd := math.Sqrt(m2 / float64(n-1))
	if sd <= 0 {
		return 1
	}
	return sd
}

// Encode serializes the baseline for the meta table
func (b Baseline) Encode() (string, error) {
	buf, err := json.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("encode baseline: %w", err)
	}
	return string(buf), nil
}

// DecodeBaseline parses a baseline persisted by Encode
func DecodeBaseline(s string) (Baseline, error) {
	var b Baseline
	if err := json.Unmarshal([]byte(s), &b); err != nil {
		return Baseline{}, fmt.Errorf("decode baseline: %w", err)
	}
	return b, nil
}
