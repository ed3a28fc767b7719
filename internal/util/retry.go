// ABOUTME: Retry backoff utilities for API calls and database connects
// ABOUTME: Shared by the LLM client and the SQLite open path
package util

import (
	"math/rand/v2"
	"time"
)

// CalculateBackoff returns exponential backoff with jitter
// Base delay is doubled each attempt, with random jitter up to 25%
func CalculateBackoff(baseDelay time.Duration, attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	// Cap attempt to avoid overflow in bit shift (max 30 for safety)
	if attempt > 30 {
		attempt = 30
	}
	// Exponential: 2^attempt * base
	backoff := baseDelay * time.Duration(1<<uint(attempt))
	// Cap at 30 seconds
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	// Add jitter: -25% to +25% using auto-seeded math/rand/v2
	jitter := time.Duration(rand.Int64N(int64(backoff)/2)) - backoff/4
	return backoff + jitter
}

// ConnectBackoff returns the delay before retrying a locked database
// connect: baseDelay * (1 + rand) * min(attempt+1, 5). It grows linearly
// rather than exponentially because file locks clear in milliseconds.
func ConnectBackoff(baseDelay time.Duration, attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	mult := attempt + 1
	if mult > 5 {
		mult = 5
	}
	return time.Duration(float64(baseDelay) * (1 + rand.Float64()) * float64(mult))
}
