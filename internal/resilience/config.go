package resilience

import "time"

// FromOracleConfig builds the retry and breaker settings used around oracle
// calls from plain config values. Non-positive values keep the defaults.
func FromOracleConfig(maxAttempts, breakerThreshold, breakerResetSecs int) (RetryConfig, BreakerConfig) {
	retry := RetryConfig{
		MaxAttempts:    maxAttempts,
		InitialBackoff: time.Second,
		MaxBackoff:     15 * time.Second,
		Multiplier:     2,
		JitterFraction: 0.25,
	}
	breaker := BreakerConfig{Threshold: breakerThreshold}
	if breakerResetSecs > 0 {
		breaker.Cooldown = time.Duration(breakerResetSecs) * time.Second
	}
	return retry, breaker
}
