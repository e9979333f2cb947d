package activation

import "time"

// BackoffPolicy spaces out retries of a failed activation
type BackoffPolicy struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	MaxAttempts  int
}

// DefaultBackoffPolicy returns 1m, 2m, 4m ... capped at 1h, five attempts
func DefaultBackoffPolicy() BackoffPolicy {
	return BackoffPolicy{
		InitialDelay: time.Minute,
		MaxDelay:     time.Hour,
		MaxAttempts:  5,
	}
}

// Delay returns the wait before the retry following the given attempt number
func (p BackoffPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := p.InitialDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if p.MaxDelay > 0 && delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}
