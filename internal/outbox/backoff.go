package outbox

import "time"

const (
	doublingAttempts = 5
	linearStep       = time.Minute
	maxBackoff       = 5 * time.Minute
)

// backoffDelay returns the wait before the next attempt, where attempt is
// the number of deliveries tried so far (1-based). The first five attempts
// double the delay (1s, 2s, 4s, 8s, 16s), later ones grow by a minute per
// attempt (60s, 120s, ...), never exceeding five minutes.
func backoffDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	var delay time.Duration
	if attempt <= doublingAttempts {
		delay = time.Duration(1<<(attempt-1)) * time.Second
	} else {
		delay = time.Duration(attempt-doublingAttempts) * linearStep
	}

	if delay > maxBackoff {
		delay = maxBackoff
	}
	return delay
}
