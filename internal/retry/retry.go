// Package retry provides a bounded fixed-backoff retry policy for hardware
// query paths that fail transiently (e.g. DDC reads right after an input
// switch while the monitor is still settling).
package retry

import "time"

// Policy retries an operation up to Attempts times, sleeping Delay between
// attempts. Writes must not be retried; this is for reads only.
type Policy struct {
	Attempts int
	Delay    time.Duration

	// Sleep is swappable for tests. Nil means time.Sleep.
	Sleep func(time.Duration)
}

// Do runs fn until it succeeds or the attempt budget is exhausted, returning
// the last error. Sleeps happen only between attempts, never after the last.
func (p Policy) Do(fn func() error) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts-1 {
			sleep(p.Delay)
		}
	}
	return err
}
