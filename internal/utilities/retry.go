package utilities

import "time"

// RetryWithBackoff retries fn until it succeeds or maxRetry attempts are
// exhausted, returning the error from the last attempt. The backoff doubles
// each time, up to maxBackoff.
func RetryWithBackoff(fn func() error, maxRetry int, startBackoff, maxBackoff time.Duration) error {
	if maxRetry <= 0 {
		return nil
	}
	var err error
	backoff := startBackoff
	for attempt := 0; attempt < maxRetry; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == maxRetry-1 {
			return err
		}
		time.Sleep(backoff)
		if backoff < maxBackoff {
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
	}
	return err
}

// Retry retries fn up to maxRetry times with no delay.
func Retry(fn func() error, maxRetry int) error {
	if maxRetry <= 0 {
		return nil
	}
	var err error
	for attempt := 0; attempt < maxRetry; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
	}
	return err
}
