package store

import (
	"strconv"
	"strings"
	"time"

	"github.com/openpeerlabs/escrow-backend/internal/utils/logger"
)

var transientErrFragments = []string{
	"connection reset",
	"connection refused",
	"unable to connect",
	"the database system is shutting down",
	"the database system is starting up",
	"terminating connection due to administrator command",
	"broken pipe",
	"unexpected eof",
}

// IsTransientErr reports whether err looks like a recoverable connection
// problem rather than a real query failure.
func IsTransientErr(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, fragment := range transientErrFragments {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

// WithRetry runs fn up to maxRetries+1 times with linear backoff, retrying
// only transient connection errors. Non-transient errors propagate
// immediately.
func WithRetry(l *logger.Logger, maxRetries int, interval time.Duration, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !IsTransientErr(err) || attempt >= maxRetries {
			return err
		}

		backoff := time.Duration(attempt+1) * interval
		l.Error("[WithRetry] transient database error, retrying", map[string]string{
			"attempt": strconv.Itoa(attempt + 1),
			"backoff": backoff.String(),
			"error":   err.Error(),
		})
		time.Sleep(backoff)
	}
}
