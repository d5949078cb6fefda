// Package retry drives blueprint generation attempts: it classifies
// failures, applies the bounded backoff schedule, and settles blueprint
// lifecycle state.
package retry

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

// Classification is the binary disposition every error is reduced to before
// any retry decision is made.
type Classification int

// Error dispositions.
const (
	NonRetriable Classification = iota
	Retriable
)

func (c Classification) String() string {
	if c == Retriable {
		return "RETRIABLE"
	}
	return "NON_RETRIABLE"
}

// nonRetriableStatuses are permanent: bad input, auth, not found.
var nonRetriableStatuses = map[int]bool{400: true, 401: true, 403: true, 404: true}

// retriableStatuses are transient: rate limits and upstream server errors.
var retriableStatuses = map[int]bool{429: true, 500: true, 502: true, 503: true}

// Classify labels an error RETRIABLE or NON_RETRIABLE. Status codes take
// precedence; otherwise a timeout signal makes the error retriable.
// Unrecognized errors default to NON_RETRIABLE so permanent bugs are not
// masked as transient.
func Classify(err error) Classification {
	if err == nil {
		return NonRetriable
	}

	if status := httpStatus(err); status != 0 {
		if nonRetriableStatuses[status] {
			return NonRetriable
		}
		if retriableStatuses[status] {
			return Retriable
		}
	}

	if isTimeout(err) {
		return Retriable
	}

	return NonRetriable
}

// httpStatus extracts a status code from any error exposing one.
func httpStatus(err error) int {
	var carrier interface{ HTTPStatus() int }
	if errors.As(err, &carrier) {
		return carrier.HTTPStatus()
	}
	return 0
}

// isTimeout reports whether the error looks like a network timeout or a
// reset connection.
func isTimeout(err error) bool {
	if strings.Contains(strings.ToLower(err.Error()), "timeout") {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return errors.Is(err, syscall.ETIMEDOUT) || errors.Is(err, syscall.ECONNRESET)
}
