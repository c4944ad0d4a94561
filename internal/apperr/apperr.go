// Package apperr classifies errors into the kinds the orchestrator and
// search path need to branch on, without coupling callers to any
// particular store or transport's concrete error types.
package apperr

import (
	"errors"
	"strings"
)

// Sentinel kinds. Wrap a lower-level error with fmt.Errorf("...: %w", ErrX)
// so callers can errors.Is against these.
var (
	ErrInput           = errors.New("input error")
	ErrTransientStore  = errors.New("transient store error")
	ErrPersistentStore = errors.New("persistent store error")
	ErrInference       = errors.New("inference error")
	ErrNotFound        = errors.New("not found")
	ErrRateLimited     = errors.New("rate limited")
)

// rateLimitMarkers are the recognised rate-limit signatures inference
// providers emit.
var rateLimitMarkers = []string{"429", "rate limit", "too many requests"}

// IsRateLimited reports whether err's message carries a recognised
// rate-limit signature, or whether it already wraps ErrRateLimited.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, m := range rateLimitMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// transientMarkers are the connection-class failure signatures safe to
// recover from via reset-and-retry-once.
var transientMarkers = []string{
	"connection closed",
	"connection refused",
	"connection reset",
	"initialisation reply",
	"initialization reply",
	"socket hang up",
	"broken pipe",
	"operation timeout",
	"i/o timeout",
	"eof",
}

// IsTransient reports whether err looks like a connection-class failure
// that is safe to retry after a single reconnect.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTransientStore) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, m := range transientMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
