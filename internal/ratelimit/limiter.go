// Package ratelimit throttles the public authentication routes.
package ratelimit

import (
	"context"
	"errors"
)

var (
	// ErrLimited is returned when a key has used up its attempts.
	ErrLimited = errors.New("too many attempts")
	// ErrUnavailable is returned when the backing store cannot be reached.
	ErrUnavailable = errors.New("rate limit store unavailable")
)

// Limiter records one attempt for key and reports whether it is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) error
}

// LoginKey is the throttle key for credential checks against one account.
func LoginKey(subdomain, email string) string {
	return "login:" + subdomain + ":" + email
}

// RegisterKey is the throttle key for registrations from one client address.
func RegisterKey(ip string) string {
	return "register:" + ip
}
