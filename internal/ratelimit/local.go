package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/time/rate"
)

// pruneThreshold bounds the number of idle keys kept in memory.
const pruneThreshold = 10000

// Local is an in-process token bucket per key, used when no Redis server is
// configured. Each key may burst maxAttempts and refills over one window.
type Local struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
	clock    clock.Clock
}

// NewLocal returns an in-process limiter. A nil clock means wall-clock time.
func NewLocal(maxAttempts int, window time.Duration, clk clock.Clock) *Local {
	if clk == nil {
		clk = clock.New()
	}
	return &Local{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Every(window / time.Duration(maxAttempts)),
		burst:    maxAttempts,
		clock:    clk,
	}
}

func (l *Local) Allow(_ context.Context, key string) error {
	now := l.clock.Now()

	l.mu.Lock()
	lim, ok := l.limiters[key]
	if !ok {
		if len(l.limiters) >= pruneThreshold {
			l.prune(now)
		}
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = lim
	}
	l.mu.Unlock()

	if !lim.AllowN(now, 1) {
		return ErrLimited
	}
	return nil
}

// prune drops limiters whose bucket has refilled. Callers hold l.mu.
func (l *Local) prune(now time.Time) {
	for key, lim := range l.limiters {
		if lim.TokensAt(now) >= float64(l.burst) {
			delete(l.limiters, key)
		}
	}
}
