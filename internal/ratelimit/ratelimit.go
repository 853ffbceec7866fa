package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

//go:generate go run go.uber.org/mock/mockgen -source=ratelimit.go -destination=mocks/mock.go

// Limiter throttles calls per key, e.g. per generative endpoint.
type Limiter interface {
	Allow(key string) bool
	// Wait blocks until key may proceed or ctx is done.
	Wait(ctx context.Context, key string) error
}

// InMemoryLimiter keeps one token bucket per key.
type InMemoryLimiter struct {
	keys map[string]*rate.Limiter
	mu   sync.Mutex
	r    rate.Limit
	b    int
}

// NewInMemoryLimiter creates a limiter allowing requests per period with the
// given burst. NewInMemoryLimiter(30, time.Minute, 3) allows one request every
// two seconds and three back to back.
func NewInMemoryLimiter(requests int, per time.Duration, burst int) *InMemoryLimiter {
	if requests <= 0 {
		requests = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &InMemoryLimiter{
		keys: make(map[string]*rate.Limiter),
		r:    rate.Every(per / time.Duration(requests)),
		b:    burst,
	}
}

var _ Limiter = (*InMemoryLimiter)(nil)

func (l *InMemoryLimiter) Allow(key string) bool {
	return l.limiter(key).Allow()
}

func (l *InMemoryLimiter) Wait(ctx context.Context, key string) error {
	return l.limiter(key).Wait(ctx)
}

func (l *InMemoryLimiter) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, exists := l.keys[key]
	if !exists {
		limiter = rate.NewLimiter(l.r, l.b)
		l.keys[key] = limiter
	}
	return limiter
}
