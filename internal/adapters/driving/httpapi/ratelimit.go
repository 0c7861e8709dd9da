package httpapi

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
)

// Idle per-IP limiters are dropped after this long.
const (
	limiterIdle  = 10 * time.Minute
	limiterSweep = 5 * time.Minute
)

// ipLimiter hands out one token bucket per client IP.
type ipLimiter struct {
	mu      sync.Mutex
	clients map[string]*ipClient
	every   rate.Limit
	burst   int
	now     func() time.Time
}

type ipClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newIPLimiter allows requests per window for each IP, with the whole
// window's allowance available as a burst.
func newIPLimiter(requests int, window time.Duration) *ipLimiter {
	if requests <= 0 {
		requests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &ipLimiter{
		clients: make(map[string]*ipClient),
		every:   rate.Every(window / time.Duration(requests)),
		burst:   requests,
		now:     time.Now,
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	cl, ok := l.clients[ip]
	if !ok {
		cl = &ipClient{limiter: rate.NewLimiter(l.every, l.burst)}
		l.clients[ip] = cl
	}
	cl.lastSeen = l.now()
	l.mu.Unlock()

	return cl.limiter.Allow()
}

// sweep removes limiters idle for longer than limiterIdle.
func (l *ipLimiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-limiterIdle)
	for ip, cl := range l.clients {
		if cl.lastSeen.Before(cutoff) {
			delete(l.clients, ip)
		}
	}
}

// run sweeps periodically until ctx is done.
func (l *ipLimiter) run(ctx context.Context) {
	ticker := time.NewTicker(limiterSweep)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

// middleware rejects requests over the limit with ErrRateLimited.
func (l *ipLimiter) middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		if !l.allow(c.IP()) {
			return domain.ErrRateLimited
		}
		return c.Next()
	}
}
