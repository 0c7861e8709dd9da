package httpapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIPLimiter_PerIP(t *testing.T) {
	l := newIPLimiter(2, time.Hour)

	assert.True(t, l.allow("10.0.0.1"))
	assert.True(t, l.allow("10.0.0.1"))
	assert.False(t, l.allow("10.0.0.1"))

	assert.True(t, l.allow("10.0.0.2"), "other addresses keep their own bucket")
}

func TestIPLimiter_Defaults(t *testing.T) {
	l := newIPLimiter(0, 0)
	assert.Equal(t, 1, l.burst)
	assert.True(t, l.allow("10.0.0.1"))
	assert.False(t, l.allow("10.0.0.1"))
}

func TestIPLimiter_Sweep(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	l := newIPLimiter(10, time.Minute)
	l.now = func() time.Time { return now }

	l.allow("10.0.0.1")
	now = now.Add(limiterIdle / 2)
	l.allow("10.0.0.2")

	now = now.Add(limiterIdle/2 + time.Second)
	l.sweep()

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.clients, "10.0.0.1")
	assert.Contains(t, l.clients, "10.0.0.2")
}
