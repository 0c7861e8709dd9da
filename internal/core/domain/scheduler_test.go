package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSchedulerConfig(t *testing.T) {
	config := DefaultSchedulerConfig()

	assert.True(t, config.Enabled)
	assert.Equal(t, 45*time.Minute, config.RefreshInterval)
	assert.Equal(t, 10*time.Minute, config.RefreshLead)
	assert.Equal(t, time.Minute, config.TickInterval)
}

func TestSchedulerSettings_SchedulerConfig(t *testing.T) {
	t.Run("overrides positive values", func(t *testing.T) {
		cfg := SchedulerSettings{
			Enabled:         true,
			RefreshInterval: 5 * time.Minute,
			RefreshLead:     time.Minute,
		}.SchedulerConfig()

		assert.True(t, cfg.Enabled)
		assert.Equal(t, 5*time.Minute, cfg.RefreshInterval)
		assert.Equal(t, time.Minute, cfg.RefreshLead)
	})

	t.Run("keeps defaults for zero values", func(t *testing.T) {
		cfg := SchedulerSettings{}.SchedulerConfig()

		assert.False(t, cfg.Enabled)
		assert.Equal(t, 45*time.Minute, cfg.RefreshInterval)
		assert.Equal(t, 10*time.Minute, cfg.RefreshLead)
	})
}

func TestScheduledTask_Fields(t *testing.T) {
	now := time.Now()
	task := ScheduledTask{
		ID:          TaskIDOAuthRefresh,
		Name:        "OAuth Token Refresh",
		Interval:    45 * time.Minute,
		LastRun:     now.Add(-time.Hour),
		NextRun:     now,
		LastSuccess: now.Add(-time.Hour),
		Enabled:     true,
	}

	assert.Equal(t, "oauth-refresh", task.ID)
	assert.True(t, task.Enabled)
	assert.Equal(t, 45*time.Minute, task.Interval)
}
