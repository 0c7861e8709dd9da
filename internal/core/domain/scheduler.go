package domain

import "time"

// ScheduledTask represents a recurring background task.
type ScheduledTask struct {
	// ID is the unique identifier for the task.
	ID string

	// Name is a human-readable name for the task.
	Name string

	// Interval defines how often the task should run.
	Interval time.Duration

	// LastRun is when the task last ran.
	LastRun time.Time

	// NextRun is when the task should run next.
	NextRun time.Time

	// LastError contains the last error message, if any.
	LastError string

	// LastSuccess is when the task last completed successfully.
	LastSuccess time.Time

	// Enabled indicates whether the task is active.
	Enabled bool
}

// TaskResult represents the outcome of a task execution.
type TaskResult struct {
	TaskID    string
	StartedAt time.Time
	EndedAt   time.Time
	Success   bool
	Error     string

	// ItemsProcessed counts credentials refreshed.
	ItemsProcessed int
}

// SchedulerConfig holds scheduler configuration.
type SchedulerConfig struct {
	// Enabled is the master switch for the scheduler.
	Enabled bool

	// RefreshInterval is how often the oauth-refresh task runs.
	RefreshInterval time.Duration

	// RefreshLead is how far ahead of expiry a credential is refreshed.
	RefreshLead time.Duration

	// TickInterval is how often the loop checks for due tasks.
	TickInterval time.Duration
}

// DefaultSchedulerConfig returns sensible defaults for the scheduler.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled:         true,
		RefreshInterval: 45 * time.Minute,
		RefreshLead:     10 * time.Minute,
		TickInterval:    time.Minute,
	}
}

// TaskIDOAuthRefresh identifies the proactive token refresh task.
const TaskIDOAuthRefresh = "oauth-refresh"

// TaskHistoryRetention is how many results are kept per task.
const TaskHistoryRetention = 100
