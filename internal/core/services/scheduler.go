package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
	"github.com/custodia-labs/clientdesk/internal/core/ports/driven"
	"github.com/custodia-labs/clientdesk/internal/core/ports/driving"
	"github.com/custodia-labs/clientdesk/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// Scheduler manages background task execution.
// Its only task refreshes Google tokens before they expire.
type Scheduler struct {
	config domain.SchedulerConfig
	store  driven.SchedulerStore
	tokens driving.TokenService
	now    func() time.Time

	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
	wg       sync.WaitGroup
	inFlight map[string]bool
}

// NewScheduler creates a scheduler with configuration.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	tokens driving.TokenService,
) *Scheduler {
	if config.TickInterval <= 0 {
		config.TickInterval = domain.DefaultSchedulerConfig().TickInterval
	}
	return &Scheduler{
		config:   config,
		store:    store,
		tokens:   tokens,
		now:      time.Now,
		inFlight: make(map[string]bool),
	}
}

// Start begins the scheduler loop. This method blocks until Stop is called
// or ctx is cancelled. A disabled scheduler returns immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		logger.Info("scheduler disabled")
		return nil
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	if err := s.initialiseTasks(ctx); err != nil {
		logger.Error("scheduler: failed to initialise tasks", "error", err)
	}

	err := s.run(ctx, stopCh)

	s.mu.Lock()
	if s.running && s.stopCh == stopCh {
		s.running = false
	}
	s.mu.Unlock()

	s.wg.Wait()
	return err
}

// Stop gracefully shuts down the scheduler and waits for running tasks.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// RunNow executes a task synchronously and returns its result.
func (s *Scheduler) RunNow(ctx context.Context, taskID string) (*domain.TaskResult, error) {
	if taskID != domain.TaskIDOAuthRefresh {
		return nil, fmt.Errorf("%w: unknown task %q", domain.ErrNotFound, taskID)
	}
	if err := s.initialiseTasks(ctx); err != nil {
		return nil, err
	}
	if !s.claim(taskID) {
		return nil, fmt.Errorf("%w: task %s is already running", domain.ErrConflict, taskID)
	}
	defer s.release(taskID)

	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return s.execute(ctx, task), nil
}

// initialiseTasks ensures all configured tasks exist in the store.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	return s.ensureTask(ctx, domain.TaskIDOAuthRefresh, "OAuth Token Refresh", s.config.RefreshInterval)
}

// ensureTask creates or updates a task in the store.
func (s *Scheduler) ensureTask(ctx context.Context, id, name string, interval time.Duration) error {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}

	if task == nil {
		task = &domain.ScheduledTask{
			ID:       id,
			Name:     name,
			Interval: interval,
			Enabled:  true,
		}
	} else if task.Interval != interval {
		task.Interval = interval
		task.NextRun = s.now().Add(interval)
	}
	task.Enabled = s.config.Enabled

	return s.store.SaveTask(ctx, task)
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context, stopCh <-chan struct{}) error {
	// A new task has a zero NextRun, so it runs at startup.
	s.checkAndRunDueTasks(ctx)

	ticker := time.NewTicker(s.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

// checkAndRunDueTasks starts tasks that are due in the background.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		logger.Error("scheduler: failed to list tasks", "error", err)
		return
	}

	now := s.now()
	for _, task := range tasks {
		if !task.Enabled || task.NextRun.After(now) {
			continue
		}
		s.wg.Add(1)
		go func(id string) {
			defer s.wg.Done()
			s.runIfDue(ctx, id)
		}(task.ID)
	}
}

// runIfDue claims the task and runs it if it is still due. The task is
// read again after claiming, so a run that finished meanwhile is not repeated.
func (s *Scheduler) runIfDue(ctx context.Context, taskID string) {
	if !s.claim(taskID) {
		return
	}
	defer s.release(taskID)

	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		logger.Error("scheduler: failed to load task", "task", taskID, "error", err)
		return
	}
	if task == nil || !task.Enabled || task.NextRun.After(s.now()) {
		return
	}
	s.execute(ctx, task)
}

func (s *Scheduler) claim(taskID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[taskID] {
		return false
	}
	s.inFlight[taskID] = true
	return true
}

func (s *Scheduler) release(taskID string) {
	s.mu.Lock()
	delete(s.inFlight, taskID)
	s.mu.Unlock()
}

// execute runs a claimed task, saves its state and records the result.
func (s *Scheduler) execute(ctx context.Context, task *domain.ScheduledTask) *domain.TaskResult {
	result := &domain.TaskResult{
		TaskID:    task.ID,
		StartedAt: s.now(),
	}

	var err error
	switch task.ID {
	case domain.TaskIDOAuthRefresh:
		result.ItemsProcessed, err = s.tokens.RefreshExpiring(ctx)
	default:
		err = fmt.Errorf("unknown task ID: %s", task.ID)
	}

	result.EndedAt = s.now()
	if err != nil {
		result.Success = false
		result.Error = err.Error()
		task.LastError = err.Error()
		logger.Warn("scheduler: task finished with errors", "task", task.ID, "processed", result.ItemsProcessed, "error", err)
	} else {
		result.Success = true
		task.LastError = ""
		task.LastSuccess = result.EndedAt
		logger.Debug("scheduler: task finished", "task", task.ID, "processed", result.ItemsProcessed)
	}

	task.LastRun = result.StartedAt
	task.NextRun = result.EndedAt.Add(task.Interval)

	if saveErr := s.store.SaveTask(ctx, task); saveErr != nil {
		logger.Error("scheduler: failed to save task", "task", task.ID, "error", saveErr)
	}
	if recordErr := s.store.RecordResult(ctx, result); recordErr != nil {
		logger.Error("scheduler: failed to record result", "task", task.ID, "error", recordErr)
	}
	if pruneErr := s.store.PruneHistory(ctx, domain.TaskHistoryRetention); pruneErr != nil {
		logger.Error("scheduler: failed to prune history", "error", pruneErr)
	}

	return result
}
