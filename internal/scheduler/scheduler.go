package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is one tick of a job. ctx is canceled when the job is removed.
type Task func(ctx context.Context)

// Scheduler keeps at most one recurring job per user.
type Scheduler struct {
	jobs   map[uint]*Job // user ID -> job
	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
	log    *zap.Logger
}

type Job struct {
	interval time.Duration
	ticker   *time.Ticker
	cancel   context.CancelFunc
}

// NewScheduler initializes a new Scheduler instance
func NewScheduler(log *zap.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		jobs:   make(map[uint]*Job),
		ctx:    ctx,
		cancel: cancel,
		log:    log,
	}
}

// Stop gracefully shuts down all jobs
func (s *Scheduler) Stop() {
	s.log.Info("stopping scheduler")
	s.cancel() // Cancel main context

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, job := range s.jobs {
		job.ticker.Stop()
		job.cancel()
	}

	s.jobs = make(map[uint]*Job)
	s.log.Info("scheduler stopped")
}

// Add registers task to run every interval for userID, replacing any job the
// user already has. The first run happens one interval from now.
func (s *Scheduler) Add(userID uint, interval time.Duration, task Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Stop existing job if it exists
	if existing, exists := s.jobs[userID]; exists {
		existing.ticker.Stop()
		existing.cancel()
	}

	jobCtx, jobCancel := context.WithCancel(s.ctx)
	job := &Job{
		interval: interval,
		ticker:   time.NewTicker(interval),
		cancel:   jobCancel,
	}

	s.jobs[userID] = job

	go s.run(jobCtx, job, task)

	s.log.Info("scheduled job", zap.Uint("user_id", userID), zap.Duration("interval", interval))
}

// Remove cancels the user's job. It reports whether a job was registered and
// is safe to call repeatedly, including from inside the job's own task.
func (s *Scheduler) Remove(userID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[userID]
	if !exists {
		return false
	}

	job.ticker.Stop()
	job.cancel()
	delete(s.jobs, userID)

	s.log.Info("removed job", zap.Uint("user_id", userID))
	return true
}

// Has reports whether userID currently has a registered job.
func (s *Scheduler) Has(userID uint) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.jobs[userID]
	return exists
}

// Interval returns the interval of the user's job, or zero.
func (s *Scheduler) Interval(userID uint) time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if job, exists := s.jobs[userID]; exists {
		return job.interval
	}
	return 0
}

func (s *Scheduler) run(ctx context.Context, job *Job, task Task) {
	defer job.ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-job.ticker.C:
			// A tick and a cancel can be ready together.
			if ctx.Err() != nil {
				return
			}
			task(ctx)
		}
	}
}

// Status returns current scheduler status
func (s *Scheduler) Status() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"active_jobs": len(s.jobs),
		"running":     s.ctx.Err() == nil,
	}
}
