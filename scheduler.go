package feedcheck

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/log"
)

// RunFunc performs one acceptance run.
type RunFunc func(ctx context.Context) error

// TestScheduler decides when acceptance runs happen.
type TestScheduler interface {
	Start(ctx context.Context) error
	Stop() error
	RegisterCallback(RunFunc)
	WaitForShutdown(ctx context.Context) error
	Stopped() bool
	NextRun() time.Time
}

// DefaultTestScheduler runs the callback once, or repeatedly with interval measured from the end
// of one run to the start of the next. Runs never overlap.
type DefaultTestScheduler struct {
	interval time.Duration
	runOnce  bool
	logger   log.Logger
	callback RunFunc

	mu      sync.Mutex
	running bool
	cancel  context.CancelCauseFunc // cancels the in-flight run and the loop
	nextRun time.Time
	wg      sync.WaitGroup
}

var errSchedulerStopped = errors.New("scheduler stopped")

// NewDefaultTestScheduler creates a new DefaultTestScheduler.
func NewDefaultTestScheduler(interval time.Duration, runOnce bool, logger log.Logger) *DefaultTestScheduler {
	return &DefaultTestScheduler{
		interval: interval,
		runOnce:  runOnce,
		logger:   logger,
	}
}

// RegisterCallback registers the callback to be called when tests should run.
func (s *DefaultTestScheduler) RegisterCallback(callback RunFunc) {
	s.callback = callback
}

// Start performs the first run synchronously. In continuous mode later runs happen in the
// background until Stop is called or ctx is cancelled; Stop also cancels a run in progress.
func (s *DefaultTestScheduler) Start(ctx context.Context) error {
	if s.callback == nil {
		return errors.New("callback must be registered before starting scheduler")
	}
	if !s.runOnce && s.interval <= 0 {
		return errors.New("interval must be positive in continuous mode")
	}

	runCtx, cancel := context.WithCancelCause(ctx)
	s.mu.Lock()
	s.running = true
	s.cancel = cancel
	s.mu.Unlock()

	if s.runOnce {
		s.logger.Info("Starting scheduler in run-once mode")
		defer s.markStopped()
		return s.callback(runCtx)
	}

	s.logger.Info("Starting scheduler in continuous mode", "interval", s.interval)
	if err := s.callback(runCtx); err != nil {
		s.markStopped()
		return err
	}

	s.wg.Add(1)
	go s.loop(runCtx)
	return nil
}

func (s *DefaultTestScheduler) loop(ctx context.Context) {
	defer s.wg.Done()
	defer s.markStopped()

	timer := time.NewTimer(s.interval)
	defer timer.Stop()
	s.setNextRun(time.Now().Add(s.interval))

	for {
		select {
		case <-timer.C:
			s.setNextRun(time.Time{})
			s.logger.Info("Running periodic tests")
			if err := s.callback(ctx); err != nil {
				s.logger.Error("Error running periodic tests", "error", err)
			}
			if ctx.Err() != nil {
				continue
			}
			timer.Reset(s.interval)
			s.setNextRun(time.Now().Add(s.interval))
			s.logger.Debug("Next run scheduled", "in", s.interval)

		case <-ctx.Done():
			s.logger.Debug("Stopping periodic test runner", "cause", context.Cause(ctx))
			return
		}
	}
}

// Stop stops the scheduler and cancels the run in progress, if any.
func (s *DefaultTestScheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		s.logger.Debug("Scheduler already stopped, nothing to do")
		return nil
	}
	s.running = false
	s.nextRun = time.Time{}
	s.cancel(errSchedulerStopped)
	return nil
}

func (s *DefaultTestScheduler) markStopped() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.nextRun = time.Time{}
	if s.cancel != nil {
		s.cancel(errSchedulerStopped)
	}
}

func (s *DefaultTestScheduler) setNextRun(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.nextRun = t
	}
}

// Stopped returns true if the scheduler is stopped.
func (s *DefaultTestScheduler) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.running
}

// NextRun returns when the next periodic run starts, zero while a run is in progress or when no
// further run is scheduled.
func (s *DefaultTestScheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRun
}

// WaitForShutdown blocks until the periodic runner has terminated.
func (s *DefaultTestScheduler) WaitForShutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.logger.Warn("Timed out waiting for periodic runner to terminate", "error", ctx.Err())
		return ctx.Err()
	}
}
