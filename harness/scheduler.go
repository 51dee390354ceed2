package harness

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/sourcegraph/conc/panics"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/ethereum-optimism/infra/op-feedcheck/types"
)

// DefaultTimeout is the completion signal budget used when neither the case nor the scheduler
// config sets one.
const DefaultTimeout = 5 * time.Second

// Config holds configuration for creating a new Scheduler
type Config struct {
	Log            log.Logger
	DefaultTimeout time.Duration
}

type entry struct {
	id     CaseID
	c      Case
	status types.TestStatus
}

// Scheduler owns the lifecycle of registered cases: setup, wait for the completion signal,
// assert, report.
type Scheduler struct {
	log            log.Logger
	defaultTimeout time.Duration
	aggregate      *Aggregate

	mu     sync.Mutex
	suites *orderedmap.OrderedMap[string, []*entry]
	nextID CaseID

	started atomic.Bool
}

// NewScheduler creates a new scheduler with an empty queue
func NewScheduler(cfg Config) *Scheduler {
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = DefaultTimeout
	}
	return &Scheduler{
		log:            cfg.Log,
		defaultTimeout: cfg.DefaultTimeout,
		aggregate:      &Aggregate{},
		suites:         orderedmap.New[string, []*entry](),
	}
}

// Register appends a case to the queue. Nothing runs until Run is consumed.
func (s *Scheduler) Register(c Case) (CaseID, error) {
	if c.Name == "" {
		return 0, errors.New("case name is required")
	}
	if !c.hasAssert() {
		return 0, fmt.Errorf("case %q: assert function is required", c.Name)
	}
	if c.Timeout < 0 {
		return 0, fmt.Errorf("case %q: negative timeout %v", c.Name, c.Timeout)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started.Load() {
		return 0, fmt.Errorf("case %q: %w", c.Name, ErrAlreadyStarted)
	}

	s.nextID++
	e := &entry{id: s.nextID, c: c, status: types.TestStatusPending}
	queue, _ := s.suites.Get(c.Suite)
	s.suites.Set(c.Suite, append(queue, e))

	s.log.Debug("Registered case", "id", e.id, "suite", c.Suite, "case", c.Name)
	return e.id, nil
}

// Len returns the number of registered cases.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int(s.nextID)
}

// Status returns the current status of a registered case.
func (s *Scheduler) Status(id CaseID) (types.TestStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for pair := s.suites.Oldest(); pair != nil; pair = pair.Next() {
		for _, e := range pair.Value {
			if e.id == id {
				return e.status, true
			}
		}
	}
	return "", false
}

// Aggregate returns the ordered log of outcomes produced by Run.
func (s *Scheduler) Aggregate() *Aggregate {
	return s.aggregate
}

// Run returns a lazy sequence that executes the queued cases one at a time and yields each
// outcome after it has been appended to the Aggregate. Suites run in first-registration order and
// cases in registration order within a suite. The queue is consumed once: iterating a second
// sequence yields nothing. Stopping the iteration early leaves the remaining cases pending.
func (s *Scheduler) Run(ctx context.Context) iter.Seq2[CaseID, Outcome] {
	return func(yield func(CaseID, Outcome) bool) {
		if !s.started.CompareAndSwap(false, true) {
			s.log.Warn("Scheduler queue already consumed, nothing to run")
			return
		}

		queue := s.queue()
		s.log.Info("Running cases", "count", len(queue))
		for _, e := range queue {
			if err := ctx.Err(); err != nil {
				s.log.Warn("Run cancelled, remaining cases not started", "pending", s.unfinished(), "err", err)
				return
			}

			out := s.runCase(ctx, e)
			s.aggregate.Append(out)
			if !yield(e.id, out) {
				return
			}
		}
	}
}

// queue flattens the registered suites into execution order
func (s *Scheduler) queue() []*entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var queue []*entry
	for pair := s.suites.Oldest(); pair != nil; pair = pair.Next() {
		queue = append(queue, pair.Value...)
	}
	return queue
}

// unfinished counts registered cases without a verdict
func (s *Scheduler) unfinished() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for pair := s.suites.Oldest(); pair != nil; pair = pair.Next() {
		for _, e := range pair.Value {
			if !e.status.Terminal() {
				n++
			}
		}
	}
	return n
}

func (s *Scheduler) setStatus(e *entry, status types.TestStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.status = status
}

// runCase drives a single case to its verdict. It never panics.
func (s *Scheduler) runCase(ctx context.Context, e *entry) Outcome {
	start := time.Now()
	budget := e.c.Timeout
	if budget <= 0 {
		budget = s.defaultTimeout
	}
	meta := types.CaseMetadata{
		ID:      int(e.id),
		Suite:   e.c.Suite,
		Name:    e.c.Name,
		Timeout: budget,
	}
	caseLog := s.log.New("suite", e.c.Suite, "case", e.c.Name)

	s.setStatus(e, types.TestStatusRunning)
	caseLog.Debug("Running case", "id", e.id, "timeout", budget)

	setup, assert := e.c.bind()

	status := types.TestStatusPass
	err := s.awaitSetup(ctx, caseLog, e.c, setup, budget)
	switch {
	case errors.Is(err, ErrSignalTimeout), errors.Is(err, ErrRunCancelled):
		status = types.TestStatusTimeout
	case err != nil:
		status = types.TestStatusFail
	default:
		err = runAssert(assert, &caseT{name: meta.FullName(), log: caseLog})
		if err != nil {
			status = types.TestStatusFail
		}
	}

	s.setStatus(e, status)
	out := Outcome{
		Metadata: meta,
		Status:   status,
		Error:    err,
		Duration: time.Since(start),
	}
	if err != nil {
		out.Reason = err.Error()
		caseLog.Warn("Case did not pass", "status", status, "reason", out.Reason)
	} else {
		caseLog.Info("Case passed", "duration", out.Duration)
	}
	return out
}

// awaitSetup invokes setup on its own goroutine and waits until its signal resolves, it returns
// an error before resolving, the budget elapses, or ctx is cancelled.
func (s *Scheduler) awaitSetup(ctx context.Context, caseLog log.Logger, c Case, setup SetupFunc, budget time.Duration) error {
	if setup == nil {
		return nil
	}

	caseCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := newSignal(c.Suite, c.Name, caseLog)
	setupErr := make(chan error, 1)
	go func() {
		var (
			pc  panics.Catcher
			err error
		)
		pc.Try(func() { err = setup(caseCtx, done) })
		if r := pc.Recovered(); r != nil {
			caseLog.Debug("Setup panicked", "stack", string(r.Stack))
			err = fmt.Errorf("panic: %v", r.Value)
		}
		setupErr <- err
	}()

	timer := time.NewTimer(budget)
	defer timer.Stop()

	errCh := setupErr
	for {
		select {
		case <-done.Done():
			done.close()
			if err := done.Err(); err != nil {
				return fmt.Errorf("%w: %w", ErrSetupFault, err)
			}
			return nil

		case err := <-errCh:
			if err == nil {
				// Setup handed off to asynchronous work; keep waiting for the signal.
				errCh = nil
				continue
			}
			if st := done.close(); st != signalOpen {
				return signalResult(st, done, caseLog, err)
			}
			return fmt.Errorf("%w: %w", ErrSetupFault, err)

		case <-timer.C:
			if st := done.close(); st != signalOpen {
				return signalResult(st, done, caseLog, nil)
			}
			return fmt.Errorf("%w (%v)", ErrSignalTimeout, budget)

		case <-ctx.Done():
			if st := done.close(); st != signalOpen {
				return signalResult(st, done, caseLog, nil)
			}
			return fmt.Errorf("%w: %w", ErrRunCancelled, context.Cause(ctx))
		}
	}
}

// signalResult handles the case where the signal resolved concurrently with another event. The
// signal wins.
func signalResult(st signalState, done *Signal, caseLog log.Logger, setupErr error) error {
	if setupErr != nil && !(st == signalFailed && errors.Is(done.Err(), setupErr)) {
		caseLog.Warn("Setup returned an error after its completion signal", "err", setupErr)
	}
	if st == signalFailed {
		return fmt.Errorf("%w: %w", ErrSetupFault, done.Err())
	}
	return nil
}
