package harness

import (
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/log"

	"github.com/ethereum-optimism/infra/op-feedcheck/metrics"
)

type signalState int

const (
	signalOpen signalState = iota
	signalFired
	signalFailed
	signalClosed // resolved by the scheduler without a fire
)

// Signal is the single-use completion token handed to a setup function.
//
// The first call to Fire or Fail resolves it. Later calls are no-ops that are logged, and so is
// any call made after the scheduler gave up on the case.
type Signal struct {
	suite string
	name  string
	log   log.Logger

	mu    sync.Mutex
	state signalState
	err   error
	done  chan struct{}
}

func newSignal(suite, name string, logger log.Logger) *Signal {
	return &Signal{
		suite: suite,
		name:  name,
		log:   logger,
		done:  make(chan struct{}),
	}
}

// Fire reports that the setup finished. It has the shape of a plain callback so it can be passed
// directly to asynchronous collaborators, e.g. app.LoadFeed(ctx, 0, done.Fire).
func (s *Signal) Fire() {
	s.resolve(signalFired, nil)
}

// Fail reports that the setup cannot complete. The case fails without running its assertions.
func (s *Signal) Fail(err error) {
	if err == nil {
		err = errors.New("setup failed")
	}
	s.resolve(signalFailed, err)
}

func (s *Signal) resolve(state signalState, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case signalOpen:
		s.state = state
		s.err = err
		close(s.done)
	case signalClosed:
		s.log.Warn("Discarding completion signal", "suite", s.suite, "case", s.name, "err", ErrLateSignal)
		metrics.RecordDiscardedSignal(s.suite, "late")
	default:
		s.log.Debug("Ignoring duplicate completion signal", "suite", s.suite, "case", s.name)
		metrics.RecordDiscardedSignal(s.suite, "duplicate")
	}
}

// Done is closed once the signal has been fired or failed.
func (s *Signal) Done() <-chan struct{} {
	return s.done
}

// Fired reports whether Fire was the first resolution of the signal.
func (s *Signal) Fired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == signalFired
}

// Err returns the error passed to Fail, if Fail resolved the signal.
func (s *Signal) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// close is called by the scheduler when the case stops waiting. It returns the state the signal
// was in; an open signal becomes closed so that later fires are treated as late.
func (s *Signal) close() signalState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == signalOpen {
		s.state = signalClosed
		return signalOpen
	}
	return s.state
}
