package harness

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignal_FireOnce(t *testing.T) {
	s := newSignal("suite", "case", log.New())

	s.Fire()
	s.Fire()

	select {
	case <-s.Done():
	default:
		t.Fatal("expected signal to be resolved")
	}
	assert.True(t, s.Fired())
	assert.NoError(t, s.Err())
	assert.Equal(t, signalFired, s.close(), "close must not override a fired signal")
}

func TestSignal_FailKeepsFirstResolution(t *testing.T) {
	s := newSignal("suite", "case", log.New())
	boom := errors.New("boom")

	s.Fail(boom)
	s.Fire()

	assert.False(t, s.Fired())
	assert.ErrorIs(t, s.Err(), boom)
}

func TestSignal_FailNil(t *testing.T) {
	s := newSignal("suite", "case", log.New())
	s.Fail(nil)
	require.Error(t, s.Err())
}

func TestSignal_LateFireAfterClose(t *testing.T) {
	s := newSignal("suite", "case", log.New())

	assert.Equal(t, signalOpen, s.close())
	s.Fire()

	assert.False(t, s.Fired(), "late fire must not resolve a closed signal")
	select {
	case <-s.Done():
		t.Fatal("done channel must stay open after a late fire")
	default:
	}
}
