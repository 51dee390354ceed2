package acceptance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum-optimism/optimism/op-service/testlog"
	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/infra/op-feedcheck/harness"
	"github.com/ethereum-optimism/infra/op-feedcheck/reader"
	"github.com/ethereum-optimism/infra/op-feedcheck/types"
)

func appFactory(t *testing.T, feeds reader.Feeds, latency time.Duration) AppFactory {
	return func() (*reader.App, error) {
		return reader.New(reader.Config{
			Log:    testlog.Logger(t, log.LevelInfo),
			Feeds:  feeds,
			Source: &reader.FixtureSource{Latency: latency},
		}), nil
	}
}

func run(t *testing.T, timeout time.Duration, newApp AppFactory, only ...string) map[string]harness.Outcome {
	t.Helper()
	s := harness.NewScheduler(harness.Config{
		Log:            testlog.Logger(t, log.LevelInfo),
		DefaultTimeout: timeout,
	})
	require.NoError(t, Register(s, newApp, only...))

	results := make(map[string]harness.Outcome)
	for _, out := range s.Run(context.Background()) {
		results[out.Metadata.FullName()] = out
	}
	require.Equal(t, s.Len(), len(results))
	return results
}

func TestSuites_DefaultFeedsPass(t *testing.T) {
	results := run(t, time.Second, appFactory(t, reader.DefaultFeeds(), 5*time.Millisecond))

	require.Len(t, results, 7)
	for name, out := range results {
		assert.Equal(t, types.TestStatusPass, out.Status, "%s: %s", name, out.Reason)
	}
}

func TestSuites_SynchronousSourcePasses(t *testing.T) {
	results := run(t, time.Second, appFactory(t, reader.DefaultFeeds(), 0), SuiteInitial, SuiteFeedSelection)

	require.Len(t, results, 2)
	for name, out := range results {
		assert.Equal(t, types.TestStatusPass, out.Status, "%s: %s", name, out.Reason)
	}
}

func TestSuites_EmptyFeedList(t *testing.T) {
	results := run(t, time.Second, appFactory(t, reader.Feeds{}, 0))

	defined := results["RSS Feeds/are defined"]
	assert.Equal(t, types.TestStatusFail, defined.Status)
	assert.Contains(t, defined.Reason, "feed list is empty")
	assert.ErrorIs(t, defined.Error, harness.ErrAssertionMismatch)

	initial := results["Initial Entries/has at least one entry"]
	assert.Equal(t, types.TestStatusFail, initial.Status)
	assert.ErrorIs(t, initial.Error, harness.ErrSetupFault)
	assert.ErrorIs(t, initial.Error, reader.ErrFeedIndexOutOfRange)

	assert.Equal(t, types.TestStatusPass, results["The menu/is hidden by default"].Status)
}

func TestSuites_SingleFeedCannotChange(t *testing.T) {
	feeds := reader.DefaultFeeds()[:1]
	results := run(t, time.Second, appFactory(t, feeds, 0), SuiteFeedSelection)

	out := results["News Feed Selection/should change content when feed changes"]
	assert.Equal(t, types.TestStatusFail, out.Status)
	assert.ErrorIs(t, out.Error, harness.ErrSetupFault)
	assert.Contains(t, out.Reason, "setup raised before completion")
}

func TestSuites_MissingURL(t *testing.T) {
	feeds := reader.Feeds{
		{Name: "ok", URL: "http://example.com/ok"},
		{Name: "no url"},
	}
	results := run(t, time.Second, appFactory(t, feeds, 0), SuiteFeeds)

	assert.Equal(t, types.TestStatusPass, results["RSS Feeds/are defined"].Status)
	assert.Equal(t, types.TestStatusPass, results["RSS Feeds/have a name"].Status)
	url := results["RSS Feeds/have a url"]
	assert.Equal(t, types.TestStatusFail, url.Status)
	assert.Contains(t, url.Reason, "feed 1 has no url")
}

func TestSuites_SlowSourceTimesOut(t *testing.T) {
	results := run(t, 20*time.Millisecond, appFactory(t, reader.DefaultFeeds(), time.Hour), SuiteInitial)

	out := results["Initial Entries/has at least one entry"]
	assert.Equal(t, types.TestStatusTimeout, out.Status)
	assert.ErrorIs(t, out.Error, harness.ErrSignalTimeout)
}

func TestSuites_AppFactoryError(t *testing.T) {
	failing := func() (*reader.App, error) { return nil, errors.New("no widget") }
	results := run(t, time.Second, failing)

	for name, out := range results {
		assert.Equal(t, types.TestStatusFail, out.Status, name)
		assert.Contains(t, out.Reason, "no widget", name)
	}
}

func TestRegister_Filter(t *testing.T) {
	s := harness.NewScheduler(harness.Config{Log: log.New()})
	require.NoError(t, Register(s, appFactory(t, reader.DefaultFeeds(), 0), SuiteMenu))
	assert.Equal(t, 2, s.Len())

	err := Register(s, appFactory(t, reader.DefaultFeeds(), 0), "Nope")
	assert.ErrorContains(t, err, `unknown suite "Nope"`)
	assert.Equal(t, 2, s.Len())
}

func TestSuites(t *testing.T) {
	assert.Equal(t, []string{SuiteFeeds, SuiteMenu, SuiteInitial, SuiteFeedSelection}, Suites())
}
