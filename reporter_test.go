package feedcheck

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/infra/op-feedcheck/metrics"
	"github.com/ethereum-optimism/infra/op-feedcheck/runner"
	"github.com/ethereum-optimism/infra/op-feedcheck/types"
)

func TestDefaultMetricsReporter_ReportResults(t *testing.T) {
	result := &runner.RunnerResult{
		RunID:    "reporter-run",
		Status:   types.TestStatusFail,
		Duration: 150 * time.Millisecond,
		Stats: runner.ResultStats{
			Total:    10,
			Passed:   7,
			Failed:   2,
			TimedOut: 1,
		},
	}

	NewDefaultMetricsReporter().ReportResults(result)

	count, err := testutil.GatherAndCount(metrics.Registry(), "feedcheck_run_results")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, count, 1)
}
