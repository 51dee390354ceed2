package harness

import (
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
)

func TestCaseT_ReducesTestifyOutput(t *testing.T) {
	tests := []struct {
		name   string
		check  func(ct *caseT)
		expect string
	}{
		{
			name:   "with message",
			check:  func(ct *caseT) { assert.NotEmpty(ct, []string{}, "feed list is empty") },
			expect: "feed list is empty: Should NOT be empty, but was []",
		},
		{
			name:   "formatted message",
			check:  func(ct *caseT) { assert.NotEmpty(ct, "", "feed %d has no url", 2) },
			expect: "feed 2 has no url: Should NOT be empty, but was",
		},
		{
			name:   "without message",
			check:  func(ct *caseT) { assert.True(ct, false) },
			expect: "Should be true",
		},
		{
			name:   "plain errorf",
			check:  func(ct *caseT) { ct.Errorf("  content did not change  ") },
			expect: "content did not change",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct := &caseT{name: "suite/case", log: log.New()}
			tt.check(ct)
			assert.Equal(t, []string{tt.expect}, ct.failures)
		})
	}
}

func TestCaseT_MultilineErrorKeepsDetails(t *testing.T) {
	ct := &caseT{name: "suite/case", log: log.New()}
	assert.Equal(ct, "before", "after", "content did not change")

	assert.Len(t, ct.failures, 1)
	assert.Contains(t, ct.failures[0], "content did not change: Not equal:")
	assert.Contains(t, ct.failures[0], `expected: "before"`)
	assert.Contains(t, ct.failures[0], `actual  : "after"`)
	assert.NotContains(t, ct.failures[0], "Error Trace")
	assert.NotContains(t, ct.failures[0], "assert_test.go")
}
