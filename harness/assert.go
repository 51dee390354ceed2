package harness

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/sourcegraph/conc/panics"
)

// T is handed to assertion functions. It satisfies the TestingT interfaces of testify's assert
// and require packages, so those matchers can be used inside a case.
type T interface {
	Errorf(format string, args ...interface{})
	FailNow()
	Helper()
	Logf(format string, args ...interface{})
	Name() string
	Failed() bool
}

// failNow aborts the assertion phase; it is recovered by runAssert.
type failNow struct{}

type caseT struct {
	name     string
	log      log.Logger
	failures []string
}

var _ T = (*caseT)(nil)

func (t *caseT) Errorf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	t.log.Debug("Assertion failed", "case", t.name, "details", msg)
	t.failures = append(t.failures, failureMessage(msg))
}

// failureMessage reduces testify's labeled failure output to "<Messages>: <Error>". Anything else
// is returned trimmed.
func failureMessage(msg string) string {
	if !strings.Contains(msg, "Error Trace:") {
		return strings.TrimSpace(msg)
	}

	fields := make(map[string][]string)
	var label string
	for _, line := range strings.Split(msg, "\n") {
		head, content, ok := strings.Cut(strings.TrimPrefix(line, "\t"), "\t")
		if !ok {
			continue
		}
		if l := strings.TrimSuffix(strings.TrimSpace(head), ":"); l != "" {
			label = l
		}
		fields[label] = append(fields[label], content)
	}

	errText := strings.TrimSpace(strings.Join(fields["Error"], "\n"))
	messages := strings.TrimSpace(strings.Join(fields["Messages"], "\n"))
	switch {
	case errText == "":
		return strings.TrimSpace(msg)
	case messages == "":
		return errText
	default:
		return messages + ": " + errText
	}
}

func (t *caseT) FailNow() {
	panic(failNow{})
}

func (t *caseT) Helper() {}

func (t *caseT) Logf(format string, args ...interface{}) {
	t.log.Debug(fmt.Sprintf(format, args...), "case", t.name)
}

func (t *caseT) Name() string {
	return t.name
}

func (t *caseT) Failed() bool {
	return len(t.failures) > 0
}

// runAssert executes the assertion phase and converts mismatches and panics into an error
// wrapping ErrAssertionMismatch.
func runAssert(assert AssertFunc, t *caseT) error {
	var pc panics.Catcher
	pc.Try(func() { assert(t) })
	if r := pc.Recovered(); r != nil {
		if _, ok := r.Value.(failNow); !ok {
			t.log.Debug("Assertion panicked", "case", t.name, "stack", string(r.Stack))
			t.failures = append(t.failures, fmt.Sprintf("assertion panicked: %v", r.Value))
		}
	}
	if len(t.failures) > 0 {
		return fmt.Errorf("%w: %s", ErrAssertionMismatch, strings.Join(t.failures, "\n"))
	}
	return nil
}
