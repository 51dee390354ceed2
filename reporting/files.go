package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/acarl005/stripansi"

	"github.com/ethereum-optimism/infra/op-feedcheck/runner"
)

const (
	RunDirectoryPrefix = "testrun-"
	ResultsFilename    = "results.json"
	SummaryFilename    = "summary.log"
)

// RunDir returns the directory holding the files of a run.
func RunDir(baseDir, runID string) string {
	return filepath.Join(baseDir, RunDirectoryPrefix+runID)
}

// WriteRunFiles writes results.json and a plain-text summary.log for the run under
// <baseDir>/testrun-<runID>/ and returns that directory.
func WriteRunFiles(baseDir string, result *runner.RunnerResult) (string, error) {
	if result.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}
	dir := RunDir(baseDir, result.RunID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create run directory: %w", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ResultsFilename), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write results: %w", err)
	}

	summary := stripansi.Strip(RenderTable(nil, result) + "\n\n" + result.String())
	if err := os.WriteFile(filepath.Join(dir, SummaryFilename), []byte(summary), 0644); err != nil {
		return "", fmt.Errorf("failed to write summary: %w", err)
	}
	return dir, nil
}
