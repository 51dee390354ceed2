package feedcheck

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/ethereum-optimism/infra/op-feedcheck/acceptance"
	"github.com/ethereum-optimism/infra/op-feedcheck/flags"
	"github.com/ethereum-optimism/infra/op-feedcheck/reader"
	opmetrics "github.com/ethereum-optimism/optimism/op-service/metrics"
)

// Config holds the application configuration
type Config struct {
	Feeds          reader.Feeds
	FeedsFile      string        // Empty when the built-in feed list is used
	Suites         []string      // Suites to run, empty runs all
	DefaultTimeout time.Duration // Completion signal budget per case
	LoadLatency    time.Duration // Simulated feed load latency
	RunInterval    time.Duration // Interval between test runs
	RunOnce        bool          // Indicates if the service should exit after one test run
	LogDir         string        // Directory to store run results, empty disables
	HealthzAddr    string
	MetricsConfig  opmetrics.CLIConfig
	Log            log.Logger
}

// NewConfig creates a new Config from cli context
func NewConfig(ctx *cli.Context, log log.Logger) (*Config, error) {
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, fmt.Errorf("missing required flags: %w", err)
	}

	feedsFile := ctx.String(flags.Feeds.Name)
	feeds := reader.DefaultFeeds()
	if feedsFile != "" {
		abs, err := filepath.Abs(feedsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve absolute path for feed file '%s': %w", feedsFile, err)
		}
		feedsFile = abs
		if feeds, err = reader.LoadFeeds(feedsFile); err != nil {
			return nil, err
		}
	}
	// Invalid lists are reported by the RSS Feeds suite, not rejected.
	if err := feeds.Validate(); err != nil {
		log.Warn("Feed list is invalid, acceptance runs will fail", "err", err)
	}

	suites := ctx.StringSlice(flags.Suites.Name)
	for _, s := range suites {
		if !slices.Contains(acceptance.Suites(), s) {
			return nil, fmt.Errorf("unknown suite %q, must be one of %q", s, acceptance.Suites())
		}
	}

	defaultTimeout := ctx.Duration(flags.DefaultTimeout.Name)
	if defaultTimeout <= 0 {
		return nil, errors.New("default timeout must be positive")
	}
	loadLatency := ctx.Duration(flags.LoadLatency.Name)
	if loadLatency < 0 {
		return nil, errors.New("load latency must not be negative")
	}
	runInterval := ctx.Duration(flags.RunInterval.Name)
	if runInterval < 0 {
		return nil, errors.New("run interval must not be negative")
	}

	logDir := ctx.String(flags.LogDir.Name)
	if logDir != "" {
		abs, err := filepath.Abs(logDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve absolute path for log directory '%s': %w", logDir, err)
		}
		logDir = abs
	}

	metricsCfg := opmetrics.ReadCLIConfig(ctx)
	if err := metricsCfg.Check(); err != nil {
		return nil, fmt.Errorf("invalid metrics config: %w", err)
	}

	return &Config{
		Feeds:          feeds,
		FeedsFile:      feedsFile,
		Suites:         suites,
		DefaultTimeout: defaultTimeout,
		LoadLatency:    loadLatency,
		RunInterval:    runInterval,
		RunOnce:        runInterval == 0,
		LogDir:         logDir,
		HealthzAddr:    ctx.String(flags.HealthzAddr.Name),
		MetricsConfig:  metricsCfg,
		Log:            log,
	}, nil
}
