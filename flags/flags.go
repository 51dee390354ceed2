package flags

import (
	"time"

	"github.com/urfave/cli/v2"

	opservice "github.com/ethereum-optimism/optimism/op-service"
	opflags "github.com/ethereum-optimism/optimism/op-service/flags"
	oplog "github.com/ethereum-optimism/optimism/op-service/log"
	opmetrics "github.com/ethereum-optimism/optimism/op-service/metrics"
)

const EnvVarPrefix = "OP_FEEDCHECK"

var (
	Feeds = &cli.StringFlag{
		Name:    "feeds",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "FEEDS"),
		Usage:   "Path to a YAML or TOML feed list file (eg. 'feeds.yaml'). The built-in list is used when omitted.",
	}
	Suites = &cli.StringSliceFlag{
		Name:    "suite",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "SUITE"),
		Usage:   "Only run the named suite (eg. 'The menu'). Can be repeated. All suites run when omitted.",
	}
	DefaultTimeout = &cli.DurationFlag{
		Name:    "default-timeout",
		Value:   5 * time.Second,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "DEFAULT_TIMEOUT"),
		Usage:   "How long a case waits for its completion signal before it times out",
	}
	LoadLatency = &cli.DurationFlag{
		Name:    "load-latency",
		Value:   50 * time.Millisecond,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "LOAD_LATENCY"),
		Usage:   "Simulated latency of a feed load",
	}
	RunInterval = &cli.DurationFlag{
		Name:    "run-interval",
		Value:   0,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "RUN_INTERVAL"),
		Usage:   "Interval between test runs (e.g. '1h', '30m'). Set to 0 or omit for run-once mode.",
	}
	LogDir = &cli.StringFlag{
		Name:    "logdir",
		Value:   "logs",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "LOGDIR"),
		Usage:   "Directory to store run results and summaries. Set to '' to disable.",
	}
	HealthzAddr = &cli.StringFlag{
		Name:    "healthz.addr",
		Value:   "0.0.0.0:8080",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "HEALTHZ_ADDR"),
		Usage:   "Listen address of the health check server. Set to '' to disable.",
	}
)

var requiredFlags = []cli.Flag{}

var optionalFlags = []cli.Flag{
	Feeds,
	Suites,
	DefaultTimeout,
	LoadLatency,
	RunInterval,
	LogDir,
	HealthzAddr,
}
var Flags []cli.Flag

func init() {
	optionalFlags = append(optionalFlags, oplog.CLIFlags(EnvVarPrefix)...)
	optionalFlags = append(optionalFlags, opmetrics.CLIFlags(EnvVarPrefix)...)

	Flags = append(requiredFlags, optionalFlags...)
}

func CheckRequired(ctx *cli.Context) error {
	return opflags.CheckRequiredXor(ctx)
}
