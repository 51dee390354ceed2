package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/honeycombio/otel-config-go/otelconfig"
	"github.com/urfave/cli/v2"

	feedcheck "github.com/ethereum-optimism/infra/op-feedcheck"
	"github.com/ethereum-optimism/infra/op-feedcheck/exitcodes"
	"github.com/ethereum-optimism/infra/op-feedcheck/flags"
	"github.com/ethereum-optimism/optimism/devnet-sdk/telemetry"
	"github.com/ethereum-optimism/optimism/op-service/cliapp"
	"github.com/ethereum-optimism/optimism/op-service/ctxinterrupt"
	oplog "github.com/ethereum-optimism/optimism/op-service/log"
)

var (
	Version   = "v0.1.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	app := newApp()

	// Start telemetry
	ctx, shutdown, err := telemetry.SetupOpenTelemetry(
		context.Background(),
		otelconfig.WithServiceName(app.Name),
		otelconfig.WithServiceVersion(app.Version),
	)
	if err != nil {
		log.Crit("Failed to setup open telemetry", "message", err)
	}
	defer shutdown()

	ctx = ctxinterrupt.WithSignalWaiterMain(ctx)
	err = app.RunContext(ctx, os.Args)
	if err != nil {
		log.Crit("Application failed", "message", err)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "op-feedcheck"
	app.Usage = "Feed Reader Acceptance Tester Service"
	app.Description = "op-feedcheck runs the acceptance suites of the feed-reader widget"
	app.Flags = cliapp.ProtectFlags(flags.Flags)
	app.Action = cliapp.LifecycleCmd(run)
	app.ExitErrHandler = exitErrHandler
	return app
}

func exitErrHandler(c *cli.Context, err error) {
	var exitErr cli.ExitCoder
	switch {
	case err == nil:
		return
	case errors.As(err, &exitErr):
		cli.HandleExitCoder(exitErr)
	default:
		cli.HandleExitCoder(cli.Exit(err.Error(), exitCode(err)))
	}
}

// exitCode maps an application error to the process exit code
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitcodes.Success
	case feedcheck.IsRuntimeError(err):
		return exitcodes.RuntimeErr
	default:
		return exitcodes.TestFailure
	}
}

func run(ctx *cli.Context, closeApp context.CancelCauseFunc) (cliapp.Lifecycle, error) {
	logCfg := oplog.ReadCLIConfig(ctx)
	log := oplog.NewLogger(oplog.AppOut(ctx), logCfg)
	oplog.SetGlobalLogHandler(log.Handler())
	oplog.SetupDefaults()

	cfg, err := feedcheck.NewConfig(ctx, log)
	if err != nil {
		return nil, feedcheck.NewRuntimeError(fmt.Errorf("failed to create config: %w", err))
	}

	cfg.Log.Debug("Config", "config", cfg)

	svc, err := feedcheck.New(ctx.Context, cfg, Version, closeApp)
	if err != nil {
		return nil, feedcheck.NewRuntimeError(fmt.Errorf("failed to create feedcheck: %w", err))
	}

	return svc, nil
}
