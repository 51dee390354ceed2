package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/log"

	"github.com/ethereum-optimism/infra/op-feedcheck/metrics"
	"github.com/ethereum-optimism/optimism/op-service/httputil"
	opmetrics "github.com/ethereum-optimism/optimism/op-service/metrics"
)

// Config holds configuration for the auxiliary HTTP servers
type Config struct {
	Log         log.Logger
	HealthzAddr string // Empty disables the health check server
	Metrics     opmetrics.CLIConfig
	Status      StatusFunc
	NextRun     NextRunFunc
}

// Service runs the health check and metrics servers next to the tester.
type Service struct {
	log     log.Logger
	cfg     Config
	Healthz *HealthzServer
	Metrics *httputil.HTTPServer
}

func New(cfg Config) *Service {
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}
	return &Service{
		log:     cfg.Log,
		cfg:     cfg,
		Healthz: NewHealthzServer(cfg.Log, cfg.Status, cfg.NextRun),
	}
}

func (s *Service) Start(ctx context.Context) error {
	s.log.Info("service starting")

	if s.cfg.HealthzAddr != "" {
		if err := s.Healthz.Start(s.cfg.HealthzAddr); err != nil {
			metrics.RecordErrorDetails("error starting healthz server", err)
			return fmt.Errorf("failed to start healthz server: %w", err)
		}
		s.log.Info("started healthz server", "addr", s.Healthz.Addr())
	}

	if s.cfg.Metrics.Enabled {
		s.log.Info("starting metrics server", "addr", s.cfg.Metrics.ListenAddr, "port", s.cfg.Metrics.ListenPort)
		server, err := opmetrics.StartServer(metrics.Registry(), s.cfg.Metrics.ListenAddr, s.cfg.Metrics.ListenPort)
		if err != nil {
			metrics.RecordErrorDetails("error starting metrics server", err)
			return errors.Join(fmt.Errorf("failed to start metrics server: %w", err), s.Shutdown(ctx))
		}
		s.Metrics = server
		s.log.Info("started metrics server", "endpoint", server.Addr())
	}

	s.log.Info("service started")
	return nil
}

func (s *Service) Shutdown(ctx context.Context) error {
	s.log.Info("service shutting down")

	var result error
	if err := s.Healthz.Shutdown(ctx); err != nil {
		result = errors.Join(result, fmt.Errorf("failed to stop healthz server: %w", err))
	}
	s.log.Info("healthz stopped")

	if s.Metrics != nil {
		if err := s.Metrics.Stop(ctx); err != nil {
			result = errors.Join(result, fmt.Errorf("failed to stop metrics server: %w", err))
		}
		s.Metrics = nil
		s.log.Info("metrics stopped")
	}

	s.log.Info("service stopped")
	return result
}
