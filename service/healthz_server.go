package service

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// StatusFunc reports the status of the last completed run, empty if none finished yet.
type StatusFunc func() string

// NextRunFunc reports when the next periodic run starts, zero if none is scheduled.
type NextRunFunc func() time.Time

type HealthzServer struct {
	log      log.Logger
	status   StatusFunc
	nextRun  NextRunFunc
	server   *http.Server
	listener net.Listener
}

func NewHealthzServer(logger log.Logger, status StatusFunc, nextRun NextRunFunc) *HealthzServer {
	return &HealthzServer{log: logger, status: status, nextRun: nextRun}
}

// Start binds addr and serves /healthz in the background.
func (h *HealthzServer) Start(addr string) error {
	hdlr := mux.NewRouter()
	hdlr.HandleFunc("/healthz", h.Handle).Methods(http.MethodGet, http.MethodHead)
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
	})

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	h.listener = listener
	h.server = &http.Server{
		Handler: c.Handler(hdlr),
		Addr:    addr,
	}

	go func() {
		if err := h.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.log.Error("healthz server failed", "err", err)
		}
	}()
	return nil
}

// Addr returns the bound address, nil before Start.
func (h *HealthzServer) Addr() net.Addr {
	if h.listener == nil {
		return nil
	}
	return h.listener.Addr()
}

func (h *HealthzServer) Shutdown(ctx context.Context) error {
	if h.server == nil {
		return nil
	}
	return h.server.Shutdown(ctx)
}

func (h *HealthzServer) Handle(w http.ResponseWriter, r *http.Request) {
	h.log.Debug("Received health check request", "path", r.URL.Path)
	if h.status != nil {
		if status := h.status(); status != "" {
			w.Header().Set("X-Feedcheck-Last-Run", status)
		}
	}
	if h.nextRun != nil {
		if next := h.nextRun(); !next.IsZero() {
			w.Header().Set("X-Feedcheck-Next-Run", next.UTC().Format(time.RFC3339))
		}
	}
	w.Write([]byte("OK")) //nolint:errcheck
}
