package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	opmetrics "github.com/ethereum-optimism/optimism/op-service/metrics"
)

func TestService_Healthz(t *testing.T) {
	svc := New(Config{
		Log:         log.New(),
		HealthzAddr: "127.0.0.1:0",
		Status:      func() string { return "pass" },
		NextRun:     func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
	})
	require.NoError(t, svc.Start(context.Background()))
	t.Cleanup(func() { _ = svc.Shutdown(context.Background()) })

	resp, err := http.Get(fmt.Sprintf("http://%s/healthz", svc.Healthz.Addr()))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
	assert.Equal(t, "pass", resp.Header.Get("X-Feedcheck-Last-Run"))
	assert.Equal(t, "2026-01-02T03:04:05Z", resp.Header.Get("X-Feedcheck-Next-Run"))
	assert.Nil(t, svc.Metrics)

	post, err := http.Post(fmt.Sprintf("http://%s/healthz", svc.Healthz.Addr()), "text/plain", nil)
	require.NoError(t, err)
	post.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, post.StatusCode)
}

func TestService_Metrics(t *testing.T) {
	svc := New(Config{
		Log:     log.New(),
		Metrics: opmetrics.CLIConfig{Enabled: true, ListenAddr: "127.0.0.1", ListenPort: 0},
	})
	require.NoError(t, svc.Start(context.Background()))
	require.NotNil(t, svc.Metrics)

	resp, err := http.Get(fmt.Sprintf("http://%s/metrics", svc.Metrics.Addr()))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, svc.Shutdown(context.Background()))
	assert.Nil(t, svc.Metrics)
}

func TestService_NothingEnabled(t *testing.T) {
	svc := New(Config{Log: log.New()})
	require.NoError(t, svc.Start(context.Background()))
	assert.Nil(t, svc.Healthz.Addr())
	assert.NoError(t, svc.Shutdown(context.Background()))
}

func TestService_HealthzBindError(t *testing.T) {
	svc := New(Config{Log: log.New(), HealthzAddr: "256.0.0.1:bad"})
	assert.Error(t, svc.Start(context.Background()))
}
