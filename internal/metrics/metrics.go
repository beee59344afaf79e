// Package metrics defines the daemon's Prometheus collectors and serves them
// over HTTP.
package metrics

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// Label constants.

	// Request outcome: one of the Outcome* constants.
	OutcomeLabel = "outcome"

	// Relay method: `splice` or `copy`.
	MethodLabel = "method"

	// Exit code of a finished child.
	ExitCodeLabel = "exit_code"
)

// Request outcomes.
const (
	OutcomeOK           = "ok"
	OutcomeRejected     = "rejected"
	OutcomeEmpty        = "empty"
	OutcomeReadError    = "read_error"
	OutcomeSpawnError   = "spawn_error"
	OutcomeStartFailure = "start_failure"
	OutcomeRelayError   = "relay_error"
	OutcomeWaitError    = "wait_error"
)

const (
	namespace = "forkd"

	// Time allowed for in-flight scrapes when the metrics server stops.
	shutdownTimeout = 5 * time.Second
)

var ErrMetrics = errors.New("metrics error")

var (
	RequestCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "request",
		Name:      "count",
		Help:      "Number of connections handled, by outcome.",
	}, []string{
		OutcomeLabel,
	})

	RequestDurationUsec = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "request",
		Name:      "duration_usec",
		Buckets:   prometheus.ExponentialBuckets(100, 4, 12),
		Help:      "Time from accept to connection close, in **microseconds**.",
	})

	RelayBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "relay",
		Name:      "bytes",
		Help:      "Bytes of child output relayed to peers, by relay method.",
	}, []string{
		MethodLabel,
	})

	ChildExitCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "child",
		Name:      "exit_count",
		Help:      "Number of reaped children, by exit code.",
	}, []string{
		ExitCodeLabel,
	})

	WorkersBusy = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "workers",
		Name:      "busy",
		Help:      "Number of workers currently serving a connection.",
	})
)

// Records one handled connection.
func ObserveRequest(outcome string, started time.Time) {
	RequestCount.WithLabelValues(outcome).Inc()
	RequestDurationUsec.Observe(float64(time.Since(started).Microseconds()))
}

// Records a reaped child and the output it produced.
func ObserveChild(exitCode int, method string, bytes int64) {
	ChildExitCount.WithLabelValues(strconv.Itoa(exitCode)).Inc()
	if method != "" {
		RelayBytes.WithLabelValues(method).Add(float64(bytes))
	}
}

// Serves /metrics on addr until ctx is cancelled.
//
// An empty addr disables the server and returns nil immediately.
func Serve(ctx context.Context, addr string) error {
	if addr == "" {
		return nil
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(ErrMetrics, "failed to listen on %s: %v", addr, err)
	}
	return serve(ctx, lis)
}

func serve(ctx context.Context, lis net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("metrics server shutdown failed", "error", err)
		}
	}()

	slog.Info("serving metrics", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(ErrMetrics, err.Error())
	}
	return nil
}
