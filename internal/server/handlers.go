package server

import (
	"log/slog"
	"net"
	"time"

	"github.com/cruciblehq/forkd/internal/metrics"
	"github.com/cruciblehq/forkd/internal/process"
	"github.com/cruciblehq/forkd/internal/request"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Serves a single connection end to end.
//
// Reads one request, runs it with the connection as the output sink and
// closes the connection after the child has been reaped. Rejected requests
// and spawn failures close the connection without sending anything.
func (s *Server) handle(log *slog.Logger, conn *net.UnixConn) {
	started := time.Now()
	metrics.WorkersBusy.Inc()
	defer metrics.WorkersBusy.Dec()
	defer conn.Close()

	log = log.With("request", uuid.NewString())

	req, err := request.Read(conn)
	if err != nil {
		outcome := metrics.OutcomeReadError
		switch {
		case errors.Is(err, request.ErrRequestTooLarge):
			outcome = metrics.OutcomeRejected
			log.Warn("request rejected", "error", err, "limit", request.Capacity-1)
		case errors.Is(err, request.ErrEmptyRequest):
			outcome = metrics.OutcomeEmpty
			log.Debug("peer sent no request")
		default:
			log.Error("read error", "error", err)
		}
		metrics.ObserveRequest(outcome, started)
		return
	}

	log.Info("command received", "command", req.Command(), "dir", req.Dir)

	res, err := process.Run(req.Argv, req.Dir, conn)
	metrics.ObserveRequest(outcome(res, err), started)

	if res != nil {
		metrics.ObserveChild(res.ExitCode, string(res.Method), res.Bytes)
	}

	switch {
	case err != nil:
		log.Error("command failed", "error", err, "pid", pid(res))
	case res.StartErr != nil:
		log.Warn("could not start process", "error", res.StartErr, "exit_code", res.ExitCode)
	default:
		attrs := []any{
			"pid", res.Pid,
			"exit_code", res.ExitCode,
			"bytes", res.Bytes,
			"relay", res.Method,
			"duration", time.Since(started).String(),
		}
		if res.Signal != 0 {
			attrs = append(attrs, "signal", res.Signal.String())
		}
		log.Info("command finished", attrs...)
	}
}

// Classifies the result of a run for metrics.
func outcome(res *process.Result, err error) string {
	switch {
	case errors.Is(err, process.ErrSpawn):
		return metrics.OutcomeSpawnError
	case errors.Is(err, process.ErrWait):
		return metrics.OutcomeWaitError
	case errors.Is(err, process.ErrRelay):
		return metrics.OutcomeRelayError
	case err != nil:
		return metrics.OutcomeSpawnError
	case res.StartErr != nil:
		return metrics.OutcomeStartFailure
	}
	return metrics.OutcomeOK
}

func pid(res *process.Result) int {
	if res == nil {
		return 0
	}
	return res.Pid
}
