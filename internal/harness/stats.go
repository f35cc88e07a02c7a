package harness

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Stats aggregates transaction outcomes across all workers. Counters are
// cumulative; Report logs the delta since the previous report, which gives
// a rolling throughput figure.
type Stats struct {
	Commits   atomic.Int64
	Rollbacks atomic.Int64 // expected aborts: the unknown-item mix
	Conflicts atomic.Int64 // retried lock/serialization failures
	Failures  atomic.Int64 // everything else
	LatencyNS atomic.Int64

	lastCommits int64
	lastReport  time.Time
}

func NewStats() *Stats {
	return &Stats{lastReport: time.Now()}
}

func (s *Stats) RecordCommit(latency time.Duration) {
	s.Commits.Add(1)
	s.LatencyNS.Add(int64(latency))
}

// Report logs one monitoring line and returns the interval throughput.
func (s *Stats) Report(log *slog.Logger) float64 {
	now := time.Now()
	commits := s.Commits.Load()
	interval := now.Sub(s.lastReport).Seconds()
	tps := 0.0
	if interval > 0 {
		tps = float64(commits-s.lastCommits) / interval
	}
	s.lastCommits = commits
	s.lastReport = now

	var avgLatency time.Duration
	if commits > 0 {
		avgLatency = time.Duration(s.LatencyNS.Load() / commits)
	}
	log.Info("oltp progress",
		"tps", tps,
		"commits", commits,
		"rollbacks", s.Rollbacks.Load(),
		"conflicts", s.Conflicts.Load(),
		"failures", s.Failures.Load(),
		"avg_latency", avgLatency.Round(time.Microsecond).String(),
	)
	return tps
}

// Monitor reports at the given interval until the context ends, then emits a
// final summary.
func (s *Stats) Monitor(ctx context.Context, log *slog.Logger, interval time.Duration, started time.Time) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			elapsed := time.Since(started)
			commits := s.Commits.Load()
			log.Info("benchmark summary",
				"elapsed", elapsed.Round(time.Second).String(),
				"commits", commits,
				"rollbacks", s.Rollbacks.Load(),
				"conflicts", s.Conflicts.Load(),
				"failures", s.Failures.Load(),
				"overall_tps", float64(commits)/elapsed.Seconds(),
			)
			return
		case <-t.C:
			s.Report(log)
		}
	}
}
