package db

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

type PingerFunc func(ctx context.Context) error

// Supervisor pings the store on an interval and exposes the result as
// readiness. Failed pings back off up to maxBackoff; the driver pools
// reconnect on their own, the supervisor only observes and reports.
type Supervisor struct {
	Ping     PingerFunc
	Interval time.Duration
	Logger   *slog.Logger

	ready atomic.Bool
}

const (
	pingTimeout = 2 * time.Second
	maxBackoff  = time.Minute
)

func NewSupervisor(ping PingerFunc, interval time.Duration, l *slog.Logger) *Supervisor {
	s := &Supervisor{Ping: ping, Interval: interval, Logger: l}
	s.ready.Store(true)
	return s
}

func (s *Supervisor) Ready() bool { return s.ready.Load() }

// Check runs one ping and updates readiness.
func (s *Supervisor) Check(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	err := s.Ping(pingCtx)
	was := s.ready.Swap(err == nil)
	switch {
	case err != nil && was:
		s.Logger.Error("store_unreachable", "error", err)
	case err == nil && !was:
		s.Logger.Info("store_recovered")
	}
	return err
}

func (s *Supervisor) Run(ctx context.Context) {
	wait := s.Interval
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}

		if err := s.Check(ctx); err != nil {
			wait *= 2
			if wait > maxBackoff {
				wait = maxBackoff
			}
			s.Logger.Warn("store_ping_failed", "retry_in", wait.String(), "error", err)
			continue
		}
		wait = s.Interval
	}
}
