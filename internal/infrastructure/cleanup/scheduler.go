// Copyright the Web Content Share contributors.
// SPDX-License-Identifier: MIT

package cleanup

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/christopherhouse/web-content-share/pkg/logging"
)

// Scheduler runs the cleanup engine on a fixed interval until shut down. Runs
// never overlap: a slow run simply delays the next tick.
type Scheduler struct {
	engine   *Engine
	interval time.Duration
	logger   *slog.Logger

	workerWG  sync.WaitGroup
	shutdown  chan struct{}
	isRunning bool
	mu        sync.Mutex
}

// NewScheduler creates a cleanup scheduler
func NewScheduler(engine *Engine, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		engine:   engine,
		interval: interval,
		logger:   logging.WithComponent(logger, "cleanup_scheduler"),
		shutdown: make(chan struct{}),
	}
}

// Start launches the background cleanup loop. The first run happens
// immediately, then every interval. Run errors are logged and the loop keeps
// going; infrastructure usually recovers by the next tick.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.mu.Unlock()

	s.logger.Info("Starting cleanup scheduler", "interval", s.interval)
	s.workerWG.Add(1)

	go func() {
		defer func() {
			s.workerWG.Done()
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
			s.logger.Info("Cleanup scheduler stopped")
		}()

		s.runOnce(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.shutdown:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()
}

// Shutdown stops the loop and waits for an in-flight run to finish
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	close(s.shutdown)
	s.workerWG.Wait()
}

func (s *Scheduler) runOnce(ctx context.Context) {
	ctx, logger := logging.WithRequestID(ctx, s.logger)
	count, err := s.engine.RunCleanup(ctx)
	if err != nil {
		logger.Error("Scheduled cleanup run failed", "error", err.Error())
		return
	}
	if count > 0 {
		logger.Info("Scheduled cleanup run cleaned shares", "processed_count", count)
	}
}
