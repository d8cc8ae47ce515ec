// Package job provides background job schedulers.
package job

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// IdleReaper disposes sessions that were not accessed for longer than maxIdle.
// Implementations: internal/app/service/queue_service.go
type IdleReaper interface {
	ReapIdle(maxIdle time.Duration) int
}

// SessionReaper periodically disposes abandoned play queue sessions so their
// in-flight fetches are cancelled and late results dropped.
type SessionReaper struct {
	sessions    IdleReaper
	interval    time.Duration
	idleTimeout time.Duration
	logger      *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// ReaperConfig holds session reaper configuration.
type ReaperConfig struct {
	Interval    time.Duration
	IdleTimeout time.Duration
}

// NewSessionReaper creates a new SessionReaper.
func NewSessionReaper(sessions IdleReaper, cfg ReaperConfig, logger *zap.Logger) *SessionReaper {
	return &SessionReaper{
		sessions:    sessions,
		interval:    cfg.Interval,
		idleTimeout: cfg.IdleTimeout,
		logger:      logger,
	}
}

// Start begins the background reaping job.
func (r *SessionReaper) Start() {
	r.ctx, r.cancel = context.WithCancel(context.Background())

	r.logger.Info("starting session reaper",
		zap.Duration("interval", r.interval),
		zap.Duration("idle_timeout", r.idleTimeout),
	)

	r.wg.Add(1)
	go r.run()
}

// Stop gracefully stops the reaper.
func (r *SessionReaper) Stop() {
	r.logger.Info("stopping session reaper")
	r.cancel()
	r.wg.Wait()
	r.logger.Info("session reaper stopped")
}

// run is the main loop of the reaper.
func (r *SessionReaper) run() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.reap()
		}
	}
}

func (r *SessionReaper) reap() {
	removed := r.sessions.ReapIdle(r.idleTimeout)

	r.logger.Debug("session reap completed", zap.Int("removed", removed))
}
