// Package retention deletes stored certificates once they are older than the
// configured maximum age.
package retention

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"certificate-portal/certificate-backend/internal/config"
	"certificate-portal/certificate-backend/internal/metrics"
	"certificate-portal/certificate-backend/pkg/storage"
)

// Prefix is the key prefix swept for expired certificates.
const Prefix = "certificates/"

// Sweeper periodically removes expired certificates from a store.
type Sweeper struct {
	store   storage.Store
	metrics *metrics.Metrics
	logger  *zap.Logger
	maxAge  time.Duration
	now     func() time.Time

	cron    *cron.Cron
	mu      sync.Mutex
	running bool
}

// NewSweeper creates a sweeper. It does nothing until Start is called.
func NewSweeper(store storage.Store, m *metrics.Metrics, logger *zap.Logger, cfg config.RetentionConfig) *Sweeper {
	return &Sweeper{
		store:   store,
		metrics: m,
		logger:  logger,
		maxAge:  cfg.MaxAge,
		now:     time.Now,
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
}

// Sweep deletes every certificate whose last modification is older than the
// maximum age and returns how many were removed. A failed delete is logged
// and the sweep continues.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	objects, err := s.store.List(ctx, Prefix)
	if err != nil {
		return 0, fmt.Errorf("failed to list certificates: %w", err)
	}

	cutoff := s.now().Add(-s.maxAge)
	removed := 0
	for _, obj := range objects {
		if !obj.ModTime.Before(cutoff) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if err := s.store.Delete(ctx, obj.Key); err != nil {
			s.logger.Warn("Failed to delete expired certificate", zap.String("key", obj.Key), zap.Error(err))
			continue
		}
		removed++
	}

	s.metrics.AddSwept(removed)
	return removed, nil
}

// Start schedules Sweep on the given cron expression.
func (s *Sweeper) Start(ctx context.Context, schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("retention sweeper already running")
	}

	_, err := s.cron.AddFunc(schedule, func() {
		removed, err := s.Sweep(ctx)
		if err != nil {
			s.logger.Error("Retention sweep failed", zap.Error(err))
			return
		}
		if removed > 0 {
			s.logger.Info("Expired certificates removed", zap.Int("count", removed))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid retention schedule %q: %w", schedule, err)
	}

	s.logger.Info("Starting retention sweeper",
		zap.String("schedule", schedule),
		zap.Duration("max_age", s.maxAge))
	s.cron.Start()
	s.running = true
	return nil
}

// Stop stops scheduling sweeps and waits for a running one to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info("Retention sweeper stopped")
}
