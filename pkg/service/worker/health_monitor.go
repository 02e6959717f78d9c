package worker

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskscope/pkg/domain/model"
	"github.com/secmon-lab/riskscope/pkg/domain/types"
	"github.com/secmon-lab/riskscope/pkg/utils/errutil"
	"github.com/secmon-lab/riskscope/pkg/utils/logging"
)

// HealthSource computes the current health of every department
type HealthSource interface {
	AllDepartmentHealth(ctx context.Context) ([]*model.DepartmentHealth, error)
}

// HealthMonitorWorker periodically recomputes department health and logs
// departments that need attention or whose band changed since the last
// cycle.
//
// Snapshots are held in memory only; a restarted server starts from an
// empty baseline.
type HealthMonitorWorker struct {
	source   HealthSource
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}

	mu       sync.RWMutex
	latest   map[types.Department]model.DepartmentHealth
	checked  time.Time
	failures int
}

// NewHealthMonitorWorker creates a worker polling source every interval
func NewHealthMonitorWorker(source HealthSource, interval time.Duration) *HealthMonitorWorker {
	return &HealthMonitorWorker{
		source:   source,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		latest:   make(map[types.Department]model.DepartmentHealth),
	}
}

// Start begins the background loop. The first check runs immediately in
// the background goroutine.
func (w *HealthMonitorWorker) Start(ctx context.Context) error {
	if w.interval <= 0 {
		return goerr.New("health monitor interval must be positive", goerr.V("interval", w.interval.String()))
	}
	logging.Default().Info("Health monitor worker starting", "interval", w.interval.String())

	go w.run(ctx)
	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *HealthMonitorWorker) Stop() {
	logging.Default().Info("Health monitor worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Health monitor worker stopped")
}

// Latest returns the last computed health per department and the time of
// that check
func (w *HealthMonitorWorker) Latest() (map[types.Department]model.DepartmentHealth, time.Time) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make(map[types.Department]model.DepartmentHealth, len(w.latest))
	for k, v := range w.latest {
		out[k] = v
	}
	return out, w.checked
}

// Failures returns the number of failed checks
func (w *HealthMonitorWorker) Failures() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.failures
}

func (w *HealthMonitorWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	w.checkOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.checkOnce(ctx)

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("Health monitor worker context cancelled")
			return
		}
	}
}

func (w *HealthMonitorWorker) checkOnce(ctx context.Context) {
	if err := w.check(ctx); err != nil {
		w.mu.Lock()
		w.failures++
		w.mu.Unlock()
		_ = errutil.Handle(ctx, err, "health check failed (will retry next interval)")
	}
}

// check performs a single cycle and replaces the snapshot
func (w *HealthMonitorWorker) check(ctx context.Context) error {
	startTime := time.Now()

	all, err := w.source.AllDepartmentHealth(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to compute department health")
	}

	next := make(map[types.Department]model.DepartmentHealth, len(all))
	w.mu.RLock()
	previous := w.latest
	w.mu.RUnlock()

	logger := logging.From(ctx)
	for _, h := range all {
		next[h.Department] = *h

		if prev, ok := previous[h.Department]; ok && prev.Band != h.Band {
			logger.Warn("Department health band changed",
				"department", h.Department,
				"from", prev.Band,
				"to", h.Band,
				"health_score", h.HealthScore)
		}
		if h.TotalRisks > 0 && (h.Band == types.HealthBandNeedsAttention || h.OverdueCount > 0) {
			logger.Warn("Department needs attention",
				"department", h.Department,
				"health_score", h.HealthScore,
				"overdue", h.OverdueCount,
				"total", h.TotalRisks)
		}
	}

	w.mu.Lock()
	w.latest = next
	w.checked = startTime
	w.mu.Unlock()

	logger.Debug("Health check completed",
		"departments", len(next),
		"duration", time.Since(startTime).String())
	return nil
}
