package worker

import (
	"context"
	"sync"
	"time"

	"github.com/medcore/clinic-api/internal/model"
	"github.com/medcore/clinic-api/internal/service/appointment"
	"github.com/medcore/clinic-api/pkg/errors"
	"github.com/medcore/clinic-api/pkg/logger"
	"github.com/medcore/clinic-api/pkg/metrics"
)

// AutoConfirmWorker promotes appointments left pending past the maturation
// window. It runs on a fixed ticker; a tick that fires while the previous
// one is still processing is skipped rather than overlapped, so two ticks
// can never observe the same pending appointment as conflict-free and
// double-dispatch its notifications.
type AutoConfirmWorker struct {
	svc              *appointment.Service
	tickInterval     time.Duration
	maturationWindow time.Duration
	itemTimeout      time.Duration
	logger           *logger.Logger
	metrics          *metrics.Metrics
	mu               sync.Mutex
}

func NewAutoConfirmWorker(svc *appointment.Service, tickInterval, maturationWindow, itemTimeout time.Duration,
	log *logger.Logger, m *metrics.Metrics) *AutoConfirmWorker {
	return &AutoConfirmWorker{
		svc:              svc,
		tickInterval:     tickInterval,
		maturationWindow: maturationWindow,
		itemTimeout:      itemTimeout,
		logger:           log,
		metrics:          m,
	}
}

func (w *AutoConfirmWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.logger.Info("auto-confirm worker started",
		"tick_interval", w.tickInterval.String(),
		"maturation_window", w.maturationWindow.String())

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("auto-confirm worker shutting down")
			return
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// Tick runs one scan. Each matured appointment is handled independently:
// a store timeout, conflict or stale row affects only that item, which is
// logged, counted and left for the next tick. Processing is idempotent
// because state only advances when the slot is free, so a second tick finds
// nothing left to do for an already confirmed appointment.
func (w *AutoConfirmWorker) Tick(ctx context.Context) {
	if !w.mu.TryLock() {
		w.logger.Warn("previous tick still running, skipping")
		if w.metrics != nil {
			w.metrics.SchedulerTicksSkipped.Inc()
		}
		return
	}
	defer w.mu.Unlock()

	started := time.Now()
	if w.metrics != nil {
		w.metrics.SchedulerTicks.Inc()
		defer func() {
			w.metrics.SchedulerTickDuration.Observe(time.Since(started).Seconds())
		}()
	}

	cutoff := time.Now().Add(-w.maturationWindow)

	listCtx, cancel := context.WithTimeout(ctx, w.itemTimeout)
	matured, err := w.svc.ListPendingBefore(listCtx, cutoff)
	cancel()
	if err != nil {
		w.logger.Error(err, "failed to scan pending appointments")
		return
	}

	for _, apt := range matured {
		if ctx.Err() != nil {
			return
		}
		w.processOne(ctx, apt)
	}
}

func (w *AutoConfirmWorker) processOne(ctx context.Context, apt *model.Appointment) {
	itemCtx, cancel := context.WithTimeout(ctx, w.itemTimeout)
	defer cancel()

	err := w.svc.AutoConfirm(itemCtx, apt)
	switch {
	case err == nil:
		if w.metrics != nil {
			w.metrics.AutoConfirmed.Inc()
		}
	case errors.Is(err, errors.ErrConflict):
		// Escalation already dispatched by the service; state unchanged.
		if w.metrics != nil {
			w.metrics.Escalated.Inc()
		}
	case errors.Is(err, errors.ErrStaleState), errors.Is(err, errors.ErrInvalidTransition):
		// Another writer moved the appointment between scan and write.
		w.logger.Debug("appointment changed during tick, skipping",
			"appointment_id", apt.ID.String())
		w.countSkip("stale")
	default:
		// Transient store failure: skip, no retry within this tick. The
		// appointment is still pending and is picked up next tick.
		w.logger.Error(err, "failed to auto-confirm appointment",
			"appointment_id", apt.ID.String())
		w.countSkip("error")
	}
}

func (w *AutoConfirmWorker) countSkip(cause string) {
	if w.metrics != nil {
		w.metrics.ItemsSkipped.WithLabelValues(cause).Inc()
	}
}
