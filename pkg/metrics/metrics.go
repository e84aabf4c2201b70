package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the scheduler metrics.
type Metrics struct {
	SchedulerTicks        prometheus.Counter
	SchedulerTicksSkipped prometheus.Counter
	SchedulerTickDuration prometheus.Histogram
	AutoConfirmed         prometheus.Counter
	Escalated             prometheus.Counter
	ItemsSkipped          *prometheus.CounterVec
}

// New creates and registers all application metrics
func New(namespace string) *Metrics {
	return &Metrics{
		SchedulerTicks: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduler_ticks_total",
			Help:      "Total number of scheduler ticks executed",
		}),
		SchedulerTicksSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduler_ticks_skipped_total",
			Help:      "Ticks skipped because the previous tick was still running",
		}),
		SchedulerTickDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scheduler_tick_duration_seconds",
			Help:      "Time spent processing one scheduler tick",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		AutoConfirmed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointments_auto_confirmed_total",
			Help:      "Pending appointments promoted to confirmed by the scheduler",
		}),
		Escalated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointments_escalated_total",
			Help:      "Pending appointments escalated to staff due to slot conflicts",
		}),
		ItemsSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduler_items_skipped_total",
			Help:      "Appointments skipped within a tick, by cause",
		}, []string{"cause"}),
	}
}
