package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "escrow_events_processed_total",
		Help: "Contract events applied to the mirror, by network and event name.",
	}, []string{"network", "event"})

	EventsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "escrow_events_skipped_total",
		Help: "Contract events dropped as duplicates, by network and event name.",
	}, []string{"network", "event"})

	EventsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "escrow_events_failed_total",
		Help: "Contract events whose database application failed.",
	}, []string{"network", "event"})

	ListenerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "escrow_listener_state",
		Help: "Listener state per network: 0 stopped, 1 starting, 2 running, 3 failed.",
	}, []string{"network"})

	DeadlineCancellations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "escrow_deadline_cancellations_total",
		Help: "Trades cancelled by the deadline sweep, by deadline field.",
	}, []string{"deadline_field"})

	AutoCancelAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "escrow_auto_cancel_attempts_total",
		Help: "On-chain auto-cancel attempts, by network and outcome.",
	}, []string{"network", "status"})
)
