package listener

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/openpeerlabs/escrow-backend/internal/events"
	"github.com/openpeerlabs/escrow-backend/internal/monitoring"
	"github.com/openpeerlabs/escrow-backend/internal/reconciler"
	"github.com/openpeerlabs/escrow-backend/internal/utils/config"
	"github.com/openpeerlabs/escrow-backend/internal/utils/logger"
)

// State is the listener lifecycle. It is owned by the listener and mutated
// only through Start/Stop and transport callbacks, never from the outside.
type State string

const (
	StateStopped  State = "STOPPED"
	StateStarting State = "STARTING"
	StateRunning  State = "RUNNING"
	StateFailed   State = "FAILED"
)

func stateGaugeValue(s State) float64 {
	switch s {
	case StateStarting:
		return 1
	case StateRunning:
		return 2
	case StateFailed:
		return 3
	}
	return 0
}

// EventSource is the chain-facing half of a listener; evmrpc and solanarpc
// both implement it.
type EventSource interface {
	NetworkName() string
	NetworkID() uint
	Subscribe(ctx context.Context) (<-chan events.Event, <-chan error, error)
	Close()
}

// Listener runs one network's pipeline: the source's transport goroutine
// feeds decoded events into a channel, and the listener's worker applies
// them through the reconciler, so a slow database write can never stall the
// transport read loop.
type Listener struct {
	source     EventSource
	reconciler reconciler.IReconciler
	logger     *logger.Logger
	cfg        config.ListenerConfig

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}
}

func NewListener(source EventSource, rec reconciler.IReconciler, cfg config.ListenerConfig, logger *logger.Logger) *Listener {
	l := &Listener{
		source:     source,
		reconciler: rec,
		logger:     logger,
		cfg:        cfg,
		state:      StateStopped,
	}
	monitoring.ListenerState.WithLabelValues(source.NetworkName()).Set(stateGaugeValue(StateStopped))
	return l
}

func (l *Listener) NetworkName() string {
	return l.source.NetworkName()
}

func (l *Listener) NetworkID() uint {
	return l.source.NetworkID()
}

func (l *Listener) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Listener) setState(s State) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
	monitoring.ListenerState.WithLabelValues(l.source.NetworkName()).Set(stateGaugeValue(s))
}

// Start opens the subscription and launches the worker. Starting an already
// started listener is a no-op.
func (l *Listener) Start(ctx context.Context) error {
	l.mu.Lock()
	if l.state == StateStarting || l.state == StateRunning {
		l.mu.Unlock()
		return nil
	}
	l.state = StateStarting
	runCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	done := make(chan struct{})
	l.done = done
	l.mu.Unlock()
	monitoring.ListenerState.WithLabelValues(l.source.NetworkName()).Set(stateGaugeValue(StateStarting))

	evCh, errCh, err := l.source.Subscribe(runCtx)
	if err != nil {
		cancel()
		close(done)
		l.setState(StateFailed)
		l.logger.Error("[Start] subscription failed", map[string]string{
			"network": l.source.NetworkName(),
			"error":   err.Error(),
		})
		return err
	}

	l.setState(StateRunning)
	l.logger.Info("[Start] listener running", map[string]string{
		"network": l.source.NetworkName(),
	})

	go l.run(runCtx, evCh, errCh, done)
	return nil
}

func (l *Listener) run(ctx context.Context, evCh <-chan events.Event, errCh <-chan error, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			l.setState(StateStopped)
			return

		case err := <-errCh:
			l.logger.Error("[run] transport error", map[string]string{
				"network": l.source.NetworkName(),
				"error":   err.Error(),
			})
			// The source also closes its event channel on transport failure,
			// so both channels are stale; replace them or stop.
			evCh, errCh = l.reconnect(ctx)
			if evCh == nil {
				return
			}

		case ev, ok := <-evCh:
			if !ok {
				// The closed event channel can arrive before the cause lands
				// on errCh; treat it as the same transport failure.
				if ctx.Err() != nil {
					l.setState(StateStopped)
					return
				}
				l.logger.Error("[run] event stream closed", map[string]string{
					"network": l.source.NetworkName(),
				})
				evCh, errCh = l.reconnect(ctx)
				if evCh == nil {
					return
				}
				continue
			}

			// Events are applied in delivery order. A failed application is
			// logged and dropped, not re-queued: redelivery by the chain is
			// the retry mechanism and idempotent writes make it safe.
			if err := l.reconciler.Apply(ctx, ev); err != nil {
				l.logger.Error("[run] event application failed", map[string]string{
					"network": l.source.NetworkName(),
					"event":   ev.Meta().RawName,
					"txHash":  ev.Meta().TxHash,
					"error":   err.Error(),
				})
			}
		}
	}
}

// reconnect re-subscribes with capped linear backoff. It returns nil channels
// after setting the terminal state when reconnect is disabled, the attempt
// budget is exhausted, or the context is cancelled.
func (l *Listener) reconnect(ctx context.Context) (<-chan events.Event, <-chan error) {
	if !l.cfg.Reconnect {
		l.setState(StateFailed)
		return nil, nil
	}

	for attempt := 1; attempt <= l.cfg.ReconnectMaxAttempts; attempt++ {
		backoff := time.Duration(attempt) * l.cfg.ReconnectBackoff
		l.logger.Info("[reconnect] re-subscribing", map[string]string{
			"network": l.source.NetworkName(),
			"attempt": strconv.Itoa(attempt),
			"backoff": backoff.String(),
		})
		select {
		case <-ctx.Done():
			l.setState(StateStopped)
			return nil, nil
		case <-time.After(backoff):
		}

		evCh, errCh, err := l.source.Subscribe(ctx)
		if err != nil {
			l.logger.Error("[reconnect] attempt failed", map[string]string{
				"network": l.source.NetworkName(),
				"attempt": strconv.Itoa(attempt),
				"error":   err.Error(),
			})
			continue
		}

		l.setState(StateRunning)
		return evCh, errCh
	}

	l.logger.Error("[reconnect] attempts exhausted", map[string]string{
		"network":     l.source.NetworkName(),
		"maxAttempts": strconv.Itoa(l.cfg.ReconnectMaxAttempts),
	})
	l.setState(StateFailed)
	return nil, nil
}

// Stop cancels the pipeline and waits for the worker to exit.
func (l *Listener) Stop() {
	l.mu.Lock()
	cancel := l.cancel
	done := l.done
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	l.setState(StateStopped)
}
