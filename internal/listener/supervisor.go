package listener

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/openpeerlabs/escrow-backend/internal/model"
	"github.com/openpeerlabs/escrow-backend/internal/networkregistry"
	"github.com/openpeerlabs/escrow-backend/internal/reconciler"
	"github.com/openpeerlabs/escrow-backend/internal/utils/config"
	"github.com/openpeerlabs/escrow-backend/internal/utils/logger"
)

// SourceFactory builds the chain-facing source for one network. The server
// wires in the evmrpc/solanarpc constructors; tests substitute fakes.
type SourceFactory func(network model.Network) (EventSource, error)

// Supervisor owns one listener per active network, keyed by network id. A
// failure in one network's listener never affects another's.
type Supervisor struct {
	registry   *networkregistry.Registry
	reconciler reconciler.IReconciler
	factory    SourceFactory
	cfg        config.ListenerConfig
	logger     *logger.Logger

	mu        sync.Mutex
	listeners map[uint]*Listener
}

func NewSupervisor(
	registry *networkregistry.Registry,
	rec reconciler.IReconciler,
	factory SourceFactory,
	cfg config.ListenerConfig,
	logger *logger.Logger,
) *Supervisor {
	return &Supervisor{
		registry:   registry,
		reconciler: rec,
		factory:    factory,
		cfg:        cfg,
		logger:     logger,
		listeners:  make(map[uint]*Listener),
	}
}

// StartAll launches a listener for every active network. A network whose
// source cannot be built or subscribed is reported but does not keep the
// others from starting.
func (s *Supervisor) StartAll(ctx context.Context) error {
	networks, err := s.registry.ListActive()
	if err != nil {
		return errors.Wrap(err, "list active networks")
	}

	for _, network := range networks {
		if err := s.startNetwork(ctx, network); err != nil {
			s.logger.Error("[StartAll] listener failed to start", map[string]string{
				"network": network.Name,
				"error":   err.Error(),
			})
		}
	}
	return nil
}

func (s *Supervisor) startNetwork(ctx context.Context, network model.Network) error {
	s.mu.Lock()
	existing, ok := s.listeners[network.ID]
	s.mu.Unlock()

	if ok {
		return existing.Start(ctx)
	}

	source, err := s.factory(network)
	if err != nil {
		return errors.Wrapf(err, "build source for %s", network.Name)
	}

	l := NewListener(source, s.reconciler, s.cfg, s.logger)
	s.mu.Lock()
	s.listeners[network.ID] = l
	s.mu.Unlock()

	return l.Start(ctx)
}

// Restart stops and restarts one network's listener, rebuilding nothing;
// the source re-subscribes on Start.
func (s *Supervisor) Restart(ctx context.Context, networkID uint) error {
	s.mu.Lock()
	l, ok := s.listeners[networkID]
	s.mu.Unlock()
	if !ok {
		network, err := s.registry.ResolveActive(networkID)
		if err != nil {
			return err
		}
		return s.startNetwork(ctx, *network)
	}

	l.Stop()
	return l.Start(ctx)
}

// StopAll stops every listener and waits for their workers.
func (s *Supervisor) StopAll() {
	s.mu.Lock()
	listeners := make([]*Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l.Stop()
	}
}

// States reports each managed listener's state keyed by network name, for
// the health endpoint.
func (s *Supervisor) States() map[string]State {
	s.mu.Lock()
	defer s.mu.Unlock()

	states := make(map[string]State, len(s.listeners))
	for _, l := range s.listeners {
		states[l.NetworkName()] = l.State()
	}
	return states
}
