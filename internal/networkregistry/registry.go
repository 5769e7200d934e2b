package networkregistry

import (
	"sync"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/openpeerlabs/escrow-backend/internal/model"
	"github.com/openpeerlabs/escrow-backend/internal/store/network"
	"github.com/openpeerlabs/escrow-backend/internal/utils/logger"
)

var (
	ErrNetworkNotFound = errors.New("network not found")
	ErrNetworkInactive = errors.New("network is inactive")
)

// Registry caches the read-mostly networks table. Lookups by id or name
// serve from memory; Invalidate drops the cache so the next lookup reloads.
// Request-time resolution rejects inactive networks.
type Registry struct {
	db     *gorm.DB
	store  network.IStore
	logger *logger.Logger

	mu     sync.RWMutex
	byID   map[uint]model.Network
	byName map[string]model.Network
	loaded bool
}

func New(db *gorm.DB, store network.IStore, logger *logger.Logger) *Registry {
	return &Registry{
		db:     db,
		store:  store,
		logger: logger,
	}
}

func (r *Registry) ensureLoaded() error {
	r.mu.RLock()
	loaded := r.loaded
	r.mu.RUnlock()
	if loaded {
		return nil
	}
	return r.Refresh()
}

// Refresh reloads the cache from the database.
func (r *Registry) Refresh() error {
	networks, err := r.store.List(r.db)
	if err != nil {
		return errors.Wrap(err, "load networks")
	}

	byID := make(map[uint]model.Network, len(networks))
	byName := make(map[string]model.Network, len(networks))
	for _, n := range networks {
		byID[n.ID] = n
		byName[n.Name] = n
	}

	r.mu.Lock()
	r.byID = byID
	r.byName = byName
	r.loaded = true
	r.mu.Unlock()

	return nil
}

// Invalidate drops the cached rows; the next lookup reloads from the
// database.
func (r *Registry) Invalidate() {
	r.mu.Lock()
	r.loaded = false
	r.mu.Unlock()
}

// GetByID returns the network regardless of its active flag. Callers that
// resolve request input should use ResolveActive instead.
func (r *Registry) GetByID(id uint) (*model.Network, error) {
	if err := r.ensureLoaded(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	n, ok := r.byID[id]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(ErrNetworkNotFound, "id %d", id)
	}
	return &n, nil
}

func (r *Registry) GetByName(name string) (*model.Network, error) {
	if err := r.ensureLoaded(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	n, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(ErrNetworkNotFound, "name %s", name)
	}
	return &n, nil
}

// ResolveActive looks up a network by id and rejects inactive rows.
func (r *Registry) ResolveActive(id uint) (*model.Network, error) {
	n, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !n.IsActive {
		return nil, errors.Wrapf(ErrNetworkInactive, "id %d", id)
	}
	return n, nil
}

// ListActive returns the active networks, the set that gets listeners.
func (r *Registry) ListActive() ([]model.Network, error) {
	if err := r.ensureLoaded(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var networks []model.Network
	for _, n := range r.byID {
		if n.IsActive {
			networks = append(networks, n)
		}
	}
	return networks, nil
}

// ListActiveByFamily filters the active set by chain family.
func (r *Registry) ListActiveByFamily(family model.NetworkFamily) ([]model.Network, error) {
	networks, err := r.ListActive()
	if err != nil {
		return nil, err
	}

	var filtered []model.Network
	for _, n := range networks {
		if n.Family == family {
			filtered = append(filtered, n)
		}
	}
	return filtered, nil
}
