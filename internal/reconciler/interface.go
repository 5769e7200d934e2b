package reconciler

import (
	"context"

	"github.com/openpeerlabs/escrow-backend/internal/events"
)

// IReconciler applies decoded contract events to the off-chain mirror.
type IReconciler interface {
	// Apply is idempotent under redelivery: the contract_events dedup key
	// guarantees at-most-one logical application, and every state write is
	// additionally guarded by "current state differs from target".
	Apply(ctx context.Context, ev events.Event) error
}
