package evmrpc

import (
	"context"

	"github.com/openpeerlabs/escrow-backend/internal/events"
)

// IEvmRPC is the per-network EVM client used by the listener and the escrow
// monitor.
type IEvmRPC interface {
	NetworkName() string
	NetworkID() uint

	// Subscribe opens the log subscription filtered to the network's escrow
	// contract and streams decoded events until ctx is cancelled or the
	// transport fails. Transport failures arrive on the error channel; the
	// event channel is closed when the pipeline stops.
	Subscribe(ctx context.Context) (<-chan events.Event, <-chan error, error)

	// AutoCancelEligible queries the contract's on-chain eligibility
	// predicate for the escrow.
	AutoCancelEligible(ctx context.Context, onchainEscrowID string) (bool, error)

	// AutoCancel submits the arbitrator-signed cancellation transaction,
	// waits for inclusion, and returns the transaction hash.
	AutoCancel(ctx context.Context, onchainEscrowID string) (string, error)

	Close()
}
