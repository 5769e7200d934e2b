package solanarpc

import (
	"context"

	"github.com/openpeerlabs/escrow-backend/internal/events"
)

// ISolanaRPC is the per-network Solana client used by the listener and the
// escrow monitor. It mirrors the EVM capability set so everything above the
// chain boundary stays family-agnostic.
type ISolanaRPC interface {
	NetworkName() string
	NetworkID() uint

	// Subscribe opens a logs subscription mentioning the escrow program and
	// streams decoded program events until ctx is cancelled or the websocket
	// fails.
	Subscribe(ctx context.Context) (<-chan events.Event, <-chan error, error)

	// AutoCancelEligible reads the escrow PDA and evaluates the program's
	// auto-cancel predicate against its on-chain state.
	AutoCancelEligible(ctx context.Context, onchainEscrowID string) (bool, error)

	// AutoCancel submits the arbitrator-signed auto_cancel instruction,
	// waits for confirmation, and returns the signature.
	AutoCancel(ctx context.Context, onchainEscrowID string) (string, error)

	Close()
}
