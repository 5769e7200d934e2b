package escrowmonitor

import (
	"context"

	"github.com/openpeerlabs/escrow-backend/internal/model"
)

// ChainClient is the slice of the per-network RPC client the monitor needs.
// Both the EVM and the Solana clients satisfy it.
type ChainClient interface {
	AutoCancelEligible(ctx context.Context, onchainEscrowID string) (bool, error)
	AutoCancel(ctx context.Context, onchainEscrowID string) (string, error)
}

// ClientFactory builds a ChainClient for a network. The server wires the
// same constructors the listener uses; tests substitute fakes.
type ClientFactory func(network model.Network) (ChainClient, error)

type IMonitor interface {
	Run(ctx context.Context)
}
