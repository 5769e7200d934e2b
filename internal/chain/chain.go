package chain

import (
	"github.com/pkg/errors"

	"github.com/openpeerlabs/escrow-backend/internal/model"
)

// Info is the adapter's static description of a network, surfaced to the
// HTTP layer.
type Info struct {
	Family          model.NetworkFamily `json:"family"`
	ChainID         *int64              `json:"chain_id,omitempty"`
	ContractAddress string              `json:"contract_address"`
	NativeSymbol    string              `json:"native_symbol"`
}

// Adapter is the per-chain-family capability set the rest of the system
// depends on. Both families implement it; everything above this boundary is
// family-agnostic.
type Adapter interface {
	Family() model.NetworkFamily
	ValidateAddress(address string) error
	ValidateTxIdentifier(identifier string) error
	ExplorerURL(network *model.Network, txIdentifier string) string
	NetworkInfo(network *model.Network) Info
}

// ErrUnsupportedFamily is returned by the factory for any family it has no
// adapter for.
var ErrUnsupportedFamily = errors.New("unsupported network family")
