package chain

import (
	"fmt"
	"regexp"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/openpeerlabs/escrow-backend/internal/model"
)

var evmTxHashPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

type evmAdapter struct{}

func (a *evmAdapter) Family() model.NetworkFamily {
	return model.NetworkFamilyEVM
}

func (a *evmAdapter) ValidateAddress(address string) error {
	if !common.IsHexAddress(address) {
		return errors.Errorf("invalid EVM address: %s", address)
	}
	return nil
}

func (a *evmAdapter) ValidateTxIdentifier(identifier string) error {
	if !evmTxHashPattern.MatchString(identifier) {
		return errors.Errorf("invalid EVM transaction hash: %s", identifier)
	}
	return nil
}

func (a *evmAdapter) ExplorerURL(network *model.Network, txIdentifier string) string {
	base := explorerBaseForChain(network.ChainID)
	return fmt.Sprintf("%s/tx/%s", base, txIdentifier)
}

func (a *evmAdapter) NetworkInfo(network *model.Network) Info {
	return Info{
		Family:          model.NetworkFamilyEVM,
		ChainID:         network.ChainID,
		ContractAddress: network.ContractAddress,
		NativeSymbol:    "ETH",
	}
}

func explorerBaseForChain(chainID *int64) string {
	if chainID == nil {
		return "https://etherscan.io"
	}
	switch *chainID {
	case 1:
		return "https://etherscan.io"
	case 42220:
		return "https://celoscan.io"
	case 44787:
		return "https://alfajores.celoscan.io"
	case 11155111:
		return "https://sepolia.etherscan.io"
	}
	return "https://etherscan.io"
}
