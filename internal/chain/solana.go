package chain

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/openpeerlabs/escrow-backend/internal/model"
)

type solanaAdapter struct{}

func (a *solanaAdapter) Family() model.NetworkFamily {
	return model.NetworkFamilySolana
}

func (a *solanaAdapter) ValidateAddress(address string) error {
	if _, err := solana.PublicKeyFromBase58(address); err != nil {
		return errors.Wrapf(err, "invalid Solana address: %s", address)
	}
	return nil
}

func (a *solanaAdapter) ValidateTxIdentifier(identifier string) error {
	raw, err := base58.Decode(identifier)
	if err != nil {
		return errors.Wrapf(err, "invalid Solana signature: %s", identifier)
	}
	if len(raw) != 64 {
		return errors.Errorf("invalid Solana signature length: %d", len(raw))
	}
	return nil
}

func (a *solanaAdapter) ExplorerURL(network *model.Network, txIdentifier string) string {
	cluster := ""
	if network.Name == "solana-devnet" {
		cluster = "?cluster=devnet"
	}
	return fmt.Sprintf("https://explorer.solana.com/tx/%s%s", txIdentifier, cluster)
}

func (a *solanaAdapter) NetworkInfo(network *model.Network) Info {
	return Info{
		Family:          model.NetworkFamilySolana,
		ContractAddress: network.ContractAddress,
		NativeSymbol:    "SOL",
	}
}
