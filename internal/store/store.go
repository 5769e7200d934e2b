package store

import (
	"github.com/openpeerlabs/escrow-backend/internal/store/contractautocancellation"
	"github.com/openpeerlabs/escrow-backend/internal/store/contractevent"
	"github.com/openpeerlabs/escrow-backend/internal/store/escrow"
	"github.com/openpeerlabs/escrow-backend/internal/store/escrowidmapping"
	"github.com/openpeerlabs/escrow-backend/internal/store/network"
	"github.com/openpeerlabs/escrow-backend/internal/store/trade"
	"github.com/openpeerlabs/escrow-backend/internal/store/transactionledger"
	"github.com/openpeerlabs/escrow-backend/internal/store/tradecancellation"
)

type Store struct {
	Network                  network.IStore
	Trade                    trade.IStore
	Escrow                   escrow.IStore
	TransactionLedger        transactionledger.IStore
	ContractEvent            contractevent.IStore
	EscrowIDMapping          escrowidmapping.IStore
	TradeCancellation        tradecancellation.IStore
	ContractAutoCancellation contractautocancellation.IStore
}

func New() *Store {
	return &Store{
		Network:                  network.New(),
		Trade:                    trade.New(),
		Escrow:                   escrow.New(),
		TransactionLedger:        transactionledger.New(),
		ContractEvent:            contractevent.New(),
		EscrowIDMapping:          escrowidmapping.New(),
		TradeCancellation:        tradecancellation.New(),
		ContractAutoCancellation: contractautocancellation.New(),
	}
}
