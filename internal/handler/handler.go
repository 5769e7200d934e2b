package handler

import (
	"gorm.io/gorm"

	"github.com/openpeerlabs/escrow-backend/internal/handler/escrow"
	"github.com/openpeerlabs/escrow-backend/internal/handler/health"
	"github.com/openpeerlabs/escrow-backend/internal/handler/network"
	"github.com/openpeerlabs/escrow-backend/internal/handler/stats"
	"github.com/openpeerlabs/escrow-backend/internal/handler/trade"
	"github.com/openpeerlabs/escrow-backend/internal/handler/transaction"
	"github.com/openpeerlabs/escrow-backend/internal/networkregistry"
	"github.com/openpeerlabs/escrow-backend/internal/store"
	"github.com/openpeerlabs/escrow-backend/internal/utils/config"
	"github.com/openpeerlabs/escrow-backend/internal/utils/logger"
)

type Handler struct {
	TradeHandler       trade.IHandler
	EscrowHandler      escrow.IHandler
	TransactionHandler transaction.IHandler
	NetworkHandler     network.IHandler
	StatsHandler       stats.IHandler
	HealthHandler      health.IHandler
}

func New(appConfig *config.AppConfig, logger *logger.Logger, db *gorm.DB, s *store.Store, registry *networkregistry.Registry, listeners health.StateReporter) *Handler {
	return &Handler{
		TradeHandler:       trade.New(db, s.Trade),
		EscrowHandler:      escrow.New(db, s.Escrow, s.ContractEvent),
		TransactionHandler: transaction.New(db, s.TransactionLedger, registry),
		NetworkHandler:     network.New(registry),
		StatsHandler:       stats.New(db, s.TradeCancellation, s.ContractAutoCancellation),
		HealthHandler:      health.New(appConfig, logger, db, listeners),
	}
}
