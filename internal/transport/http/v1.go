package http

import (
	"github.com/gin-gonic/gin"

	"github.com/openpeerlabs/escrow-backend/internal/handler"
)

func loadV1Routes(r *gin.Engine, h *handler.Handler) {
	v1 := r.Group("/api/v1")

	trades := v1.Group("/trades")
	{
		trades.GET("", h.TradeHandler.GetTrades)
		trades.GET("/:id", h.TradeHandler.GetTrade)
	}

	escrows := v1.Group("/escrows")
	{
		escrows.GET("", h.EscrowHandler.GetEscrows)
		escrows.GET("/:id/events", h.EscrowHandler.GetEscrowEvents)
	}

	v1.GET("/transactions", h.TransactionHandler.GetTransactions)
	v1.GET("/networks", h.NetworkHandler.GetNetworks)

	stats := v1.Group("/stats")
	{
		stats.GET("/deadline-cancellations", h.StatsHandler.GetDeadlineCancellations)
		stats.GET("/auto-cancellations", h.StatsHandler.GetAutoCancellations)
	}

	v1.GET("/health", h.HealthHandler.Detailed)

	// liveness probe
	r.GET("/healthz", h.HealthHandler.Basic)
}
