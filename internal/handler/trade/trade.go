package trade

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/openpeerlabs/escrow-backend/internal/model"
	tradestore "github.com/openpeerlabs/escrow-backend/internal/store/trade"
)

type GetTradesRequest struct {
	NetworkID *uint  `form:"network_id"`
	Status    string `form:"status"`
	Limit     int    `form:"limit"`
	Offset    int    `form:"offset"`
}

type GetTradesResponse struct {
	Total  int64         `json:"total"`
	Trades []model.Trade `json:"trades"`
}

type tradeHandler struct {
	db    *gorm.DB
	trade tradestore.IStore
}

func New(db *gorm.DB, trade tradestore.IStore) IHandler {
	return &tradeHandler{
		db:    db,
		trade: trade,
	}
}

// GetTrades lists trades with optional network and status filtering.
func (h *tradeHandler) GetTrades(c *gin.Context) {
	var req GetTradesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Limit <= 0 {
		req.Limit = 20
	}
	if req.Limit > 100 {
		req.Limit = 100
	}

	trades, total, err := h.trade.List(h.db, tradestore.ListFilter{
		NetworkID: req.NetworkID,
		Status:    req.Status,
		Limit:     req.Limit,
		Offset:    req.Offset,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch trades"})
		return
	}

	c.JSON(http.StatusOK, GetTradesResponse{
		Total:  total,
		Trades: trades,
	})
}

// GetTrade returns one trade by database id.
func (h *tradeHandler) GetTrade(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trade id"})
		return
	}

	tradeRow, err := h.trade.GetByID(h.db, uint(id))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "trade not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch trade"})
		return
	}

	c.JSON(http.StatusOK, tradeRow)
}
