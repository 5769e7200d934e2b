package escrow

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/openpeerlabs/escrow-backend/internal/model"
	"github.com/openpeerlabs/escrow-backend/internal/store/contractevent"
	escrowstore "github.com/openpeerlabs/escrow-backend/internal/store/escrow"
)

type GetEscrowsRequest struct {
	NetworkID *uint  `form:"network_id"`
	State     string `form:"state"`
	Limit     int    `form:"limit"`
	Offset    int    `form:"offset"`
}

type GetEscrowsResponse struct {
	Total   int64          `json:"total"`
	Escrows []model.Escrow `json:"escrows"`
}

type escrowHandler struct {
	db            *gorm.DB
	escrow        escrowstore.IStore
	contractEvent contractevent.IStore
}

func New(db *gorm.DB, escrow escrowstore.IStore, contractEvent contractevent.IStore) IHandler {
	return &escrowHandler{
		db:            db,
		escrow:        escrow,
		contractEvent: contractEvent,
	}
}

// GetEscrows lists escrows with optional network and state filtering.
func (h *escrowHandler) GetEscrows(c *gin.Context) {
	var req GetEscrowsRequest
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

	escrows, total, err := h.escrow.List(h.db, escrowstore.ListFilter{
		NetworkID: req.NetworkID,
		State:     req.State,
		Limit:     req.Limit,
		Offset:    req.Offset,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch escrows"})
		return
	}

	c.JSON(http.StatusOK, GetEscrowsResponse{
		Total:   total,
		Escrows: escrows,
	})
}

// GetEscrowEvents returns the deduplicated contract events recorded for one
// escrow, newest first.
func (h *escrowHandler) GetEscrowEvents(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid escrow id"})
		return
	}

	events, err := h.contractEvent.ListByEscrow(h.db, uint(id), 100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}
