package stats

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/openpeerlabs/escrow-backend/internal/store/contractautocancellation"
	"github.com/openpeerlabs/escrow-backend/internal/store/tradecancellation"
)

type statsQuery struct {
	NetworkID *uint `form:"network_id"`
}

type statsHandler struct {
	db                       *gorm.DB
	tradeCancellation        tradecancellation.IStore
	contractAutoCancellation contractautocancellation.IStore
}

func New(db *gorm.DB, tc tradecancellation.IStore, cac contractautocancellation.IStore) IHandler {
	return &statsHandler{
		db:                       db,
		tradeCancellation:        tc,
		contractAutoCancellation: cac,
	}
}

// GetDeadlineCancellations reports sweep cancellations grouped by the
// deadline field that fired, plus the most recent audit rows.
func (h *statsHandler) GetDeadlineCancellations(c *gin.Context) {
	var query statsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	counts, err := h.tradeCancellation.CountByDeadlineField(h.db, query.NetworkID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cancellation stats"})
		return
	}

	recent, err := h.tradeCancellation.ListRecent(h.db, 20)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recent cancellations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"counts_by_deadline_field": counts,
		"recent":                   recent,
	})
}

// GetAutoCancellations reports on-chain auto-cancel attempts grouped by
// outcome, plus the most recent attempts.
func (h *statsHandler) GetAutoCancellations(c *gin.Context) {
	var query statsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	counts, err := h.contractAutoCancellation.CountByStatus(h.db, query.NetworkID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch auto-cancellation stats"})
		return
	}

	recent, err := h.contractAutoCancellation.ListRecent(h.db, 20)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recent attempts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"counts_by_status": counts,
		"recent":           recent,
	})
}
