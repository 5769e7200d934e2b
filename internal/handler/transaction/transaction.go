package transaction

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/openpeerlabs/escrow-backend/internal/chain"
	"github.com/openpeerlabs/escrow-backend/internal/model"
	"github.com/openpeerlabs/escrow-backend/internal/networkregistry"
	"github.com/openpeerlabs/escrow-backend/internal/store/transactionledger"
)

type GetTransactionsRequest struct {
	NetworkID *uint  `form:"network_id"`
	Status    string `form:"status"`
	Limit     int    `form:"limit"`
	Offset    int    `form:"offset"`
}

// TransactionView decorates a ledger row with a block explorer link built by
// the network's chain adapter.
type TransactionView struct {
	model.Transaction
	ExplorerURL string `json:"explorer_url,omitempty"`
}

type GetTransactionsResponse struct {
	Total        int64             `json:"total"`
	Transactions []TransactionView `json:"transactions"`
}

type transactionHandler struct {
	db       *gorm.DB
	ledger   transactionledger.IStore
	registry *networkregistry.Registry
}

func New(db *gorm.DB, ledger transactionledger.IStore, registry *networkregistry.Registry) IHandler {
	return &transactionHandler{
		db:       db,
		ledger:   ledger,
		registry: registry,
	}
}

// GetTransactions lists ledger rows with optional network and status
// filtering.
func (h *transactionHandler) GetTransactions(c *gin.Context) {
	var req GetTransactionsRequest
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

	rows, total, err := h.ledger.List(h.db, transactionledger.ListFilter{
		NetworkID: req.NetworkID,
		Status:    req.Status,
		Limit:     req.Limit,
		Offset:    req.Offset,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
		return
	}

	views := make([]TransactionView, 0, len(rows))
	for i := range rows {
		views = append(views, TransactionView{
			Transaction: rows[i],
			ExplorerURL: h.explorerURL(&rows[i]),
		})
	}

	c.JSON(http.StatusOK, GetTransactionsResponse{
		Total:        total,
		Transactions: views,
	})
}

func (h *transactionHandler) explorerURL(row *model.Transaction) string {
	network, err := h.registry.GetByID(row.NetworkID)
	if err != nil {
		return ""
	}
	adapter, err := chain.NewAdapter(network.Family)
	if err != nil {
		return ""
	}
	return adapter.ExplorerURL(network, row.Identifier())
}
