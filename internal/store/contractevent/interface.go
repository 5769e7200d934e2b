package contractevent

import (
	"gorm.io/gorm"

	"github.com/openpeerlabs/escrow-backend/internal/model"
)

type IStore interface {
	// InsertDedup inserts the event unless its (network, tx hash, log index)
	// key already exists. The bool reports whether a row was written; false
	// means this logical event was seen before.
	InsertDedup(db *gorm.DB, event *model.ContractEvent) (bool, error)
	ListByEscrow(db *gorm.DB, escrowDBID uint, limit int) ([]model.ContractEvent, error)
}
