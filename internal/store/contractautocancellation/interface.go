package contractautocancellation

import (
	"gorm.io/gorm"

	"github.com/openpeerlabs/escrow-backend/internal/model"
)

type IStore interface {
	Create(db *gorm.DB, attempt *model.ContractAutoCancellation) (*model.ContractAutoCancellation, error)
	UpdateFields(db *gorm.DB, id uint, fields map[string]interface{}) error
	// HasConfirmedFor reports whether a prior run already cancelled this
	// escrow successfully, making further attempts no-ops.
	HasConfirmedFor(db *gorm.DB, escrowDBID uint) (bool, error)
	CountByStatus(db *gorm.DB, networkID *uint) (map[model.AutoCancellationStatus]int64, error)
	ListRecent(db *gorm.DB, limit int) ([]model.ContractAutoCancellation, error)
}
