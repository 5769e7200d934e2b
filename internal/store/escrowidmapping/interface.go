package escrowidmapping

import (
	"gorm.io/gorm"

	"github.com/openpeerlabs/escrow-backend/internal/model"
)

type IStore interface {
	Upsert(db *gorm.DB, networkID uint, onchainEscrowID string, escrowDBID uint) error
	GetByOnchainID(db *gorm.DB, networkID uint, onchainEscrowID string) (*model.EscrowIDMapping, error)
	GetByEscrowDBID(db *gorm.DB, escrowDBID uint) (*model.EscrowIDMapping, error)
}
