package escrow

import (
	"time"

	"gorm.io/gorm"

	"github.com/openpeerlabs/escrow-backend/internal/model"
)

type ListFilter struct {
	NetworkID *uint
	State     string
	Limit     int
	Offset    int
}

type IStore interface {
	Create(db *gorm.DB, escrow *model.Escrow) (*model.Escrow, error)
	GetByID(db *gorm.DB, id uint) (*model.Escrow, error)
	GetByOnchainID(db *gorm.DB, networkID uint, onchainEscrowID string) (*model.Escrow, error)
	UpdateFields(db *gorm.DB, id uint, fields map[string]interface{}) error
	ListAutoCancelCandidates(db *gorm.DB, cutoff time.Time, limit int) ([]model.Escrow, error)
	List(db *gorm.DB, filter ListFilter) ([]model.Escrow, int64, error)
}
