package trade

import (
	"time"

	"gorm.io/gorm"

	"github.com/openpeerlabs/escrow-backend/internal/model"
)

// OverdueSpec selects one (leg, deadline-kind) combination for the sweep.
// DeadlineColumn and LegStateColumn must be trades columns; EligibleState is
// the single leg state that deadline kind applies to.
type OverdueSpec struct {
	DeadlineColumn string
	LegStateColumn string
	EligibleState  model.LegState
	NetworkID      *uint
	Now            time.Time
	Limit          int
}

type ListFilter struct {
	NetworkID *uint
	Status    string
	Limit     int
	Offset    int
}

type IStore interface {
	Create(db *gorm.DB, trade *model.Trade) (*model.Trade, error)
	GetByID(db *gorm.DB, id uint) (*model.Trade, error)
	GetForUpdate(db *gorm.DB, id uint) (*model.Trade, error)
	ListByEscrowOnchainID(db *gorm.DB, networkID uint, onchainEscrowID string) ([]model.Trade, error)
	UpdateFields(db *gorm.DB, id uint, fields map[string]interface{}) error
	FindOverdueForUpdate(db *gorm.DB, spec OverdueSpec) ([]model.Trade, error)
	List(db *gorm.DB, filter ListFilter) ([]model.Trade, int64, error)
}
