package tradecancellation

import (
	"gorm.io/gorm"

	"github.com/openpeerlabs/escrow-backend/internal/model"
)

type IStore interface {
	Create(db *gorm.DB, cancellation *model.TradeCancellation) (*model.TradeCancellation, error)
	CountByDeadlineField(db *gorm.DB, networkID *uint) (map[string]int64, error)
	ListRecent(db *gorm.DB, limit int) ([]model.TradeCancellation, error)
}
