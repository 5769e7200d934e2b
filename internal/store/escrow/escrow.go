package escrow

import (
	"time"

	"gorm.io/gorm"

	"github.com/openpeerlabs/escrow-backend/internal/model"
)

type store struct{}

func New() IStore {
	return &store{}
}

func (s *store) Create(db *gorm.DB, escrow *model.Escrow) (*model.Escrow, error) {
	return escrow, db.Create(escrow).Error
}

func (s *store) GetByID(db *gorm.DB, id uint) (*model.Escrow, error) {
	var escrow model.Escrow
	err := db.Where("id = ?", id).First(&escrow).Error
	if err != nil {
		return nil, err
	}
	return &escrow, nil
}

func (s *store) GetByOnchainID(db *gorm.DB, networkID uint, onchainEscrowID string) (*model.Escrow, error) {
	var escrow model.Escrow
	err := db.Where("network_id = ? AND onchain_escrow_id = ?", networkID, onchainEscrowID).
		First(&escrow).Error
	if err != nil {
		return nil, err
	}
	return &escrow, nil
}

func (s *store) UpdateFields(db *gorm.DB, id uint, fields map[string]interface{}) error {
	return db.Model(&model.Escrow{}).Where("id = ?", id).Updates(fields).Error
}

// ListAutoCancelCandidates returns not-yet-settled escrows of IN_PROGRESS
// trades that were created before cutoff and so may have become eligible for
// the contract's auto-cancel. The limit caps blockchain call volume per run.
func (s *store) ListAutoCancelCandidates(db *gorm.DB, cutoff time.Time, limit int) ([]model.Escrow, error) {
	var escrows []model.Escrow
	q := db.Joins("JOIN trades ON trades.id = escrows.trade_id").
		Where("trades.overall_status = ?", model.TradeStatusInProgress).
		Where("escrows.state IN ?", []model.EscrowState{model.EscrowStateCreated, model.EscrowStateFunded}).
		Where("escrows.created_at < ?", cutoff).
		Order("escrows.id asc")
	if limit > 0 {
		q = q.Limit(limit)
	}

	err := q.Find(&escrows).Error
	if err != nil {
		return nil, err
	}
	return escrows, nil
}

func (s *store) List(db *gorm.DB, filter ListFilter) ([]model.Escrow, int64, error) {
	q := db.Model(&model.Escrow{})
	if filter.NetworkID != nil {
		q = q.Where("network_id = ?", *filter.NetworkID)
	}
	if filter.State != "" {
		q = q.Where("state = ?", filter.State)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var escrows []model.Escrow
	err := q.Order("id desc").Find(&escrows).Error
	if err != nil {
		return nil, 0, err
	}
	return escrows, total, nil
}
