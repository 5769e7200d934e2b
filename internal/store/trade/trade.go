package trade

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openpeerlabs/escrow-backend/internal/model"
)

type store struct{}

func New() IStore {
	return &store{}
}

// sweepColumns whitelists the column pairs OverdueSpec may name; anything
// else is rejected before it reaches SQL.
var sweepColumns = map[string]string{
	model.DeadlineFieldLeg1Deposit: "leg1_state",
	model.DeadlineFieldLeg1Fiat:    "leg1_state",
	model.DeadlineFieldLeg2Deposit: "leg2_state",
	model.DeadlineFieldLeg2Fiat:    "leg2_state",
}

func (s *store) Create(db *gorm.DB, trade *model.Trade) (*model.Trade, error) {
	return trade, db.Create(trade).Error
}

func (s *store) GetByID(db *gorm.DB, id uint) (*model.Trade, error) {
	var trade model.Trade
	err := db.Where("id = ?", id).First(&trade).Error
	if err != nil {
		return nil, err
	}
	return &trade, nil
}

func (s *store) GetForUpdate(db *gorm.DB, id uint) (*model.Trade, error) {
	var trade model.Trade
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&trade).Error
	if err != nil {
		return nil, err
	}
	return &trade, nil
}

func (s *store) ListByEscrowOnchainID(db *gorm.DB, networkID uint, onchainEscrowID string) ([]model.Trade, error) {
	var trades []model.Trade
	err := db.Where(
		"network_id = ? AND (leg1_escrow_onchain_id = ? OR leg2_escrow_onchain_id = ?)",
		networkID, onchainEscrowID, onchainEscrowID,
	).Find(&trades).Error
	if err != nil {
		return nil, err
	}
	return trades, nil
}

func (s *store) UpdateFields(db *gorm.DB, id uint, fields map[string]interface{}) error {
	return db.Model(&model.Trade{}).Where("id = ?", id).Updates(fields).Error
}

// FindOverdueForUpdate selects IN_PROGRESS trades whose deadline has elapsed
// and whose leg is in the single eligible state, locking the rows with SKIP
// LOCKED so overlapping sweep instances neither double-process nor deadlock.
func (s *store) FindOverdueForUpdate(db *gorm.DB, spec OverdueSpec) ([]model.Trade, error) {
	legStateColumn, ok := sweepColumns[spec.DeadlineColumn]
	if !ok || legStateColumn != spec.LegStateColumn {
		return nil, fmt.Errorf("invalid sweep columns: %s/%s", spec.DeadlineColumn, spec.LegStateColumn)
	}

	q := db.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("overall_status = ?", model.TradeStatusInProgress).
		Where(fmt.Sprintf("%s IS NOT NULL AND %s < ?", spec.DeadlineColumn, spec.DeadlineColumn), spec.Now).
		Where(fmt.Sprintf("%s = ?", spec.LegStateColumn), spec.EligibleState)

	if spec.NetworkID != nil {
		q = q.Where("network_id = ?", *spec.NetworkID)
	}
	if spec.Limit > 0 {
		q = q.Limit(spec.Limit)
	}

	var trades []model.Trade
	err := q.Order("id asc").Find(&trades).Error
	if err != nil {
		return nil, err
	}
	return trades, nil
}

func (s *store) List(db *gorm.DB, filter ListFilter) ([]model.Trade, int64, error) {
	q := db.Model(&model.Trade{})
	if filter.NetworkID != nil {
		q = q.Where("network_id = ?", *filter.NetworkID)
	}
	if filter.Status != "" {
		q = q.Where("overall_status = ?", filter.Status)
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

	var trades []model.Trade
	err := q.Order("id desc").Find(&trades).Error
	if err != nil {
		return nil, 0, err
	}
	return trades, total, nil
}
