package contractautocancellation

import (
	"gorm.io/gorm"

	"github.com/openpeerlabs/escrow-backend/internal/model"
)

type store struct{}

func New() IStore {
	return &store{}
}

func (s *store) Create(db *gorm.DB, attempt *model.ContractAutoCancellation) (*model.ContractAutoCancellation, error) {
	return attempt, db.Create(attempt).Error
}

func (s *store) UpdateFields(db *gorm.DB, id uint, fields map[string]interface{}) error {
	return db.Model(&model.ContractAutoCancellation{}).Where("id = ?", id).Updates(fields).Error
}

func (s *store) HasConfirmedFor(db *gorm.DB, escrowDBID uint) (bool, error) {
	var count int64
	err := db.Model(&model.ContractAutoCancellation{}).
		Where("escrow_db_id = ? AND status = ?", escrowDBID, model.AutoCancellationStatusConfirmed).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *store) CountByStatus(db *gorm.DB, networkID *uint) (map[model.AutoCancellationStatus]int64, error) {
	type row struct {
		Status model.AutoCancellationStatus
		Total  int64
	}

	q := db.Model(&model.ContractAutoCancellation{}).
		Select("status, count(*) as total").
		Group("status")
	if networkID != nil {
		q = q.Where("network_id = ?", *networkID)
	}

	var rows []row
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[model.AutoCancellationStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	return counts, nil
}

func (s *store) ListRecent(db *gorm.DB, limit int) ([]model.ContractAutoCancellation, error) {
	var rows []model.ContractAutoCancellation
	q := db.Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
