package tradecancellation

import (
	"gorm.io/gorm"

	"github.com/openpeerlabs/escrow-backend/internal/model"
)

type store struct{}

func New() IStore {
	return &store{}
}

func (s *store) Create(db *gorm.DB, cancellation *model.TradeCancellation) (*model.TradeCancellation, error) {
	return cancellation, db.Create(cancellation).Error
}

func (s *store) CountByDeadlineField(db *gorm.DB, networkID *uint) (map[string]int64, error) {
	type row struct {
		DeadlineField string
		Total         int64
	}

	q := db.Model(&model.TradeCancellation{}).
		Select("deadline_field, count(*) as total").
		Group("deadline_field")
	if networkID != nil {
		q = q.Where("network_id = ?", *networkID)
	}

	var rows []row
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.DeadlineField] = r.Total
	}
	return counts, nil
}

func (s *store) ListRecent(db *gorm.DB, limit int) ([]model.TradeCancellation, error) {
	var rows []model.TradeCancellation
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
