package contractevent

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openpeerlabs/escrow-backend/internal/model"
)

type store struct{}

func New() IStore {
	return &store{}
}

func (s *store) InsertDedup(db *gorm.DB, event *model.ContractEvent) (bool, error) {
	result := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "network_id"},
			{Name: "transaction_hash"},
			{Name: "log_index"},
		},
		DoNothing: true,
	}).Create(event)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (s *store) ListByEscrow(db *gorm.DB, escrowDBID uint, limit int) ([]model.ContractEvent, error) {
	var rows []model.ContractEvent
	q := db.Where("related_escrow_db_id = ?", escrowDBID).Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
