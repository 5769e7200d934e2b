package escrowidmapping

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openpeerlabs/escrow-backend/internal/model"
)

type store struct{}

func New() IStore {
	return &store{}
}

func (s *store) Upsert(db *gorm.DB, networkID uint, onchainEscrowID string, escrowDBID uint) error {
	mapping := &model.EscrowIDMapping{
		NetworkID:       networkID,
		OnchainEscrowID: onchainEscrowID,
		EscrowDBID:      escrowDBID,
	}
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "network_id"},
			{Name: "onchain_escrow_id"},
		},
		DoNothing: true,
	}).Create(mapping).Error
}

func (s *store) GetByOnchainID(db *gorm.DB, networkID uint, onchainEscrowID string) (*model.EscrowIDMapping, error) {
	var mapping model.EscrowIDMapping
	err := db.Where("network_id = ? AND onchain_escrow_id = ?", networkID, onchainEscrowID).
		First(&mapping).Error
	if err != nil {
		return nil, err
	}
	return &mapping, nil
}

func (s *store) GetByEscrowDBID(db *gorm.DB, escrowDBID uint) (*model.EscrowIDMapping, error) {
	var mapping model.EscrowIDMapping
	err := db.Where("escrow_db_id = ?", escrowDBID).First(&mapping).Error
	if err != nil {
		return nil, err
	}
	return &mapping, nil
}
