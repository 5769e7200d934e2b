package network

import (
	"gorm.io/gorm"

	"github.com/openpeerlabs/escrow-backend/internal/model"
)

type store struct{}

func New() IStore {
	return &store{}
}

func (s *store) Create(db *gorm.DB, network *model.Network) (*model.Network, error) {
	return network, db.Create(network).Error
}

func (s *store) GetByID(db *gorm.DB, id uint) (*model.Network, error) {
	var network model.Network
	err := db.Where("id = ?", id).First(&network).Error
	if err != nil {
		return nil, err
	}
	return &network, nil
}

func (s *store) GetByName(db *gorm.DB, name string) (*model.Network, error) {
	var network model.Network
	err := db.Where("name = ?", name).First(&network).Error
	if err != nil {
		return nil, err
	}
	return &network, nil
}

func (s *store) List(db *gorm.DB) ([]model.Network, error) {
	var networks []model.Network
	err := db.Order("id asc").Find(&networks).Error
	if err != nil {
		return nil, err
	}
	return networks, nil
}

func (s *store) ListActive(db *gorm.DB) ([]model.Network, error) {
	var networks []model.Network
	err := db.Where("is_active = ?", true).Order("id asc").Find(&networks).Error
	if err != nil {
		return nil, err
	}
	return networks, nil
}

func (s *store) ListActiveByFamily(db *gorm.DB, family model.NetworkFamily) ([]model.Network, error) {
	var networks []model.Network
	err := db.Where("is_active = ? AND family = ?", true, family).Order("id asc").Find(&networks).Error
	if err != nil {
		return nil, err
	}
	return networks, nil
}
