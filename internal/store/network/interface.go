package network

import (
	"gorm.io/gorm"

	"github.com/openpeerlabs/escrow-backend/internal/model"
)

type IStore interface {
	Create(db *gorm.DB, network *model.Network) (*model.Network, error)
	GetByID(db *gorm.DB, id uint) (*model.Network, error)
	GetByName(db *gorm.DB, name string) (*model.Network, error)
	List(db *gorm.DB) ([]model.Network, error)
	ListActive(db *gorm.DB) ([]model.Network, error)
	ListActiveByFamily(db *gorm.DB, family model.NetworkFamily) ([]model.Network, error)
}
