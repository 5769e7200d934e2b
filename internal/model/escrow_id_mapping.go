package model

import "time"

// EscrowIDMapping is the bidirectional lookup between the contract-assigned
// escrow id and the escrows table primary key, scoped per network.
type EscrowIDMapping struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	NetworkID       uint   `gorm:"column:network_id;not null;index:idx_escrow_id_mapping_onchain,unique" json:"network_id"`
	OnchainEscrowID string `gorm:"column:onchain_escrow_id;type:varchar(128);not null;index:idx_escrow_id_mapping_onchain,unique" json:"onchain_escrow_id"`
	EscrowDBID      uint   `gorm:"column:escrow_db_id;not null;uniqueIndex" json:"escrow_db_id"`
	CreatedAt       time.Time `json:"created_at"`
}

func (EscrowIDMapping) TableName() string {
	return "escrow_id_mapping"
}
