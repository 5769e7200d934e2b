package model

import "time"

type NetworkFamily string

const (
	NetworkFamilyEVM    NetworkFamily = "EVM"
	NetworkFamilySolana NetworkFamily = "SOLANA"
)

// Network is a row of the networks table. Rows are read-mostly and served
// through the registry cache; ChainID is nil for Solana networks.
type Network struct {
	ID                uint          `gorm:"primaryKey" json:"id"`
	Name              string        `gorm:"column:name;type:varchar(100);not null;uniqueIndex" json:"name"`
	Family            NetworkFamily `gorm:"column:family;type:varchar(20);not null" json:"family"`
	ChainID           *int64        `gorm:"column:chain_id" json:"chain_id,omitempty"`
	RpcURL            string        `gorm:"column:rpc_url;type:varchar(255);not null" json:"rpc_url"`
	WsURL             string        `gorm:"column:ws_url;type:varchar(255);not null" json:"ws_url"`
	ContractAddress   string        `gorm:"column:contract_address;type:varchar(128);not null" json:"contract_address"`
	ArbitratorAddress string        `gorm:"column:arbitrator_address;type:varchar(128);not null" json:"arbitrator_address"`
	IsActive          bool          `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

func (Network) TableName() string {
	return "networks"
}
