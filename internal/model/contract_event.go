package model

import "time"

// ContractEvent is a raw decoded log, kept both as the dedup guard for the
// reconciler and as an audit trail. The (network_id, transaction_hash,
// log_index) key makes redelivered logs no-ops.
type ContractEvent struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	NetworkID uint `gorm:"column:network_id;not null;index:idx_contract_events_dedup,unique" json:"network_id"`

	TransactionHash string `gorm:"column:transaction_hash;type:varchar(128);not null;index:idx_contract_events_dedup,unique" json:"transaction_hash"`
	LogIndex        uint   `gorm:"column:log_index;not null;index:idx_contract_events_dedup,unique" json:"log_index"`

	EventName   string `gorm:"column:event_name;type:varchar(50);not null" json:"event_name"`
	BlockNumber int64  `gorm:"column:block_number" json:"block_number"`
	Payload     string `gorm:"column:payload;type:jsonb" json:"payload"`

	RelatedEscrowDBID *uint `gorm:"column:related_escrow_db_id;index" json:"related_escrow_db_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (ContractEvent) TableName() string {
	return "contract_events"
}
