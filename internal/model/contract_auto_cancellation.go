package model

import "time"

type AutoCancellationStatus string

const (
	AutoCancellationStatusSubmitted AutoCancellationStatus = "SUBMITTED"
	AutoCancellationStatusConfirmed AutoCancellationStatus = "CONFIRMED"
	AutoCancellationStatusFailed    AutoCancellationStatus = "FAILED"
)

// ContractAutoCancellation is one audit row per on-chain auto-cancel attempt
// made by the escrow monitor.
type ContractAutoCancellation struct {
	ID           uint                   `gorm:"primaryKey" json:"id"`
	EscrowDBID   uint                   `gorm:"column:escrow_db_id;not null;index" json:"escrow_db_id"`
	NetworkID    uint                   `gorm:"column:network_id;not null;index" json:"network_id"`
	Status       AutoCancellationStatus `gorm:"column:status;type:varchar(20);not null" json:"status"`
	TxHash       *string                `gorm:"column:tx_hash;type:varchar(128)" json:"tx_hash,omitempty"`
	ErrorMessage *string                `gorm:"column:error_message;type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

func (ContractAutoCancellation) TableName() string {
	return "contract_auto_cancellations"
}
