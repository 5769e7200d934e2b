package model

import "time"

const (
	CancellationActorDeadlineSweep = "deadline_sweep"
)

// Deadline field names recorded in trade_cancellations audit rows. They match
// the trades column that fired.
const (
	DeadlineFieldLeg1Deposit = "leg1_escrow_deposit_deadline"
	DeadlineFieldLeg1Fiat    = "leg1_fiat_payment_deadline"
	DeadlineFieldLeg2Deposit = "leg2_escrow_deposit_deadline"
	DeadlineFieldLeg2Fiat    = "leg2_fiat_payment_deadline"
)

// TradeCancellation is one audit row per deadline-triggered cancellation.
type TradeCancellation struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TradeID       uint      `gorm:"column:trade_id;not null;index" json:"trade_id"`
	NetworkID     uint      `gorm:"column:network_id;not null;index" json:"network_id"`
	Actor         string    `gorm:"column:actor;type:varchar(50);not null" json:"actor"`
	DeadlineField string    `gorm:"column:deadline_field;type:varchar(50);not null" json:"deadline_field"`
	CreatedAt     time.Time `json:"created_at"`
}

func (TradeCancellation) TableName() string {
	return "trade_cancellations"
}
