package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type EscrowState string

const (
	EscrowStateCreated   EscrowState = "CREATED"
	EscrowStateFunded    EscrowState = "FUNDED"
	EscrowStateReleased  EscrowState = "RELEASED"
	EscrowStateCancelled EscrowState = "CANCELLED"
	EscrowStateDisputed  EscrowState = "DISPUTED"
	EscrowStateResolved  EscrowState = "RESOLVED"
)

// Escrow mirrors one on-chain escrow instance. OnchainEscrowID is the
// contract-assigned id (a uint256 rendered as decimal on EVM, the trade id of
// the PDA on Solana); EscrowAddress is the contract address or PDA holding
// the funds.
type Escrow struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	TradeID   uint `gorm:"column:trade_id;not null;index" json:"trade_id"`
	NetworkID uint `gorm:"column:network_id;not null;index:idx_escrows_network_onchain,unique" json:"network_id"`

	OnchainEscrowID   string `gorm:"column:onchain_escrow_id;type:varchar(128);not null;index:idx_escrows_network_onchain,unique" json:"onchain_escrow_id"`
	EscrowAddress     string `gorm:"column:escrow_address;type:varchar(128);not null" json:"escrow_address"`
	SellerAddress     string `gorm:"column:seller_address;type:varchar(128)" json:"seller_address"`
	BuyerAddress      string `gorm:"column:buyer_address;type:varchar(128)" json:"buyer_address"`
	ArbitratorAddress string `gorm:"column:arbitrator_address;type:varchar(128)" json:"arbitrator_address"`

	TokenType      string           `gorm:"column:token_type;type:varchar(20)" json:"token_type"`
	Amount         decimal.Decimal  `gorm:"column:amount;type:numeric(38,18);not null" json:"amount"`
	CurrentBalance *decimal.Decimal `gorm:"column:current_balance;type:numeric(38,18)" json:"current_balance,omitempty"`

	State                   EscrowState `gorm:"column:state;type:varchar(20);not null;default:'CREATED';index" json:"state"`
	Sequential              bool        `gorm:"column:sequential;default:false" json:"sequential"`
	SequentialEscrowAddress *string     `gorm:"column:sequential_escrow_address;type:varchar(128)" json:"sequential_escrow_address,omitempty"`
	FiatPaid                bool        `gorm:"column:fiat_paid;default:false" json:"fiat_paid"`
	Counter                 int64       `gorm:"column:counter;default:0" json:"counter"`

	DepositDeadline *time.Time `gorm:"column:deposit_deadline" json:"deposit_deadline,omitempty"`
	FiatDeadline    *time.Time `gorm:"column:fiat_deadline" json:"fiat_deadline,omitempty"`
	CompletedAt     *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Escrow) TableName() string {
	return "escrows"
}

// IsTerminal reports whether the escrow reached a state it can never leave.
// RESOLVED is reachable only from DISPUTED; everything else ends at
// RELEASED or CANCELLED.
func (e *Escrow) IsTerminal() bool {
	return IsTerminalEscrowState(e.State)
}

func IsTerminalEscrowState(s EscrowState) bool {
	switch s {
	case EscrowStateReleased, EscrowStateCancelled, EscrowStateResolved:
		return true
	}
	return false
}

// IsForwardEscrowTransition enforces the forward-only contract state machine
// CREATED -> FUNDED -> {RELEASED | CANCELLED | DISPUTED -> RESOLVED}.
func IsForwardEscrowTransition(from, to EscrowState) bool {
	if from == to {
		return false
	}
	switch from {
	case EscrowStateCreated:
		return to == EscrowStateFunded || to == EscrowStateCancelled
	case EscrowStateFunded:
		return to == EscrowStateReleased || to == EscrowStateCancelled || to == EscrowStateDisputed
	case EscrowStateDisputed:
		return to == EscrowStateResolved
	}
	return false
}
