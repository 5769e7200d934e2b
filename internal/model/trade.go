package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TradeStatus string

const (
	TradeStatusInProgress TradeStatus = "IN_PROGRESS"
	TradeStatusCompleted  TradeStatus = "COMPLETED"
	TradeStatusCancelled  TradeStatus = "CANCELLED"
	TradeStatusDisputed   TradeStatus = "DISPUTED"
)

type LegState string

const (
	LegStateCreated   LegState = "CREATED"
	LegStateFunded    LegState = "FUNDED"
	LegStateFiatPaid  LegState = "FIAT_PAID"
	LegStateReleased  LegState = "RELEASED"
	LegStateCancelled LegState = "CANCELLED"
	LegStateDisputed  LegState = "DISPUTED"
	LegStateResolved  LegState = "RESOLVED"
)

// UncancelableLegStates are the states the deadline sweep must never touch,
// even when a deadline has elapsed.
var UncancelableLegStates = []LegState{
	LegStateFiatPaid,
	LegStateReleased,
	LegStateDisputed,
	LegStateResolved,
}

// Trade is the off-chain mirror of a trade and its one or two legs. Leg1 is
// always present; leg2 exists only for chained (sequential) trades. Rows are
// created by the CRUD layer and mutated only by the reconciler, the deadline
// enforcer and the escrow monitor.
type Trade struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	NetworkID     uint        `gorm:"column:network_id;not null;index" json:"network_id"`
	OverallStatus TradeStatus `gorm:"column:overall_status;type:varchar(20);not null;default:'IN_PROGRESS';index" json:"overall_status"`

	Leg1State                 LegState        `gorm:"column:leg1_state;type:varchar(20);not null" json:"leg1_state"`
	Leg1CryptoToken           string          `gorm:"column:leg1_crypto_token;type:varchar(20)" json:"leg1_crypto_token"`
	Leg1CryptoAmount          decimal.Decimal `gorm:"column:leg1_crypto_amount;type:numeric(38,18)" json:"leg1_crypto_amount"`
	Leg1FiatCurrency          string          `gorm:"column:leg1_fiat_currency;type:varchar(10)" json:"leg1_fiat_currency"`
	Leg1FiatAmount            decimal.Decimal `gorm:"column:leg1_fiat_amount;type:numeric(20,2)" json:"leg1_fiat_amount"`
	Leg1EscrowDepositDeadline *time.Time      `gorm:"column:leg1_escrow_deposit_deadline" json:"leg1_escrow_deposit_deadline,omitempty"`
	Leg1FiatPaymentDeadline   *time.Time      `gorm:"column:leg1_fiat_payment_deadline" json:"leg1_fiat_payment_deadline,omitempty"`
	Leg1EscrowOnchainID       *string         `gorm:"column:leg1_escrow_onchain_id;type:varchar(128)" json:"leg1_escrow_onchain_id,omitempty"`
	Leg1EscrowAddress         *string         `gorm:"column:leg1_escrow_address;type:varchar(128)" json:"leg1_escrow_address,omitempty"`
	Leg1FiatPaidAt            *time.Time      `gorm:"column:leg1_fiat_paid_at" json:"leg1_fiat_paid_at,omitempty"`
	Leg1ReleasedAt            *time.Time      `gorm:"column:leg1_released_at" json:"leg1_released_at,omitempty"`
	Leg1CancelledAt           *time.Time      `gorm:"column:leg1_cancelled_at" json:"leg1_cancelled_at,omitempty"`

	Leg2State                 *LegState        `gorm:"column:leg2_state;type:varchar(20)" json:"leg2_state,omitempty"`
	Leg2CryptoToken           *string          `gorm:"column:leg2_crypto_token;type:varchar(20)" json:"leg2_crypto_token,omitempty"`
	Leg2CryptoAmount          *decimal.Decimal `gorm:"column:leg2_crypto_amount;type:numeric(38,18)" json:"leg2_crypto_amount,omitempty"`
	Leg2FiatCurrency          *string          `gorm:"column:leg2_fiat_currency;type:varchar(10)" json:"leg2_fiat_currency,omitempty"`
	Leg2FiatAmount            *decimal.Decimal `gorm:"column:leg2_fiat_amount;type:numeric(20,2)" json:"leg2_fiat_amount,omitempty"`
	Leg2EscrowDepositDeadline *time.Time       `gorm:"column:leg2_escrow_deposit_deadline" json:"leg2_escrow_deposit_deadline,omitempty"`
	Leg2FiatPaymentDeadline   *time.Time       `gorm:"column:leg2_fiat_payment_deadline" json:"leg2_fiat_payment_deadline,omitempty"`
	Leg2EscrowOnchainID       *string          `gorm:"column:leg2_escrow_onchain_id;type:varchar(128)" json:"leg2_escrow_onchain_id,omitempty"`
	Leg2EscrowAddress         *string          `gorm:"column:leg2_escrow_address;type:varchar(128)" json:"leg2_escrow_address,omitempty"`
	Leg2FiatPaidAt            *time.Time       `gorm:"column:leg2_fiat_paid_at" json:"leg2_fiat_paid_at,omitempty"`
	Leg2ReleasedAt            *time.Time       `gorm:"column:leg2_released_at" json:"leg2_released_at,omitempty"`
	Leg2CancelledAt           *time.Time       `gorm:"column:leg2_cancelled_at" json:"leg2_cancelled_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Trade) TableName() string {
	return "trades"
}

// LegStateFor returns the state of the given leg (1 or 2). The second return
// is false when the trade has no such leg.
func (t *Trade) LegStateFor(leg int) (LegState, bool) {
	switch leg {
	case 1:
		return t.Leg1State, true
	case 2:
		if t.Leg2State == nil {
			return "", false
		}
		return *t.Leg2State, true
	}
	return "", false
}

// IsLegUncancelable reports whether the leg sits in a state the deadline
// sweep must leave alone.
func IsLegUncancelable(state LegState) bool {
	for _, s := range UncancelableLegStates {
		if s == state {
			return true
		}
	}
	return false
}

// legStateRank orders leg states along the escrow state machine so that
// transitions can be checked for monotonicity. Terminal states share the
// highest rank.
func legStateRank(s LegState) int {
	switch s {
	case LegStateCreated:
		return 0
	case LegStateFunded:
		return 1
	case LegStateFiatPaid:
		return 2
	case LegStateDisputed:
		return 3
	case LegStateReleased, LegStateCancelled, LegStateResolved:
		return 4
	}
	return -1
}

// IsForwardLegTransition reports whether moving from -> to advances the leg
// state machine. Equal states are not forward; terminal states never move.
func IsForwardLegTransition(from, to LegState) bool {
	if from == to {
		return false
	}
	if from == LegStateReleased || from == LegStateCancelled || from == LegStateResolved {
		return false
	}
	return legStateRank(to) > legStateRank(from)
}
