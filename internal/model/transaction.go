package model

import "time"

type TransactionType string

const (
	TransactionTypeCreateEscrow   TransactionType = "CREATE_ESCROW"
	TransactionTypeFundEscrow     TransactionType = "FUND_ESCROW"
	TransactionTypeMarkFiatPaid   TransactionType = "MARK_FIAT_PAID"
	TransactionTypeReleaseEscrow  TransactionType = "RELEASE_ESCROW"
	TransactionTypeCancelEscrow   TransactionType = "CANCEL_ESCROW"
	TransactionTypeOpenDispute    TransactionType = "OPEN_DISPUTE"
	TransactionTypeResolveDispute TransactionType = "RESOLVE_DISPUTE"
	TransactionTypeOther          TransactionType = "OTHER"
)

type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "PENDING"
	TransactionStatusSuccess TransactionStatus = "SUCCESS"
	TransactionStatusFailed  TransactionStatus = "FAILED"
)

// Transaction is one ledger row per chain interaction, whether we submitted
// it ourselves or only observed it in a log. EVM rows carry TransactionHash,
// Solana rows carry Signature; exactly one of the two is set and, together
// with NetworkID, uniquely keys the row. BlockNumber doubles as the slot on
// Solana.
type Transaction struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	NetworkID uint `gorm:"column:network_id;not null;index:idx_transactions_network_hash,unique;index:idx_transactions_network_signature,unique" json:"network_id"`

	TransactionHash *string `gorm:"column:transaction_hash;type:varchar(128);index:idx_transactions_network_hash,unique" json:"transaction_hash,omitempty"`
	Signature       *string `gorm:"column:signature;type:varchar(128);index:idx_transactions_network_signature,unique" json:"signature,omitempty"`

	Type   TransactionType   `gorm:"column:type;type:varchar(30);not null" json:"type"`
	Status TransactionStatus `gorm:"column:status;type:varchar(20);not null" json:"status"`

	BlockNumber     *int64 `gorm:"column:block_number" json:"block_number,omitempty"`
	SenderAddress   string `gorm:"column:sender_address;type:varchar(128)" json:"sender_address"`
	ReceiverAddress string `gorm:"column:receiver_address;type:varchar(128)" json:"receiver_address"`

	ErrorMessage *string `gorm:"column:error_message;type:text" json:"error_message,omitempty"`

	RelatedTradeID    *uint `gorm:"column:related_trade_id;index" json:"related_trade_id,omitempty"`
	RelatedEscrowDBID *uint `gorm:"column:related_escrow_db_id;index" json:"related_escrow_db_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// Identifier returns whichever of hash or signature is present.
func (t *Transaction) Identifier() string {
	if t.TransactionHash != nil {
		return *t.TransactionHash
	}
	if t.Signature != nil {
		return *t.Signature
	}
	return ""
}
