package transactionledger

import (
	"gorm.io/gorm"

	"github.com/openpeerlabs/escrow-backend/internal/model"
)

// RecordInput is one observed or submitted chain interaction. Exactly one of
// TransactionHash (EVM) or Signature (Solana) identifies it.
type RecordInput struct {
	NetworkID         uint
	TransactionHash   *string
	Signature         *string
	Type              model.TransactionType
	Status            model.TransactionStatus
	BlockNumber       *int64
	SenderAddress     string
	ReceiverAddress   string
	ErrorMessage      *string
	RelatedTradeID    *uint
	RelatedEscrowDBID *uint
}

type ListFilter struct {
	NetworkID *uint
	Status    string
	Limit     int
	Offset    int
}

type IStore interface {
	// Record idempotently upserts the ledger row for the input's identifier.
	// A nil id means best-effort bookkeeping failed; callers proceed with
	// their own state updates regardless.
	Record(db *gorm.DB, input RecordInput) (*uint, error)
	GetByIdentifier(db *gorm.DB, networkID uint, identifier string) (*model.Transaction, error)
	List(db *gorm.DB, filter ListFilter) ([]model.Transaction, int64, error)
}
