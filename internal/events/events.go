package events

import (
	"math/big"
	"time"
)

// Kind identifies a known escrow contract event across both chain families.
type Kind string

const (
	KindEscrowCreated   Kind = "ESCROW_CREATED"
	KindEscrowFunded    Kind = "ESCROW_FUNDED"
	KindFiatMarkedPaid  Kind = "FIAT_MARKED_PAID"
	KindEscrowReleased  Kind = "ESCROW_RELEASED"
	KindEscrowCancelled Kind = "ESCROW_CANCELLED"
	KindDisputeOpened   Kind = "DISPUTE_OPENED"
	KindDisputeResolved Kind = "DISPUTE_RESOLVED"
	KindUnknown         Kind = "UNKNOWN"
)

// Meta carries the chain coordinates shared by every decoded event. TxHash is
// the transaction hash on EVM and the signature on Solana; BlockNumber is the
// slot on Solana. LogIndex disambiguates multiple events in one transaction.
type Meta struct {
	NetworkID   uint
	TxHash      string
	LogIndex    uint
	BlockNumber uint64
	RawName     string
	Payload     string
}

// Event is one decoded contract log. Each known event name has its own
// concrete type with explicit fields; unknown names decode to Unknown and
// are retained for audit only, never for state transitions.
type Event interface {
	Kind() Kind
	Meta() Meta
	EscrowID() string
}

type EscrowCreated struct {
	M               Meta
	ID              string
	TradeID         uint64
	Seller          string
	Buyer           string
	Arbitrator      string
	Amount          *big.Int
	Sequential      bool
	SequentialAddr  string
	DepositDeadline time.Time
	FiatDeadline    time.Time
}

func (e EscrowCreated) Kind() Kind       { return KindEscrowCreated }
func (e EscrowCreated) Meta() Meta       { return e.M }
func (e EscrowCreated) EscrowID() string { return e.ID }

type EscrowFunded struct {
	M       Meta
	ID      string
	Amount  *big.Int
	Counter uint64
}

func (e EscrowFunded) Kind() Kind       { return KindEscrowFunded }
func (e EscrowFunded) Meta() Meta       { return e.M }
func (e EscrowFunded) EscrowID() string { return e.ID }

type FiatMarkedPaid struct {
	M       Meta
	ID      string
	Counter uint64
}

func (e FiatMarkedPaid) Kind() Kind       { return KindFiatMarkedPaid }
func (e FiatMarkedPaid) Meta() Meta       { return e.M }
func (e FiatMarkedPaid) EscrowID() string { return e.ID }

type EscrowReleased struct {
	M           Meta
	ID          string
	Amount      *big.Int
	Destination string
}

func (e EscrowReleased) Kind() Kind       { return KindEscrowReleased }
func (e EscrowReleased) Meta() Meta       { return e.M }
func (e EscrowReleased) EscrowID() string { return e.ID }

type EscrowCancelled struct {
	M  Meta
	ID string
}

func (e EscrowCancelled) Kind() Kind       { return KindEscrowCancelled }
func (e EscrowCancelled) Meta() Meta       { return e.M }
func (e EscrowCancelled) EscrowID() string { return e.ID }

type DisputeOpened struct {
	M        Meta
	ID       string
	Disputer string
}

func (e DisputeOpened) Kind() Kind       { return KindDisputeOpened }
func (e DisputeOpened) Meta() Meta       { return e.M }
func (e DisputeOpened) EscrowID() string { return e.ID }

type DisputeResolved struct {
	M          Meta
	ID         string
	BuyerWins  bool
	Resolution string
}

func (e DisputeResolved) Kind() Kind       { return KindDisputeResolved }
func (e DisputeResolved) Meta() Meta       { return e.M }
func (e DisputeResolved) EscrowID() string { return e.ID }

// Unknown is any event name the decoder does not recognize. The reconciler
// records it in contract_events and applies no state transition.
type Unknown struct {
	M Meta
}

func (e Unknown) Kind() Kind       { return KindUnknown }
func (e Unknown) Meta() Meta       { return e.M }
func (e Unknown) EscrowID() string { return "" }
