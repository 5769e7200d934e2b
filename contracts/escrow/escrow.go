// Package escrow is a hand-maintained binding for the escrow contract
// deployed on every EVM network. It covers the read/write surface the
// backend needs; event decoding lives with the listener, which matches logs
// by event name against this ABI.
package escrow

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// EscrowABI describes the events and the two functions the backend calls.
const EscrowABI = `[
	{"type":"event","name":"EscrowCreated","anonymous":false,"inputs":[
		{"internalType":"uint256","name":"escrowId","type":"uint256","indexed":true},
		{"internalType":"uint256","name":"tradeId","type":"uint256","indexed":true},
		{"internalType":"address","name":"seller","type":"address","indexed":false},
		{"internalType":"address","name":"buyer","type":"address","indexed":false},
		{"internalType":"address","name":"arbitrator","type":"address","indexed":false},
		{"internalType":"uint256","name":"amount","type":"uint256","indexed":false},
		{"internalType":"uint256","name":"depositDeadline","type":"uint256","indexed":false},
		{"internalType":"uint256","name":"fiatDeadline","type":"uint256","indexed":false},
		{"internalType":"bool","name":"sequential","type":"bool","indexed":false},
		{"internalType":"address","name":"sequentialEscrowAddress","type":"address","indexed":false}
	]},
	{"type":"event","name":"FundsDeposited","anonymous":false,"inputs":[
		{"internalType":"uint256","name":"escrowId","type":"uint256","indexed":true},
		{"internalType":"uint256","name":"tradeId","type":"uint256","indexed":true},
		{"internalType":"uint256","name":"amount","type":"uint256","indexed":false},
		{"internalType":"uint256","name":"counter","type":"uint256","indexed":false},
		{"internalType":"uint256","name":"timestamp","type":"uint256","indexed":false}
	]},
	{"type":"event","name":"FiatMarkedPaid","anonymous":false,"inputs":[
		{"internalType":"uint256","name":"escrowId","type":"uint256","indexed":true},
		{"internalType":"uint256","name":"tradeId","type":"uint256","indexed":true},
		{"internalType":"uint256","name":"counter","type":"uint256","indexed":false},
		{"internalType":"uint256","name":"timestamp","type":"uint256","indexed":false}
	]},
	{"type":"event","name":"EscrowReleased","anonymous":false,"inputs":[
		{"internalType":"uint256","name":"escrowId","type":"uint256","indexed":true},
		{"internalType":"uint256","name":"tradeId","type":"uint256","indexed":true},
		{"internalType":"address","name":"buyer","type":"address","indexed":false},
		{"internalType":"uint256","name":"amount","type":"uint256","indexed":false},
		{"internalType":"uint256","name":"counter","type":"uint256","indexed":false},
		{"internalType":"string","name":"destination","type":"string","indexed":false}
	]},
	{"type":"event","name":"EscrowCancelled","anonymous":false,"inputs":[
		{"internalType":"uint256","name":"escrowId","type":"uint256","indexed":true},
		{"internalType":"uint256","name":"tradeId","type":"uint256","indexed":true}
	]},
	{"type":"event","name":"DisputeOpened","anonymous":false,"inputs":[
		{"internalType":"uint256","name":"escrowId","type":"uint256","indexed":true},
		{"internalType":"uint256","name":"tradeId","type":"uint256","indexed":true},
		{"internalType":"address","name":"disputingParty","type":"address","indexed":false},
		{"internalType":"uint256","name":"bondAmount","type":"uint256","indexed":false}
	]},
	{"type":"event","name":"DisputeResolved","anonymous":false,"inputs":[
		{"internalType":"uint256","name":"escrowId","type":"uint256","indexed":true},
		{"internalType":"uint256","name":"tradeId","type":"uint256","indexed":true},
		{"internalType":"bool","name":"buyerWins","type":"bool","indexed":false},
		{"internalType":"string","name":"resolution","type":"string","indexed":false}
	]},
	{"type":"function","name":"isEligibleForAutoCancel","stateMutability":"view","inputs":[
		{"internalType":"uint256","name":"escrowId","type":"uint256"}
	],"outputs":[
		{"internalType":"bool","name":"","type":"bool"}
	]},
	{"type":"function","name":"autoCancel","stateMutability":"nonpayable","inputs":[
		{"internalType":"uint256","name":"escrowId","type":"uint256"}
	],"outputs":[]}
]`

// ParseABI returns the parsed contract ABI.
func ParseABI() (abi.ABI, error) {
	return abi.JSON(strings.NewReader(EscrowABI))
}

// Escrow wraps a deployed escrow contract instance.
type Escrow struct {
	address  common.Address
	contract *bind.BoundContract
	abi      abi.ABI
}

func NewEscrow(address common.Address, backend bind.ContractBackend) (*Escrow, error) {
	parsed, err := ParseABI()
	if err != nil {
		return nil, err
	}

	return &Escrow{
		address:  address,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
		abi:      parsed,
	}, nil
}

func (e *Escrow) Address() common.Address {
	return e.address
}

// IsEligibleForAutoCancel asks the contract's own eligibility predicate.
func (e *Escrow) IsEligibleForAutoCancel(opts *bind.CallOpts, escrowID *big.Int) (bool, error) {
	var out []interface{}
	err := e.contract.Call(opts, &out, "isEligibleForAutoCancel", escrowID)
	if err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// AutoCancel submits the arbitrator's cancellation transaction.
func (e *Escrow) AutoCancel(opts *bind.TransactOpts, escrowID *big.Int) (*types.Transaction, error) {
	return e.contract.Transact(opts, "autoCancel", escrowID)
}

// UnpackLog decodes a raw log into the typed event struct for the named
// event, resolving indexed topics and data fields.
func (e *Escrow) UnpackLog(out interface{}, event string, log types.Log) error {
	return e.contract.UnpackLog(out, event, log)
}

// EscrowCreatedEvent mirrors the EscrowCreated log fields.
type EscrowCreatedEvent struct {
	EscrowId                *big.Int
	TradeId                 *big.Int
	Seller                  common.Address
	Buyer                   common.Address
	Arbitrator              common.Address
	Amount                  *big.Int
	DepositDeadline         *big.Int
	FiatDeadline            *big.Int
	Sequential              bool
	SequentialEscrowAddress common.Address
}

type FundsDepositedEvent struct {
	EscrowId  *big.Int
	TradeId   *big.Int
	Amount    *big.Int
	Counter   *big.Int
	Timestamp *big.Int
}

type FiatMarkedPaidEvent struct {
	EscrowId  *big.Int
	TradeId   *big.Int
	Counter   *big.Int
	Timestamp *big.Int
}

type EscrowReleasedEvent struct {
	EscrowId    *big.Int
	TradeId     *big.Int
	Buyer       common.Address
	Amount      *big.Int
	Counter     *big.Int
	Destination string
}

type EscrowCancelledEvent struct {
	EscrowId *big.Int
	TradeId  *big.Int
}

type DisputeOpenedEvent struct {
	EscrowId       *big.Int
	TradeId        *big.Int
	DisputingParty common.Address
	BondAmount     *big.Int
}

type DisputeResolvedEvent struct {
	EscrowId   *big.Int
	TradeId    *big.Int
	BuyerWins  bool
	Resolution string
}
