package evmrpc

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	escrowcontract "github.com/openpeerlabs/escrow-backend/contracts/escrow"
	"github.com/openpeerlabs/escrow-backend/internal/events"
	"github.com/openpeerlabs/escrow-backend/internal/model"
	"github.com/openpeerlabs/escrow-backend/internal/types/environments"
	"github.com/openpeerlabs/escrow-backend/internal/utils/logger"
)

func newDecoder(t *testing.T) (*EvmRPC, abi.ABI) {
	t.Helper()

	parsed, err := escrowcontract.ParseABI()
	require.NoError(t, err)

	contractAddr := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	escrow, err := escrowcontract.NewEscrow(contractAddr, nil)
	require.NoError(t, err)

	return &EvmRPC{
		network:   model.Network{ID: 1, Name: "celo-test", Family: model.NetworkFamilyEVM},
		logger:    logger.New(environments.Test),
		escrow:    escrow,
		parsedABI: parsed,
	}, parsed
}

func packNonIndexed(t *testing.T, parsed abi.ABI, event string, args ...interface{}) []byte {
	t.Helper()
	data, err := parsed.Events[event].Inputs.NonIndexed().Pack(args...)
	require.NoError(t, err)
	return data
}

func TestDecodeEscrowCreated(t *testing.T) {
	r, parsed := newDecoder(t)

	seller := common.HexToAddress("0x1111111111111111111111111111111111111111")
	buyer := common.HexToAddress("0x2222222222222222222222222222222222222222")
	arbitrator := common.HexToAddress("0x3333333333333333333333333333333333333333")
	deposit := big.NewInt(time.Now().Add(15 * time.Minute).Unix())
	fiat := big.NewInt(time.Now().Add(45 * time.Minute).Unix())

	lg := types.Log{
		Topics: []common.Hash{
			parsed.Events["EscrowCreated"].ID,
			common.BigToHash(big.NewInt(42)),
			common.BigToHash(big.NewInt(7)),
		},
		Data: packNonIndexed(t, parsed, "EscrowCreated",
			seller, buyer, arbitrator, big.NewInt(1000), deposit, fiat, false, common.Address{}),
		TxHash:      common.HexToHash("0xaaaa"),
		Index:       3,
		BlockNumber: 100,
	}

	ev, err := r.decodeLog(lg)
	require.NoError(t, err)

	created, ok := ev.(events.EscrowCreated)
	require.True(t, ok)
	assert.Equal(t, "42", created.ID)
	assert.Equal(t, uint64(7), created.TradeID)
	assert.Equal(t, seller.Hex(), created.Seller)
	assert.Equal(t, buyer.Hex(), created.Buyer)
	assert.Equal(t, big.NewInt(1000), created.Amount)
	assert.False(t, created.Sequential)
	assert.Equal(t, deposit.Int64(), created.DepositDeadline.Unix())

	meta := created.Meta()
	assert.Equal(t, uint(1), meta.NetworkID)
	assert.Equal(t, uint(3), meta.LogIndex)
	assert.Equal(t, uint64(100), meta.BlockNumber)
	assert.Equal(t, "EscrowCreated", meta.RawName)
	assert.NotEmpty(t, meta.Payload)
}

func TestDecodeFundsDeposited(t *testing.T) {
	r, parsed := newDecoder(t)

	lg := types.Log{
		Topics: []common.Hash{
			parsed.Events["FundsDeposited"].ID,
			common.BigToHash(big.NewInt(42)),
			common.BigToHash(big.NewInt(7)),
		},
		Data: packNonIndexed(t, parsed, "FundsDeposited",
			big.NewInt(1000), big.NewInt(1), big.NewInt(time.Now().Unix())),
		TxHash: common.HexToHash("0xbbbb"),
	}

	ev, err := r.decodeLog(lg)
	require.NoError(t, err)

	funded, ok := ev.(events.EscrowFunded)
	require.True(t, ok)
	assert.Equal(t, "42", funded.ID)
	assert.Equal(t, big.NewInt(1000), funded.Amount)
	assert.Equal(t, uint64(1), funded.Counter)
}

func TestDecodeFiatMarkedPaid(t *testing.T) {
	r, parsed := newDecoder(t)

	lg := types.Log{
		Topics: []common.Hash{
			parsed.Events["FiatMarkedPaid"].ID,
			common.BigToHash(big.NewInt(42)),
			common.BigToHash(big.NewInt(7)),
		},
		Data: packNonIndexed(t, parsed, "FiatMarkedPaid",
			big.NewInt(2), big.NewInt(time.Now().Unix())),
		TxHash: common.HexToHash("0xdddd"),
	}

	ev, err := r.decodeLog(lg)
	require.NoError(t, err)

	paid, ok := ev.(events.FiatMarkedPaid)
	require.True(t, ok)
	assert.Equal(t, "42", paid.ID)
	assert.Equal(t, uint64(2), paid.Counter)
}

func TestDecodeDisputeResolved(t *testing.T) {
	r, parsed := newDecoder(t)

	lg := types.Log{
		Topics: []common.Hash{
			parsed.Events["DisputeResolved"].ID,
			common.BigToHash(big.NewInt(42)),
			common.BigToHash(big.NewInt(7)),
		},
		Data:   packNonIndexed(t, parsed, "DisputeResolved", true, "buyer provided proof of payment"),
		TxHash: common.HexToHash("0xcccc"),
	}

	ev, err := r.decodeLog(lg)
	require.NoError(t, err)

	resolved, ok := ev.(events.DisputeResolved)
	require.True(t, ok)
	assert.Equal(t, "42", resolved.ID)
	assert.True(t, resolved.BuyerWins)
	assert.Equal(t, "buyer provided proof of payment", resolved.Resolution)
}

func TestDecodeUnknownTopic(t *testing.T) {
	r, _ := newDecoder(t)

	lg := types.Log{
		Topics: []common.Hash{common.HexToHash("0xdeadbeef")},
		TxHash: common.HexToHash("0xdddd"),
	}

	ev, err := r.decodeLog(lg)
	require.NoError(t, err)

	unknown, ok := ev.(events.Unknown)
	require.True(t, ok)
	assert.Equal(t, events.KindUnknown, unknown.Kind())
	assert.Equal(t, common.HexToHash("0xdeadbeef").Hex(), unknown.Meta().RawName)
}

func TestDecodeNoTopics(t *testing.T) {
	r, _ := newDecoder(t)

	_, err := r.decodeLog(types.Log{})
	require.Error(t, err)
}
