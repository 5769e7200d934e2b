package solanarpc

import (
	"bytes"
	"encoding/base64"
	"testing"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpeerlabs/escrow-backend/internal/events"
	"github.com/openpeerlabs/escrow-backend/internal/model"
	"github.com/openpeerlabs/escrow-backend/internal/types/environments"
	"github.com/openpeerlabs/escrow-backend/internal/utils/logger"
)

func newDecoder() *SolanaRPC {
	return &SolanaRPC{
		network: model.Network{ID: 2, Name: "solana-devnet", Family: model.NetworkFamilySolana},
		logger:  logger.New(environments.Test),
	}
}

func programDataLine(t *testing.T, name string, payload interface{}) string {
	t.Helper()

	disc := eventDiscriminator(name)
	buf := new(bytes.Buffer)
	buf.Write(disc[:])
	require.NoError(t, bin.NewBorshEncoder(buf).Encode(payload))
	return programDataPrefix + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestDecodeTransactionLogsEscrowCreated(t *testing.T) {
	r := newDecoder()

	seller := solana.NewWallet().PublicKey()
	buyer := solana.NewWallet().PublicKey()
	line := programDataLine(t, "EscrowCreated", escrowCreatedPayload{
		EscrowID:        42,
		TradeID:         7,
		Seller:          seller,
		Buyer:           buyer,
		Amount:          1000,
		DepositDeadline: time.Now().Add(15 * time.Minute).Unix(),
		FiatDeadline:    time.Now().Add(45 * time.Minute).Unix(),
	})

	decoded := r.decodeTransactionLogs("sigAAA", 500, []string{
		"Program log: Instruction: CreateEscrow",
		line,
	})
	require.Len(t, decoded, 1)

	created, ok := decoded[0].(events.EscrowCreated)
	require.True(t, ok)
	assert.Equal(t, "42", created.ID)
	assert.Equal(t, uint64(7), created.TradeID)
	assert.Equal(t, seller.String(), created.Seller)
	assert.Equal(t, buyer.String(), created.Buyer)
	assert.Equal(t, "1000", created.Amount.String())

	meta := created.Meta()
	assert.Equal(t, uint(2), meta.NetworkID)
	assert.Equal(t, "sigAAA", meta.TxHash)
	assert.Equal(t, uint(0), meta.LogIndex)
	assert.Equal(t, uint64(500), meta.BlockNumber)
	assert.Equal(t, "EscrowCreated", meta.RawName)
}

func TestDecodeTransactionLogsIndexesEvents(t *testing.T) {
	r := newDecoder()

	lines := []string{
		programDataLine(t, "FundsDeposited", fundsDepositedPayload{EscrowID: 42, TradeID: 7, Amount: 1000, Counter: 1}),
		"Program log: some noise",
		programDataLine(t, "FiatMarkedPaid", fiatMarkedPaidPayload{EscrowID: 42, TradeID: 7, Counter: 1}),
	}

	decoded := r.decodeTransactionLogs("sigBBB", 501, lines)
	require.Len(t, decoded, 2)

	assert.Equal(t, uint(0), decoded[0].Meta().LogIndex)
	assert.Equal(t, uint(1), decoded[1].Meta().LogIndex)

	funded, ok := decoded[0].(events.EscrowFunded)
	require.True(t, ok)
	assert.Equal(t, uint64(1), funded.Counter)

	paid, ok := decoded[1].(events.FiatMarkedPaid)
	require.True(t, ok)
	assert.Equal(t, "42", paid.ID)
}

func TestDecodeTransactionLogsUnknownDiscriminator(t *testing.T) {
	r := newDecoder()

	raw := append(make([]byte, 8), 0xff)
	line := programDataPrefix + base64.StdEncoding.EncodeToString(raw)

	decoded := r.decodeTransactionLogs("sigCCC", 502, []string{line})
	require.Len(t, decoded, 1)
	assert.Equal(t, events.KindUnknown, decoded[0].Kind())
}

func TestDecodeTransactionLogsSkipsMalformedData(t *testing.T) {
	r := newDecoder()

	decoded := r.decodeTransactionLogs("sigDDD", 503, []string{
		programDataPrefix + "%%%not-base64%%%",
		programDataPrefix + base64.StdEncoding.EncodeToString([]byte{0x01}),
	})
	assert.Empty(t, decoded)
}

func TestDecodeDisputeResolved(t *testing.T) {
	r := newDecoder()

	line := programDataLine(t, "DisputeResolved", disputeResolvedPayload{
		EscrowID:   42,
		TradeID:    7,
		BuyerWins:  true,
		Resolution: "released to buyer",
	})

	decoded := r.decodeTransactionLogs("sigEEE", 504, []string{line})
	require.Len(t, decoded, 1)

	resolved, ok := decoded[0].(events.DisputeResolved)
	require.True(t, ok)
	assert.True(t, resolved.BuyerWins)
	assert.Equal(t, "released to buyer", resolved.Resolution)
}

func TestAutoCancelEligibility(t *testing.T) {
	now := time.Now()

	cases := []struct {
		name     string
		account  escrowAccount
		eligible bool
	}{
		{
			name:     "created past deposit deadline",
			account:  escrowAccount{State: accountStateCreated, DepositDeadline: now.Add(-time.Minute).Unix()},
			eligible: true,
		},
		{
			name:     "created before deposit deadline",
			account:  escrowAccount{State: accountStateCreated, DepositDeadline: now.Add(time.Hour).Unix()},
			eligible: false,
		},
		{
			name:     "funded past fiat deadline",
			account:  escrowAccount{State: accountStateFunded, FiatDeadline: now.Add(-time.Minute).Unix()},
			eligible: true,
		},
		{
			name:     "fiat paid blocks cancellation",
			account:  escrowAccount{State: accountStateFunded, FiatPaid: true, FiatDeadline: now.Add(-time.Minute).Unix()},
			eligible: false,
		},
		{
			name:     "released never eligible",
			account:  escrowAccount{State: accountStateReleased, FiatDeadline: now.Add(-time.Minute).Unix()},
			eligible: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.eligible, tc.account.autoCancelEligible(now))
		})
	}
}
