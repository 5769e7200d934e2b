package solanarpc

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"strconv"
	"strings"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/openpeerlabs/escrow-backend/internal/events"
)

const programDataPrefix = "Program data: "

// escrowAccount is the borsh layout of the escrow PDA, minus the 8-byte
// account discriminator.
type escrowAccount struct {
	EscrowID                uint64
	TradeID                 uint64
	Seller                  solana.PublicKey
	Buyer                   solana.PublicKey
	Arbitrator              solana.PublicKey
	Amount                  uint64
	DepositDeadline         int64
	FiatDeadline            int64
	State                   uint8
	Sequential              bool
	SequentialEscrowAddress solana.PublicKey
	FiatPaid                bool
	Counter                 uint64
}

// Program state enum values for escrowAccount.State.
const (
	accountStateCreated uint8 = iota
	accountStateFunded
	accountStateReleased
	accountStateCancelled
	accountStateDisputed
	accountStateResolved
)

// autoCancelEligible mirrors the program's auto_cancel guard: fiat not yet
// marked paid and the deadline for the current state has lapsed.
func (a *escrowAccount) autoCancelEligible(now time.Time) bool {
	if a.FiatPaid {
		return false
	}
	switch a.State {
	case accountStateCreated:
		return now.Unix() > a.DepositDeadline
	case accountStateFunded:
		return now.Unix() > a.FiatDeadline
	}
	return false
}

// Borsh payloads of the anchor events emitted by the escrow program.
type escrowCreatedPayload struct {
	EscrowID                uint64
	TradeID                 uint64
	Seller                  solana.PublicKey
	Buyer                   solana.PublicKey
	Arbitrator              solana.PublicKey
	Amount                  uint64
	DepositDeadline         int64
	FiatDeadline            int64
	Sequential              bool
	SequentialEscrowAddress solana.PublicKey
}

type fundsDepositedPayload struct {
	EscrowID uint64
	TradeID  uint64
	Amount   uint64
	Counter  uint64
}

type fiatMarkedPaidPayload struct {
	EscrowID uint64
	TradeID  uint64
	Counter  uint64
}

type escrowReleasedPayload struct {
	EscrowID    uint64
	TradeID     uint64
	Amount      uint64
	Destination solana.PublicKey
}

type escrowCancelledPayload struct {
	EscrowID uint64
	TradeID  uint64
}

type disputeOpenedPayload struct {
	EscrowID uint64
	TradeID  uint64
	Disputer solana.PublicKey
}

type disputeResolvedPayload struct {
	EscrowID   uint64
	TradeID    uint64
	BuyerWins  bool
	Resolution string
}

var eventNamesByDiscriminator = map[[8]byte]string{
	eventDiscriminator("EscrowCreated"):   "EscrowCreated",
	eventDiscriminator("FundsDeposited"):  "FundsDeposited",
	eventDiscriminator("FiatMarkedPaid"):  "FiatMarkedPaid",
	eventDiscriminator("EscrowReleased"):  "EscrowReleased",
	eventDiscriminator("EscrowCancelled"): "EscrowCancelled",
	eventDiscriminator("DisputeOpened"):   "DisputeOpened",
	eventDiscriminator("DisputeResolved"): "DisputeResolved",
}

func eventDiscriminator(name string) [8]byte {
	sum := sha256.Sum256([]byte("event:" + name))
	var out [8]byte
	copy(out[:], sum[:8])
	return out
}

// decodeTransactionLogs extracts every anchor event a transaction emitted.
// The log index is the event's position among the transaction's "Program
// data:" lines, which keeps the contract_events dedup key stable across
// redelivery.
func (r *SolanaRPC) decodeTransactionLogs(signature string, slot uint64, logLines []string) []events.Event {
	var decoded []events.Event
	logIndex := uint(0)

	for _, line := range logLines {
		if !strings.HasPrefix(line, programDataPrefix) {
			continue
		}

		raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(line, programDataPrefix))
		if err != nil || len(raw) < 8 {
			r.logger.Error("[decodeTransactionLogs] skipping malformed program data", map[string]string{
				"network":   r.network.Name,
				"signature": signature,
			})
			continue
		}

		ev := r.decodeEventData(signature, slot, logIndex, raw)
		logIndex++
		if ev != nil {
			decoded = append(decoded, ev)
		}
	}

	return decoded
}

func (r *SolanaRPC) decodeEventData(signature string, slot uint64, logIndex uint, raw []byte) events.Event {
	meta := events.Meta{
		NetworkID:   r.network.ID,
		TxHash:      signature,
		LogIndex:    logIndex,
		BlockNumber: slot,
	}

	var disc [8]byte
	copy(disc[:], raw[:8])
	name, known := eventNamesByDiscriminator[disc]
	if !known {
		meta.RawName = base64.StdEncoding.EncodeToString(disc[:])
		return events.Unknown{M: meta}
	}
	meta.RawName = name

	decoder := bin.NewBorshDecoder(raw[8:])
	fail := func(err error) events.Event {
		r.logger.Error("[decodeEventData] skipping undecodable event", map[string]string{
			"network":   r.network.Name,
			"signature": signature,
			"event":     name,
			"error":     err.Error(),
		})
		return nil
	}

	switch name {
	case "EscrowCreated":
		var p escrowCreatedPayload
		if err := decoder.Decode(&p); err != nil {
			return fail(err)
		}
		meta.Payload = marshalPayload(p)
		return events.EscrowCreated{
			M:               meta,
			ID:              strconv.FormatUint(p.EscrowID, 10),
			TradeID:         p.TradeID,
			Seller:          p.Seller.String(),
			Buyer:           p.Buyer.String(),
			Arbitrator:      p.Arbitrator.String(),
			Amount:          new(big.Int).SetUint64(p.Amount),
			Sequential:      p.Sequential,
			SequentialAddr:  p.SequentialEscrowAddress.String(),
			DepositDeadline: time.Unix(p.DepositDeadline, 0).UTC(),
			FiatDeadline:    time.Unix(p.FiatDeadline, 0).UTC(),
		}

	case "FundsDeposited":
		var p fundsDepositedPayload
		if err := decoder.Decode(&p); err != nil {
			return fail(err)
		}
		meta.Payload = marshalPayload(p)
		return events.EscrowFunded{
			M:       meta,
			ID:      strconv.FormatUint(p.EscrowID, 10),
			Amount:  new(big.Int).SetUint64(p.Amount),
			Counter: p.Counter,
		}

	case "FiatMarkedPaid":
		var p fiatMarkedPaidPayload
		if err := decoder.Decode(&p); err != nil {
			return fail(err)
		}
		meta.Payload = marshalPayload(p)
		return events.FiatMarkedPaid{
			M:       meta,
			ID:      strconv.FormatUint(p.EscrowID, 10),
			Counter: p.Counter,
		}

	case "EscrowReleased":
		var p escrowReleasedPayload
		if err := decoder.Decode(&p); err != nil {
			return fail(err)
		}
		meta.Payload = marshalPayload(p)
		return events.EscrowReleased{
			M:           meta,
			ID:          strconv.FormatUint(p.EscrowID, 10),
			Amount:      new(big.Int).SetUint64(p.Amount),
			Destination: p.Destination.String(),
		}

	case "EscrowCancelled":
		var p escrowCancelledPayload
		if err := decoder.Decode(&p); err != nil {
			return fail(err)
		}
		meta.Payload = marshalPayload(p)
		return events.EscrowCancelled{
			M:  meta,
			ID: strconv.FormatUint(p.EscrowID, 10),
		}

	case "DisputeOpened":
		var p disputeOpenedPayload
		if err := decoder.Decode(&p); err != nil {
			return fail(err)
		}
		meta.Payload = marshalPayload(p)
		return events.DisputeOpened{
			M:        meta,
			ID:       strconv.FormatUint(p.EscrowID, 10),
			Disputer: p.Disputer.String(),
		}

	case "DisputeResolved":
		var p disputeResolvedPayload
		if err := decoder.Decode(&p); err != nil {
			return fail(err)
		}
		meta.Payload = marshalPayload(p)
		return events.DisputeResolved{
			M:          meta,
			ID:         strconv.FormatUint(p.EscrowID, 10),
			BuyerWins:  p.BuyerWins,
			Resolution: p.Resolution,
		}
	}

	return events.Unknown{M: meta}
}

func marshalPayload(v interface{}) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(raw)
}
