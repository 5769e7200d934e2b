package evmrpc

import (
	"encoding/json"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"

	escrowcontract "github.com/openpeerlabs/escrow-backend/contracts/escrow"
	"github.com/openpeerlabs/escrow-backend/internal/events"
)

// decodeLog turns a raw contract log into one of the typed event variants.
// Event names outside the known vocabulary come back as events.Unknown so
// the reconciler can keep them for audit without applying a transition.
func (r *EvmRPC) decodeLog(lg types.Log) (events.Event, error) {
	if len(lg.Topics) == 0 {
		return nil, errors.New("log has no topics")
	}

	meta := events.Meta{
		NetworkID:   r.network.ID,
		TxHash:      lg.TxHash.Hex(),
		LogIndex:    lg.Index,
		BlockNumber: lg.BlockNumber,
	}

	evABI, err := r.parsedABI.EventByID(lg.Topics[0])
	if err != nil {
		meta.RawName = lg.Topics[0].Hex()
		return events.Unknown{M: meta}, nil
	}
	meta.RawName = evABI.Name

	switch evABI.Name {
	case "EscrowCreated":
		var out escrowcontract.EscrowCreatedEvent
		if err := r.escrow.UnpackLog(&out, evABI.Name, lg); err != nil {
			return nil, errors.Wrap(err, "unpack EscrowCreated")
		}
		meta.Payload = marshalPayload(out)
		return events.EscrowCreated{
			M:               meta,
			ID:              out.EscrowId.String(),
			TradeID:         out.TradeId.Uint64(),
			Seller:          out.Seller.Hex(),
			Buyer:           out.Buyer.Hex(),
			Arbitrator:      out.Arbitrator.Hex(),
			Amount:          out.Amount,
			Sequential:      out.Sequential,
			SequentialAddr:  out.SequentialEscrowAddress.Hex(),
			DepositDeadline: time.Unix(out.DepositDeadline.Int64(), 0).UTC(),
			FiatDeadline:    time.Unix(out.FiatDeadline.Int64(), 0).UTC(),
		}, nil

	case "FundsDeposited":
		var out escrowcontract.FundsDepositedEvent
		if err := r.escrow.UnpackLog(&out, evABI.Name, lg); err != nil {
			return nil, errors.Wrap(err, "unpack FundsDeposited")
		}
		meta.Payload = marshalPayload(out)
		return events.EscrowFunded{
			M:       meta,
			ID:      out.EscrowId.String(),
			Amount:  out.Amount,
			Counter: out.Counter.Uint64(),
		}, nil

	case "FiatMarkedPaid":
		var out escrowcontract.FiatMarkedPaidEvent
		if err := r.escrow.UnpackLog(&out, evABI.Name, lg); err != nil {
			return nil, errors.Wrap(err, "unpack FiatMarkedPaid")
		}
		meta.Payload = marshalPayload(out)
		return events.FiatMarkedPaid{
			M:       meta,
			ID:      out.EscrowId.String(),
			Counter: out.Counter.Uint64(),
		}, nil

	case "EscrowReleased":
		var out escrowcontract.EscrowReleasedEvent
		if err := r.escrow.UnpackLog(&out, evABI.Name, lg); err != nil {
			return nil, errors.Wrap(err, "unpack EscrowReleased")
		}
		meta.Payload = marshalPayload(out)
		return events.EscrowReleased{
			M:           meta,
			ID:          out.EscrowId.String(),
			Amount:      out.Amount,
			Destination: out.Destination,
		}, nil

	case "EscrowCancelled":
		var out escrowcontract.EscrowCancelledEvent
		if err := r.escrow.UnpackLog(&out, evABI.Name, lg); err != nil {
			return nil, errors.Wrap(err, "unpack EscrowCancelled")
		}
		meta.Payload = marshalPayload(out)
		return events.EscrowCancelled{
			M:  meta,
			ID: out.EscrowId.String(),
		}, nil

	case "DisputeOpened":
		var out escrowcontract.DisputeOpenedEvent
		if err := r.escrow.UnpackLog(&out, evABI.Name, lg); err != nil {
			return nil, errors.Wrap(err, "unpack DisputeOpened")
		}
		meta.Payload = marshalPayload(out)
		return events.DisputeOpened{
			M:        meta,
			ID:       out.EscrowId.String(),
			Disputer: out.DisputingParty.Hex(),
		}, nil

	case "DisputeResolved":
		var out escrowcontract.DisputeResolvedEvent
		if err := r.escrow.UnpackLog(&out, evABI.Name, lg); err != nil {
			return nil, errors.Wrap(err, "unpack DisputeResolved")
		}
		meta.Payload = marshalPayload(out)
		return events.DisputeResolved{
			M:          meta,
			ID:         out.EscrowId.String(),
			BuyerWins:  out.BuyerWins,
			Resolution: out.Resolution,
		}, nil
	}

	return events.Unknown{M: meta}, nil
}

func marshalPayload(v interface{}) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(raw)
}
