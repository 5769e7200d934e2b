package reconciler

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/openpeerlabs/escrow-backend/internal/events"
	"github.com/openpeerlabs/escrow-backend/internal/model"
	"github.com/openpeerlabs/escrow-backend/internal/monitoring"
	"github.com/openpeerlabs/escrow-backend/internal/networkregistry"
	"github.com/openpeerlabs/escrow-backend/internal/store"
	"github.com/openpeerlabs/escrow-backend/internal/store/transactionledger"
	"github.com/openpeerlabs/escrow-backend/internal/utils/logger"
)

type Reconciler struct {
	db       *gorm.DB
	store    *store.Store
	registry *networkregistry.Registry
	logger   *logger.Logger
}

func New(db *gorm.DB, store *store.Store, registry *networkregistry.Registry, logger *logger.Logger) IReconciler {
	return &Reconciler{
		db:       db,
		store:    store,
		registry: registry,
		logger:   logger,
	}
}

func (r *Reconciler) Apply(ctx context.Context, ev events.Event) error {
	meta := ev.Meta()

	network, err := r.registry.GetByID(meta.NetworkID)
	if err != nil {
		return errors.Wrapf(err, "resolve network %d", meta.NetworkID)
	}

	// Ledger first: best-effort bookkeeping, never a reason to drop the
	// event itself.
	r.recordLedger(network, ev)

	err = store.DoInTx(r.db, func(tx *gorm.DB) error {
		inserted, err := r.store.ContractEvent.InsertDedup(tx, &model.ContractEvent{
			NetworkID:       meta.NetworkID,
			TransactionHash: meta.TxHash,
			LogIndex:        meta.LogIndex,
			EventName:       meta.RawName,
			BlockNumber:     int64(meta.BlockNumber),
			Payload:         meta.Payload,
		})
		if err != nil {
			return errors.Wrap(err, "insert contract event")
		}
		if !inserted {
			r.logger.Debug("[Apply] duplicate event, skipping", map[string]string{
				"network":  network.Name,
				"txHash":   meta.TxHash,
				"logIndex": uintToStr(meta.LogIndex),
			})
			monitoring.EventsSkipped.WithLabelValues(network.Name, meta.RawName).Inc()
			return nil
		}

		return r.applyTransition(tx, network, ev)
	})
	if err != nil {
		monitoring.EventsFailed.WithLabelValues(network.Name, meta.RawName).Inc()
		return err
	}

	monitoring.EventsProcessed.WithLabelValues(network.Name, meta.RawName).Inc()
	return nil
}

func (r *Reconciler) applyTransition(tx *gorm.DB, network *model.Network, ev events.Event) error {
	switch e := ev.(type) {
	case events.EscrowCreated:
		return r.onCreated(tx, network, e)
	case events.EscrowFunded:
		return r.onFunded(tx, network, e)
	case events.FiatMarkedPaid:
		return r.onFiatPaid(tx, network, e)
	case events.EscrowReleased:
		return r.onReleased(tx, network, e)
	case events.EscrowCancelled:
		return r.onCancelled(tx, network, e)
	case events.DisputeOpened:
		return r.onDisputeOpened(tx, network, e)
	case events.DisputeResolved:
		return r.onDisputeResolved(tx, network, e)
	case events.Unknown:
		// Retained in contract_events for audit only.
		r.logger.Info("[applyTransition] unknown event retained for audit", map[string]string{
			"network": network.Name,
			"name":    e.M.RawName,
			"txHash":  e.M.TxHash,
		})
		return nil
	}
	return nil
}

func (r *Reconciler) onCreated(tx *gorm.DB, network *model.Network, e events.EscrowCreated) error {
	existing, err := r.store.Escrow.GetByOnchainID(tx, network.ID, e.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Wrap(err, "load escrow")
	}

	depositDeadline := e.DepositDeadline
	fiatDeadline := e.FiatDeadline

	if existing != nil {
		if existing.IsTerminal() {
			return nil
		}
		// Redelivered CREATE may refresh deadlines but never rewinds state.
		return r.store.Escrow.UpdateFields(tx, existing.ID, map[string]interface{}{
			"deposit_deadline": depositDeadline,
			"fiat_deadline":    fiatDeadline,
		})
	}

	amount := decimal.NewFromBigInt(e.Amount, 0)
	escrowRow := &model.Escrow{
		TradeID:           uint(e.TradeID),
		NetworkID:         network.ID,
		OnchainEscrowID:   e.ID,
		EscrowAddress:     network.ContractAddress,
		SellerAddress:     e.Seller,
		BuyerAddress:      e.Buyer,
		ArbitratorAddress: e.Arbitrator,
		Amount:            amount,
		State:             model.EscrowStateCreated,
		Sequential:        e.Sequential,
		DepositDeadline:   &depositDeadline,
		FiatDeadline:      &fiatDeadline,
	}
	if e.Sequential && e.SequentialAddr != "" {
		escrowRow.SequentialEscrowAddress = &e.SequentialAddr
	}

	if _, err := r.store.Escrow.Create(tx, escrowRow); err != nil {
		return errors.Wrap(err, "create escrow")
	}
	if err := r.store.EscrowIDMapping.Upsert(tx, network.ID, e.ID, escrowRow.ID); err != nil {
		return errors.Wrap(err, "upsert escrow id mapping")
	}

	return r.bindTradeLeg(tx, network, e, escrowRow)
}

// bindTradeLeg attaches the new on-chain escrow id to the first unbound leg,
// leg1 before leg2. A CREATE for a trade we have no row for is not an error:
// the trade service may still be writing it, and the linkage stays
// recoverable through escrows.trade_id and the id mapping.
func (r *Reconciler) bindTradeLeg(tx *gorm.DB, network *model.Network, e events.EscrowCreated, escrowRow *model.Escrow) error {
	tradeRow, err := r.store.Trade.GetByID(tx, uint(e.TradeID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Info("[bindTradeLeg] no trade row for escrow yet", map[string]string{
				"network": network.Name,
				"tradeId": uintToStr(uint(e.TradeID)),
			})
			return nil
		}
		return errors.Wrap(err, "load trade")
	}

	switch {
	case tradeRow.Leg1EscrowOnchainID == nil:
		return r.store.Trade.UpdateFields(tx, tradeRow.ID, map[string]interface{}{
			"leg1_escrow_onchain_id":       e.ID,
			"leg1_escrow_address":          escrowRow.EscrowAddress,
			"leg1_escrow_deposit_deadline": e.DepositDeadline,
			"leg1_fiat_payment_deadline":   e.FiatDeadline,
		})
	case tradeRow.Leg2State != nil && tradeRow.Leg2EscrowOnchainID == nil:
		return r.store.Trade.UpdateFields(tx, tradeRow.ID, map[string]interface{}{
			"leg2_escrow_onchain_id":       e.ID,
			"leg2_escrow_address":          escrowRow.EscrowAddress,
			"leg2_escrow_deposit_deadline": e.DepositDeadline,
			"leg2_fiat_payment_deadline":   e.FiatDeadline,
		})
	}
	return nil
}

func (r *Reconciler) onFunded(tx *gorm.DB, network *model.Network, e events.EscrowFunded) error {
	balance := decimal.NewFromBigInt(e.Amount, 0)
	err := r.updateEscrowState(tx, network, e.ID, model.EscrowStateFunded, map[string]interface{}{
		"current_balance": balance,
		"counter":         int64(e.Counter),
	})
	if err != nil {
		return err
	}

	return r.updateLegs(tx, network, e.ID, model.LegStateFunded, nil)
}

func (r *Reconciler) onFiatPaid(tx *gorm.DB, network *model.Network, e events.FiatMarkedPaid) error {
	escrowRow, err := r.store.Escrow.GetByOnchainID(tx, network.ID, e.ID)
	if err != nil {
		return errors.Wrap(err, "load escrow")
	}

	if !escrowRow.FiatPaid {
		fields := map[string]interface{}{"fiat_paid": true}
		if e.Counter > 0 {
			fields["counter"] = int64(e.Counter)
		}
		if err := r.store.Escrow.UpdateFields(tx, escrowRow.ID, fields); err != nil {
			return errors.Wrap(err, "mark escrow fiat paid")
		}
	}

	now := time.Now().UTC()
	return r.updateLegs(tx, network, e.ID, model.LegStateFiatPaid, map[string]time.Time{
		"fiat_paid_at": now,
	})
}

func (r *Reconciler) onReleased(tx *gorm.DB, network *model.Network, e events.EscrowReleased) error {
	now := time.Now().UTC()
	err := r.updateEscrowState(tx, network, e.ID, model.EscrowStateReleased, map[string]interface{}{
		"current_balance": decimal.Zero,
		"completed_at":    now,
	})
	if err != nil {
		return err
	}

	return r.updateLegs(tx, network, e.ID, model.LegStateReleased, map[string]time.Time{
		"released_at": now,
	})
}

func (r *Reconciler) onCancelled(tx *gorm.DB, network *model.Network, e events.EscrowCancelled) error {
	now := time.Now().UTC()
	err := r.updateEscrowState(tx, network, e.ID, model.EscrowStateCancelled, map[string]interface{}{
		"completed_at": now,
	})
	if err != nil {
		return err
	}

	return r.updateLegs(tx, network, e.ID, model.LegStateCancelled, map[string]time.Time{
		"cancelled_at": now,
	})
}

func (r *Reconciler) onDisputeOpened(tx *gorm.DB, network *model.Network, e events.DisputeOpened) error {
	err := r.updateEscrowState(tx, network, e.ID, model.EscrowStateDisputed, nil)
	if err != nil {
		return err
	}

	return r.updateLegs(tx, network, e.ID, model.LegStateDisputed, nil)
}

func (r *Reconciler) onDisputeResolved(tx *gorm.DB, network *model.Network, e events.DisputeResolved) error {
	err := r.updateEscrowState(tx, network, e.ID, model.EscrowStateResolved, map[string]interface{}{
		"completed_at": time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	return r.updateLegs(tx, network, e.ID, model.LegStateResolved, nil)
}

// updateEscrowState advances the escrow through the forward-only state
// machine. A repeat of the current state is a no-op; a backwards or invalid
// move is skipped with a log line rather than failing the whole event, since
// the chain is the source of truth and the mirror may simply be ahead.
func (r *Reconciler) updateEscrowState(tx *gorm.DB, network *model.Network, onchainID string, target model.EscrowState, extra map[string]interface{}) error {
	escrowRow, err := r.store.Escrow.GetByOnchainID(tx, network.ID, onchainID)
	if err != nil {
		return errors.Wrapf(err, "load escrow %s", onchainID)
	}

	if escrowRow.State == target {
		return nil
	}
	if !model.IsForwardEscrowTransition(escrowRow.State, target) {
		r.logger.Info("[updateEscrowState] ignoring non-forward transition", map[string]string{
			"network": network.Name,
			"escrow":  onchainID,
			"from":    string(escrowRow.State),
			"to":      string(target),
		})
		return nil
	}

	fields := map[string]interface{}{"state": target}
	for k, v := range extra {
		fields[k] = v
	}
	return r.store.Escrow.UpdateFields(tx, escrowRow.ID, fields)
}

// updateLegs mirrors an escrow state change onto every trade leg bound to
// the on-chain escrow id, then re-derives overall_status. extraTimes maps a
// leg timestamp column suffix (e.g. "fiat_paid_at") to its value.
func (r *Reconciler) updateLegs(tx *gorm.DB, network *model.Network, onchainID string, target model.LegState, extraTimes map[string]time.Time) error {
	trades, err := r.store.Trade.ListByEscrowOnchainID(tx, network.ID, onchainID)
	if err != nil {
		return errors.Wrap(err, "list trades for escrow")
	}

	for i := range trades {
		tradeRow := &trades[i]
		for _, leg := range boundLegs(tradeRow, onchainID) {
			current, ok := tradeRow.LegStateFor(leg)
			if !ok || current == target || !model.IsForwardLegTransition(current, target) {
				continue
			}

			prefix := "leg1_"
			if leg == 2 {
				prefix = "leg2_"
			}
			fields := map[string]interface{}{prefix + "state": target}
			for suffix, value := range extraTimes {
				fields[prefix+suffix] = value
			}

			if err := r.store.Trade.UpdateFields(tx, tradeRow.ID, fields); err != nil {
				return errors.Wrapf(err, "update trade %d leg %d", tradeRow.ID, leg)
			}

			applyLegState(tradeRow, leg, target)
		}

		derived := deriveOverallStatus(tradeRow)
		if derived != tradeRow.OverallStatus {
			if err := r.store.Trade.UpdateFields(tx, tradeRow.ID, map[string]interface{}{
				"overall_status": derived,
			}); err != nil {
				return errors.Wrapf(err, "update trade %d overall status", tradeRow.ID)
			}
		}
	}

	return nil
}

func boundLegs(t *model.Trade, onchainID string) []int {
	var legs []int
	if t.Leg1EscrowOnchainID != nil && *t.Leg1EscrowOnchainID == onchainID {
		legs = append(legs, 1)
	}
	if t.Leg2EscrowOnchainID != nil && *t.Leg2EscrowOnchainID == onchainID {
		legs = append(legs, 2)
	}
	return legs
}

func applyLegState(t *model.Trade, leg int, state model.LegState) {
	if leg == 1 {
		t.Leg1State = state
	} else {
		s := state
		t.Leg2State = &s
	}
}

// deriveOverallStatus computes overall_status from the leg states: disputes
// dominate, then cancellation, then completion once every leg is terminal.
func deriveOverallStatus(t *model.Trade) model.TradeStatus {
	states := []model.LegState{t.Leg1State}
	if t.Leg2State != nil {
		states = append(states, *t.Leg2State)
	}

	completed := true
	for _, s := range states {
		switch s {
		case model.LegStateDisputed:
			return model.TradeStatusDisputed
		case model.LegStateCancelled:
			return model.TradeStatusCancelled
		case model.LegStateReleased, model.LegStateResolved:
			// terminal, keeps completion possible
		default:
			completed = false
		}
	}

	if completed {
		return model.TradeStatusCompleted
	}
	return model.TradeStatusInProgress
}

func (r *Reconciler) recordLedger(network *model.Network, ev events.Event) {
	meta := ev.Meta()
	block := int64(meta.BlockNumber)

	input := transactionledger.RecordInput{
		NetworkID:       network.ID,
		Type:            ledgerType(ev.Kind()),
		Status:          model.TransactionStatusSuccess,
		BlockNumber:     &block,
		ReceiverAddress: network.ContractAddress,
	}
	if network.Family == model.NetworkFamilySolana {
		sig := meta.TxHash
		input.Signature = &sig
	} else {
		hash := meta.TxHash
		input.TransactionHash = &hash
	}
	if created, ok := ev.(events.EscrowCreated); ok {
		tradeID := uint(created.TradeID)
		input.RelatedTradeID = &tradeID
		input.SenderAddress = created.Seller
	}

	if _, err := r.store.TransactionLedger.Record(r.db, input); err != nil {
		// Best-effort: the mirror update proceeds regardless.
		r.logger.Error("[recordLedger] ledger record failed", map[string]string{
			"network": network.Name,
			"txHash":  meta.TxHash,
			"error":   err.Error(),
		})
	}
}

func ledgerType(kind events.Kind) model.TransactionType {
	switch kind {
	case events.KindEscrowCreated:
		return model.TransactionTypeCreateEscrow
	case events.KindEscrowFunded:
		return model.TransactionTypeFundEscrow
	case events.KindFiatMarkedPaid:
		return model.TransactionTypeMarkFiatPaid
	case events.KindEscrowReleased:
		return model.TransactionTypeReleaseEscrow
	case events.KindEscrowCancelled:
		return model.TransactionTypeCancelEscrow
	case events.KindDisputeOpened:
		return model.TransactionTypeOpenDispute
	case events.KindDisputeResolved:
		return model.TransactionTypeResolveDispute
	}
	return model.TransactionTypeOther
}

func uintToStr(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
