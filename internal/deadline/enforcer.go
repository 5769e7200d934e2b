// Package deadline implements the periodic sweep that cancels trades whose
// deposit or fiat-payment deadline lapsed. The sweep is the active half of
// deadline enforcement; the passive half is a database trigger that rejects
// any non-cancelling leg write once the leg's deadline has elapsed.
package deadline

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/openpeerlabs/escrow-backend/internal/model"
	"github.com/openpeerlabs/escrow-backend/internal/monitoring"
	"github.com/openpeerlabs/escrow-backend/internal/store"
	tradestore "github.com/openpeerlabs/escrow-backend/internal/store/trade"
	"github.com/openpeerlabs/escrow-backend/internal/utils/config"
	"github.com/openpeerlabs/escrow-backend/internal/utils/logger"
)

// sweepKind is one (leg, deadline-kind) combination. Deposit deadlines apply
// to legs still in CREATED, fiat deadlines to legs in FUNDED.
type sweepKind struct {
	deadlineField  string
	legStateColumn string
	eligibleState  model.LegState
	leg            int
}

var sweepKinds = []sweepKind{
	{model.DeadlineFieldLeg1Deposit, "leg1_state", model.LegStateCreated, 1},
	{model.DeadlineFieldLeg1Fiat, "leg1_state", model.LegStateFunded, 1},
	{model.DeadlineFieldLeg2Deposit, "leg2_state", model.LegStateCreated, 2},
	{model.DeadlineFieldLeg2Fiat, "leg2_state", model.LegStateFunded, 2},
}

type Enforcer struct {
	db        *gorm.DB
	store     *store.Store
	appConfig *config.AppConfig
	logger    *logger.Logger
	batchSize int
}

func New(db *gorm.DB, s *store.Store, appConfig *config.AppConfig, logger *logger.Logger) *Enforcer {
	return &Enforcer{
		db:        db,
		store:     s,
		appConfig: appConfig,
		logger:    logger,
		batchSize: appConfig.Escrow.SweepBatchSize,
	}
}

// Sweep runs all four (leg, deadline-kind) passes across every network.
// Each pass is one transaction: a failure rolls back only that pass and the
// next scheduled run retries it.
func (e *Enforcer) Sweep(ctx context.Context) {
	e.sweep(ctx, nil)
}

// SweepNetwork restricts the sweep to one network.
func (e *Enforcer) SweepNetwork(ctx context.Context, networkID uint) {
	e.sweep(ctx, &networkID)
}

func (e *Enforcer) sweep(ctx context.Context, networkID *uint) {
	for _, kind := range sweepKinds {
		if ctx.Err() != nil {
			return
		}

		err := store.WithRetry(e.logger, e.appConfig.Postgres.MaxRetries, e.appConfig.Postgres.RetryInterval, func() error {
			return store.DoInTx(e.db, func(tx *gorm.DB) error {
				return e.sweepKindTx(tx, kind, networkID)
			})
		})
		if err != nil {
			e.logger.Error("[sweep] pass failed, will retry next run", map[string]string{
				"deadlineField": kind.deadlineField,
				"error":         err.Error(),
			})
		}
	}
}

func (e *Enforcer) sweepKindTx(tx *gorm.DB, kind sweepKind, networkID *uint) error {
	trades, err := e.store.Trade.FindOverdueForUpdate(tx, tradestore.OverdueSpec{
		DeadlineColumn: kind.deadlineField,
		LegStateColumn: kind.legStateColumn,
		EligibleState:  kind.eligibleState,
		NetworkID:      networkID,
		Now:            time.Now().UTC(),
		Limit:          e.batchSize,
	})
	if err != nil {
		return errors.Wrapf(err, "select overdue trades for %s", kind.deadlineField)
	}

	for i := range trades {
		tradeRow := &trades[i]

		// The leg can reach an uncancelable state between the select and
		// the row lock; such rows are skipped.
		legState, ok := tradeRow.LegStateFor(kind.leg)
		if !ok || model.IsLegUncancelable(legState) {
			e.logger.Info("[sweepKindTx] skipping trade in uncancelable state", map[string]string{
				"tradeId":       strconv.FormatUint(uint64(tradeRow.ID), 10),
				"deadlineField": kind.deadlineField,
				"legState":      string(legState),
			})
			continue
		}

		if err := e.cancelTrade(tx, tradeRow, kind); err != nil {
			return err
		}
	}

	return nil
}

func (e *Enforcer) cancelTrade(tx *gorm.DB, tradeRow *model.Trade, kind sweepKind) error {
	now := time.Now().UTC()
	prefix := "leg1_"
	if kind.leg == 2 {
		prefix = "leg2_"
	}

	err := e.store.Trade.UpdateFields(tx, tradeRow.ID, map[string]interface{}{
		"overall_status":        model.TradeStatusCancelled,
		prefix + "state":        model.LegStateCancelled,
		prefix + "cancelled_at": now,
	})
	if err != nil {
		return errors.Wrapf(err, "cancel trade %d", tradeRow.ID)
	}

	_, err = e.store.TradeCancellation.Create(tx, &model.TradeCancellation{
		TradeID:       tradeRow.ID,
		NetworkID:     tradeRow.NetworkID,
		Actor:         model.CancellationActorDeadlineSweep,
		DeadlineField: kind.deadlineField,
	})
	if err != nil {
		return errors.Wrapf(err, "audit cancellation of trade %d", tradeRow.ID)
	}

	monitoring.DeadlineCancellations.WithLabelValues(kind.deadlineField).Inc()
	e.logger.Info("[cancelTrade] trade cancelled past deadline", map[string]string{
		"tradeId":       strconv.FormatUint(uint64(tradeRow.ID), 10),
		"deadlineField": kind.deadlineField,
	})
	return nil
}
