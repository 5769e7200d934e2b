// Package escrowmonitor periodically scans stale escrows, asks the contract
// whether each is eligible for auto-cancel, and submits the arbitrator's
// cancellation transaction when it is.
package escrowmonitor

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/openpeerlabs/escrow-backend/internal/model"
	"github.com/openpeerlabs/escrow-backend/internal/monitoring"
	"github.com/openpeerlabs/escrow-backend/internal/networkregistry"
	"github.com/openpeerlabs/escrow-backend/internal/store"
	"github.com/openpeerlabs/escrow-backend/internal/store/transactionledger"
	"github.com/openpeerlabs/escrow-backend/internal/utils/config"
	"github.com/openpeerlabs/escrow-backend/internal/utils/logger"
)

type Monitor struct {
	db        *gorm.DB
	store     *store.Store
	registry  *networkregistry.Registry
	factory   ClientFactory
	appConfig *config.AppConfig
	logger    *logger.Logger

	// Overlapping cron triggers run in separate goroutines; the cache is
	// the only state they share.
	clientsMu sync.Mutex
	clients   map[uint]ChainClient
}

func New(db *gorm.DB, s *store.Store, registry *networkregistry.Registry, factory ClientFactory, appConfig *config.AppConfig, logger *logger.Logger) *Monitor {
	return &Monitor{
		db:        db,
		store:     s,
		registry:  registry,
		factory:   factory,
		appConfig: appConfig,
		logger:    logger,
		clients:   make(map[uint]ChainClient),
	}
}

// Run executes one monitoring pass. A failure on one escrow never blocks the
// rest of the batch; the escrow is retried on the next scheduled run.
func (m *Monitor) Run(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-m.appConfig.Escrow.AutoCancelDelay)

	candidates, err := m.store.Escrow.ListAutoCancelCandidates(m.db, cutoff, m.appConfig.Escrow.MonitorBatchSize)
	if err != nil {
		m.logger.Error("[Run] failed to list auto-cancel candidates", map[string]string{
			"error": err.Error(),
		})
		return
	}
	if len(candidates) == 0 {
		return
	}

	m.logger.Info("[Run] evaluating auto-cancel candidates", map[string]string{
		"count": strconv.Itoa(len(candidates)),
	})

	for i := range candidates {
		if ctx.Err() != nil {
			return
		}
		if err := m.process(ctx, &candidates[i]); err != nil {
			m.logger.Error("[Run] auto-cancel attempt failed", map[string]string{
				"escrowDbId": strconv.FormatUint(uint64(candidates[i].ID), 10),
				"error":      err.Error(),
			})
		}
	}
}

func (m *Monitor) process(ctx context.Context, esc *model.Escrow) error {
	if esc.State == model.EscrowStateCancelled {
		return nil
	}

	// A confirmed attempt whose cancellation event has not landed yet must
	// not produce a second on-chain transaction.
	confirmed, err := m.store.ContractAutoCancellation.HasConfirmedFor(m.db, esc.ID)
	if err != nil {
		return errors.Wrap(err, "check prior confirmed attempts")
	}
	if confirmed {
		return nil
	}

	network, err := m.registry.ResolveActive(esc.NetworkID)
	if err != nil {
		return errors.Wrapf(err, "resolve network %d", esc.NetworkID)
	}

	client, err := m.clientFor(*network)
	if err != nil {
		return errors.Wrapf(err, "chain client for network %s", network.Name)
	}

	eligible, err := client.AutoCancelEligible(ctx, esc.OnchainEscrowID)
	if err != nil {
		return errors.Wrapf(err, "eligibility check for escrow %s", esc.OnchainEscrowID)
	}
	if !eligible {
		return nil
	}

	return m.submitCancel(ctx, esc, network, client)
}

func (m *Monitor) submitCancel(ctx context.Context, esc *model.Escrow, network *model.Network, client ChainClient) error {
	attempt, err := m.store.ContractAutoCancellation.Create(m.db, &model.ContractAutoCancellation{
		EscrowDBID: esc.ID,
		NetworkID:  esc.NetworkID,
		Status:     model.AutoCancellationStatusSubmitted,
	})
	if err != nil {
		return errors.Wrap(err, "create auto-cancellation audit row")
	}

	txID, err := client.AutoCancel(ctx, esc.OnchainEscrowID)
	if err != nil {
		msg := err.Error()
		if updateErr := m.store.ContractAutoCancellation.UpdateFields(m.db, attempt.ID, map[string]interface{}{
			"status":        model.AutoCancellationStatusFailed,
			"error_message": &msg,
		}); updateErr != nil {
			m.logger.Error("[submitCancel] failed to record failed attempt", map[string]string{
				"attemptId": strconv.FormatUint(uint64(attempt.ID), 10),
				"error":     updateErr.Error(),
			})
		}
		monitoring.AutoCancelAttempts.WithLabelValues(network.Name, "failed").Inc()
		return errors.Wrapf(err, "auto-cancel escrow %s on %s", esc.OnchainEscrowID, network.Name)
	}

	if err := m.store.ContractAutoCancellation.UpdateFields(m.db, attempt.ID, map[string]interface{}{
		"status":  model.AutoCancellationStatusConfirmed,
		"tx_hash": &txID,
	}); err != nil {
		m.logger.Error("[submitCancel] failed to record confirmed attempt", map[string]string{
			"attemptId": strconv.FormatUint(uint64(attempt.ID), 10),
			"error":     err.Error(),
		})
	}
	monitoring.AutoCancelAttempts.WithLabelValues(network.Name, "confirmed").Inc()

	m.recordLedger(esc, network, txID)

	m.logger.Info("[submitCancel] escrow auto-cancelled on chain", map[string]string{
		"escrowDbId":      strconv.FormatUint(uint64(esc.ID), 10),
		"onchainEscrowId": esc.OnchainEscrowID,
		"network":         network.Name,
		"txId":            txID,
	})
	return nil
}

// recordLedger is best effort. The cancellation event emitted by the
// contract will reach the ledger through the listener regardless.
func (m *Monitor) recordLedger(esc *model.Escrow, network *model.Network, txID string) {
	input := transactionledger.RecordInput{
		NetworkID:         esc.NetworkID,
		Type:              model.TransactionTypeCancelEscrow,
		Status:            model.TransactionStatusSuccess,
		SenderAddress:     network.ArbitratorAddress,
		RelatedTradeID:    &esc.TradeID,
		RelatedEscrowDBID: &esc.ID,
	}
	if network.Family == model.NetworkFamilySolana {
		input.Signature = &txID
	} else {
		input.TransactionHash = &txID
	}

	if _, err := m.store.TransactionLedger.Record(m.db, input); err != nil {
		m.logger.Error("[recordLedger] failed to record cancellation transaction", map[string]string{
			"escrowDbId": strconv.FormatUint(uint64(esc.ID), 10),
			"error":      err.Error(),
		})
	}
}

func (m *Monitor) clientFor(network model.Network) (ChainClient, error) {
	m.clientsMu.Lock()
	defer m.clientsMu.Unlock()

	if client, ok := m.clients[network.ID]; ok {
		return client, nil
	}
	client, err := m.factory(network)
	if err != nil {
		return nil, err
	}
	m.clients[network.ID] = client
	return client, nil
}
