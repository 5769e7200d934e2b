package escrowmonitor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/openpeerlabs/escrow-backend/internal/model"
	"github.com/openpeerlabs/escrow-backend/internal/networkregistry"
	"github.com/openpeerlabs/escrow-backend/internal/store"
	"github.com/openpeerlabs/escrow-backend/internal/types/environments"
	"github.com/openpeerlabs/escrow-backend/internal/utils/config"
	"github.com/openpeerlabs/escrow-backend/internal/utils/logger"
)

type fakeClient struct {
	eligible   map[string]bool
	failID     string
	cancelTx   string
	cancelErr  error
	cancelled  []string
	eligChecks []string
}

func (c *fakeClient) AutoCancelEligible(_ context.Context, id string) (bool, error) {
	c.eligChecks = append(c.eligChecks, id)
	if c.failID == id {
		return false, errors.New("rpc timeout")
	}
	return c.eligible[id], nil
}

func (c *fakeClient) AutoCancel(_ context.Context, id string) (string, error) {
	if c.cancelErr != nil {
		return "", c.cancelErr
	}
	c.cancelled = append(c.cancelled, id)
	return c.cancelTx, nil
}

type fixture struct {
	db      *gorm.DB
	store   *store.Store
	monitor *Monitor
	client  *fakeClient
	network model.Network
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Network{},
		&model.Trade{},
		&model.Escrow{},
		&model.Transaction{},
		&model.ContractAutoCancellation{},
	))

	network := model.Network{
		Name:              "celo-test",
		Family:            model.NetworkFamilyEVM,
		RpcURL:            "http://localhost:8545",
		WsURL:             "ws://localhost:8546",
		ContractAddress:   "0xcontract",
		ArbitratorAddress: "0xarbitrator",
		IsActive:          true,
	}
	require.NoError(t, db.Create(&network).Error)

	log := logger.New(environments.Test)
	s := store.New()
	registry := networkregistry.New(db, s.Network, log)

	client := &fakeClient{eligible: map[string]bool{}, cancelTx: "0xcancel"}
	appConfig := &config.AppConfig{
		Escrow: config.EscrowConfig{
			AutoCancelDelay:  time.Hour,
			MonitorBatchSize: 10,
		},
	}

	monitor := New(db, s, registry, func(model.Network) (ChainClient, error) {
		return client, nil
	}, appConfig, log)

	return &fixture{db: db, store: s, monitor: monitor, client: client, network: network}
}

func (f *fixture) seedEscrow(t *testing.T, onchainID string, state model.EscrowState, age time.Duration) *model.Escrow {
	t.Helper()

	tradeRow := &model.Trade{
		NetworkID:     f.network.ID,
		OverallStatus: model.TradeStatusInProgress,
		Leg1State:     model.LegStateCreated,
	}
	require.NoError(t, f.db.Create(tradeRow).Error)

	escrowRow := &model.Escrow{
		TradeID:         tradeRow.ID,
		NetworkID:       f.network.ID,
		OnchainEscrowID: onchainID,
		EscrowAddress:   "0xcontract",
		Amount:          decimal.NewFromInt(1000),
		State:           state,
	}
	require.NoError(t, f.db.Create(escrowRow).Error)
	// push created_at past the delay window
	require.NoError(t, f.db.Model(escrowRow).UpdateColumn("created_at", time.Now().UTC().Add(-age)).Error)
	return escrowRow
}

func TestRunCancelsEligibleEscrow(t *testing.T) {
	f := setup(t)
	escrowRow := f.seedEscrow(t, "42", model.EscrowStateCreated, 2*time.Hour)
	f.client.eligible["42"] = true

	f.monitor.Run(context.Background())

	assert.Equal(t, []string{"42"}, f.client.cancelled)

	var attempts []model.ContractAutoCancellation
	require.NoError(t, f.db.Find(&attempts).Error)
	require.Len(t, attempts, 1)
	assert.Equal(t, model.AutoCancellationStatusConfirmed, attempts[0].Status)
	assert.Equal(t, escrowRow.ID, attempts[0].EscrowDBID)
	require.NotNil(t, attempts[0].TxHash)
	assert.Equal(t, "0xcancel", *attempts[0].TxHash)

	// submitted cancellation lands in the ledger
	row, err := f.store.TransactionLedger.GetByIdentifier(f.db, f.network.ID, "0xcancel")
	require.NoError(t, err)
	assert.Equal(t, model.TransactionTypeCancelEscrow, row.Type)
	require.NotNil(t, row.RelatedEscrowDBID)
	assert.Equal(t, escrowRow.ID, *row.RelatedEscrowDBID)
}

func TestRunSkipsIneligibleEscrow(t *testing.T) {
	f := setup(t)
	f.seedEscrow(t, "42", model.EscrowStateCreated, 2*time.Hour)

	f.monitor.Run(context.Background())

	assert.Equal(t, []string{"42"}, f.client.eligChecks)
	assert.Empty(t, f.client.cancelled)

	var count int64
	require.NoError(t, f.db.Model(&model.ContractAutoCancellation{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestRunSkipsRecentEscrows(t *testing.T) {
	f := setup(t)
	f.seedEscrow(t, "42", model.EscrowStateCreated, 10*time.Minute)
	f.client.eligible["42"] = true

	f.monitor.Run(context.Background())

	assert.Empty(t, f.client.eligChecks)
}

func TestRunSkipsEscrowWithConfirmedAttempt(t *testing.T) {
	f := setup(t)
	escrowRow := f.seedEscrow(t, "42", model.EscrowStateCreated, 2*time.Hour)
	f.client.eligible["42"] = true

	tx := "0xearlier"
	require.NoError(t, f.db.Create(&model.ContractAutoCancellation{
		EscrowDBID: escrowRow.ID,
		NetworkID:  f.network.ID,
		Status:     model.AutoCancellationStatusConfirmed,
		TxHash:     &tx,
	}).Error)

	f.monitor.Run(context.Background())

	assert.Empty(t, f.client.cancelled)
}

func TestRunRecordsFailedAttempt(t *testing.T) {
	f := setup(t)
	f.seedEscrow(t, "42", model.EscrowStateCreated, 2*time.Hour)
	f.client.eligible["42"] = true
	f.client.cancelErr = errors.New("execution reverted")

	f.monitor.Run(context.Background())

	var attempts []model.ContractAutoCancellation
	require.NoError(t, f.db.Find(&attempts).Error)
	require.Len(t, attempts, 1)
	assert.Equal(t, model.AutoCancellationStatusFailed, attempts[0].Status)
	require.NotNil(t, attempts[0].ErrorMessage)
	assert.Contains(t, *attempts[0].ErrorMessage, "reverted")
}

func TestRunFailureDoesNotBlockBatch(t *testing.T) {
	f := setup(t)
	f.seedEscrow(t, "41", model.EscrowStateCreated, 2*time.Hour)
	f.seedEscrow(t, "42", model.EscrowStateCreated, 2*time.Hour)
	f.client.failID = "41"
	f.client.eligible["42"] = true

	f.monitor.Run(context.Background())

	// the failing escrow is retried next run; the healthy one proceeds now
	assert.Equal(t, []string{"42"}, f.client.cancelled)
}

func TestClientCacheConcurrentAccess(t *testing.T) {
	f := setup(t)

	secondNetwork := model.Network{
		Name:            "solana-test",
		Family:          model.NetworkFamilySolana,
		RpcURL:          "http://localhost:8899",
		WsURL:           "ws://localhost:8900",
		ContractAddress: "prog111",
		IsActive:        true,
	}
	require.NoError(t, f.db.Create(&secondNetwork).Error)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		network := f.network
		if i%2 == 0 {
			network = secondNetwork
		}
		wg.Add(1)
		go func(n model.Network) {
			defer wg.Done()
			client, err := f.monitor.clientFor(n)
			assert.NoError(t, err)
			assert.NotNil(t, client)
		}(network)
	}
	wg.Wait()
}
