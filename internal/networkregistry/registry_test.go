package networkregistry

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/openpeerlabs/escrow-backend/internal/model"
	networkstore "github.com/openpeerlabs/escrow-backend/internal/store/network"
	"github.com/openpeerlabs/escrow-backend/internal/types/environments"
	"github.com/openpeerlabs/escrow-backend/internal/utils/logger"
)

func setup(t *testing.T) (*gorm.DB, *Registry) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Network{}))

	return db, New(db, networkstore.New(), logger.New(environments.Test))
}

func seedNetwork(t *testing.T, db *gorm.DB, name string, family model.NetworkFamily, active bool) model.Network {
	t.Helper()
	n := model.Network{
		Name:              name,
		Family:            family,
		RpcURL:            "http://localhost:8545",
		WsURL:             "ws://localhost:8546",
		ContractAddress:   "0xcontract",
		ArbitratorAddress: "0xarbitrator",
		IsActive:          active,
	}
	require.NoError(t, db.Create(&n).Error)
	return n
}

func TestGetByIDAndName(t *testing.T) {
	db, r := setup(t)
	n := seedNetwork(t, db, "celo", model.NetworkFamilyEVM, true)

	got, err := r.GetByID(n.ID)
	require.NoError(t, err)
	assert.Equal(t, "celo", got.Name)

	got, err = r.GetByName("celo")
	require.NoError(t, err)
	assert.Equal(t, n.ID, got.ID)

	_, err = r.GetByID(999)
	assert.ErrorIs(t, err, ErrNetworkNotFound)
}

func TestResolveActiveRejectsInactive(t *testing.T) {
	db, r := setup(t)
	active := seedNetwork(t, db, "celo", model.NetworkFamilyEVM, true)
	inactive := seedNetwork(t, db, "solana-legacy", model.NetworkFamilySolana, false)

	_, err := r.ResolveActive(active.ID)
	require.NoError(t, err)

	_, err = r.ResolveActive(inactive.ID)
	assert.ErrorIs(t, err, ErrNetworkInactive)
}

func TestLookupsServeFromCache(t *testing.T) {
	db, r := setup(t)
	n := seedNetwork(t, db, "celo", model.NetworkFamilyEVM, true)

	_, err := r.GetByID(n.ID)
	require.NoError(t, err)

	// a direct database write is invisible until the cache is invalidated
	require.NoError(t, db.Model(&model.Network{}).Where("id = ?", n.ID).Update("is_active", false).Error)

	got, err := r.GetByID(n.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)

	r.Invalidate()
	got, err = r.GetByID(n.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestListActiveByFamily(t *testing.T) {
	db, r := setup(t)
	seedNetwork(t, db, "celo", model.NetworkFamilyEVM, true)
	seedNetwork(t, db, "sepolia", model.NetworkFamilyEVM, true)
	seedNetwork(t, db, "solana-devnet", model.NetworkFamilySolana, true)
	seedNetwork(t, db, "old-testnet", model.NetworkFamilyEVM, false)

	evm, err := r.ListActiveByFamily(model.NetworkFamilyEVM)
	require.NoError(t, err)
	assert.Len(t, evm, 2)

	sol, err := r.ListActiveByFamily(model.NetworkFamilySolana)
	require.NoError(t, err)
	assert.Len(t, sol, 1)

	all, err := r.ListActive()
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
