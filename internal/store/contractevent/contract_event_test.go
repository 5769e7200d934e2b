package contractevent

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/openpeerlabs/escrow-backend/internal/model"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.ContractEvent{}))
	return db
}

func TestInsertDedup(t *testing.T) {
	db := setupTestDB(t)
	s := New()

	ev := &model.ContractEvent{
		NetworkID:       1,
		TransactionHash: "0xabc",
		LogIndex:        3,
		EventName:       "EscrowCreated",
		BlockNumber:     100,
		Payload:         `{"escrowId":"1"}`,
	}

	inserted, err := s.InsertDedup(db, ev)
	require.NoError(t, err)
	assert.True(t, inserted)

	// same (network, tx hash, log index) is a no-op
	dup := &model.ContractEvent{
		NetworkID:       1,
		TransactionHash: "0xabc",
		LogIndex:        3,
		EventName:       "EscrowCreated",
	}
	inserted, err = s.InsertDedup(db, dup)
	require.NoError(t, err)
	assert.False(t, inserted)

	var count int64
	require.NoError(t, db.Model(&model.ContractEvent{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestInsertDedupDifferentLogIndex(t *testing.T) {
	db := setupTestDB(t)
	s := New()

	for _, logIndex := range []uint{0, 1, 2} {
		inserted, err := s.InsertDedup(db, &model.ContractEvent{
			NetworkID:       1,
			TransactionHash: "0xabc",
			LogIndex:        logIndex,
			EventName:       "FundsDeposited",
		})
		require.NoError(t, err)
		assert.True(t, inserted)
	}

	var count int64
	require.NoError(t, db.Model(&model.ContractEvent{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestListByEscrow(t *testing.T) {
	db := setupTestDB(t)
	s := New()

	escrowID := uint(5)
	otherID := uint(6)
	for i, related := range []*uint{&escrowID, &escrowID, &otherID} {
		_, err := s.InsertDedup(db, &model.ContractEvent{
			NetworkID:         1,
			TransactionHash:   "0xabc",
			LogIndex:          uint(i),
			EventName:         "FundsDeposited",
			RelatedEscrowDBID: related,
		})
		require.NoError(t, err)
	}

	events, err := s.ListByEscrow(db, escrowID, 10)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}
