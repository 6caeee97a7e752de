package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type txProbe struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&txProbe{}))
	return db
}

func countProbes(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&txProbe{}).Count(&count).Error)
	return count
}

func TestRunInTxCommits(t *testing.T) {
	db := openTestDB(t)
	tm := NewTransactionManager(db)

	err := tm.RunInTx(context.Background(), func(txCtx context.Context) error {
		return GetDB(txCtx, db).Create(&txProbe{Name: "committed"}).Error
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), countProbes(t, db))
}

func TestRunInTxRollsBackOnError(t *testing.T) {
	db := openTestDB(t)
	tm := NewTransactionManager(db)

	boom := errors.New("boom")
	err := tm.RunInTx(context.Background(), func(txCtx context.Context) error {
		if err := GetDB(txCtx, db).Create(&txProbe{Name: "doomed"}).Error; err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.Equal(t, int64(0), countProbes(t, db), "the insert must not survive the rollback")
}

func TestRunInTxSharesTransactionAcrossCalls(t *testing.T) {
	db := openTestDB(t)
	tm := NewTransactionManager(db)

	// Two writes through GetDB inside one closure land in the same
	// transaction, so an error after both undoes both.
	err := tm.RunInTx(context.Background(), func(txCtx context.Context) error {
		if err := GetDB(txCtx, db).Create(&txProbe{Name: "first"}).Error; err != nil {
			return err
		}
		if err := GetDB(txCtx, db).Create(&txProbe{Name: "second"}).Error; err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.Error(t, err)

	assert.Equal(t, int64(0), countProbes(t, db))
}

func TestGetDBFallsBackToRoot(t *testing.T) {
	db := openTestDB(t)

	got := GetDB(context.Background(), db)
	require.NotNil(t, got)

	require.NoError(t, got.Create(&txProbe{Name: "direct"}).Error)
	assert.Equal(t, int64(1), countProbes(t, db))
}
