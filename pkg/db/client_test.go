package db

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/angelmondragon/obohub-backend/pkg/config"
	"github.com/angelmondragon/obohub-backend/pkg/logger"
)

type testModel struct {
	ID   int
	Name string
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&testModel{}))
	return conn
}

func TestWithTx_CommitsAndRollbacks(t *testing.T) {
	db := newTestDB(t)
	client := Open(db)

	ctx := context.Background()
	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&testModel{Name: "committed"}).Error
	}))

	var count int64
	require.NoError(t, db.Model(&testModel{}).Count(&count).Error)
	require.EqualValues(t, 1, count)

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&testModel{Name: "rolled"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.Error(t, err)

	require.NoError(t, db.Model(&testModel{}).Count(&count).Error)
	require.EqualValues(t, 1, count, "rollback should leave the first record only")
}

func TestPing(t *testing.T) {
	client := Open(newTestDB(t))
	require.NoError(t, client.Ping(context.Background()))
}

func TestNewWithSQLiteDriver(t *testing.T) {
	cfg := config.DBConfig{
		Driver:       config.DBDriverSQLite,
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
		MaxOpenConns: 1,
	}
	client, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Ping(context.Background()))
	require.Equal(t, "sqlite", client.DB().Dialector.Name())
}

func TestNewRequiresDSN(t *testing.T) {
	_, err := New(context.Background(), config.DBConfig{}, nil)
	require.Error(t, err)
}

func TestWithTx_RollsBackOnPanic(t *testing.T) {
	db := newTestDB(t)
	client := Open(db)

	require.Panics(t, func() {
		_ = client.WithTx(context.Background(), func(tx *gorm.DB) error {
			require.NoError(t, tx.Create(&testModel{Name: "half-written"}).Error)
			panic("cart encoder blew up")
		})
	})

	var count int64
	require.NoError(t, db.Model(&testModel{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestQueryLoggerSendsSlowQueriesToServiceLogger(t *testing.T) {
	require.Equal(t, gormlogger.Discard, queryLogger(nil, time.Second))
	require.Equal(t, gormlogger.Discard, queryLogger(logger.Nop(), 0))

	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &buf})
	ql := queryLogger(logg, time.Nanosecond)
	ql.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) {
		return "SELECT doc_value FROM kv_entries", 1
	}, nil)

	require.Contains(t, buf.String(), `"component":"gorm"`)
	require.Contains(t, buf.String(), "SLOW SQL")
}
