package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("primary only", func(t *testing.T) {
		db, err := Open(ctx, ConnectConfig{DSN: testDSN, ConnectTimeout: 10 * time.Second})
		require.NoError(t, err)
		t.Cleanup(func() { Close(db) })

		assert.False(t, hasDBResolver(db))

		var one int
		require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
		assert.Equal(t, 1, one)
	})

	t.Run("with read replica", func(t *testing.T) {
		db, err := Open(ctx, ConnectConfig{DSN: testDSN, ReadDSN: testDSN, ConnectTimeout: 10 * time.Second})
		require.NoError(t, err)
		t.Cleanup(func() { Close(db) })

		assert.True(t, hasDBResolver(db))

		_, err = NewPGStore(db).ListTenantIDs(ctx)
		require.NoError(t, err)
	})

	t.Run("gives up when the database is unreachable", func(t *testing.T) {
		_, err := Open(ctx, ConnectConfig{
			DSN:            "host=127.0.0.1 port=1 user=postgres password=postgres dbname=none sslmode=disable connect_timeout=1",
			ConnectTimeout: 2 * time.Second,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to connect to database")
	})
}
