package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai_prompt_factory/config"
)

func TestOpenSQLiteAndMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "test.db")
	conn, err := Open(config.DatabaseConfig{Driver: "sqlite", DSN: path})
	require.NoError(t, err)
	defer conn.Close()

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, conn, DriverSQLite))
	// 重复执行不报错
	require.NoError(t, Migrate(ctx, conn, DriverSQLite))

	for _, table := range []string{"products", "sales", "customers", "performance_metrics", "daily_summary"} {
		_, err := conn.ExecContext(ctx, "SELECT 1 FROM "+table+" LIMIT 1")
		assert.NoError(t, err, table)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "postgres"})
	assert.Error(t, err)
}

func TestMigrateUnknownDriver(t *testing.T) {
	conn, err := OpenSQLite(filepath.Join(t.TempDir(), "x.db"))
	require.NoError(t, err)
	defer conn.Close()
	assert.Error(t, Migrate(context.Background(), conn, "oracle"))
}
