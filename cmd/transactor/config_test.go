package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-txn-ledger/internal/app/core/adapter/out/memory"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)

	assert.Equal(t, LedgerTypeMemory, cfg.Ledger.Type)
	assert.Equal(t, memory.DefaultBufferSize, cfg.Ledger.Buffer)
	assert.Equal(t, SnapshotDriverNone, cfg.Snapshot.Driver)
	assert.Empty(t, cfg.Journal.Path)
	assert.Empty(t, cfg.Query.Addr)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeFile(t, "config.yaml", `
ledger:
  type: lmax
  buffer: 64
log:
  level: debug
  format: console
snapshot:
  driver: mysql
mysql:
  host: db
  user: ledger
  dbname: ledger
  conn_max_lifetime: 5m
query:
  addr: ":50051"
`)

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, LedgerTypeLMAX, cfg.Ledger.Type)
	assert.Equal(t, 64, cfg.Ledger.Buffer)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, ":50051", cfg.Query.Addr)

	// MySQL 預設值只在使用 mysql 匯出時補全
	assert.Equal(t, "db", cfg.MySQL.Host)
	assert.Equal(t, 3306, cfg.MySQL.Port)
	assert.Equal(t, 100, cfg.MySQL.MaxOpenConns)
	assert.Equal(t, 5*time.Minute, cfg.MySQL.ConnMaxLifetime)
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := map[string]string{
		"ledger type":     "ledger:\n  type: redis\n",
		"snapshot driver": "snapshot:\n  driver: sqlite\n",
		"postgres no dsn": "snapshot:\n  driver: postgres\n",
		"malformed yaml":  "ledger: [\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := loadConfig(writeFile(t, "config.yaml", content))
			assert.Error(t, err)
		})
	}

	_, err := loadConfig("/nonexistent/config.yaml")
	assert.Error(t, err)
}
