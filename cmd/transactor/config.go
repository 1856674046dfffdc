package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/JoeShih716/go-txn-ledger/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-txn-ledger/pkg/logger"
	"github.com/JoeShih716/go-txn-ledger/pkg/mysql"
)

// 帳本實作
const (
	LedgerTypeMemory = "memory" // 單執行緒
	LedgerTypeMutex  = "mutex"  // 每個客戶一把鎖
	LedgerTypeLMAX   = "lmax"   // 單一寫入者 + channel
)

// 快照匯出目的地
const (
	SnapshotDriverNone     = ""
	SnapshotDriverMySQL    = "mysql"
	SnapshotDriverPostgres = "postgres"
)

type LedgerConfig struct {
	Type   string `yaml:"type"`
	Buffer int    `yaml:"buffer"` // 只有 lmax 使用
}

type JournalConfig struct {
	Path string `yaml:"path"` // 空字串代表不記錄
}

type SnapshotConfig struct {
	Driver      string `yaml:"driver"`
	PostgresDSN string `yaml:"postgres_dsn"`
	Table       string `yaml:"table"` // 只有 postgres 使用
}

type QueryConfig struct {
	Addr string `yaml:"addr"` // 空字串代表不啟動查詢服務
}

type Config struct {
	Ledger   LedgerConfig   `yaml:"ledger"`
	Log      logger.Config  `yaml:"log"`
	Journal  JournalConfig  `yaml:"journal"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	MySQL    mysql.Config   `yaml:"mysql"`
	Query    QueryConfig    `yaml:"query"`
}

// loadConfig 讀取設定檔；path 為空時全部使用預設值
func loadConfig(path string) (Config, error) {
	var cfg Config
	if path != "" {
		cfgData, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(cfgData, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Ledger.Type == "" {
		c.Ledger.Type = LedgerTypeMemory
	}
	if c.Ledger.Buffer <= 0 {
		c.Ledger.Buffer = memory.DefaultBufferSize
	}
	// 補全 MySQL 預設配置 (如果 yaml 沒寫)
	if c.Snapshot.Driver == SnapshotDriverMySQL {
		c.MySQL.ApplyDefaults()
	}
}

func (c *Config) validate() error {
	switch c.Ledger.Type {
	case LedgerTypeMemory, LedgerTypeMutex, LedgerTypeLMAX:
	default:
		return fmt.Errorf("invalid ledger type %q", c.Ledger.Type)
	}

	switch c.Snapshot.Driver {
	case SnapshotDriverNone, SnapshotDriverMySQL:
	case SnapshotDriverPostgres:
		if c.Snapshot.PostgresDSN == "" {
			return fmt.Errorf("snapshot driver %q requires postgres_dsn", c.Snapshot.Driver)
		}
	default:
		return fmt.Errorf("invalid snapshot driver %q", c.Snapshot.Driver)
	}
	return nil
}
