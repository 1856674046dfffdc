package mysql

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Client 封裝 GORM DB 實例
type Client struct {
	db *gorm.DB
}

// NewClient 建立 MySQL 客戶端 (GORM)，連不上時依設定重試
//
// 參數:
//
//	ctx: context.Context - 取消時停止重試
//	cfg: Config - MySQL 連線配置 (未設定的欄位會補上預設值)
//	log: *zap.Logger - 重試訊息與 GORM 的 Log 都寫到這裡
//
// 回傳值:
//
//	*Client: 封裝後的 MySQL 客戶端
//	error: 重試用完或 ctx 取消時回傳錯誤
func NewClient(ctx context.Context, cfg Config, log *zap.Logger) (*Client, error) {
	cfg.ApplyDefaults()
	gormConfig := &gorm.Config{
		// 快照匯出是批次 upsert，不需要 GORM 再包一層 Transaction
		SkipDefaultTransaction: true,
		Logger:                 newLogger(log, cfg.LogLevel),
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		db, err := open(ctx, cfg, gormConfig)
		if err == nil {
			return &Client{db: db}, nil
		}
		lastErr = err

		if attempt == cfg.MaxRetries {
			break
		}
		log.Warn("failed to connect to mysql, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", cfg.MaxRetries),
			zap.Duration("retry_in", cfg.RetryInterval),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("connect to mysql: %w", ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}

	return nil, fmt.Errorf("failed to connect to mysql after %d attempts: %w", cfg.MaxRetries, lastErr)
}

// open 開啟一次連線、Ping 確認可用並設定連線池
func open(ctx context.Context, cfg Config, gormConfig *gorm.Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// NewClientFromDB 包裝已開啟的 *gorm.DB (測試時可傳入 DryRun 的 DB)
func NewClientFromDB(db *gorm.DB) *Client {
	return &Client{db: db}
}

// DB 回傳底層的 *gorm.DB 實例
func (c *Client) DB() *gorm.DB {
	return c.db
}

// Close 關閉資料庫連線
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// newLogger GORM 的 Log 透過 zap 輸出
func newLogger(log *zap.Logger, level string) logger.Interface {
	logLevel := logger.Error
	switch level {
	case "info":
		logLevel = logger.Info
	case "warn":
		logLevel = logger.Warn
	case "silent":
		logLevel = logger.Silent
	}

	return logger.New(zap.NewStdLog(log.Named("gorm")), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logLevel,
		IgnoreRecordNotFoundError: true,
	})
}
