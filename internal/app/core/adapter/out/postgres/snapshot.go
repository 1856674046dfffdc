package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/JoeShih716/go-txn-ledger/internal/app/core/domain"
)

// DefaultTable 預設的快照表名稱
const DefaultTable = "ledger_accounts"

// execer *sql.DB 與 *sql.Tx 都符合此介面
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Open 開啟 Postgres 連線並確認可用
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	db.SetMaxIdleConns(2)
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(15 * time.Minute)

	return db, nil
}

// SnapshotStore 將最終帳戶快照匯出到 Postgres (只寫不讀)
type SnapshotStore struct {
	db    execer
	table string
}

func NewSnapshotStore(db execer, table string) *SnapshotStore {
	if table == "" {
		table = DefaultTable
	}
	return &SnapshotStore{db: db, table: pq.QuoteIdentifier(table)}
}

// Migrate 建立快照表
func (s *SnapshotStore) Migrate(ctx context.Context) error {
	query := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	client integer PRIMARY KEY,
	available bigint NOT NULL,
	held bigint NOT NULL,
	total bigint NOT NULL,
	locked boolean NOT NULL,
	run_id text NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now()
)`, s.table)

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", s.table, err)
	}
	return nil
}

// SaveSnapshots 逐筆 upsert 帳戶快照
func (s *SnapshotStore) SaveSnapshots(ctx context.Context, runID string, snapshots []domain.AccountSnapshot) error {
	query := fmt.Sprintf(`
INSERT INTO %s (client, available, held, total, locked, run_id, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now())
ON CONFLICT (client) DO UPDATE SET
	available = EXCLUDED.available,
	held = EXCLUDED.held,
	total = EXCLUDED.total,
	locked = EXCLUDED.locked,
	run_id = EXCLUDED.run_id,
	updated_at = EXCLUDED.updated_at`, s.table)

	for _, snap := range snapshots {
		if _, err := s.db.ExecContext(
			ctx,
			query,
			int32(snap.Client),
			snap.Available,
			snap.Held,
			snap.Total,
			snap.Locked,
			runID,
		); err != nil {
			return fmt.Errorf("upsert client %d: %w", snap.Client, err)
		}
	}
	return nil
}
