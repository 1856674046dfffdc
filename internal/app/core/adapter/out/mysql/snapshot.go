package mysql

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JoeShih716/go-txn-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-txn-ledger/pkg/mysql"
)

// batchSize 每批 upsert 筆數
const batchSize = 500

// sqlAccount 對應資料庫的 accounts 表
type sqlAccount struct {
	Client    uint16 `gorm:"primaryKey;autoIncrement:false"`
	Available int64
	Held      int64
	Total     int64
	Locked    bool
	RunID     string `gorm:"column:run_id;type:char(36);index"` // 最後一次寫入的執行 ID
	UpdatedAt int64  `gorm:"autoUpdateTime:milli"`              // 自動更新時間
}

func (*sqlAccount) TableName() string {
	return "accounts"
}

// SnapshotStore 將最終帳戶快照匯出到 MySQL (只寫不讀)
type SnapshotStore struct {
	client *mysql.Client
}

func NewSnapshotStore(client *mysql.Client) *SnapshotStore {
	return &SnapshotStore{
		client: client,
	}
}

// Migrate 建立或更新 accounts 表
func (s *SnapshotStore) Migrate(ctx context.Context) error {
	return s.client.DB().WithContext(ctx).AutoMigrate(&sqlAccount{})
}

// SaveSnapshots 以 upsert 寫入所有帳戶快照
//
// 參數:
//
//	ctx: 上下文
//	runID: 本次執行 ID
//	snapshots: 帳戶快照
//
// 回傳:
//
//	error: 寫入錯誤
func (s *SnapshotStore) SaveSnapshots(ctx context.Context, runID string, snapshots []domain.AccountSnapshot) error {
	rows := toRows(runID, snapshots)
	if len(rows) == 0 {
		return nil
	}
	db := s.client.DB().WithContext(ctx)
	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		if err := upsert(db, rows[start:end]).Error; err != nil {
			return fmt.Errorf("upsert accounts: %w", err)
		}
	}
	return nil
}

// upsert 相同客戶 ID 直接覆蓋 (ON DUPLICATE KEY UPDATE)
func upsert(db *gorm.DB, rows []sqlAccount) *gorm.DB {
	return db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rows)
}

func toRows(runID string, snapshots []domain.AccountSnapshot) []sqlAccount {
	rows := make([]sqlAccount, 0, len(snapshots))
	for _, snap := range snapshots {
		rows = append(rows, sqlAccount{
			Client:    snap.Client,
			Available: snap.Available,
			Held:      snap.Held,
			Total:     snap.Total,
			Locked:    snap.Locked,
			RunID:     runID,
		})
	}
	return rows
}
