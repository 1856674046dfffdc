package usecase

import (
	"context"

	"github.com/JoeShih716/go-txn-ledger/internal/app/core/domain"
)

// Ledger 是帳務系統的介面
type Ledger interface {
	// 不再分 Deposit/Withdraw/Dispute...，直接看 tran.Type 決定
	PostTransaction(ctx context.Context, tran *domain.Transaction) error
	// GetAccount 取得單一客戶的帳戶快照
	GetAccount(ctx context.Context, client uint16) (domain.AccountSnapshot, error)
	// Snapshots 取得所有帳戶快照 (依客戶 ID 遞增排序)
	Snapshots(ctx context.Context) ([]domain.AccountSnapshot, error)
}
