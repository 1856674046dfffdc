package usecase

import (
	"context"

	"github.com/JoeShih716/go-txn-ledger/internal/app/core/domain"
)

// CoreUseCase 是核心業務邏輯層
type CoreUseCase struct {
	ledger Ledger
}

func NewCoreUseCase(ledger Ledger) *CoreUseCase {
	return &CoreUseCase{
		ledger: ledger,
	}
}

// PostTransaction 處理交易
// 存款與提款缺少金額時直接回傳 ErrMissingAmount，不會進入帳本
func (c *CoreUseCase) PostTransaction(ctx context.Context, tran *domain.Transaction) error {
	if tran.Type.RequiresAmount() && !tran.HasAmount {
		return domain.ErrMissingAmount
	}
	return c.ledger.PostTransaction(ctx, tran)
}

// GetAccount 取得帳戶快照
func (c *CoreUseCase) GetAccount(ctx context.Context, client uint16) (domain.AccountSnapshot, error) {
	return c.ledger.GetAccount(ctx, client)
}

// Snapshots 取得所有帳戶快照
func (c *CoreUseCase) Snapshots(ctx context.Context) ([]domain.AccountSnapshot, error) {
	return c.ledger.Snapshots(ctx)
}
