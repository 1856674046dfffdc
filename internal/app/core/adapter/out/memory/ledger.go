package memory

import (
	"context"
	"fmt"
	"iter"
	"maps"
	"slices"

	"github.com/JoeShih716/go-txn-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-txn-ledger/internal/app/core/usecase"
)

// accountOps 帳本對單一客戶提供的操作
type accountOps interface {
	Deposit(client uint16, tx uint32, amount int64) error
	Withdraw(client uint16, amount int64) error
	Dispute(client uint16, tx uint32) error
	Resolve(client uint16, tx uint32) error
	Chargeback(client uint16, tx uint32) error
}

// dispatch 依交易類型分發到對應操作
func dispatch(ops accountOps, tran *domain.Transaction) error {
	switch tran.Type {
	case domain.TransactionTypeDeposit:
		return ops.Deposit(tran.Client, tran.Tx, tran.Amount)
	case domain.TransactionTypeWithdrawal:
		return ops.Withdraw(tran.Client, tran.Amount)
	case domain.TransactionTypeDispute:
		return ops.Dispute(tran.Client, tran.Tx)
	case domain.TransactionTypeResolve:
		return ops.Resolve(tran.Client, tran.Tx)
	case domain.TransactionTypeChargeback:
		return ops.Chargeback(tran.Client, tran.Tx)
	default:
		return fmt.Errorf("%w: %d", domain.ErrUnknownTransactionType, tran.Type)
	}
}

// Ledger 單執行緒的帳本，客戶 ID 對應帳戶
//
// 不可同時由多個 goroutine 寫入；需要並行時使用 MutexLedger 或 LMAXLedger
type Ledger struct {
	accounts map[uint16]*domain.Account
}

// NewLedger 建立空帳本
func NewLedger() *Ledger {
	return &Ledger{
		accounts: make(map[uint16]*domain.Account),
	}
}

// Deposit 存款；客戶第一次存款時建立帳戶
func (l *Ledger) Deposit(client uint16, tx uint32, amount int64) error {
	if acct, ok := l.accounts[client]; ok {
		return acct.Deposit(tx, amount)
	}
	if amount < 0 {
		return domain.ErrNegativeAmount
	}
	l.accounts[client] = domain.NewAccount(tx, amount)
	return nil
}

// Withdraw 提款
func (l *Ledger) Withdraw(client uint16, amount int64) error {
	acct, err := l.account(client)
	if err != nil {
		return err
	}
	return acct.Withdraw(amount)
}

// Dispute 爭議
func (l *Ledger) Dispute(client uint16, tx uint32) error {
	acct, err := l.account(client)
	if err != nil {
		return err
	}
	return acct.Dispute(tx)
}

// Resolve 解除爭議
func (l *Ledger) Resolve(client uint16, tx uint32) error {
	acct, err := l.account(client)
	if err != nil {
		return err
	}
	return acct.Resolve(tx)
}

// Chargeback 退單
func (l *Ledger) Chargeback(client uint16, tx uint32) error {
	acct, err := l.account(client)
	if err != nil {
		return err
	}
	return acct.Chargeback(tx)
}

// account 只查詢，不建立帳戶
func (l *Ledger) account(client uint16) (*domain.Account, error) {
	acct, ok := l.accounts[client]
	if !ok {
		return nil, &domain.ClientError{Client: client}
	}
	return acct, nil
}

// Len 帳戶數量
func (l *Ledger) Len() int {
	return len(l.accounts)
}

// All 依客戶 ID 遞增走訪所有帳戶
func (l *Ledger) All() iter.Seq2[uint16, *domain.Account] {
	return func(yield func(uint16, *domain.Account) bool) {
		for _, client := range slices.Sorted(maps.Keys(l.accounts)) {
			if !yield(client, l.accounts[client]) {
				return
			}
		}
	}
}

// Drain 交出所有帳戶的所有權並清空帳本 (結束時使用一次)
func (l *Ledger) Drain() iter.Seq2[uint16, *domain.Account] {
	accounts := l.accounts
	l.accounts = make(map[uint16]*domain.Account)
	return func(yield func(uint16, *domain.Account) bool) {
		for _, client := range slices.Sorted(maps.Keys(accounts)) {
			acct := accounts[client]
			delete(accounts, client)
			if !yield(client, acct) {
				return
			}
		}
	}
}

// PostTransaction 處理交易請求
func (l *Ledger) PostTransaction(ctx context.Context, tran *domain.Transaction) error {
	return dispatch(l, tran)
}

// GetAccount 取得帳戶快照
func (l *Ledger) GetAccount(ctx context.Context, client uint16) (domain.AccountSnapshot, error) {
	acct, err := l.account(client)
	if err != nil {
		return domain.AccountSnapshot{}, err
	}
	return acct.Snapshot(client), nil
}

// Snapshots 取得所有帳戶快照
func (l *Ledger) Snapshots(ctx context.Context) ([]domain.AccountSnapshot, error) {
	snapshots := make([]domain.AccountSnapshot, 0, len(l.accounts))
	for client, acct := range l.All() {
		snapshots = append(snapshots, acct.Snapshot(client))
	}
	return snapshots, nil
}

var _ usecase.Ledger = (*Ledger)(nil)
