package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/JoeShih716/go-txn-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-txn-ledger/internal/app/core/usecase"
)

// lockedAccount 每個客戶一把鎖，交易不會跨客戶，所以不需要全域順序
type lockedAccount struct {
	mu      sync.Mutex
	account *domain.Account
}

// MutexLedger 是一個使用 Mutex 實現的帳本
//
// 結構:
//
//	accounts: 客戶 ID 對應帳戶
//	mu: RWMutex 只保護 accounts Map 本身 (查詢用讀鎖，建立帳戶用寫鎖)
//
// 帳戶內容由各自的 lockedAccount.mu 保護
type MutexLedger struct {
	accounts map[uint16]*lockedAccount
	mu       sync.RWMutex
}

// NewMutexLedger 建立一個新的 MutexLedger 實例
func NewMutexLedger() *MutexLedger {
	return &MutexLedger{
		accounts: make(map[uint16]*lockedAccount),
	}
}

// lookup 讀鎖查詢帳戶
func (m *MutexLedger) lookup(client uint16) (*lockedAccount, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	la, ok := m.accounts[client]
	return la, ok
}

// Deposit 存款 (lock-on-miss：帳戶不存在時才取寫鎖建立)
//
// 參數:
//
//	client: 客戶 ID
//	tx: 交易 ID
//	amount: 金額
//
// 回傳:
//
//	error: 處理錯誤
func (m *MutexLedger) Deposit(client uint16, tx uint32, amount int64) error {
	la, ok := m.lookup(client)
	if !ok {
		created, err := m.create(client, tx, amount)
		if err != nil || created {
			return err
		}
		la, _ = m.lookup(client)
	}

	la.mu.Lock()
	defer la.mu.Unlock()
	return la.account.Deposit(tx, amount)
}

// create 以第一筆存款建立帳戶；其他 goroutine 搶先建立時回傳 false
func (m *MutexLedger) create(client uint16, tx uint32, amount int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// 再次檢查 (以防在加鎖期間其他 goroutine 已經建立了帳戶)
	if _, ok := m.accounts[client]; ok {
		return false, nil
	}
	if amount < 0 {
		return false, domain.ErrNegativeAmount
	}
	m.accounts[client] = &lockedAccount{account: domain.NewAccount(tx, amount)}
	return true, nil
}

// withAccount 取得客戶鎖後執行 fn
func (m *MutexLedger) withAccount(client uint16, fn func(*domain.Account) error) error {
	la, ok := m.lookup(client)
	if !ok {
		return &domain.ClientError{Client: client}
	}
	la.mu.Lock()
	defer la.mu.Unlock()
	return fn(la.account)
}

// Withdraw 提款
func (m *MutexLedger) Withdraw(client uint16, amount int64) error {
	return m.withAccount(client, func(a *domain.Account) error { return a.Withdraw(amount) })
}

// Dispute 爭議
func (m *MutexLedger) Dispute(client uint16, tx uint32) error {
	return m.withAccount(client, func(a *domain.Account) error { return a.Dispute(tx) })
}

// Resolve 解除爭議
func (m *MutexLedger) Resolve(client uint16, tx uint32) error {
	return m.withAccount(client, func(a *domain.Account) error { return a.Resolve(tx) })
}

// Chargeback 退單
func (m *MutexLedger) Chargeback(client uint16, tx uint32) error {
	return m.withAccount(client, func(a *domain.Account) error { return a.Chargeback(tx) })
}

// PostTransaction 處理交易請求 (Level 1: Mutex Lock)
func (m *MutexLedger) PostTransaction(ctx context.Context, tran *domain.Transaction) error {
	return dispatch(m, tran)
}

// GetAccount 取得帳戶快照
func (m *MutexLedger) GetAccount(ctx context.Context, client uint16) (domain.AccountSnapshot, error) {
	var snapshot domain.AccountSnapshot
	err := m.withAccount(client, func(a *domain.Account) error {
		snapshot = a.Snapshot(client)
		return nil
	})
	return snapshot, err
}

// Snapshots 取得所有帳戶快照
func (m *MutexLedger) Snapshots(ctx context.Context) ([]domain.AccountSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshots := make([]domain.AccountSnapshot, 0, len(m.accounts))
	for client, la := range m.accounts {
		la.mu.Lock()
		snapshots = append(snapshots, la.account.Snapshot(client))
		la.mu.Unlock()
	}
	slices.SortFunc(snapshots, func(a, b domain.AccountSnapshot) int {
		return cmp.Compare(a.Client, b.Client)
	})
	return snapshots, nil
}

var _ usecase.Ledger = (*MutexLedger)(nil)
