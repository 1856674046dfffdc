package domain

import (
	"fmt"
	"math"
)

// deposit 一筆存款紀錄，只有存款可以被爭議
type deposit struct {
	amount   int64
	disputed bool
}

// Account 單一客戶的帳戶狀態
//
// 結構:
//
//	available: 可用餘額
//	held: 爭議中被保留的金額
//	frozen: 退單後凍結，永不解除
//	deposits: 交易 ID 對應的存款紀錄
//
// 所有操作皆為 all-or-nothing：失敗時不會修改任何狀態
type Account struct {
	available int64
	held      int64
	frozen    bool
	deposits  map[uint32]*deposit
}

// NewAccount 以第一筆存款建立帳戶
//
// 參數:
//
//	tx: 第一筆存款的交易 ID
//	amount: 存款金額
//
// 回傳:
//
//	*Account: 新帳戶
func NewAccount(tx uint32, amount int64) *Account {
	return &Account{
		available: amount,
		deposits: map[uint32]*deposit{
			tx: {amount: amount},
		},
	}
}

// Available 可用餘額
func (a *Account) Available() int64 {
	return a.available
}

// Held 保留中的餘額
func (a *Account) Held() int64 {
	return a.held
}

// Total 總餘額 = 可用 + 保留
func (a *Account) Total() int64 {
	return a.available + a.held
}

// Frozen 帳戶是否已凍結
func (a *Account) Frozen() bool {
	return a.frozen
}

// Snapshot 取得帳戶快照
func (a *Account) Snapshot(client uint16) AccountSnapshot {
	return AccountSnapshot{
		Client:    client,
		Available: a.available,
		Held:      a.held,
		Total:     a.Total(),
		Locked:    a.frozen,
	}
}

// Deposit 存款
//
// 參數:
//
//	tx: 交易 ID (同帳戶內不可重複)
//	amount: 金額
//
// 回傳:
//
//	error: ErrFrozenAccount / ErrNegativeAmount / TxnError(ErrDuplicateTxn) / ErrAmountOutOfRange
func (a *Account) Deposit(tx uint32, amount int64) error {
	if a.frozen {
		return ErrFrozenAccount
	}
	if amount < 0 {
		return ErrNegativeAmount
	}
	if _, ok := a.deposits[tx]; ok {
		return &TxnError{Kind: ErrDuplicateTxn, Tx: tx}
	}
	// 總餘額不可超過 int64 上限 (held 也算在內)
	if amount > math.MaxInt64-a.Total() {
		return fmt.Errorf("deposit of %s: %w", FormatAmount(amount), ErrAmountOutOfRange)
	}

	a.deposits[tx] = &deposit{amount: amount}
	a.available += amount
	return nil
}

// Withdraw 提款
func (a *Account) Withdraw(amount int64) error {
	if a.frozen {
		return ErrFrozenAccount
	}
	if amount < 0 {
		return ErrNegativeAmount
	}
	if amount > a.available {
		return NewWithdrawalExceedsError(a.available, amount)
	}

	a.available -= amount
	return nil
}

// Dispute 對一筆存款提出爭議，金額由可用移到保留
// 可用餘額不足時拒絕 (不允許可用餘額變成負數)
func (a *Account) Dispute(tx uint32) error {
	if a.frozen {
		return ErrFrozenAccount
	}
	dep, ok := a.deposits[tx]
	if !ok {
		return &TxnError{Kind: ErrNoTransaction, Tx: tx}
	}
	if dep.disputed {
		return &TxnError{Kind: ErrAlreadyDisputedTxn, Tx: tx}
	}
	if dep.amount > a.available {
		return NewDisputeExceedsError(a.available, dep.amount)
	}

	dep.disputed = true
	a.available -= dep.amount
	a.held += dep.amount
	return nil
}

// Resolve 解除爭議，金額由保留移回可用
func (a *Account) Resolve(tx uint32) error {
	if a.frozen {
		return ErrFrozenAccount
	}
	dep, err := a.disputedDeposit(tx)
	if err != nil {
		return err
	}

	dep.disputed = false
	a.held -= dep.amount
	a.available += dep.amount
	return nil
}

// Chargeback 退單：移除保留金額並凍結帳戶
func (a *Account) Chargeback(tx uint32) error {
	if a.frozen {
		return ErrFrozenAccount
	}
	dep, err := a.disputedDeposit(tx)
	if err != nil {
		return err
	}

	dep.disputed = false
	a.held -= dep.amount
	a.frozen = true
	return nil
}

// disputedDeposit 取得處於爭議中的存款
func (a *Account) disputedDeposit(tx uint32) (*deposit, error) {
	dep, ok := a.deposits[tx]
	if !ok {
		return nil, &TxnError{Kind: ErrNoTransaction, Tx: tx}
	}
	if !dep.disputed {
		return nil, &TxnError{Kind: ErrNonDisputedTxn, Tx: tx}
	}
	return dep, nil
}
