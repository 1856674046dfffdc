package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAmount 存款或提款缺少金額
	ErrMissingAmount = errors.New("missing an amount with a deposit or withdrawal operation")

	// ErrNegativeAmount 金額不可為負數
	ErrNegativeAmount = errors.New("amount must not be negative")

	// ErrFrozenAccount 帳戶已凍結，不再接受任何異動
	ErrFrozenAccount = errors.New("account is frozen")

	// ErrWithdrawalExceedsAvailable 提款金額超過可用餘額
	ErrWithdrawalExceedsAvailable = errors.New("withdrawal exceeds available funds")

	// ErrDisputeExceedsAvailable 爭議金額超過可用餘額
	ErrDisputeExceedsAvailable = errors.New("dispute exceeds available funds")

	// ErrNoClient 找不到客戶帳戶
	ErrNoClient = errors.New("client does not exist")

	// ErrNoTransaction 找不到交易
	ErrNoTransaction = errors.New("transaction does not exist")

	// ErrDuplicateTxn 交易 ID 重複
	ErrDuplicateTxn = errors.New("transaction already exists")

	// ErrNonDisputedTxn 交易未處於爭議狀態
	ErrNonDisputedTxn = errors.New("transaction is not disputed")

	// ErrAlreadyDisputedTxn 交易已處於爭議狀態
	ErrAlreadyDisputedTxn = errors.New("transaction is already disputed")

	// ErrUnknownTransactionType 無法識別的交易類型
	ErrUnknownTransactionType = errors.New("unknown transaction type")

	// ErrLedgerStopped 帳本事件迴圈已停止
	ErrLedgerStopped = errors.New("ledger stopped")
)

// softErrors 單筆紀錄層級的錯誤：只略過該筆紀錄，不中斷整批處理
var softErrors = []error{
	ErrMissingAmount,
	ErrNegativeAmount,
	ErrFrozenAccount,
	ErrWithdrawalExceedsAvailable,
	ErrDisputeExceedsAvailable,
	ErrNoClient,
	ErrNoTransaction,
	ErrDuplicateTxn,
	ErrNonDisputedTxn,
	ErrAlreadyDisputedTxn,
	ErrAmountOutOfRange,
}

// ExceedsAvailableError 金額超過可用餘額 (提款或爭議)
type ExceedsAvailableError struct {
	// Kind: ErrWithdrawalExceedsAvailable 或 ErrDisputeExceedsAvailable
	Kind      error
	Available int64
	Attempted int64
}

// NewWithdrawalExceedsError 建立提款超額錯誤
func NewWithdrawalExceedsError(available, attempted int64) *ExceedsAvailableError {
	return &ExceedsAvailableError{Kind: ErrWithdrawalExceedsAvailable, Available: available, Attempted: attempted}
}

// NewDisputeExceedsError 建立爭議超額錯誤
func NewDisputeExceedsError(available, attempted int64) *ExceedsAvailableError {
	return &ExceedsAvailableError{Kind: ErrDisputeExceedsAvailable, Available: available, Attempted: attempted}
}

func (e *ExceedsAvailableError) Error() string {
	op := "debit"
	if e.Kind == ErrDisputeExceedsAvailable {
		op = "dispute"
	}
	return fmt.Sprintf("attempt to %s amount of %s exceeds available funds of %s",
		op, FormatAmount(e.Attempted), FormatAmount(e.Available))
}

func (e *ExceedsAvailableError) Unwrap() error {
	return e.Kind
}

// ClientError 指定客戶不存在
type ClientError struct {
	Client uint16
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("client with id %d does not exist", e.Client)
}

func (e *ClientError) Unwrap() error {
	return ErrNoClient
}

// TxnError 與單筆交易 ID 相關的錯誤
type TxnError struct {
	// Kind: ErrNoTransaction / ErrDuplicateTxn / ErrNonDisputedTxn / ErrAlreadyDisputedTxn
	Kind error
	Tx   uint32
}

func (e *TxnError) Error() string {
	var reason string
	switch e.Kind {
	case ErrNoTransaction:
		reason = "does not exist"
	case ErrDuplicateTxn:
		reason = "already exists"
	case ErrNonDisputedTxn:
		reason = "is not disputed"
	case ErrAlreadyDisputedTxn:
		reason = "is already disputed"
	default:
		reason = e.Kind.Error()
	}
	return fmt.Sprintf("transaction with id %d %s", e.Tx, reason)
}

func (e *TxnError) Unwrap() error {
	return e.Kind
}

// ParseError 紀錄格式錯誤 (整批中止)
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IOError 檔案讀寫錯誤 (整批中止)
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("io error: %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// IsSoft 判斷錯誤是否只影響單筆紀錄
//
// 參數:
//
//	err: 帳本或帳戶回傳的錯誤
//
// 回傳:
//
//	bool: true 表示略過該筆紀錄即可；false 表示結構性錯誤，應中止處理
func IsSoft(err error) bool {
	if err == nil {
		return false
	}
	var parseErr *ParseError
	var ioErr *IOError
	if errors.As(err, &parseErr) || errors.As(err, &ioErr) {
		return false
	}
	for _, kind := range softErrors {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
