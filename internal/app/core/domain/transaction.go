package domain

// amount 使用int64，並定義精度：小數點後 4 位
const (
	CurrencyScale = 10000
)

// TransactionType 交易類型
// 為了極致節省記憶體，使用 uint8
type TransactionType uint8

const (
	// 存款
	TransactionTypeDeposit TransactionType = 1
	// 提款
	TransactionTypeWithdrawal TransactionType = 2
	// 爭議
	TransactionTypeDispute TransactionType = 3
	// 解除爭議
	TransactionTypeResolve TransactionType = 4
	// 退單 (會凍結帳戶)
	TransactionTypeChargeback TransactionType = 5
)

var transactionTypeNames = map[TransactionType]string{
	TransactionTypeDeposit:    "deposit",
	TransactionTypeWithdrawal: "withdrawal",
	TransactionTypeDispute:    "dispute",
	TransactionTypeResolve:    "resolve",
	TransactionTypeChargeback: "chargeback",
}

func (t TransactionType) String() string {
	if name, ok := transactionTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseTransactionType 由紀錄中的小寫名稱取得交易類型
func ParseTransactionType(name string) (TransactionType, bool) {
	for t, n := range transactionTypeNames {
		if n == name {
			return t, true
		}
	}
	return 0, false
}

// RequiresAmount 存款與提款必須帶金額
func (t TransactionType) RequiresAmount() bool {
	return t == TransactionTypeDeposit || t == TransactionTypeWithdrawal
}

// Transaction 交易 注意欄位排序以避免 Padding
type Transaction struct {
	// Amount: 金額 (固定小數點，CurrencyScale)，HasAmount 為 false 時無意義
	Amount int64
	// Tx: 交易 ID，同一帳戶內的存款不可重複
	Tx uint32
	// Client: 客戶 ID
	Client uint16
	// Type, HasAmount: 放到最後面，利用 Padding 空間
	Type      TransactionType
	HasAmount bool
}

// AccountSnapshot 帳戶的唯讀快照，供輸出端使用
type AccountSnapshot struct {
	Client    uint16
	Available int64
	Held      int64
	Total     int64
	Locked    bool
}
