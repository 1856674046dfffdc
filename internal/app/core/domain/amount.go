package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrAmountOutOfRange 金額超過 int64 可表示範圍
var ErrAmountOutOfRange = errors.New("amount out of range")

// scaleDigits 對應 CurrencyScale 的小數位數
const scaleDigits = 4

var maxAmount = decimal.NewFromInt(math.MaxInt64)

// ParseAmount 將十進位字串轉成固定小數點整數
// 超過 4 位的小數直接截斷，不做四捨五入 ("100.1234567" -> 1001234)
func ParseAmount(text string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", text, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("invalid amount %q: %w", text, ErrNegativeAmount)
	}

	scaled := d.Shift(scaleDigits).Truncate(0)
	if scaled.GreaterThan(maxAmount) {
		return 0, fmt.Errorf("invalid amount %q: %w", text, ErrAmountOutOfRange)
	}
	return scaled.IntPart(), nil
}

// FormatAmount 將固定小數點整數轉回固定 4 位小數的字串 (1001234 -> "100.1234")
func FormatAmount(amount int64) string {
	return decimal.New(amount, -scaleDigits).StringFixed(scaleDigits)
}
