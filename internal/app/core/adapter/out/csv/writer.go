package csv

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/JoeShih716/go-txn-ledger/internal/app/core/domain"
)

var header = []string{"client", "available", "held", "total", "locked"}

// Writer 將帳戶快照輸出成 CSV
type Writer struct {
	w *csv.Writer
}

func NewWriter(dst io.Writer) *Writer {
	return &Writer{w: csv.NewWriter(dst)}
}

// Write 輸出標頭與所有帳戶，金額固定 4 位小數
//
// 參數:
//
//	snapshots: 帳戶快照 (呼叫端決定順序)
//
// 回傳:
//
//	error: 寫入失敗時回傳 *domain.IOError
func (w *Writer) Write(snapshots []domain.AccountSnapshot) error {
	if err := w.w.Write(header); err != nil {
		return &domain.IOError{Op: "write", Err: err}
	}
	for _, s := range snapshots {
		record := []string{
			strconv.FormatUint(uint64(s.Client), 10),
			domain.FormatAmount(s.Available),
			domain.FormatAmount(s.Held),
			domain.FormatAmount(s.Total),
			strconv.FormatBool(s.Locked),
		}
		if err := w.w.Write(record); err != nil {
			return &domain.IOError{Op: "write", Err: err}
		}
	}
	w.w.Flush()
	if err := w.w.Error(); err != nil {
		return &domain.IOError{Op: "write", Err: err}
	}
	return nil
}
