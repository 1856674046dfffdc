package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/JoeShih716/go-txn-ledger/internal/app/core/domain"
)

// 欄位名稱 (依標頭定位，不依順序)
const (
	columnType   = "type"
	columnClient = "client"
	columnTx     = "tx"
	columnAmount = "amount"
)

// Reader 逐筆讀取交易紀錄 (lazy, forward-only)
type Reader struct {
	r       *csv.Reader
	columns map[string]int
	line    int
}

// NewReader 讀取標頭並建立 Reader
//
// 參數:
//
//	src: 紀錄來源
//
// 回傳:
//
//	*Reader: Reader 實例
//	error: 標頭缺少必要欄位時回傳 *domain.ParseError；讀取失敗回傳 *domain.IOError
func NewReader(src io.Reader) (*Reader, error) {
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1 // 允許 "dispute,1,1" 省略最後的空金額
	r.TrimLeadingSpace = true
	r.ReuseRecord = true

	reader := &Reader{r: r, columns: make(map[string]int)}
	header, err := reader.read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &domain.ParseError{Line: 1, Err: errors.New("missing header")}
		}
		return nil, err
	}
	for i, name := range header {
		reader.columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{columnType, columnClient, columnTx} {
		if _, ok := reader.columns[required]; !ok {
			return nil, &domain.ParseError{Line: reader.line, Err: fmt.Errorf("missing %q column", required)}
		}
	}
	return reader, nil
}

// Line 最後一筆讀取紀錄所在的行號
func (r *Reader) Line() int {
	return r.line
}

// read 讀一筆原始紀錄並區分格式錯誤與 I/O 錯誤
func (r *Reader) read() ([]string, error) {
	record, err := r.r.Read()
	if err != nil {
		var csvErr *csv.ParseError
		switch {
		case errors.Is(err, io.EOF):
			return nil, io.EOF
		case errors.As(err, &csvErr):
			return nil, &domain.ParseError{Line: csvErr.Line, Err: csvErr.Err}
		default:
			return nil, &domain.IOError{Op: "read", Err: err}
		}
	}
	r.line, _ = r.r.FieldPos(0)
	return record, nil
}

// Next 讀取下一筆交易；沒有資料時回傳 io.EOF
func (r *Reader) Next() (*domain.Transaction, error) {
	record, err := r.read()
	if err != nil {
		return nil, err
	}
	tran, err := r.parse(record)
	if err != nil {
		return nil, &domain.ParseError{Line: r.line, Err: err}
	}
	return tran, nil
}

func (r *Reader) field(record []string, column string) string {
	i, ok := r.columns[column]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// parse 將一筆紀錄轉為交易
// 存款與提款以外的交易忽略金額欄位
func (r *Reader) parse(record []string) (*domain.Transaction, error) {
	name := r.field(record, columnType)
	typ, ok := domain.ParseTransactionType(name)
	if !ok {
		return nil, fmt.Errorf("%w %q", domain.ErrUnknownTransactionType, name)
	}

	client, err := strconv.ParseUint(r.field(record, columnClient), 10, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid client: %w", err)
	}
	tx, err := strconv.ParseUint(r.field(record, columnTx), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid tx: %w", err)
	}

	tran := &domain.Transaction{
		Type:   typ,
		Client: uint16(client),
		Tx:     uint32(tx),
	}
	if !typ.RequiresAmount() {
		return tran, nil
	}
	if text := r.field(record, columnAmount); text != "" {
		amount, err := domain.ParseAmount(text)
		if err != nil {
			return nil, err
		}
		tran.Amount = amount
		tran.HasAmount = true
	}
	return tran, nil
}
