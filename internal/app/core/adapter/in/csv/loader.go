package csv

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/JoeShih716/go-txn-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-txn-ledger/internal/app/core/usecase"
)

// RejectionJournal 記錄被拒絕的紀錄 (pkg/journal.Journal 符合此介面)
type RejectionJournal interface {
	Write(v any) error
}

// Rejection 寫入 journal 的一筆拒絕紀錄
type Rejection struct {
	Line   int    `json:"line"`
	Type   string `json:"type"`
	Client uint16 `json:"client"`
	Tx     uint32 `json:"tx"`
	Error  string `json:"error"`
}

// Stats 單次載入的統計
type Stats struct {
	Records  int
	Applied  int
	Rejected int
}

// Loader 逐筆讀取紀錄並交給核心處理
type Loader struct {
	core    *usecase.CoreUseCase
	logger  *zap.Logger
	journal RejectionJournal
}

// LoaderOption 定義了 Loader 的配置選項函數
type LoaderOption func(*Loader)

// WithLogger 設定 Logger (預設 zap.NewNop)
func WithLogger(logger *zap.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithJournal 設定拒絕紀錄的 journal
func WithJournal(journal RejectionJournal) LoaderOption {
	return func(l *Loader) {
		l.journal = journal
	}
}

func NewLoader(core *usecase.CoreUseCase, opts ...LoaderOption) *Loader {
	l := &Loader{
		core:   core,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load 讀取所有紀錄並套用到帳本
//
// 參數:
//
//	ctx: 上下文
//	src: CSV 紀錄來源
//
// 回傳:
//
//	Stats: 處理統計
//	error: 結構性錯誤 (ParseError / IOError / 帳本停止)；單筆的帳務錯誤只記錄不回傳
func (l *Loader) Load(ctx context.Context, src io.Reader) (Stats, error) {
	var stats Stats

	reader, err := NewReader(src)
	if err != nil {
		return stats, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		tran, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil {
			return stats, err
		}
		stats.Records++

		err = l.core.PostTransaction(ctx, tran)
		switch {
		case err == nil:
			stats.Applied++
		case domain.IsSoft(err):
			stats.Rejected++
			if err := l.reject(reader.Line(), tran, err); err != nil {
				return stats, err
			}
		default:
			return stats, err
		}
	}
}

// reject 記錄被略過的紀錄
func (l *Loader) reject(line int, tran *domain.Transaction, cause error) error {
	l.logger.Debug("record rejected",
		zap.Int("line", line),
		zap.Stringer("type", tran.Type),
		zap.Uint16("client", tran.Client),
		zap.Uint32("tx", tran.Tx),
		zap.Error(cause),
	)
	if l.journal == nil {
		return nil
	}
	err := l.journal.Write(Rejection{
		Line:   line,
		Type:   tran.Type.String(),
		Client: tran.Client,
		Tx:     tran.Tx,
		Error:  cause.Error(),
	})
	if err != nil {
		return &domain.IOError{Op: "write journal", Err: err}
	}
	return nil
}
