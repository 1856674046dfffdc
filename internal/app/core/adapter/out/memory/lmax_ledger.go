package memory

import (
	"context"
	"sync"

	"github.com/JoeShih716/go-txn-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-txn-ledger/internal/app/core/usecase"
)

// DefaultBufferSize 輸送帶預設容量
const DefaultBufferSize = 1000

// request 請求包裝channel，讓呼叫端可以等待結果
// Tx 為 nil 時代表查詢 (Snapshots / GetAccount)
type request struct {
	Tx     *domain.Transaction
	Query  func(*Ledger) error
	Result chan error // 讓呼叫端等這個 channel
}

// LMAXLedger 單一寫入者的帳本：所有異動都在同一個 goroutine 依序執行
type LMAXLedger struct {
	ledger *Ledger
	// 輸送帶 負責接收交易
	requestChan chan *request
	// run loop 結束後關閉
	done chan struct{}
	once sync.Once
	// Pool 減少 GC 壓力
	requestPool sync.Pool
}

// NewLMAXLedger 建立一個新的 LMAXLedger 實例
//
// 參數:
//
//	bufferSize: 輸送帶容量，<= 0 時使用 DefaultBufferSize
//
// 回傳:
//
//	*LMAXLedger: LMAXLedger 實例 (需呼叫 Start 才會開始處理)
func NewLMAXLedger(bufferSize int) *LMAXLedger {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &LMAXLedger{
		ledger:      NewLedger(),
		requestChan: make(chan *request, bufferSize),
		done:        make(chan struct{}),
		requestPool: sync.Pool{
			New: func() interface{} {
				return &request{
					Result: make(chan error, 1),
				}
			},
		},
	}
}

// Start 啟動核心引擎 (非同步)；ctx 取消後把剩下的請求處理完才停止
func (l *LMAXLedger) Start(ctx context.Context) {
	l.once.Do(func() {
		go l.run(ctx)
	})
}

// Done 在 run loop 結束後關閉
func (l *LMAXLedger) Done() <-chan struct{} {
	return l.done
}

func (l *LMAXLedger) run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			// 收到關閉信號，把剩下的請求處理完
			l.drain()
			return
		case req := <-l.requestChan:
			l.process(req)
		}
	}
}

func (l *LMAXLedger) drain() {
	for {
		select {
		case req := <-l.requestChan:
			l.process(req)
		default:
			return
		}
	}
}

// process 處理單筆請求並回傳結果
func (l *LMAXLedger) process(req *request) {
	if req.Tx != nil {
		req.Result <- dispatch(l.ledger, req.Tx)
		return
	}
	req.Result <- req.Query(l.ledger)
}

// submit 放入輸送帶並等待結果
//
// PostTransaction(等待) -> Channel -> Run Loop (核心) -> Map Update -> Result Channel -> PostTransaction(收到結果)
func (l *LMAXLedger) submit(ctx context.Context, tran *domain.Transaction, query func(*Ledger) error) error {
	// 1. 放入輸送帶 (使用 sync.Pool 減少 GC)
	req := l.requestPool.Get().(*request)
	req.Tx = tran
	req.Query = query
	// 清空 Channel (雖然理論上應該是空的，但保險起見)
	select {
	case <-req.Result:
	default:
	}

	select {
	case l.requestChan <- req:
	case <-l.done:
		return domain.ErrLedgerStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	// 2. 等待結果；loop 結束時請求可能還留在輸送帶上，此時不可放回 Pool
	select {
	case err := <-req.Result:
		l.release(req)
		return err
	case <-l.done:
		select {
		case err := <-req.Result:
			l.release(req)
			return err
		default:
			return domain.ErrLedgerStopped
		}
	}
}

func (l *LMAXLedger) release(req *request) {
	req.Tx = nil
	req.Query = nil
	l.requestPool.Put(req)
}

// PostTransaction 接收交易請求
func (l *LMAXLedger) PostTransaction(ctx context.Context, tran *domain.Transaction) error {
	return l.submit(ctx, tran, nil)
}

// GetAccount 取得帳戶快照 (同樣經過輸送帶，確保看到一致的狀態)
func (l *LMAXLedger) GetAccount(ctx context.Context, client uint16) (domain.AccountSnapshot, error) {
	var snapshot domain.AccountSnapshot
	err := l.submit(ctx, nil, func(ledger *Ledger) error {
		var err error
		snapshot, err = ledger.GetAccount(ctx, client)
		return err
	})
	return snapshot, err
}

// Snapshots 取得所有帳戶快照
func (l *LMAXLedger) Snapshots(ctx context.Context) ([]domain.AccountSnapshot, error) {
	var snapshots []domain.AccountSnapshot
	err := l.submit(ctx, nil, func(ledger *Ledger) error {
		var err error
		snapshots, err = ledger.Snapshots(ctx)
		return err
	})
	return snapshots, err
}

var _ usecase.Ledger = (*LMAXLedger)(nil)
