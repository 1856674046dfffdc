package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-txn-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-txn-ledger/internal/app/core/usecase"
)

const (
	workers          = 8
	depositsPerGroup = 200
)

// hammer 每個 worker 負責一個客戶：第一筆存款建立帳戶，之後並行寫入
func hammer(t *testing.T, ledger usecase.Ledger) {
	t.Helper()
	ctx := context.Background()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(client uint16) {
			defer wg.Done()
			for tx := uint32(1); tx <= depositsPerGroup; tx++ {
				err := ledger.PostTransaction(ctx, &domain.Transaction{
					Type: domain.TransactionTypeDeposit, Client: client, Tx: tx, Amount: 10, HasAmount: true,
				})
				assert.NoError(t, err)
			}
			err := ledger.PostTransaction(ctx, &domain.Transaction{
				Type: domain.TransactionTypeWithdrawal, Client: client, Amount: 5, HasAmount: true,
			})
			assert.NoError(t, err)
		}(uint16(w))
	}

	// 所有 worker 同時搶著建立同一個帳戶
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(tx uint32) {
			defer wg.Done()
			_ = ledger.PostTransaction(ctx, &domain.Transaction{
				Type: domain.TransactionTypeDeposit, Client: 1000, Tx: tx, Amount: 1, HasAmount: true,
			})
		}(uint32(w))
	}
	wg.Wait()

	snapshots, err := ledger.Snapshots(ctx)
	require.NoError(t, err)
	require.Len(t, snapshots, workers+1)
	for _, snap := range snapshots[:workers] {
		assert.Equal(t, int64(depositsPerGroup*10-5), snap.Available)
		assert.Equal(t, snap.Available+snap.Held, snap.Total)
	}
	shared, err := ledger.GetAccount(ctx, 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(workers), shared.Total)
}

func TestMutexLedgerConcurrentClients(t *testing.T) {
	hammer(t, NewMutexLedger())
}

func TestLMAXLedgerConcurrentClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ledger := NewLMAXLedger(16)
	ledger.Start(ctx)
	hammer(t, ledger)
}

func TestMutexLedgerSemantics(t *testing.T) {
	ledger := NewMutexLedger()
	ctx := context.Background()

	assert.ErrorIs(t, ledger.Withdraw(1, 10), domain.ErrNoClient)
	require.NoError(t, ledger.Deposit(1, 1, 100))
	assert.ErrorIs(t, ledger.Deposit(1, 1, 100), domain.ErrDuplicateTxn)
	require.NoError(t, ledger.Dispute(1, 1))
	assert.ErrorIs(t, ledger.Dispute(1, 1), domain.ErrAlreadyDisputedTxn)
	require.NoError(t, ledger.Chargeback(1, 1))
	assert.ErrorIs(t, ledger.Resolve(1, 1), domain.ErrFrozenAccount)

	snap, err := ledger.GetAccount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.AccountSnapshot{Client: 1, Locked: true}, snap)

	_, err = ledger.GetAccount(ctx, 2)
	assert.ErrorIs(t, err, domain.ErrNoClient)
}

func TestLMAXLedgerStopsAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ledger := NewLMAXLedger(0)
	ledger.Start(ctx)

	require.NoError(t, ledger.PostTransaction(context.Background(), &domain.Transaction{
		Type: domain.TransactionTypeDeposit, Client: 1, Tx: 1, Amount: 100, HasAmount: true,
	}))
	snap, err := ledger.GetAccount(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(100), snap.Available)

	cancel()
	select {
	case <-ledger.Done():
	case <-time.After(time.Second):
		t.Fatal("ledger loop did not stop")
	}

	err = ledger.PostTransaction(context.Background(), &domain.Transaction{
		Type: domain.TransactionTypeDeposit, Client: 1, Tx: 2, Amount: 100, HasAmount: true,
	})
	assert.ErrorIs(t, err, domain.ErrLedgerStopped)
	assert.False(t, domain.IsSoft(err))
}
