package csv_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	csvin "github.com/JoeShih716/go-txn-ledger/internal/app/core/adapter/in/csv"
	"github.com/JoeShih716/go-txn-ledger/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-txn-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-txn-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-txn-ledger/pkg/journal"
)

const records = `type,client,tx,amount
deposit,1,1,100
deposit,1,2,50
deposit,2,3,20
withdrawal,2,4,30
dispute,1,1,
chargeback,1,1,
deposit,1,5,10
withdrawal,3,6,1
deposit,2,7,
resolve,2,3,
`

func TestLoaderSwallowsSoftErrors(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	ledger := memory.NewLedger()
	loader := csvin.NewLoader(usecase.NewCoreUseCase(ledger), csvin.WithLogger(zap.New(core)))

	stats, err := loader.Load(context.Background(), strings.NewReader(records))
	require.NoError(t, err)
	assert.Equal(t, csvin.Stats{Records: 10, Applied: 5, Rejected: 5}, stats)

	snapshots, err := ledger.Snapshots(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.AccountSnapshot{
		{Client: 1, Available: 500000, Held: 0, Total: 500000, Locked: true},
		{Client: 2, Available: 200000, Held: 0, Total: 200000, Locked: false},
	}, snapshots)

	rejected := observed.FilterMessage("record rejected")
	require.Equal(t, 5, rejected.Len())
	first := rejected.All()[0].ContextMap()
	assert.Equal(t, int64(5), first["line"])
	assert.Equal(t, "withdrawal", first["type"])
}

func TestLoaderWritesJournal(t *testing.T) {
	j, err := journal.Open(filepath.Join(t.TempDir(), "rejected.jsonl"))
	require.NoError(t, err)
	defer j.Close()

	loader := csvin.NewLoader(usecase.NewCoreUseCase(memory.NewLedger()), csvin.WithJournal(j))
	_, err = loader.Load(context.Background(), strings.NewReader(records))
	require.NoError(t, err)

	var rejections []csvin.Rejection
	require.NoError(t, j.ReadAll(func(raw []byte) error {
		var r csvin.Rejection
		if err := json.Unmarshal(raw, &r); err != nil {
			return err
		}
		rejections = append(rejections, r)
		return nil
	}))

	require.Len(t, rejections, 5)
	assert.Equal(t, csvin.Rejection{
		Line:   5,
		Type:   "withdrawal",
		Client: 2,
		Tx:     4,
		Error:  "attempt to debit amount of 30.0000 exceeds available funds of 20.0000",
	}, rejections[0])
	assert.Equal(t, "account is frozen", rejections[1].Error)
	assert.Equal(t, "client with id 3 does not exist", rejections[2].Error)
	assert.Equal(t, domain.ErrMissingAmount.Error(), rejections[3].Error)
	assert.Equal(t, "transaction with id 3 is not disputed", rejections[4].Error)
}

func TestLoaderAbortsOnParseError(t *testing.T) {
	ledger := memory.NewLedger()
	loader := csvin.NewLoader(usecase.NewCoreUseCase(ledger))

	input := "type,client,tx,amount\ndeposit,1,1,10\ndeposit,1,2,-5\ndeposit,1,3,10\n"
	stats, err := loader.Load(context.Background(), strings.NewReader(input))

	var parseErr *domain.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 3, parseErr.Line)
	assert.Equal(t, csvin.Stats{Records: 1, Applied: 1}, stats)
}

func TestLoaderStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loader := csvin.NewLoader(usecase.NewCoreUseCase(memory.NewLedger()))
	_, err := loader.Load(ctx, strings.NewReader(records))
	assert.ErrorIs(t, err, context.Canceled)
}
