package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	csvin "github.com/JoeShih716/go-txn-ledger/internal/app/core/adapter/in/csv"
	grpc_adapter "github.com/JoeShih716/go-txn-ledger/internal/app/core/adapter/in/grpc"
	csvout "github.com/JoeShih716/go-txn-ledger/internal/app/core/adapter/out/csv"
	memory_adapter "github.com/JoeShih716/go-txn-ledger/internal/app/core/adapter/out/memory"
	mysql_adapter "github.com/JoeShih716/go-txn-ledger/internal/app/core/adapter/out/mysql"
	postgres_adapter "github.com/JoeShih716/go-txn-ledger/internal/app/core/adapter/out/postgres"
	"github.com/JoeShih716/go-txn-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-txn-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-txn-ledger/pkg/journal"
	"github.com/JoeShih716/go-txn-ledger/pkg/logger"
	"github.com/JoeShih716/go-txn-ledger/pkg/mysql"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run 解析參數並執行一次完整的處理流程，回傳 exit code
//
// 用法: transactor [-config config.yaml] transactions.csv
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("transactor", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to YAML config (optional)")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: transactor [-config config.yaml] <transactions.csv>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "Fatal Error: expected exactly one transactions file argument")
		fs.Usage()
		return 1
	}

	// 1. 載入設定
	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Fatal Error: %v\n", err)
		return 1
	}

	// 2. Logger 寫到 stderr，stdout 只輸出帳戶快照
	log, err := logger.New(cfg.Log, zapcore.AddSync(stderr))
	if err != nil {
		fmt.Fprintf(stderr, "Fatal Error: %v\n", err)
		return 1
	}
	runID := uuid.NewString()
	log = log.With(zap.String("run_id", runID))
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx, cfg, runID, fs.Arg(0), stdout, log); err != nil {
		log.Error("run failed", zap.Error(err))
		fmt.Fprintf(stderr, "Fatal Error: %v\n", err)
		return 1
	}
	return 0
}

// execute 載入交易 -> 輸出快照 -> (選用) 匯出到資料庫 -> (選用) 提供查詢服務
//
// journal 關閉失敗 (緩衝區沒寫進檔案) 也視為錯誤
func execute(ctx context.Context, cfg Config, runID, path string, stdout io.Writer, log *zap.Logger) (err error) {
	ledgerCtx, cancelLedger := context.WithCancel(ctx)
	defer cancelLedger()

	usedLedger, err := newLedger(ledgerCtx, cfg.Ledger)
	if err != nil {
		return err
	}
	coreUseCase := usecase.NewCoreUseCase(usedLedger)

	loaderOpts := []csvin.LoaderOption{csvin.WithLogger(log)}
	if cfg.Journal.Path != "" {
		rejections, openErr := journal.Open(cfg.Journal.Path)
		if openErr != nil {
			return &domain.IOError{Op: "open journal", Err: openErr}
		}
		defer func() {
			if closeErr := rejections.Close(); closeErr != nil {
				err = errors.Join(err, &domain.IOError{Op: "close journal", Err: closeErr})
			}
		}()
		loaderOpts = append(loaderOpts, csvin.WithJournal(rejections))
	}

	file, err := os.Open(path)
	if err != nil {
		return &domain.IOError{Op: "open", Err: err}
	}
	defer file.Close()

	stats, err := csvin.NewLoader(coreUseCase, loaderOpts...).Load(ctx, file)
	if err != nil {
		return err
	}

	snapshots, err := finalSnapshots(ctx, usedLedger, cfg.Query.Addr == "")
	if err != nil {
		return err
	}
	log.Info("transactions processed",
		zap.String("ledger", cfg.Ledger.Type),
		zap.Int("records", stats.Records),
		zap.Int("applied", stats.Applied),
		zap.Int("rejected", stats.Rejected),
		zap.Int("accounts", len(snapshots)),
	)

	if err := csvout.NewWriter(stdout).Write(snapshots); err != nil {
		return err
	}

	if err := exportSnapshots(ctx, cfg, runID, snapshots, log); err != nil {
		return err
	}

	if cfg.Query.Addr == "" {
		return nil
	}
	lis, err := net.Listen("tcp", cfg.Query.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return serveQuery(ctx, lis, coreUseCase, log)
}

// finalSnapshots 取得最終快照
// 不需要查詢服務時，單執行緒帳本直接交出所有帳戶 (Drain)，其餘帳本走 Snapshots
func finalSnapshots(ctx context.Context, usedLedger usecase.Ledger, release bool) ([]domain.AccountSnapshot, error) {
	memLedger, ok := usedLedger.(*memory_adapter.Ledger)
	if !ok || !release {
		return usedLedger.Snapshots(ctx)
	}

	snapshots := make([]domain.AccountSnapshot, 0, memLedger.Len())
	for client, acct := range memLedger.Drain() {
		snapshots = append(snapshots, acct.Snapshot(client))
	}
	return snapshots, nil
}

// newLedger 依設定建立帳本；lmax 會在 ctx 結束時停止
func newLedger(ctx context.Context, cfg LedgerConfig) (usecase.Ledger, error) {
	switch cfg.Type {
	case LedgerTypeMemory:
		return memory_adapter.NewLedger(), nil
	case LedgerTypeMutex:
		return memory_adapter.NewMutexLedger(), nil
	case LedgerTypeLMAX:
		lmaxLedger := memory_adapter.NewLMAXLedger(cfg.Buffer)
		lmaxLedger.Start(ctx)
		return lmaxLedger, nil
	default:
		return nil, fmt.Errorf("invalid ledger type %q", cfg.Type)
	}
}

// exportSnapshots 將最終快照匯出到設定的資料庫 (只寫不讀)
func exportSnapshots(ctx context.Context, cfg Config, runID string, snapshots []domain.AccountSnapshot, log *zap.Logger) error {
	switch cfg.Snapshot.Driver {
	case SnapshotDriverNone:
		return nil
	case SnapshotDriverMySQL:
		dbClient, err := mysql.NewClient(ctx, cfg.MySQL, log)
		if err != nil {
			return fmt.Errorf("failed to connect to MySQL: %w", err)
		}
		defer dbClient.Close()

		store := mysql_adapter.NewSnapshotStore(dbClient)
		if err := store.Migrate(ctx); err != nil {
			return err
		}
		if err := store.SaveSnapshots(ctx, runID, snapshots); err != nil {
			return err
		}
	case SnapshotDriverPostgres:
		db, err := postgres_adapter.Open(ctx, cfg.Snapshot.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()

		store := postgres_adapter.NewSnapshotStore(db, cfg.Snapshot.Table)
		if err := store.Migrate(ctx); err != nil {
			return err
		}
		if err := store.SaveSnapshots(ctx, runID, snapshots); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid snapshot driver %q", cfg.Snapshot.Driver)
	}

	log.Info("snapshots exported", zap.String("driver", cfg.Snapshot.Driver), zap.Int("accounts", len(snapshots)))
	return nil
}

// serveQuery 提供唯讀查詢服務直到 ctx 結束 (SIGINT / SIGTERM)
func serveQuery(ctx context.Context, lis net.Listener, coreUseCase *usecase.CoreUseCase, log *zap.Logger) error {
	s := grpc.NewServer(grpc.UnaryInterceptor(grpc_adapter.UnaryLoggingInterceptor(log)))
	grpc_adapter.RegisterAccountQueryServer(s, grpc_adapter.NewGrpcServer(coreUseCase))
	reflection.Register(s) // 方便 grpcurl 等工具測試

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting query server", zap.String("addr", lis.Addr().String()))
		serveErr <- s.Serve(lis)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down query server")
	s.GracefulStop()
	<-serveErr
	log.Info("query server exited")
	return nil
}
