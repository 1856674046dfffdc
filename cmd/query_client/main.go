package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	grpc_adapter "github.com/JoeShih716/go-txn-ledger/internal/app/core/adapter/in/grpc"
	"github.com/JoeShih716/go-txn-ledger/pkg/grpc"
	"github.com/JoeShih716/go-txn-ledger/pkg/logger"
)

// 查詢 transactor 的帳戶查詢服務 (需設定 query.addr)
//
// 用法:
//
//	query_client -addr localhost:50051            列出所有帳戶
//	query_client -addr localhost:50051 -client 1  查詢單一客戶
func main() {
	addr := flag.String("addr", "localhost:50051", "query server address")
	client := flag.Int("client", -1, "client id to query (omit to list all accounts)")
	timeout := flag.Duration("timeout", 5*time.Second, "request timeout")
	flag.Parse()

	log, err := logger.New(logger.Config{Format: logger.FormatConsole}, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fatal Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if *client > 0xFFFF {
		log.Fatal("client id out of range", zap.Int("client", *client))
	}

	pool := grpc.NewPool(grpc.WithInterceptor(grpc_adapter.RequestIDInterceptor()))
	defer pool.Close()

	conn, err := pool.GetConnection(*addr)
	if err != nil {
		log.Fatal("did not connect", zap.Error(err))
	}
	c := grpc_adapter.NewAccountQueryClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var resp proto.Message
	if *client < 0 {
		resp, err = c.ListAccounts(ctx)
	} else {
		resp, err = c.GetAccount(ctx, uint16(*client))
	}
	if err != nil {
		log.Fatal("query failed", zap.String("addr", *addr), zap.Error(err))
	}

	out, err := protojson.MarshalOptions{Multiline: true}.Marshal(resp)
	if err != nil {
		log.Fatal("failed to encode response", zap.Error(err))
	}
	fmt.Println(string(out))
}
