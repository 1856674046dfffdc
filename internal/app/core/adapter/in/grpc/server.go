package grpc

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/JoeShih716/go-txn-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-txn-ledger/internal/app/core/usecase"
)

// RequestIDKey 追蹤用的 metadata key
const RequestIDKey = "x-request-id"

type GrpcServer struct {
	core *usecase.CoreUseCase
}

func NewGrpcServer(core *usecase.CoreUseCase) *GrpcServer {
	return &GrpcServer{
		core: core,
	}
}

func (s *GrpcServer) GetAccount(ctx context.Context, req *wrapperspb.UInt32Value) (*structpb.Struct, error) {
	// 1. 客戶 ID 為 16 位元
	if req.GetValue() > math.MaxUint16 {
		return nil, status.Errorf(codes.InvalidArgument, "client id %d out of range", req.GetValue())
	}

	// 2. 查詢
	snap, err := s.core.GetAccount(ctx, uint16(req.GetValue()))
	if err != nil {
		if errors.Is(err, domain.ErrNoClient) {
			return nil, status.Error(codes.NotFound, err.Error())
		}
		return nil, status.Error(codes.Internal, err.Error())
	}

	out, err := snapshotToStruct(snap)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func (s *GrpcServer) ListAccounts(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	snapshots, err := s.core.Snapshots(ctx)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	values := make([]*structpb.Value, 0, len(snapshots))
	for _, snap := range snapshots {
		st, err := snapshotToStruct(snap)
		if err != nil {
			return nil, status.Error(codes.Internal, err.Error())
		}
		values = append(values, structpb.NewStructValue(st))
	}
	return &structpb.ListValue{Values: values}, nil
}

// snapshotToStruct 欄位與 CSV 輸出一致，金額為固定 4 位小數字串
func snapshotToStruct(snap domain.AccountSnapshot) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"client":    uint32(snap.Client),
		"available": domain.FormatAmount(snap.Available),
		"held":      domain.FormatAmount(snap.Held),
		"total":     domain.FormatAmount(snap.Total),
		"locked":    snap.Locked,
	})
}

// UnaryLoggingInterceptor 記錄每個請求的方法、狀態碼與耗時
func UnaryLoggingInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.Stringer("code", status.Code(err)),
			zap.Duration("elapsed", time.Since(start)),
		}
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get(RequestIDKey); len(ids) > 0 {
				fields = append(fields, zap.String("request_id", ids[0]))
			}
		}
		log.Info("grpc request", fields...)
		return resp, err
	}
}

var _ AccountQueryServer = (*GrpcServer)(nil)
