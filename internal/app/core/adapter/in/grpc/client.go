package grpc

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// AccountQueryClient 帳戶查詢服務的客戶端
type AccountQueryClient struct {
	cc grpc.ClientConnInterface
}

func NewAccountQueryClient(cc grpc.ClientConnInterface) *AccountQueryClient {
	return &AccountQueryClient{cc: cc}
}

// GetAccount 查詢單一客戶
func (c *AccountQueryClient) GetAccount(ctx context.Context, client uint16, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetAccountMethod, wrapperspb.UInt32(uint32(client)), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAccounts 列出所有帳戶
func (c *AccountQueryClient) ListAccounts(ctx context.Context, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, ListAccountsMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// RequestIDInterceptor 為沒有 Request ID 的呼叫補上一個 UUID
func RequestIDInterceptor() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		if md, ok := metadata.FromOutgoingContext(ctx); !ok || len(md.Get(RequestIDKey)) == 0 {
			ctx = metadata.AppendToOutgoingContext(ctx, RequestIDKey, uuid.NewString())
		}
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}
