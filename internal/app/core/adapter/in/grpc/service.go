package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// 訊息全部使用 protobuf well-known types，不需要另外產生程式碼
const (
	ServiceName        = "ledger.v1.AccountQuery"
	GetAccountMethod   = "/" + ServiceName + "/GetAccount"
	ListAccountsMethod = "/" + ServiceName + "/ListAccounts"
)

// AccountQueryServer 帳戶查詢服務 (唯讀)
type AccountQueryServer interface {
	// GetAccount 以客戶 ID 查詢帳戶
	GetAccount(context.Context, *wrapperspb.UInt32Value) (*structpb.Struct, error)
	// ListAccounts 列出所有帳戶 (依客戶 ID 遞增)
	ListAccounts(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
}

// AccountQueryServiceDesc 手寫的 ServiceDesc
var AccountQueryServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AccountQueryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetAccount", Handler: getAccountHandler},
		{MethodName: "ListAccounts", Handler: listAccountsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ledger/v1/account_query.proto",
}

// RegisterAccountQueryServer 註冊到 gRPC Server
func RegisterAccountQueryServer(s grpc.ServiceRegistrar, srv AccountQueryServer) {
	s.RegisterService(&AccountQueryServiceDesc, srv)
}

func getAccountHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.UInt32Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AccountQueryServer).GetAccount(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetAccountMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AccountQueryServer).GetAccount(ctx, req.(*wrapperspb.UInt32Value))
	}
	return interceptor(ctx, in, info, handler)
}

func listAccountsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AccountQueryServer).ListAccounts(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ListAccountsMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AccountQueryServer).ListAccounts(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}
