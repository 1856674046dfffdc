package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/keepalive"
)

func TestPoolReusesConnection(t *testing.T) {
	pool := NewPool()
	defer pool.Close()

	first, err := pool.GetConnection("passthrough:///ledger-a")
	require.NoError(t, err)
	second, err := pool.GetConnection("passthrough:///ledger-a")
	require.NoError(t, err)
	assert.Same(t, first, second)

	other, err := pool.GetConnection("passthrough:///ledger-b")
	require.NoError(t, err)
	assert.NotSame(t, first, other)
	assert.Equal(t, 2, pool.Len())
}

func TestPoolRecreatesShutdownConnection(t *testing.T) {
	pool := NewPool()
	defer pool.Close()

	conn, err := pool.GetConnection("passthrough:///ledger")
	require.NoError(t, err)
	require.NoError(t, conn.Close())
	assert.Equal(t, connectivity.Shutdown, conn.GetState())

	fresh, err := pool.GetConnection("passthrough:///ledger")
	require.NoError(t, err)
	assert.NotSame(t, conn, fresh)
	assert.Equal(t, 1, pool.Len())
}

func TestPoolOptions(t *testing.T) {
	var called bool
	interceptor := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		called = true
		return invoker(ctx, method, req, reply, cc, opts...)
	}
	params := keepalive.ClientParameters{Time: time.Minute, Timeout: 5 * time.Second}

	pool := NewPool(WithInterceptor(interceptor), WithKeepalive(params), WithDialOptions(grpc.WithUserAgent("ledger-test")))
	defer pool.Close()

	assert.NotNil(t, pool.interceptor)
	assert.Equal(t, params, pool.keepalive)
	assert.Len(t, pool.dialOpts, 1)
	assert.False(t, called)
}

func TestPoolClose(t *testing.T) {
	pool := NewPool()
	conn, err := pool.GetConnection("passthrough:///ledger")
	require.NoError(t, err)

	require.NoError(t, pool.Close())
	assert.Equal(t, 0, pool.Len())
	assert.Equal(t, connectivity.Shutdown, conn.GetState())
}
