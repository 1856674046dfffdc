package mysql

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func unreachable() Config {
	return Config{
		Host:          "127.0.0.1",
		Port:          1,
		User:          "ledger",
		DBName:        "ledger",
		MaxRetries:    3,
		RetryInterval: time.Hour,
		LogLevel:      "silent",
	}
}

func TestNewClientStopsRetryingOnCancel(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	ctx, cancel := context.WithCancel(context.Background())

	// 第一次失敗後取消，不必等 RetryInterval
	go func() {
		for logs.Len() == 0 {
			time.Sleep(10 * time.Millisecond)
		}
		cancel()
	}()

	_, err := NewClient(ctx, unreachable(), zap.New(core))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, logs.FilterMessage("failed to connect to mysql, retrying").Len())
}

func TestNewClientGivesUp(t *testing.T) {
	cfg := unreachable()
	cfg.MaxRetries = 1

	_, err := NewClient(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 1 attempts")
}
