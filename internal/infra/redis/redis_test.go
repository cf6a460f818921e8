package redis

import (
	"context"
	"testing"

	"discuss-go/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions(t *testing.T) {
	opts := options(&config.RedisConfig{Host: "cache", Port: 6380, Password: "pw", DB: 2, PoolSize: 8})
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 8, opts.PoolSize)
	assert.Equal(t, opTimeout, opts.ReadTimeout)
	assert.Equal(t, opTimeout, opts.WriteTimeout)
}

func TestConnect_Unreachable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c, err := Connect(ctx, &config.RedisConfig{Host: "127.0.0.1", Port: 1})
	require.Error(t, err)
	assert.Nil(t, c)
	// 连接失败不留全局实例，健康检查视为未启用
	assert.NoError(t, Ping(context.Background()))
	assert.NoError(t, Close())
}
