package database

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestGetRedisConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		viper.Reset()

		config := GetRedisConfig()
		assert.Equal(t, "localhost:6379", config.Addr)
		assert.Empty(t, config.Password)
		assert.Zero(t, config.DB)
		assert.Equal(t, 5, config.PoolSize)
		assert.Equal(t, 5*time.Second, config.DialTimeout)
	})

	t.Run("overrides", func(t *testing.T) {
		viper.Reset()
		viper.Set("redis.host", "cache.internal")
		viper.Set("redis.port", "6380")
		viper.Set("redis.password", "secret")
		viper.Set("redis.db", 2)
		defer viper.Reset()

		config := GetRedisConfig()
		assert.Equal(t, "cache.internal:6380", config.Addr)
		assert.Equal(t, "secret", config.Password)
		assert.Equal(t, 2, config.DB)
	})
}
