// 包 utils：Redis 连接工具
package utils

import (
	"clock-map/internal/logger"

	"github.com/redis/go-redis/v9"
)

// OpenRedis：地址为空时返回 nil，调用方据此视为禁用
func OpenRedis(addr, pass string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})
}

// OpenRedisFromEnv：REDIS_ENABLED=false 时返回 nil；REDIS_DB 解析失败回退到 0
func OpenRedisFromEnv() *redis.Client {
	if !EnvBool("REDIS_ENABLED", false) {
		return nil
	}
	addr := EnvString("REDIS_HOST", "127.0.0.1") + ":" + EnvString("REDIS_PORT", "6379")
	db := EnvInt("REDIS_DB", 0)
	logger.L().Debug("redis_env", "addr", addr, "db", db)
	return OpenRedis(addr, EnvString("REDIS_PASS", ""), db)
}
