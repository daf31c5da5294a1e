// 包 utils：环境变量读取工具，统一默认值与解析失败回退
package utils

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"clock-map/internal/logger"

	"github.com/joho/godotenv"
)

// LoadEnvFiles：依次加载 .env 与 data/env/.env，已存在的进程变量不被覆盖
// 约束：文件缺失不是错误；仅记录实际加载成功的文件
func LoadEnvFiles(extra ...string) []string {
	files := append([]string{".env", filepath.Join("data", "env", ".env")}, extra...)
	var loaded []string
	for _, f := range files {
		if f == "" {
			continue
		}
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			logger.L().Warn("env_load_error", "file", f, "err", err)
			continue
		}
		loaded = append(loaded, f)
	}
	return loaded
}

func EnvString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// EnvInt：解析失败或为负时回退默认值
func EnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func EnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return def
}

// EnvFloat：仅接受有限正数
func EnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && f > 0 && f < 1e9 {
			return f
		}
	}
	return def
}
