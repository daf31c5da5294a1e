// 包 logger：进程级日志器，统一级别与输出格式；服务与各工具共用同一初始化入口
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu            sync.RWMutex
	defaultLogger *slog.Logger
	out           io.Writer = os.Stderr
)

// Setup：按环境变量构建默认日志器
// 背景：LOG_LEVEL 控制级别（debug/info/warn/error），LOG_FORMAT=json 切换为结构化输出，其余为文本
// 约束：重复调用会替换默认日志器；已通过 L() 取得的旧实例不受影响
func Setup() *slog.Logger {
	l := slog.New(newHandler(out, parseLevel(os.Getenv("LOG_LEVEL")), os.Getenv("LOG_FORMAT")))
	mu.Lock()
	defaultLogger = l
	mu.Unlock()
	return l
}

// SetOutput：切换输出目标并重建默认日志器（测试与命令行工具使用）
func SetOutput(w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	mu.Lock()
	out = w
	mu.Unlock()
	return Setup()
}

// L：获取默认日志器，未初始化时回退到 Setup
func L() *slog.Logger {
	mu.RLock()
	l := defaultLogger
	mu.RUnlock()
	if l == nil {
		return Setup()
	}
	return l
}

// Component：带模块名的子日志器
func Component(name string) *slog.Logger {
	return L().With("component", name)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func newHandler(w io.Writer, lvl slog.Level, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}
