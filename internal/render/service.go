// 包 render：地图渲染编排（进程内 LRU → Redis → 解析 + 渲染）
// 背景：渲染输出对相同输入逐字节一致，可按名称列表与样式做内容寻址缓存。
// 约束：Redis 为可选的二级缓存，任何 Redis 错误都按未命中处理，不影响出图。
package render

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"clock-map/internal/dotmap"
	"clock-map/internal/logger"
	"clock-map/internal/metrics"
	"clock-map/internal/pins"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// 缓存来源，随响应头 X-Cache 返回
const (
	SourceLRU    = "lru"
	SourceRedis  = "redis"
	SourceRender = "render"
)

const redisPrefix = "map:"

// Config：TTL 同时作用于两级缓存
type Config struct {
	Style     pins.Style
	CacheSize int
	TTL       time.Duration
}

type Service struct {
	resolver *pins.Resolver
	renderer *dotmap.Renderer
	rc       *redis.Client
	style    pins.Style
	ttl      time.Duration
	lru      *LRU
	group    singleflight.Group
	log      *slog.Logger
}

// NewService：rc 可为 nil，此时仅使用进程内缓存
func NewService(res *pins.Resolver, rdr *dotmap.Renderer, rc *redis.Client, cfg Config) *Service {
	if cfg.Style.Color == "" {
		cfg.Style.Color = pins.DefaultStyle.Color
	}
	if cfg.Style.Radius <= 0 {
		cfg.Style.Radius = pins.DefaultStyle.Radius
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 256
	}
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}
	return &Service{
		resolver: res,
		renderer: rdr,
		rc:       rc,
		style:    cfg.Style,
		ttl:      cfg.TTL,
		lru:      NewLRU(cfg.CacheSize, cfg.TTL),
		log:      logger.Component("render"),
	}
}

func (s *Service) Resolver() *pins.Resolver { return s.resolver }

// Key：名称顺序参与计算，顺序不同视为不同地图
func (s *Service) Key(names []string) string {
	h := sha1.New()
	for _, n := range names {
		h.Write([]byte(strconv.Itoa(len(n))))
		h.Write([]byte{':'})
		h.Write([]byte(n))
	}
	o := s.renderer.Options()
	h.Write([]byte("|" + s.style.Color + "|" + strconv.FormatFloat(s.style.Radius, 'f', -1, 64)))
	h.Write([]byte("|" + o.Shape + "|" + o.DotColor + "|" + o.Background + "|" + strconv.FormatFloat(o.DotRadius, 'f', -1, 64)))
	return hex.EncodeToString(h.Sum(nil))
}

// MapSVG：返回地图 SVG 与命中来源；无法解析的名称静默跳过
func (s *Service) MapSVG(ctx context.Context, names []string) ([]byte, string, error) {
	key := s.Key(names)
	if b, ok := s.lru.Get(key); ok {
		metrics.RenderCacheHitsTotal.WithLabelValues(SourceLRU).Inc()
		return b, SourceLRU, nil
	}
	if b, ok := s.fromRedis(ctx, key); ok {
		metrics.RenderCacheHitsTotal.WithLabelValues(SourceRedis).Inc()
		s.lru.Set(key, b)
		return b, SourceRedis, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	metrics.RenderCacheMissesTotal.Inc()
	v, _, _ := s.group.Do(key, func() (any, error) {
		b := s.Render(names)
		s.lru.Set(key, b)
		s.toRedis(ctx, key, b)
		return b, nil
	})
	return v.([]byte), SourceRender, nil
}

// Render：不经缓存直接解析并渲染
func (s *Service) Render(names []string) []byte {
	start := time.Now()
	ps := s.resolver.Pins(names, s.style)
	b := s.renderer.Render(ps)
	ms := float64(time.Since(start).Microseconds()) / 1000
	metrics.RenderTotal.Inc()
	metrics.RenderDurationMs.Observe(ms)
	s.log.Debug("map_render_done", "names", len(names), "pins", len(ps), "bytes", len(b), "duration_ms", ms)
	return b
}

func (s *Service) fromRedis(ctx context.Context, key string) ([]byte, bool) {
	if s.rc == nil {
		return nil, false
	}
	b, err := s.rc.Get(ctx, redisPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn("render_cache_redis_get_fail", "err", err)
		}
		return nil, false
	}
	return b, true
}

func (s *Service) toRedis(ctx context.Context, key string, b []byte) {
	if s.rc == nil {
		return
	}
	if err := s.rc.Set(ctx, redisPrefix+key, b, s.ttl).Err(); err != nil {
		s.log.Warn("render_cache_redis_set_fail", "err", err)
	}
}
