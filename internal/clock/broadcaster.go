// 包 clock：时间节拍桥接，把周期节拍与系统时间跳变推送给唯一的活动监听者
// 背景：时钟页只需要一个刷新源；新订阅会替换旧订阅，旧通道被关闭。
// 约束：发送不阻塞，监听者处理过慢时丢弃节拍；取消订阅可重复调用。
package clock

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"clock-map/internal/logger"
	"clock-map/internal/metrics"
)

var ErrStopped = errors.New("clock: broadcaster stopped")

type Reason string

const (
	ReasonTick    Reason = "time_tick"
	ReasonChanged Reason = "time_changed"
)

// DefaultJumpTolerance：墙钟与单调时钟的差值超过该值视为时间被修改
const DefaultJumpTolerance = 2 * time.Second

type Tick struct {
	At     time.Time
	Reason Reason
}

// MarshalJSON：{"at": 毫秒时间戳, "reason": "..."}
func (t Tick) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		At     int64  `json:"at"`
		Reason Reason `json:"reason"`
	}{t.At.UnixMilli(), t.Reason})
}

type Subscription struct {
	C  <-chan Tick
	ch chan Tick
	b    *Broadcaster
	id   uint64
	once sync.Once
}

// Cancel：等价于 Broadcaster.Unsubscribe
func (s *Subscription) Cancel() { s.b.Unsubscribe(s) }

type Broadcaster struct {
	mu        sync.Mutex
	active    *Subscription
	seq       uint64
	stopped   bool
	interval  time.Duration
	tolerance time.Duration
	buffer    int
	now       func() time.Time
	log       *slog.Logger
}

func New(interval time.Duration) *Broadcaster {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Broadcaster{
		interval:  interval,
		tolerance: DefaultJumpTolerance,
		buffer:    4,
		now:       time.Now,
		log:       logger.Component("clock"),
	}
}

func (b *Broadcaster) Interval() time.Duration { return b.interval }

// Subscribe：安装新的监听者；已有监听者被取消
func (b *Broadcaster) Subscribe() (*Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return nil, ErrStopped
	}
	if b.active != nil {
		b.log.Debug("tick_listener_replaced", "id", b.active.id)
		b.closeLocked(b.active)
	}
	b.seq++
	ch := make(chan Tick, b.buffer)
	sub := &Subscription{C: ch, ch: ch, b: b, id: b.seq}
	b.active = sub
	metrics.TickListeners.Set(1)
	return sub, nil
}

// Unsubscribe：重复调用或传入已被替换的订阅均无副作用
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closeLocked(sub)
}

func (b *Broadcaster) closeLocked(sub *Subscription) {
	sub.once.Do(func() { close(sub.ch) })
	if b.active == sub {
		b.active = nil
		metrics.TickListeners.Set(0)
	}
}

// Active：当前是否存在监听者
func (b *Broadcaster) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active != nil
}

// Publish：非阻塞投递给活动监听者，返回是否送达
func (b *Broadcaster) Publish(t Tick) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	delivery := "delivered"
	defer func() { metrics.TickEventsTotal.WithLabelValues(string(t.Reason), delivery).Inc() }()
	if b.active == nil {
		delivery = "no_listener"
		return false
	}
	select {
	case b.active.ch <- t:
		return true
	default:
		delivery = "dropped"
		b.log.Debug("tick_dropped", "reason", t.Reason)
		return false
	}
}

// Run：阻塞直到 ctx 结束；每个整 interval 边界发出 time_tick，检测到系统时间跳变时先发出 time_changed
func (b *Broadcaster) Run(ctx context.Context) error {
	defer b.stop()
	prev := b.now()
	timer := time.NewTimer(untilBoundary(prev, b.interval))
	defer timer.Stop()
	b.log.Info("tick_loop_start", "interval_s", b.interval.Seconds())
	for {
		select {
		case <-ctx.Done():
			b.log.Info("tick_loop_stop")
			return nil
		case <-timer.C:
			cur := b.now()
			mono := cur.Sub(prev)
			wall := cur.Round(0).Sub(prev.Round(0))
			if jumped(mono, wall, b.tolerance) {
				b.log.Info("time_changed", "drift_ms", (wall - mono).Milliseconds())
				b.Publish(Tick{At: cur, Reason: ReasonChanged})
			}
			b.Publish(Tick{At: cur, Reason: ReasonTick})
			prev = cur
			timer.Reset(untilBoundary(cur, b.interval))
		}
	}
}

func (b *Broadcaster) stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopped = true
	if b.active != nil {
		b.closeLocked(b.active)
	}
}

// untilBoundary：距下一个 interval 整倍数时刻的时长
func untilBoundary(t time.Time, interval time.Duration) time.Duration {
	d := interval - time.Duration(t.UnixNano()%int64(interval))
	if d <= 0 {
		return interval
	}
	return d
}

func jumped(mono, wall, tolerance time.Duration) bool {
	diff := wall - mono
	if diff < 0 {
		diff = -diff
	}
	return diff > tolerance
}
