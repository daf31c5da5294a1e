package pins

import (
	"log/slog"

	"clock-map/internal/geodata"
	"clock-map/internal/logger"
	"clock-map/internal/metrics"
)

// Resolver：国家优先、城市其次的地名解析器
type Resolver struct {
	index *geodata.CountryIndex
	table *geodata.CoordinateTable
	steps chain
	log   *slog.Logger
}

// NewResolver：ix 或 tb 为 nil 时对应步骤恒未命中
func NewResolver(ix *geodata.CountryIndex, tb *geodata.CoordinateTable) *Resolver {
	return &Resolver{
		index: ix,
		table: tb,
		steps: chain{countryStep(tb), cityStep(ix, tb)},
		log:   logger.Component("pins"),
	}
}

func NewResolverFromDataset(ds *geodata.Dataset) *Resolver {
	return NewResolver(ds.Index, ds.Table)
}

// Resolve：解析单个名称并返回来源；空名称直接未命中，不做任何查找
func (r *Resolver) Resolve(name string) Resolution {
	if name == "" {
		metrics.PinResolveTotal.WithLabelValues(string(OutcomeMiss)).Inc()
		return Resolution{Outcome: OutcomeMiss}
	}
	res := r.steps.lookup(name)
	metrics.PinResolveTotal.WithLabelValues(string(res.Outcome)).Inc()
	if res.Outcome == OutcomeMiss {
		r.log.Debug("pin_unresolved", "name", name)
	}
	return res
}

// ResolveOne：仅返回坐标
func (r *Resolver) ResolveOne(name string) (geodata.Coordinate, bool) {
	res := r.Resolve(name)
	return res.Coordinate, res.OK()
}

// ResolveAll：按输入顺序返回每个名称的解析结果（含未命中）
func (r *Resolver) ResolveAll(names []string) []Resolution {
	out := make([]Resolution, 0, len(names))
	for _, n := range names {
		out = append(out, r.Resolve(n))
	}
	return out
}

// ResolveBatch：按输入顺序解析，未命中的条目被丢弃，不留占位
func (r *Resolver) ResolveBatch(names []string) []geodata.Coordinate {
	out := make([]geodata.Coordinate, 0, len(names))
	for _, n := range names {
		if c, ok := r.ResolveOne(n); ok {
			out = append(out, c)
		}
	}
	return out
}

// Pins：ResolveBatch 的图钉形式，附带统一样式
func (r *Resolver) Pins(names []string, style Style) []Pin {
	out := make([]Pin, 0, len(names))
	for _, res := range r.ResolveAll(names) {
		if !res.OK() {
			continue
		}
		out = append(out, Pin{Name: res.Name, Coordinate: res.Coordinate, Style: style})
	}
	return out
}

func (r *Resolver) Index() *geodata.CountryIndex    { return r.index }
func (r *Resolver) Table() *geodata.CoordinateTable { return r.table }
