package dotmap

import (
	"math"

	"clock-map/internal/geodata"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// Web Mercator 的有效纬度上限
const maxMercatorLat = 85.05112878

// Locate：把经纬度投影到网格并吸附到最近的格子；网格外的坐标被夹到边缘格子
func (d *Descriptor) Locate(c geodata.Coordinate) Point {
	x, y := d.project(c)
	return Point{X: clampInt(int(math.Floor(x)), 0, d.Width-1), Y: clampInt(int(math.Floor(y)), 0, d.Height-1)}
}

// project：返回连续网格坐标，x∈[0,Width]、y∈[0,Height] 对应区域内部
func (d *Descriptor) project(c geodata.Coordinate) (float64, float64) {
	lo := project.WGS84.ToMercator(orb.Point{d.Region.Lng.Min, d.Region.Lat.Min})
	hi := project.WGS84.ToMercator(orb.Point{d.Region.Lng.Max, d.Region.Lat.Max})
	p := project.WGS84.ToMercator(orb.Point{c.Lng, clampFloat(c.Lat, -maxMercatorLat, maxMercatorLat)})
	x := (p.X() - lo.X()) / (hi.X() - lo.X()) * float64(d.Width)
	y := (hi.Y() - p.Y()) / (hi.Y() - lo.Y()) * float64(d.Height)
	return x, y
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
