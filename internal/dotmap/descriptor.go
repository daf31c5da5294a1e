// 包 dotmap：点阵世界地图渲染（背景网格 + 图钉 → SVG）
// 背景：背景网格预先计算并随应用打包，渲染时只做投影与吸附，不做栅格化。
package dotmap

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

//go:embed data/map_dotted.json
var bundledDescriptor []byte

var ErrEmptyDescriptor = errors.New("dotmap: descriptor has no points")

// Range：闭区间
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Region：网格覆盖的经纬度范围
type Region struct {
	Lat Range `json:"lat"`
	Lng Range `json:"lng"`
}

// Point：网格坐标，左上角为原点
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Descriptor：预计算的点阵背景
// 约束：网格在 Web Mercator 下等分；Points 仅包含陆地格子
type Descriptor struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Grid   string  `json:"grid"`
	Region Region  `json:"region"`
	Points []Point `json:"points"`
}

// ParseDescriptor：越界或重复的点被丢弃
func ParseDescriptor(r io.Reader) (*Descriptor, error) {
	var d Descriptor
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("dotmap: decode descriptor: %w", err)
	}
	if d.Width <= 0 || d.Height <= 0 {
		return nil, fmt.Errorf("dotmap: invalid grid %dx%d", d.Width, d.Height)
	}
	if d.Region.Lat.Min >= d.Region.Lat.Max || d.Region.Lng.Min >= d.Region.Lng.Max {
		return nil, errors.New("dotmap: invalid region")
	}
	if d.Region.Lat.Min < -maxMercatorLat || d.Region.Lat.Max > maxMercatorLat {
		return nil, fmt.Errorf("dotmap: region latitude outside ±%v", maxMercatorLat)
	}
	seen := make(map[Point]struct{}, len(d.Points))
	pts := d.Points[:0]
	for _, p := range d.Points {
		if p.X < 0 || p.Y < 0 || p.X >= d.Width || p.Y >= d.Height {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		pts = append(pts, p)
	}
	d.Points = pts
	if len(d.Points) == 0 {
		return nil, ErrEmptyDescriptor
	}
	return &d, nil
}

// LoadDescriptor：path 为空时使用内置网格
func LoadDescriptor(path string) (*Descriptor, error) {
	if path == "" {
		return ParseDescriptor(bytes.NewReader(bundledDescriptor))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dotmap: open descriptor: %w", err)
	}
	defer f.Close()
	return ParseDescriptor(f)
}
