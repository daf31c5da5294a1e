// 包 geodata：随应用打包的两份参考数据（国家→城市索引、国家→代表坐标表）
// 背景：数据在进程启动时加载一次，之后只读；并发读取无需加锁。
// 约束：所有查找均为精确匹配（区分大小写，不裁剪空白）；缺失即未命中，不返回错误。
package geodata

import "errors"

var (
	// ErrNoCountries：城市索引文档解析后没有任何国家
	ErrNoCountries = errors.New("geodata: country index is empty")
	// ErrNoCoordinates：坐标文档解析后没有任何有效记录
	ErrNoCoordinates = errors.New("geodata: coordinate table is empty")
)

// Coordinate：WGS84 经纬度
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid：纬度 [-90,90]、经度 [-180,180]
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// CountryRecord：国家及其已知城市，城市无顺序保证，可为空
type CountryRecord struct {
	Name   string
	Cities []string
}

// CoordinateRecord：国家代表坐标；Alpha2/Alpha3 仅作展示，不参与查找
type CoordinateRecord struct {
	Country string
	Alpha2  string
	Alpha3  string
	Coordinate
}

// LoadStats：加载统计，Skipped 为因字段缺失或非法而丢弃的条目数
type LoadStats struct {
	Records int
	Items   int
	Skipped int
}
