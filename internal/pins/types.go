// 包 pins：地名→地图图钉坐标的解析
// 背景：地名可能是国家、已知国家中的城市，或无法解析；先按国家查，再按城市反查国家。
// 约束：未命中不是错误，批量解析时静默丢弃；解析器无状态，可被并发调用。
package pins

import "clock-map/internal/geodata"

// Outcome：单次解析的结果类别，仅用于日志与指标
type Outcome string

const (
	OutcomeCountry Outcome = "country"
	OutcomeCity    Outcome = "city"
	OutcomeMiss    Outcome = "miss"
)

// Style：渲染提示，由地图渲染器解释
type Style struct {
	Color  string  `json:"color"`
	Radius float64 `json:"radius"`
}

// DefaultStyle：红色、半径 0.4
var DefaultStyle = Style{Color: "red", Radius: 0.4}

// Pin：一次渲染请求的图钉，不持久化
type Pin struct {
	Name string `json:"name"`
	geodata.Coordinate
	Style Style `json:"style"`
}

// Resolution：带来源信息的解析结果；Country 为实际取坐标的国家
type Resolution struct {
	Name       string
	Country    string
	Coordinate geodata.Coordinate
	Outcome    Outcome
}

func (r Resolution) OK() bool { return r.Outcome != OutcomeMiss }
