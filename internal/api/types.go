package api

import (
	"clock-map/internal/clocklist"
	"clock-map/internal/geodata"
	"clock-map/internal/render"
)

// 文档注释：对外返回结构
// 约束：字段稳定；新增字段需评估兼容性与前端依赖。
type pinResult struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	Outcome string  `json:"outcome"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

type pinsResponse struct {
	Pins       []pinResult `json:"pins"`
	Unresolved []string    `json:"unresolved"`
}

type countryResult struct {
	Name       string              `json:"name"`
	Cities     int                 `json:"cities"`
	Coordinate *geodata.Coordinate `json:"coordinate"`
}

type clockResult struct {
	clocklist.Entry
	Resolved bool `json:"resolved"`
}

type addClockRequest struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// Snapshot：一份已加载的数据集及基于它的渲染服务，重载时整体替换
type Snapshot struct {
	Dataset *geodata.Dataset
	Maps    *render.Service
}
