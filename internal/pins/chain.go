package pins

import "clock-map/internal/geodata"

// step：解析链中的一环，返回坐标与取坐标的国家
type step struct {
	outcome Outcome
	lookup  func(name string) (geodata.Coordinate, string, bool)
}

// chain：按顺序尝试各环，第一个命中即返回；某环内部的二次查找未命中时整体视为该环未命中
type chain []step

func (c chain) lookup(name string) Resolution {
	for _, s := range c {
		if s.lookup == nil {
			continue
		}
		if coord, country, ok := s.lookup(name); ok {
			return Resolution{Name: name, Country: country, Coordinate: coord, Outcome: s.outcome}
		}
	}
	return Resolution{Name: name, Outcome: OutcomeMiss}
}

// countryStep：把名称直接当作国家查坐标表
func countryStep(tb *geodata.CoordinateTable) step {
	return step{outcome: OutcomeCountry, lookup: func(name string) (geodata.Coordinate, string, bool) {
		c, ok := tb.CoordinateOf(name)
		return c, name, ok
	}}
}

// cityStep：在城市索引中反查所属国家，再取该国坐标；两份数据不一致时未命中
func cityStep(ix *geodata.CountryIndex, tb *geodata.CoordinateTable) step {
	return step{outcome: OutcomeCity, lookup: func(name string) (geodata.Coordinate, string, bool) {
		country, ok := ix.CountryContaining(name)
		if !ok {
			return geodata.Coordinate{}, "", false
		}
		c, ok := tb.CoordinateOf(country)
		return c, country, ok
	}}
}
