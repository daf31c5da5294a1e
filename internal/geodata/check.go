package geodata

// Report：两份数据之间的不一致，均按声明顺序排列
// 背景：不一致不会导致加载失败，只会让相关名称解析未命中；运维工具据此提示。
type Report struct {
	// 在城市索引中但没有坐标的国家
	MissingCoordinates []string `json:"missing_coordinates"`
	// 有坐标但不在城市索引中的国家
	MissingCities []string `json:"missing_cities"`
	// 出现在多个国家中的城市，值为声明顺序的国家列表，首项即解析结果
	CityCollisions map[string][]string `json:"city_collisions"`
	// 与某个国家同名的城市，解析时国家优先
	ShadowedCities map[string][]string `json:"shadowed_cities"`
}

func (r Report) Clean() bool {
	return len(r.MissingCoordinates) == 0 && len(r.MissingCities) == 0 &&
		len(r.CityCollisions) == 0 && len(r.ShadowedCities) == 0
}

// Check：比较索引与坐标表
func Check(ix *CountryIndex, tb *CoordinateTable) Report {
	rep := Report{CityCollisions: map[string][]string{}, ShadowedCities: map[string][]string{}}
	for _, c := range ix.Countries() {
		if _, ok := tb.CoordinateOf(c); !ok {
			rep.MissingCoordinates = append(rep.MissingCoordinates, c)
		}
	}
	for _, c := range tb.Countries() {
		if !ix.Has(c) {
			rep.MissingCities = append(rep.MissingCities, c)
		}
	}
	owners := map[string][]string{}
	var seen []string
	for _, c := range ix.Countries() {
		for _, city := range ix.CitiesOf(c) {
			if _, ok := owners[city]; !ok {
				seen = append(seen, city)
			}
			owners[city] = append(owners[city], c)
		}
	}
	for _, city := range seen {
		if len(owners[city]) > 1 {
			rep.CityCollisions[city] = owners[city]
		}
		if _, ok := tb.CoordinateOf(city); ok || ix.Has(city) {
			rep.ShadowedCities[city] = owners[city]
		}
	}
	return rep
}
