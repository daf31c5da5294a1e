package geodata

// CountryIndex：国家→城市集合，保留数据文件中的声明顺序
// 约束：同名城市可出现在多个国家，CountryContaining 按声明顺序返回第一个命中的国家
type CountryIndex struct {
	order  []string
	cities map[string][]string
	sets   map[string]map[string]struct{}
}

// NewCountryIndex：按输入顺序构建索引；重复国家以首次出现为准，同一国家内重复城市去重
func NewCountryIndex(records []CountryRecord) *CountryIndex {
	x := &CountryIndex{
		cities: make(map[string][]string, len(records)),
		sets:   make(map[string]map[string]struct{}, len(records)),
	}
	for _, r := range records {
		if r.Name == "" {
			continue
		}
		if _, dup := x.sets[r.Name]; dup {
			continue
		}
		set := make(map[string]struct{}, len(r.Cities))
		list := make([]string, 0, len(r.Cities))
		for _, c := range r.Cities {
			if c == "" {
				continue
			}
			if _, ok := set[c]; ok {
				continue
			}
			set[c] = struct{}{}
			list = append(list, c)
		}
		x.order = append(x.order, r.Name)
		x.sets[r.Name] = set
		x.cities[r.Name] = list
	}
	return x
}

// CitiesOf：未知国家返回空切片
func (x *CountryIndex) CitiesOf(country string) []string {
	if x == nil {
		return []string{}
	}
	list := x.cities[country]
	out := make([]string, len(list))
	copy(out, list)
	return out
}

// HasCity：city 是否属于 country
func (x *CountryIndex) HasCity(country, city string) bool {
	if x == nil {
		return false
	}
	_, ok := x.sets[country][city]
	return ok
}

// CountryContaining：线性扫描全部国家，返回声明顺序中第一个包含 city 的国家
func (x *CountryIndex) CountryContaining(city string) (string, bool) {
	if x == nil || city == "" {
		return "", false
	}
	for _, name := range x.order {
		if _, ok := x.sets[name][city]; ok {
			return name, true
		}
	}
	return "", false
}

// Countries：声明顺序的国家名副本
func (x *CountryIndex) Countries() []string {
	if x == nil {
		return nil
	}
	out := make([]string, len(x.order))
	copy(out, x.order)
	return out
}

func (x *CountryIndex) Has(country string) bool {
	if x == nil {
		return false
	}
	_, ok := x.sets[country]
	return ok
}

func (x *CountryIndex) Len() int {
	if x == nil {
		return 0
	}
	return len(x.order)
}
