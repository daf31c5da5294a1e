package geodata

// CoordinateTable：国家→代表坐标
// 约束：重复国家以首条有效记录为准；查找不做大小写折叠与空白裁剪
type CoordinateTable struct {
	order  []string
	byName map[string]CoordinateRecord
}

func NewCoordinateTable(records []CoordinateRecord) *CoordinateTable {
	t := &CoordinateTable{byName: make(map[string]CoordinateRecord, len(records))}
	for _, r := range records {
		if r.Country == "" || !r.Coordinate.Valid() {
			continue
		}
		if _, dup := t.byName[r.Country]; dup {
			continue
		}
		t.order = append(t.order, r.Country)
		t.byName[r.Country] = r
	}
	return t
}

// CoordinateOf：精确匹配国家名
func (t *CoordinateTable) CoordinateOf(country string) (Coordinate, bool) {
	if t == nil {
		return Coordinate{}, false
	}
	r, ok := t.byName[country]
	if !ok {
		return Coordinate{}, false
	}
	return r.Coordinate, true
}

// Record：含 ISO 代码的完整记录
func (t *CoordinateTable) Record(country string) (CoordinateRecord, bool) {
	if t == nil {
		return CoordinateRecord{}, false
	}
	r, ok := t.byName[country]
	return r, ok
}

func (t *CoordinateTable) Countries() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

func (t *CoordinateTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}
