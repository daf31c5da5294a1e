package geodata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"clock-map/internal/logger"
)

const (
	CountriesFile   = "countries.json"
	CoordinatesFile = "countries.geo.json"
)

// Dataset：一次加载得到的两份只读数据
type Dataset struct {
	Index      *CountryIndex
	Table      *CoordinateTable
	IndexStats LoadStats
	TableStats LoadStats
	Source     string
}

// Load：dir 为空时使用内置数据；否则从目录读取，单个文件缺失时回退到内置版本
func Load(dir string) (*Dataset, error) {
	if dir == "" {
		return LoadBundled()
	}
	return LoadDir(dir)
}

func LoadBundled() (*Dataset, error) {
	return build(bundledCountries, bundledCoordinates, "bundled")
}

func LoadDir(dir string) (*Dataset, error) {
	cb, err := readOrBundled(filepath.Join(dir, CountriesFile), bundledCountries)
	if err != nil {
		return nil, err
	}
	gb, err := readOrBundled(filepath.Join(dir, CoordinatesFile), bundledCoordinates)
	if err != nil {
		return nil, err
	}
	return build(cb, gb, dir)
}

func readOrBundled(path string, fallback []byte) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err == nil {
		return b, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		logger.L().Warn("geodata_file_missing", "path", path, "fallback", "bundled")
		return fallback, nil
	}
	return nil, fmt.Errorf("geodata: read %s: %w", path, err)
}

func build(countries, coords []byte, source string) (*Dataset, error) {
	ix, ist, err := ParseCountryIndex(bytes.NewReader(countries))
	if err != nil {
		return nil, err
	}
	tb, tst, err := ParseCoordinateTable(bytes.NewReader(coords))
	if err != nil {
		return nil, err
	}
	logger.L().Info("geodata_load_ok",
		"source", source,
		"countries", ist.Records,
		"cities", ist.Items,
		"coordinates", tst.Records,
		"skipped", ist.Skipped+tst.Skipped,
	)
	return &Dataset{Index: ix, Table: tb, IndexStats: ist, TableStats: tst, Source: source}, nil
}

// ParseCountryIndex：解析 {"国家": ["城市", ...], ...}
// 背景：以 token 流读取对象，保留键的声明顺序，城市反查的“首个命中”依赖此顺序。
// 约束：值不是数组时保留国家但城市集合为空；非字符串或空城市名被丢弃并计入 Skipped。
func ParseCountryIndex(r io.Reader) (*CountryIndex, LoadStats, error) {
	var st LoadStats
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, st, fmt.Errorf("geodata: read country index: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, st, fmt.Errorf("geodata: country index must be a JSON object, got %v", tok)
	}
	var recs []CountryRecord
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, st, fmt.Errorf("geodata: read country name: %w", err)
		}
		name, _ := kt.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, st, fmt.Errorf("geodata: read cities of %q: %w", name, err)
		}
		if name == "" {
			st.Skipped++
			continue
		}
		cities, bad := parseCityList(raw)
		st.Skipped += bad
		recs = append(recs, CountryRecord{Name: name, Cities: cities})
	}
	if _, err := dec.Token(); err != nil {
		return nil, st, fmt.Errorf("geodata: country index not terminated: %w", err)
	}
	ix := NewCountryIndex(recs)
	if ix.Len() == 0 {
		return nil, st, ErrNoCountries
	}
	st.Records = ix.Len()
	for _, n := range ix.order {
		st.Items += len(ix.cities[n])
	}
	return ix, st, nil
}

func parseCityList(raw json.RawMessage) ([]string, int) {
	var arr []any
	if err := json.Unmarshal(raw, &arr); err != nil {
		return nil, 1
	}
	bad := 0
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		s, ok := v.(string)
		if !ok || s == "" {
			bad++
			continue
		}
		out = append(out, s)
	}
	return out, bad
}

// ParseCoordinateTable：解析 {"ref_country_codes": [{country, latitude, longitude, ...}]}，也接受顶层数组
// 约束：缺少国家名、坐标非数值或越界的记录被丢弃；数值字符串（如 "12.5"）按数值处理
func ParseCoordinateTable(r io.Reader) (*CoordinateTable, LoadStats, error) {
	var st LoadStats
	var doc any
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, st, fmt.Errorf("geodata: read coordinate table: %w", err)
	}
	var items []any
	switch v := doc.(type) {
	case []any:
		items = v
	case map[string]any:
		arr, ok := v["ref_country_codes"].([]any)
		if !ok {
			return nil, st, errors.New("geodata: coordinate table has no ref_country_codes list")
		}
		items = arr
	default:
		return nil, st, fmt.Errorf("geodata: unexpected coordinate document %T", doc)
	}
	recs := make([]CoordinateRecord, 0, len(items))
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			st.Skipped++
			continue
		}
		rec, ok := parseCoordinateRecord(m)
		if !ok {
			st.Skipped++
			continue
		}
		recs = append(recs, rec)
	}
	tb := NewCoordinateTable(recs)
	if tb.Len() == 0 {
		return nil, st, ErrNoCoordinates
	}
	st.Records = tb.Len()
	st.Items = tb.Len()
	return tb, st, nil
}

func parseCoordinateRecord(m map[string]any) (CoordinateRecord, bool) {
	var rec CoordinateRecord
	rec.Country = getStr(m, "country")
	rec.Alpha2 = getStr(m, "alpha2")
	rec.Alpha3 = getStr(m, "alpha3")
	lat, ok1 := toFloat(m["latitude"])
	lng, ok2 := toFloat(m["longitude"])
	if rec.Country == "" || !ok1 || !ok2 {
		return rec, false
	}
	rec.Coordinate = Coordinate{Lat: lat, Lng: lng}
	return rec, rec.Coordinate.Valid()
}

func getStr(m map[string]any, k string) string {
	if v, ok := m[k].(string); ok {
		return v
	}
	return ""
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	}
	return 0, false
}
