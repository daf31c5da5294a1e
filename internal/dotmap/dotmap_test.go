package dotmap

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clock-map/internal/geodata"
	"clock-map/internal/pins"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bundled(t *testing.T) *Descriptor {
	t.Helper()
	d, err := LoadDescriptor("")
	require.NoError(t, err)
	return d
}

func TestBundledDescriptor(t *testing.T) {
	d := bundled(t)
	assert.Equal(t, 52, d.Width)
	assert.Equal(t, 29, d.Height)
	assert.NotEmpty(t, d.Points)
	for _, p := range d.Points {
		assert.True(t, p.X >= 0 && p.X < d.Width && p.Y >= 0 && p.Y < d.Height)
	}
}

func TestParseDescriptorDropsOutOfRangeAndDuplicatePoints(t *testing.T) {
	src := `{"width":4,"height":3,"region":{"lat":{"min":-10,"max":10},"lng":{"min":-20,"max":20}},
		"points":[{"x":0,"y":0},{"x":0,"y":0},{"x":4,"y":0},{"x":-1,"y":2},{"x":3,"y":2}]}`
	d, err := ParseDescriptor(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []Point{{0, 0}, {3, 2}}, d.Points)
}

func TestParseDescriptorErrors(t *testing.T) {
	_, err := ParseDescriptor(strings.NewReader(`{"width":4,"height":3,"region":{"lat":{"min":-10,"max":10},"lng":{"min":-20,"max":20}},"points":[]}`))
	assert.ErrorIs(t, err, ErrEmptyDescriptor)

	_, err = ParseDescriptor(strings.NewReader(`{"width":0,"height":3}`))
	assert.Error(t, err)

	_, err = ParseDescriptor(strings.NewReader(`{"width":4,"height":3,"region":{"lat":{"min":10,"max":-10},"lng":{"min":-20,"max":20}},"points":[{"x":0,"y":0}]}`))
	assert.Error(t, err)

	_, err = ParseDescriptor(strings.NewReader(`not json`))
	assert.Error(t, err)
}

func TestLoadDescriptorFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"width":2,"height":2,"region":{"lat":{"min":-60,"max":60},"lng":{"min":-180,"max":180}},"points":[{"x":1,"y":1}]}`), 0o644))
	d, err := LoadDescriptor(path)
	require.NoError(t, err)
	assert.Equal(t, []Point{{1, 1}}, d.Points)

	_, err = LoadDescriptor(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLocate(t *testing.T) {
	d := bundled(t)
	land := make(map[Point]bool, len(d.Points))
	for _, p := range d.Points {
		land[p] = true
	}
	cases := map[string]struct {
		c    geodata.Coordinate
		want Point
	}{
		"Japan":     {geodata.Coordinate{Lat: 36.204824, Lng: 138.252924}, Point{46, 10}},
		"France":    {geodata.Coordinate{Lat: 46.227638, Lng: 2.213749}, Point{26, 8}},
		"Brazil":    {geodata.Coordinate{Lat: -14.235004, Lng: -51.92528}, Point{18, 19}},
		"Australia": {geodata.Coordinate{Lat: -25.274398, Lng: 133.775136}, Point{45, 21}},
	}
	for name, tc := range cases {
		got := d.Locate(tc.c)
		assert.Equal(t, tc.want, got, name)
		assert.True(t, land[got], name)
	}

	// 区域外的坐标夹到边缘格子
	assert.Equal(t, Point{26, 0}, d.Locate(geodata.Coordinate{Lat: 90, Lng: 0}))
	assert.Equal(t, Point{0, 28}, d.Locate(geodata.Coordinate{Lat: -90, Lng: -180}))
	assert.Equal(t, d.Width-1, d.Locate(geodata.Coordinate{Lat: 0, Lng: 180}).X)
}

func TestRenderIsDeterministic(t *testing.T) {
	r := NewRenderer(bundled(t), DefaultOptions)
	ps := []pins.Pin{
		{Name: "Tokyo", Coordinate: geodata.Coordinate{Lat: 36.204824, Lng: 138.252924}, Style: pins.DefaultStyle},
		{Name: "Paris", Coordinate: geodata.Coordinate{Lat: 46.227638, Lng: 2.213749}, Style: pins.DefaultStyle},
	}
	first := r.Render(ps)
	assert.Equal(t, first, r.Render(ps))

	svg := string(first)
	assert.True(t, strings.HasPrefix(svg, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 52 29"`))
	assert.True(t, strings.HasSuffix(svg, `</svg>`))
	assert.Contains(t, svg, `background-color: #0a0a0a`)
	assert.Contains(t, svg, `<g fill="#423B38">`)
	assert.Contains(t, svg, `<circle class="pin" cx="46.5" cy="10.5" r="0.4" fill="red"><title>Tokyo</title></circle>`)
	assert.Contains(t, svg, `<circle class="pin" cx="26.5" cy="8.5" r="0.4" fill="red"><title>Paris</title></circle>`)
	assert.Less(t, strings.Index(svg, "Tokyo"), strings.Index(svg, "Paris"))
	assert.Equal(t, len(r.Descriptor().Points)+2, strings.Count(svg, "<circle"))
}

func TestRenderWithoutPins(t *testing.T) {
	r := NewRenderer(bundled(t), DefaultOptions)
	svg := string(r.Render(nil))
	assert.NotContains(t, svg, `class="pin"`)
	assert.Equal(t, len(r.Descriptor().Points), strings.Count(svg, "<circle"))
}

func TestRenderHexagonAndEscaping(t *testing.T) {
	r := NewRenderer(bundled(t), Options{Shape: ShapeHexagon, DotColor: "#fff"})
	assert.Equal(t, DefaultOptions.DotRadius, r.Options().DotRadius)
	assert.Equal(t, DefaultOptions.Background, r.Options().Background)

	svg := string(r.Render([]pins.Pin{{Name: `A<B&"C"`, Coordinate: geodata.Coordinate{Lat: 0, Lng: 0}}}))
	assert.Equal(t, len(r.Descriptor().Points), strings.Count(svg, "<polygon"))
	assert.Contains(t, svg, `A&lt;B&amp;&#34;C&#34;`)
	// 零值样式回退到默认红色图钉
	assert.Contains(t, svg, `r="0.4" fill="red"`)
}

func TestUnknownShapeFallsBackToCircle(t *testing.T) {
	r := NewRenderer(bundled(t), Options{Shape: "triangle"})
	assert.Equal(t, ShapeCircle, r.Options().Shape)
}
