package dotmap

import (
	"bytes"
	"encoding/xml"
	"math"
	"strconv"

	"clock-map/internal/pins"
)

const (
	ShapeCircle  = "circle"
	ShapeHexagon = "hexagon"
)

// Options：背景点样式
type Options struct {
	DotRadius  float64
	DotColor   string
	Shape      string
	Background string
}

// DefaultOptions：深色背景上的暗色圆点
var DefaultOptions = Options{DotRadius: 0.4, DotColor: "#423B38", Shape: ShapeCircle, Background: "#0a0a0a"}

// Renderer：持有只读背景网格，可并发使用
type Renderer struct {
	desc *Descriptor
	opts Options
}

func NewRenderer(d *Descriptor, opts Options) *Renderer {
	if opts.DotRadius <= 0 {
		opts.DotRadius = DefaultOptions.DotRadius
	}
	if opts.DotColor == "" {
		opts.DotColor = DefaultOptions.DotColor
	}
	if opts.Shape != ShapeHexagon {
		opts.Shape = ShapeCircle
	}
	if opts.Background == "" {
		opts.Background = DefaultOptions.Background
	}
	return &Renderer{desc: d, opts: opts}
}

func (r *Renderer) Descriptor() *Descriptor { return r.desc }
func (r *Renderer) Options() Options        { return r.opts }

// Render：输出 SVG 文档；相同输入得到逐字节相同的输出
// 约束：图钉吸附到最近格子中心，按输入顺序绘制在背景点之上
func (r *Renderer) Render(ps []pins.Pin) []byte {
	d := r.desc
	var b bytes.Buffer
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 `)
	b.WriteString(strconv.Itoa(d.Width))
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(d.Height))
	b.WriteString(`" style="background-color: `)
	writeEscaped(&b, r.opts.Background)
	b.WriteString(`">`)
	b.WriteString(`<rect width="100%" height="100%" fill="`)
	writeEscaped(&b, r.opts.Background)
	b.WriteString(`"/>`)
	b.WriteString(`<g fill="`)
	writeEscaped(&b, r.opts.DotColor)
	b.WriteString(`">`)
	for _, p := range d.Points {
		r.writeDot(&b, float64(p.X)+0.5, float64(p.Y)+0.5, r.opts.DotRadius)
	}
	b.WriteString(`</g>`)
	for _, pin := range ps {
		cell := d.Locate(pin.Coordinate)
		radius := pin.Style.Radius
		if radius <= 0 {
			radius = pins.DefaultStyle.Radius
		}
		color := pin.Style.Color
		if color == "" {
			color = pins.DefaultStyle.Color
		}
		b.WriteString(`<circle class="pin" cx="`)
		b.WriteString(fmtFloat(float64(cell.X) + 0.5))
		b.WriteString(`" cy="`)
		b.WriteString(fmtFloat(float64(cell.Y) + 0.5))
		b.WriteString(`" r="`)
		b.WriteString(fmtFloat(radius))
		b.WriteString(`" fill="`)
		writeEscaped(&b, color)
		b.WriteString(`">`)
		if pin.Name != "" {
			b.WriteString(`<title>`)
			writeEscaped(&b, pin.Name)
			b.WriteString(`</title>`)
		}
		b.WriteString(`</circle>`)
	}
	b.WriteString(`</svg>`)
	return b.Bytes()
}

func (r *Renderer) writeDot(b *bytes.Buffer, cx, cy, radius float64) {
	if r.opts.Shape == ShapeHexagon {
		b.WriteString(`<polygon points="`)
		for i := 0; i < 6; i++ {
			a := math.Pi / 3 * float64(i)
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(fmtFloat(round3(cx + radius*math.Cos(a))))
			b.WriteByte(',')
			b.WriteString(fmtFloat(round3(cy + radius*math.Sin(a))))
		}
		b.WriteString(`"/>`)
		return
	}
	b.WriteString(`<circle cx="`)
	b.WriteString(fmtFloat(cx))
	b.WriteString(`" cy="`)
	b.WriteString(fmtFloat(cy))
	b.WriteString(`" r="`)
	b.WriteString(fmtFloat(radius))
	b.WriteString(`"/>`)
}

func writeEscaped(b *bytes.Buffer, s string) {
	_ = xml.EscapeText(b, []byte(s))
}

func fmtFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func round3(f float64) float64 { return math.Round(f*1000) / 1000 }
