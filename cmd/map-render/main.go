// 离线渲染工具：把一组地名渲染为点阵地图 SVG，名称来自 -names 或标准输入（每行一个）
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"clock-map/internal/dotmap"
	"clock-map/internal/geodata"
	"clock-map/internal/logger"
	"clock-map/internal/pins"
	"clock-map/internal/utils"
)

func readNames(r io.Reader) ([]string, error) {
	var names []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if s := strings.TrimRight(sc.Text(), "\r"); s != "" {
			names = append(names, s)
		}
	}
	return names, sc.Err()
}

func main() {
	utils.LoadEnvFiles()
	l := logger.Setup()
	namesFlag := flag.String("names", "", "comma separated place names; read stdin lines when empty")
	out := flag.String("out", "-", "output file, - for stdout")
	dir := flag.String("geodata", utils.EnvString("GEODATA_DIR", ""), "directory with countries.json and countries.geo.json")
	desc := flag.String("descriptor", utils.EnvString("MAP_DESCRIPTOR_PATH", ""), "dotted map descriptor")
	shape := flag.String("shape", utils.EnvString("MAP_SHAPE", dotmap.ShapeCircle), "circle or hexagon")
	color := flag.String("pin-color", utils.EnvString("PIN_COLOR", pins.DefaultStyle.Color), "pin color")
	radius := flag.Float64("pin-radius", utils.EnvFloat("PIN_RADIUS", pins.DefaultStyle.Radius), "pin radius in grid cells")
	flag.Parse()

	var names []string
	if *namesFlag != "" {
		names = strings.Split(*namesFlag, ",")
	} else {
		var err error
		if names, err = readNames(os.Stdin); err != nil {
			l.Error("stdin_read_error", "err", err)
			os.Exit(1)
		}
	}
	ds, err := geodata.Load(*dir)
	if err != nil {
		l.Error("geodata_load_error", "err", err)
		os.Exit(1)
	}
	d, err := dotmap.LoadDescriptor(*desc)
	if err != nil {
		l.Error("descriptor_load_error", "err", err)
		os.Exit(1)
	}
	res := pins.NewResolverFromDataset(ds)
	for _, r := range res.ResolveAll(names) {
		if !r.OK() {
			l.Warn("pin_unresolved", "name", r.Name)
		}
	}
	rdr := dotmap.NewRenderer(d, dotmap.Options{
		DotRadius:  utils.EnvFloat("MAP_DOT_RADIUS", dotmap.DefaultOptions.DotRadius),
		DotColor:   utils.EnvString("MAP_DOT_COLOR", dotmap.DefaultOptions.DotColor),
		Shape:      *shape,
		Background: utils.EnvString("MAP_BACKGROUND", dotmap.DefaultOptions.Background),
	})
	svg := rdr.Render(res.Pins(names, pins.Style{Color: *color, Radius: *radius}))
	if *out == "-" {
		_, _ = os.Stdout.Write(svg)
		fmt.Println()
		return
	}
	if err := os.WriteFile(*out, svg, 0o644); err != nil {
		l.Error("svg_write_error", "path", *out, "err", err)
		os.Exit(1)
	}
	l.Info("svg_written", "path", *out, "bytes", len(svg), "names", len(names))
}
