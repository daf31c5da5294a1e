// 数据集一致性检查：列出两份数据集之间的差异，这些名称在地图上会被静默丢弃
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"clock-map/internal/geodata"
	"clock-map/internal/logger"
	"clock-map/internal/utils"
)

func printReport(w io.Writer, ds *geodata.Dataset, rep geodata.Report) {
	fmt.Fprintf(w, "source: %s\n", ds.Source)
	fmt.Fprintf(w, "countries: %d (skipped %d), coordinates: %d (skipped %d)\n",
		ds.Index.Len(), ds.IndexStats.Skipped, ds.Table.Len(), ds.TableStats.Skipped)
	section := func(title string, xs []string) {
		fmt.Fprintf(w, "%s: %d\n", title, len(xs))
		for _, x := range xs {
			fmt.Fprintf(w, "  %s\n", x)
		}
	}
	section("countries without coordinates (their cities never resolve)", rep.MissingCoordinates)
	section("coordinates without city list", rep.MissingCities)
	grouped := func(title string, m map[string][]string, note string) {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintf(w, "%s: %d\n", title, len(keys))
		for _, k := range keys {
			fmt.Fprintf(w, "  %s -> %v %s\n", k, m[k], note)
		}
	}
	grouped("cities listed under several countries", rep.CityCollisions, "(first wins)")
	grouped("cities shadowed by a country name", rep.ShadowedCities, "(country wins)")
}

func main() {
	utils.LoadEnvFiles()
	l := logger.Setup()
	dir := flag.String("geodata", utils.EnvString("GEODATA_DIR", ""), "directory with countries.json and countries.geo.json")
	asJSON := flag.Bool("json", false, "print the report as JSON")
	strict := flag.Bool("strict", false, "exit with status 2 when the datasets disagree")
	flag.Parse()

	ds, err := geodata.Load(*dir)
	if err != nil {
		l.Error("geodata_load_error", "err", err)
		os.Exit(1)
	}
	rep := geodata.Check(ds.Index, ds.Table)
	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(rep)
	} else {
		printReport(os.Stdout, ds, rep)
	}
	if *strict && !rep.Clean() {
		os.Exit(2)
	}
}
