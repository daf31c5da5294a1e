package main

import (
	"bytes"
	"testing"

	"clock-map/internal/geodata"

	"github.com/stretchr/testify/assert"
)

func TestPrintReport(t *testing.T) {
	ds := &geodata.Dataset{
		Index: geodata.NewCountryIndex([]geodata.CountryRecord{
			{Name: "Spain", Cities: []string{"Valencia"}},
			{Name: "Venezuela", Cities: []string{"Valencia"}},
			{Name: "Atlantis", Cities: []string{"Poseidonia"}},
		}),
		Table: geodata.NewCoordinateTable([]geodata.CoordinateRecord{
			{Country: "Spain", Coordinate: geodata.Coordinate{Lat: 40.4, Lng: -3.7}},
			{Country: "Venezuela", Coordinate: geodata.Coordinate{Lat: 6.4, Lng: -66.6}},
			{Country: "Iceland", Coordinate: geodata.Coordinate{Lat: 64.9, Lng: -19}},
		}),
		Source: "test",
	}
	var out bytes.Buffer
	printReport(&out, ds, geodata.Check(ds.Index, ds.Table))
	s := out.String()
	assert.Contains(t, s, "source: test\n")
	assert.Contains(t, s, "countries without coordinates (their cities never resolve): 1\n  Atlantis\n")
	assert.Contains(t, s, "coordinates without city list: 1\n  Iceland\n")
	assert.Contains(t, s, "  Valencia -> [Spain Venezuela] (first wins)\n")
	assert.Contains(t, s, "cities shadowed by a country name: 0\n")
}
