package geodata

import _ "embed"

//go:embed data/countries.json
var bundledCountries []byte

//go:embed data/countries.geo.json
var bundledCoordinates []byte
