package geo

import "strings"

// Region is one of the fixed world-region buckets.
type Region string

const (
	Europe       Region = "Europe"
	Africa       Region = "Africa"
	Asia         Region = "Asia"
	MiddleEast   Region = "Middle East"
	NorthAmerica Region = "North America"
	SouthAmerica Region = "South America"
	Caribbean    Region = "Caribbean"
	Oceania      Region = "Oceania"
)

// Regions lists every valid region.
var Regions = []Region{Europe, Africa, Asia, MiddleEast, NorthAmerica, SouthAmerica, Caribbean, Oceania}

// ParseRegion matches s against the region names, ignoring case and surrounding space.
func ParseRegion(s string) (Region, bool) {
	s = strings.TrimSpace(s)
	for _, r := range Regions {
		if strings.EqualFold(s, string(r)) {
			return r, true
		}
	}
	return "", false
}
