// Package reference loads the curated lookup tables used by country and region
// resolution. The tables are read once at start-up and treated as immutable.
package reference

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed reference.yaml
var embedded []byte

// CountryEntry seeds one row of the country/region mapping table.
type CountryEntry struct {
	Name   string `yaml:"name"`
	Code   string `yaml:"code"`
	Region string `yaml:"region"`
}

// AirlineOverride pins an airline to a country.
type AirlineOverride struct {
	Airline string `yaml:"airline"`
	Country string `yaml:"country"`
}

// Data is the full set of curated tables.
type Data struct {
	Countries        []CountryEntry    `yaml:"countries"`
	ExtraRegions     []CountryEntry    `yaml:"extra_regions"`
	AirlineOverrides []AirlineOverride `yaml:"airline_overrides"`
	Stopwords        []string          `yaml:"stopwords"`

	byName map[string]CountryEntry
}

// Default returns the tables compiled into the binary.
func Default() (*Data, error) {
	return Parse(embedded)
}

// Load reads the tables from path, or the embedded copy when path is empty.
func Load(path string) (*Data, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference file %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes YAML reference tables.
func Parse(raw []byte) (*Data, error) {
	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("failed to parse reference tables: %w", err)
	}

	d.byName = make(map[string]CountryEntry, len(d.Countries))
	for i, c := range d.Countries {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("reference country #%d has no name", i+1)
		}
		if _, dup := d.byName[name]; dup {
			return nil, fmt.Errorf("reference country %q listed twice", name)
		}
		d.byName[name] = c
	}
	for i, o := range d.AirlineOverrides {
		if strings.TrimSpace(o.Airline) == "" || strings.TrimSpace(o.Country) == "" {
			return nil, fmt.Errorf("airline override #%d is incomplete", i+1)
		}
	}
	return &d, nil
}

// ISOCode returns the curated ISO alpha-2 code for an exact country name.
func (d *Data) ISOCode(country string) (string, bool) {
	c, ok := d.byName[strings.TrimSpace(country)]
	if !ok || c.Code == "" {
		return "", false
	}
	return c.Code, true
}

// DefaultRegion returns the curated region for an exact country name.
func (d *Data) DefaultRegion(country string) (string, bool) {
	c, ok := d.byName[strings.TrimSpace(country)]
	if !ok || c.Region == "" {
		return "", false
	}
	return c.Region, true
}

// StopwordSet returns the stopwords as a set, uppercased.
func (d *Data) StopwordSet() map[string]struct{} {
	set := make(map[string]struct{}, len(d.Stopwords))
	for _, s := range d.Stopwords {
		set[strings.ToUpper(strings.TrimSpace(s))] = struct{}{}
	}
	return set
}
