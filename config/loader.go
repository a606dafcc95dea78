// Copyright 2016 Patrick Brosi
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/patrickbr/gtfsparser/gtfs"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

// LevelOrder is the order in which centrality levels are processed
var LevelOrder = []string{"top", "mid", "base"}

// ErrUnknownLevel is returned for a centrality level not in LevelOrder
var ErrUnknownLevel = errors.New("unknown centrality level")

var weekdayIdx = map[string]int{"Sun": 0, "Mon": 1, "Tue": 2, "Wed": 3, "Thu": 4, "Fri": 5, "Sat": 6}

// Load reads, defaults and validates the configuration at path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML configuration
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	cfg.applyDefaults()

	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if len(cfg.Date) > 0 {
		if _, err := ParseDate(cfg.Date); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		if d, err := time.Parse("20060102", cfg.Date); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		} else if int(d.Weekday()) != cfg.WeekdayIndex() {
			return nil, fmt.Errorf("invalid config: date %s is a %s, not a %s", cfg.Date, d.Weekday(), cfg.Weekday)
		}
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Paths.Data == "" {
		c.Paths.Data = "data"
	}
	if c.Paths.Results == "" {
		c.Paths.Results = "results"
	}
	if c.Paths.Images == "" {
		c.Paths.Images = "images"
	}
	if c.Paths.INKAR == "" {
		c.Paths.INKAR = filepath.Join(c.Paths.Data, "inkar")
	}
	if c.Paths.GTFS == "" {
		c.Paths.GTFS = filepath.Join(c.Paths.Data, "gtfs_files")
	}
	if c.Paths.OSM == "" {
		c.Paths.OSM = filepath.Join(c.Paths.Data, "osm")
	}
	if c.Paths.Admin == "" {
		c.Paths.Admin = filepath.Join(c.Paths.Data, "administrative_geographic_data")
	}
	if c.Weekday == "" {
		c.Weekday = "Sat"
	}
	if c.BatchSize == 0 {
		c.BatchSize = 10
	}
	if c.BatchCount == 0 {
		c.BatchCount = 10
	}
	if c.StationCount == 0 {
		c.StationCount = 10
	}
	if c.Transfer.MaxDistance == 0 {
		c.Transfer.MaxDistance = 200
	}
	if c.Transfer.MinTransferTime == 0 {
		c.Transfer.MinTransferTime = 300
	}
	if c.Transfer.WalkSpeed == 0 {
		c.Transfer.WalkSpeed = 1.2
	}
	if c.ORS.BaseURL == "" {
		c.ORS.BaseURL = "http://localhost:8082/ors"
	}
	if c.ORS.TimeoutMS == 0 {
		c.ORS.TimeoutMS = 30000
	}
	if c.ORS.Retries == nil {
		r := DefaultRetries
		c.ORS.Retries = &r
	}
	if c.ORS.CacheSize == 0 {
		c.ORS.CacheSize = 10000
	}
	if c.ORS.Parallelism == 0 {
		c.ORS.Parallelism = 4
	}
	if c.LevelDummy == nil {
		c.LevelDummy = map[string]int{"top": 3, "mid": 2, "base": 1}
	}
}

// Areas returns the municipalities of the given levels, in level order. An
// empty level list selects all configured levels.
func (c *Config) Areas(levels ...string) []string {
	return areasOf(c.Levels, levels)
}

// ValidAreas is like Areas, but restricted to the areas marked valid. If no
// valid subset is configured, all areas are valid.
func (c *Config) ValidAreas(levels ...string) []string {
	if len(c.Valid) == 0 {
		return c.Areas(levels...)
	}
	return areasOf(c.Valid, levels)
}

// CheckLevels fails on the first level not in LevelOrder
func CheckLevels(levels []string) error {
	for _, l := range levels {
		if !slices.Contains(LevelOrder, l) {
			return fmt.Errorf("%w %q, expected one of %s", ErrUnknownLevel, l, strings.Join(LevelOrder, ", "))
		}
	}
	return nil
}

func areasOf(m map[string][]string, levels []string) []string {
	if len(levels) == 0 {
		levels = LevelOrder
	}
	ret := make([]string, 0)
	for _, l := range levels {
		ret = append(ret, m[l]...)
	}
	return ret
}

// LevelOf returns the centrality level an area belongs to
func (c *Config) LevelOf(area string) (string, bool) {
	for _, l := range LevelOrder {
		for _, a := range c.Levels[l] {
			if a == area {
				return l, true
			}
		}
	}
	return "", false
}

// ExtractedName returns the name under which the GTFS and OSM extracts of
// an area are stored. Names containing spaces or brackets are renamed.
func (c *Config) ExtractedName(area string) string {
	if n, ok := c.Extracted[area]; ok {
		return n
	}
	return area
}

// DuplicateIndex returns which of several equally named municipalities is
// meant by area
func (c *Config) DuplicateIndex(area string) int {
	return c.Duplicates[area]
}

// TimeString joins the departure hours, e.g. "15-18-21"
func (c *Config) TimeString() string {
	parts := make([]string, len(c.Times))
	for i, t := range c.Times {
		parts[i] = strconv.Itoa(t)
	}
	return strings.Join(parts, "-")
}

// TimesDate is the file name infix for the configured hours and weekday,
// e.g. "15-18-21_Sat"
func (c *Config) TimesDate() string {
	return c.TimeString() + "_" + c.Weekday
}

// WeekdayIndex returns the weekday as time.Weekday compatible index
func (c *Config) WeekdayIndex() int {
	return weekdayIdx[c.Weekday]
}

// GTFSDate returns the study date as GTFS date, if one is configured
func (c *Config) GTFSDate() (gtfs.Date, bool) {
	if len(c.Date) == 0 {
		return gtfs.Date{}, false
	}
	d, err := ParseDate(c.Date)
	return d, err == nil
}

// FilteredFeedName returns the name of the extracted, filtered GTFS feed of
// an area (without .zip)
func (c *Config) FilteredFeedName(area string) string {
	return fmt.Sprintf("%s_%s_filtered", c.ExtractedName(area), c.Feed)
}

// ParseDate parses a YYYYMMDD date
func ParseDate(str string) (gtfs.Date, error) {
	var day, month, year int
	var e error
	if len(str) != 8 {
		e = fmt.Errorf("only has %d characters, expected 8", len(str))
	}
	if e == nil {
		day, e = strconv.Atoi(str[6:8])
	}
	if e == nil {
		month, e = strconv.Atoi(str[4:6])
	}
	if e == nil {
		year, e = strconv.Atoi(str[0:4])
	}

	if e == nil && (day < 1 || day > 31) {
		e = fmt.Errorf("day must be in the range [1, 31]")
	}

	if e == nil && (month < 1 || month > 12) {
		e = fmt.Errorf("month must be in the range [1, 12]")
	}

	if e == nil && (year < 1900 || year > (1900+255)) {
		e = fmt.Errorf("date must be in the range [19000101, 21551231]")
	}

	if e != nil {
		return gtfs.Date{}, fmt.Errorf("expected YYYYMMDD date, found '%s' (%w)", str, e)
	}

	return gtfs.NewDate(uint8(day), uint8(month), uint16(year)), nil
}
