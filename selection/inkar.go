// Copyright 2016 Patrick Brosi
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

// Package selection joins INKAR municipality statistics with the VG5000
// boundaries and the OSM cinemas to select the studied areas.
package selection

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/kinoaccess/kinoaccess/admin"
)

// Number is a numeric INKAR value. Empty or non-numeric cells are missing.
type Number struct {
	Value float64
	Valid bool
}

// Num returns a valid Number
func Num(v float64) Number {
	return Number{Value: v, Valid: true}
}

// UnmarshalCSV parses a cell, accepting a decimal comma
func (n *Number) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		*n = Number{}
		return nil
	}
	*n = Num(v)
	return nil
}

// MarshalCSV writes an empty cell for missing values
func (n Number) MarshalCSV() (string, error) {
	if !n.Valid {
		return "", nil
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64), nil
}

// Float returns the value, NaN if missing
func (n Number) Float() float64 {
	if !n.Valid {
		return math.NaN()
	}
	return n.Value
}

// Indicators are the INKAR indicators of one municipality
type Indicators struct {
	ID                 string `csv:"Kennziffer"`
	Name               string `csv:"Raumeinheit"`
	Aggregate          string `csv:"Aggregat"`
	Cinemas            Number `csv:"Kinos"`
	Population         Number `csv:"Bevölkerung"`
	PopulationDensity  Number `csv:"Einwohnerdichte"`
	BuiltUpArea        Number `csv:"Siedlungs- und Verkehrsfläche"`
	TransitDepartures  Number `csv:"ÖV-Abfahrten"`
	TransitStops       Number `csv:"ÖV-Haltestellen"`
}

// INKARFile is the INKAR export of a centrality level
func INKARFile(dir, level string) string {
	return filepath.Join(dir, fmt.Sprintf("cinema-population_%s.csv", level))
}

// ReadINKAR reads an INKAR CSV export
func ReadINKAR(r io.Reader) ([]*Indicators, error) {
	rows := []*Indicators{}
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("reading INKAR table: %w", err)
	}
	for _, row := range rows {
		row.Name = strings.TrimSpace(row.Name)
	}
	return rows, nil
}

// ReadINKARFile reads the INKAR CSV export at path
func ReadINKARFile(path string) ([]*Indicators, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadINKAR(f)
}

// Lookup returns the indicators of the municipality called name
func Lookup(rows []*Indicators, name string) (*Indicators, bool) {
	for _, r := range rows {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}

// Municipality is an INKAR row joined with its VG5000 boundary
type Municipality struct {
	*Indicators
	Unit *admin.Unit

	OSMCinemas          *int
	CinemasAccuracy     *float64
	PopulationPerCinema *float64
}

// ImportINKAR joins the INKAR rows with the municipalities of the same
// name. Rows without a municipality are returned as unmatched, a name
// shared by several municipalities yields one joined row for each.
func ImportINKAR(rows []*Indicators, units *admin.Units) ([]*Municipality, []string) {
	ret := make([]*Municipality, 0, len(rows))
	unmatched := make([]string, 0)

	for _, row := range rows {
		if !units.Has(row.Name) {
			unmatched = append(unmatched, row.Name)
			continue
		}
		for i := 0; ; i++ {
			u, err := units.Lookup(row.Name, i)
			if err != nil {
				break
			}
			ret = append(ret, &Municipality{Indicators: row, Unit: u})
		}
	}

	return ret, unmatched
}
