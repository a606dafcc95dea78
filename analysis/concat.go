// Copyright 2016 Patrick Brosi
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package analysis

import (
	"github.com/kinoaccess/kinoaccess/selection"
)

// INKAR are the municipality indicators attached to concatenated rows
type INKAR struct {
	Cinemas           selection.Number `csv:"cinemas"`
	Population        selection.Number `csv:"population aggr"`
	PopulationDensity selection.Number `csv:"population density"`
	BuiltUpArea       selection.Number `csv:"built-up area"`
	TransitDepartures selection.Number `csv:"transit departures"`
	TransitStops      selection.Number `csv:"transit stops"`
}

func inkarOf(ind *selection.Indicators) INKAR {
	if ind == nil {
		return INKAR{}
	}
	return INKAR{
		Cinemas:           ind.Cinemas,
		Population:        ind.Population,
		PopulationDensity: ind.PopulationDensity,
		BuiltUpArea:       ind.BuiltUpArea,
		TransitDepartures: ind.TransitDepartures,
		TransitStops:      ind.TransitStops,
	}
}

// AreaInput are the variables of one studied area
type AreaInput struct {
	Area       string
	Level      string
	LevelDummy int
	Variables  []*Variables
	Indicators *selection.Indicators
}

// Row is a start point and cinema row of the table of all areas
type Row struct {
	Variables
	Level              string   `csv:"level"`
	LevelDummy         int      `csv:"level_dummy"`
	OSMCinemas         int      `csv:"osm_cinemas"`
	AreaAverageChanges *float64 `csv:"area average changes,omitempty"`
	INKAR
}

// AreaRow is an area and hour row of the table of all areas
type AreaRow struct {
	AreaHour
	Level      string `csv:"level"`
	LevelDummy int    `csv:"level_dummy"`
	OSMCinemas int    `csv:"osm_cinemas"`
	INKAR
}

func osmCinemas(vars []*Variables) int {
	names := make(map[string]struct{})
	for _, v := range vars {
		names[v.Cinema] = struct{}{}
	}
	return len(names)
}

// Concat joins the variables of all areas with their level and indicators
func Concat(areas []AreaInput) []*Row {
	ret := make([]*Row, 0)
	for _, a := range areas {
		changes := make([]*float64, len(a.Variables))
		for i, v := range a.Variables {
			changes[i] = v.AverageChanges
		}
		areaChanges := mean(changes)
		cinemas := osmCinemas(a.Variables)
		inkar := inkarOf(a.Indicators)

		for _, v := range a.Variables {
			ret = append(ret, &Row{
				Variables:          *v,
				Level:              a.Level,
				LevelDummy:         a.LevelDummy,
				OSMCinemas:         cinemas,
				AreaAverageChanges: areaChanges,
				INKAR:              inkar,
			})
		}
	}
	return ret
}

// ConcatAreas joins the per hour aggregates of all areas with their level
// and indicators
func ConcatAreas(areas []AreaInput) []*AreaRow {
	ret := make([]*AreaRow, 0)
	for _, a := range areas {
		cinemas := osmCinemas(a.Variables)
		inkar := inkarOf(a.Indicators)
		for _, ah := range Aggregate(a.Area, a.Variables) {
			ret = append(ret, &AreaRow{
				AreaHour:   *ah,
				Level:      a.Level,
				LevelDummy: a.LevelDummy,
				OSMCinemas: cinemas,
				INKAR:      inkar,
			})
		}
	}
	return ret
}
