// Copyright 2016 Patrick Brosi
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package analysis

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrUnknownColumn is returned for a column not present in a table
var ErrUnknownColumn = errors.New("unknown column")

// Table holds numeric columns of equal length. Missing values are NaN.
type Table struct {
	Columns []string
	values  map[string][]float64
}

// NewTable returns an empty table
func NewTable() *Table {
	return &Table{values: make(map[string][]float64)}
}

// Add appends a column
func (t *Table) Add(name string, vals []float64) {
	if _, ok := t.values[name]; !ok {
		t.Columns = append(t.Columns, name)
	}
	t.values[name] = vals
}

// Column returns the values of a column
func (t *Table) Column(name string) ([]float64, bool) {
	v, ok := t.values[name]
	return v, ok
}

// Correlation is the Pearson correlation of a variable with a dependent
type Correlation struct {
	Variable    string  `csv:"variable"`
	Dependent   string  `csv:"dependent"`
	Correlation float64 `csv:"correlation"`
	PValue      float64 `csv:"p_value"`
	N           int     `csv:"n"`
}

// Correlate computes the Pearson correlation and its two-sided p-value of
// every dependent with every other column. Rows where either value is
// missing are left out of a pair.
func Correlate(t *Table, dependents []string) ([]Correlation, error) {
	ret := make([]Correlation, 0)
	for _, dep := range dependents {
		y, ok := t.Column(dep)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, dep)
		}
		for _, col := range t.Columns {
			if col == dep {
				continue
			}
			x, _ := t.Column(col)
			r, p, n := pearson(x, y)
			ret = append(ret, Correlation{Variable: col, Dependent: dep, Correlation: r, PValue: p, N: n})
		}
	}
	return ret, nil
}

func pearson(x, y []float64) (r, p float64, n int) {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if i >= len(y) || math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}

	n = len(xs)
	if n < 2 {
		return math.NaN(), math.NaN(), n
	}
	if n == 2 {
		// two points always lie on a line
		dx, dy := xs[1]-xs[0], ys[1]-ys[0]
		if dx == 0 || dy == 0 {
			return math.NaN(), math.NaN(), n
		}
		return sign(dx) * sign(dy), 1, n
	}

	r = stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) {
		return r, math.NaN(), n
	}
	if math.Abs(r) >= 1 {
		return r, 0, n
	}

	df := float64(n - 2)
	tv := r * math.Sqrt(df/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p = 2 * dist.Survival(math.Abs(tv))

	return r, p, n
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

func values(n int, get func(i int) *float64) []float64 {
	ret := make([]float64, n)
	for i := range ret {
		if v := get(i); v != nil {
			ret[i] = *v
		} else {
			ret[i] = math.NaN()
		}
	}
	return ret
}

func numbers(n int, get func(i int) float64) []float64 {
	ret := make([]float64, n)
	for i := range ret {
		ret[i] = get(i)
	}
	return ret
}

func (t *Table) addINKAR(n int, get func(i int) INKAR) {
	t.Add("cinemas", numbers(n, func(i int) float64 { return get(i).Cinemas.Float() }))
	t.Add("population aggr", numbers(n, func(i int) float64 { return get(i).Population.Float() }))
	t.Add("population density", numbers(n, func(i int) float64 { return get(i).PopulationDensity.Float() }))
	t.Add("built-up area", numbers(n, func(i int) float64 { return get(i).BuiltUpArea.Float() }))
	t.Add("transit departures", numbers(n, func(i int) float64 { return get(i).TransitDepartures.Float() }))
	t.Add("transit stops", numbers(n, func(i int) float64 { return get(i).TransitStops.Float() }))
}

// RowTable returns the numeric columns of start point rows
func RowTable(rows []*Row) *Table {
	n := len(rows)
	t := NewTable()
	t.Add("distance_start_cinema", numbers(n, func(i int) float64 { return rows[i].DistanceToCinema }))
	t.Add("distance_start_centroid", numbers(n, func(i int) float64 { return rows[i].DistanceToCentroid }))
	t.Add("car_duration", values(n, func(i int) *float64 { return rows[i].CarDuration }))
	t.Add("foot_duration", values(n, func(i int) *float64 { return rows[i].FootDuration }))
	t.Add("average duration", values(n, func(i int) *float64 { return rows[i].AverageDuration }))
	t.Add("average speed", values(n, func(i int) *float64 { return rows[i].AverageSpeed }))
	t.Add("average duration difference to car", values(n, func(i int) *float64 { return rows[i].DifferenceToCar }))
	t.Add("average transit duration", values(n, func(i int) *float64 { return rows[i].AverageTransitDuration }))
	t.Add("average walk share", values(n, func(i int) *float64 { return rows[i].AverageWalkShare }))
	t.Add("average changes", values(n, func(i int) *float64 { return rows[i].AverageChanges }))
	t.Add("area average changes", values(n, func(i int) *float64 { return rows[i].AreaAverageChanges }))
	t.Add("level_dummy", numbers(n, func(i int) float64 { return float64(rows[i].LevelDummy) }))
	t.Add("osm_cinemas", numbers(n, func(i int) float64 { return float64(rows[i].OSMCinemas) }))
	t.addINKAR(n, func(i int) INKAR { return rows[i].INKAR })
	return t
}

// AreaTable returns the numeric columns of area rows
func AreaTable(rows []*AreaRow) *Table {
	n := len(rows)
	t := NewTable()
	t.Add("average speed", values(n, func(i int) *float64 { return rows[i].AverageSpeed }))
	t.Add("average duration", values(n, func(i int) *float64 { return rows[i].AverageDuration }))
	t.Add("average transit time", values(n, func(i int) *float64 { return rows[i].AverageTransitTime }))
	t.Add("average walk time", values(n, func(i int) *float64 { return rows[i].AverageWalkTime }))
	t.Add("average walk share", values(n, func(i int) *float64 { return rows[i].AverageWalkShare }))
	t.Add("walk share under 40%", values(n, func(i int) *float64 { return rows[i].WalkShareUnder40 }))
	t.Add("average amount of changes", values(n, func(i int) *float64 { return rows[i].AverageChanges }))
	t.Add("time difference to car", values(n, func(i int) *float64 { return rows[i].DifferenceToCar }))
	t.Add("transit is reasonable", numbers(n, func(i int) float64 { return rows[i].TransitReasonable }))
	t.Add("out of", numbers(n, func(i int) float64 { return float64(rows[i].OutOf) }))
	t.Add("level_dummy", numbers(n, func(i int) float64 { return float64(rows[i].LevelDummy) }))
	t.Add("osm_cinemas", numbers(n, func(i int) float64 { return float64(rows[i].OSMCinemas) }))
	t.addINKAR(n, func(i int) INKAR { return rows[i].INKAR })
	return t
}
