// Copyright 2016 Patrick Brosi
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package router

import (
	"github.com/kinoaccess/kinoaccess/geo"
	"github.com/patrickbr/gtfsparser"
	"github.com/patrickbr/gtfsparser/gtfs"
	"github.com/paulmach/orb"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Station is a stop near some point
type Station struct {
	Name     string
	ID       string
	Point    orb.Point
	Distance float64
}

// Stations indexes the stops of a feed by name. Stops are kept in id order,
// the first stop of a name represents all stops of that name.
type Stations struct {
	stops  []*gtfs.Stop
	byName map[string][]int
}

// NewStations indexes all stops of a feed
func NewStations(feed *gtfsparser.Feed) *Stations {
	ids := maps.Keys(feed.Stops)
	slices.Sort(ids)

	ret := &Stations{
		stops:  make([]*gtfs.Stop, 0, len(ids)),
		byName: make(map[string][]int),
	}

	for _, id := range ids {
		s := feed.Stops[id]
		ret.byName[s.Name] = append(ret.byName[s.Name], len(ret.stops))
		ret.stops = append(ret.stops, s)
	}

	return ret
}

// Len returns the number of stops
func (st *Stations) Len() int {
	return len(st.stops)
}

// Point returns the position of the first stop with the given name
func (st *Stations) Point(name string) (orb.Point, bool) {
	idx, ok := st.byName[name]
	if !ok {
		return orb.Point{}, false
	}
	return stopPoint(st.stops[idx[0]]), true
}

// Has reports whether a stop with this name exists
func (st *Stations) Has(name string) bool {
	_, ok := st.byName[name]
	return ok
}

// ClosestStations returns the n stops nearest to p, in ascending distance.
// Of several stops sharing a name only the nearest is returned.
func (st *Stations) ClosestStations(p orb.Point, n int) []Station {
	all := make([]Station, 0, len(st.stops))
	for _, s := range st.stops {
		sp := stopPoint(s)
		all = append(all, Station{Name: s.Name, ID: s.Id, Point: sp, Distance: geo.Haversine(p, sp)})
	}

	slices.SortStableFunc(all, func(a, b Station) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		}
		return 0
	})

	seen := make(map[string]bool)
	ret := make([]Station, 0, n)
	for _, s := range all {
		if len(ret) == n {
			break
		}
		if seen[s.Name] {
			continue
		}
		seen[s.Name] = true
		ret = append(ret, s)
	}

	return ret
}

func stopPoint(s *gtfs.Stop) orb.Point {
	return orb.Point{float64(s.Lon), float64(s.Lat)}
}
