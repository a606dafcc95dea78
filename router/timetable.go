// Copyright 2016 Patrick Brosi
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

// Package router computes earliest-arrival transit itineraries on a GTFS
// feed using a connection scan.
package router

import (
	"math"
	"time"

	"github.com/kinoaccess/kinoaccess/geo"
	"github.com/patrickbr/gtfsparser"
	"github.com/patrickbr/gtfsparser/gtfs"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Options control which services run and how stops are linked by foot
type Options struct {
	// Weekday is the service day, time.Sunday through time.Saturday
	Weekday time.Weekday

	// Date restricts services to those active on this day, if UseDate is set
	Date    gtfs.Date
	UseDate bool

	// footpaths connect distinct stops at most MaxTransferDist meters apart,
	// walking takes max(MinTransferTime, dist / WalkSpeed) seconds
	MaxTransferDist float64
	MinTransferTime int
	WalkSpeed       float64

	Logger *zap.Logger
}

// DefaultOptions are the transfer parameters of the study
func DefaultOptions(wd time.Weekday) Options {
	return Options{
		Weekday:         wd,
		MaxTransferDist: 200,
		MinTransferTime: 300,
		WalkSpeed:       1.2,
	}
}

type connection struct {
	from, to int
	dep, arr int
	trip     int
	seq      int // index of the departure stop time within the trip
}

type footpath struct {
	to  int
	dur int
}

// Timetable holds all connections of one service day ordered by departure
type Timetable struct {
	*Stations

	stopIdx   map[*gtfs.Stop]int
	trips     []*gtfs.Trip
	conns     []connection
	footpaths [][]footpath
}

// NewTimetable builds the timetable of a feed for the configured day
func NewTimetable(feed *gtfsparser.Feed, opts Options) *Timetable {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	log.Sugar().Infof("Building timetable for %s...", opts.Weekday)

	tt := &Timetable{
		Stations: NewStations(feed),
		stopIdx:  make(map[*gtfs.Stop]int, len(feed.Stops)),
	}

	for i, s := range tt.stops {
		tt.stopIdx[s] = i
	}

	tripIds := maps.Keys(feed.Trips)
	slices.Sort(tripIds)

	for _, id := range tripIds {
		t := feed.Trips[id]
		if !runs(t.Service, opts) {
			continue
		}

		tripIdx := len(tt.trips)
		added := false

		last := -1
		for i, st := range t.StopTimes {
			if st.Arrival_time().Hour < 0 || st.Departure_time().Hour < 0 {
				continue
			}
			if last >= 0 {
				prev := t.StopTimes[last]
				from, okf := tt.stopIdx[prev.Stop()]
				to, okt := tt.stopIdx[st.Stop()]
				if okf && okt {
					tt.conns = append(tt.conns, connection{
						from: from,
						to:   to,
						dep:  prev.Departure_time().SecondsSinceMidnight(),
						arr:  st.Arrival_time().SecondsSinceMidnight(),
						trip: tripIdx,
						seq:  last,
					})
					added = true
				}
			}
			last = i
		}

		if added {
			tt.trips = append(tt.trips, t)
		}
	}

	slices.SortStableFunc(tt.conns, func(a, b connection) int {
		if a.dep != b.dep {
			return a.dep - b.dep
		}
		return a.arr - b.arr
	})

	tt.buildFootpaths(opts)

	log.Sugar().Infof("done. (%d trips, %d connections, %d stops)", len(tt.trips), len(tt.conns), len(tt.stops))

	return tt
}

func runs(s *gtfs.Service, opts Options) bool {
	if s == nil {
		return false
	}
	if opts.UseDate {
		return s.IsActiveOn(opts.Date)
	}
	return s.Daymap(int(opts.Weekday))
}

func (tt *Timetable) buildFootpaths(opts Options) {
	tt.footpaths = make([][]footpath, len(tt.stops))
	if opts.MaxTransferDist <= 0 {
		return
	}

	speed := opts.WalkSpeed
	if speed <= 0 {
		speed = 1.2
	}

	// sweep over the stops ordered by latitude
	order := make([]int, len(tt.stops))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		la, lb := tt.stops[a].Lat, tt.stops[b].Lat
		switch {
		case la < lb:
			return -1
		case la > lb:
			return 1
		}
		return 0
	})

	maxLatDiff := opts.MaxTransferDist / 111000.0

	for i, a := range order {
		pa := stopPoint(tt.stops[a])
		for _, b := range order[i+1:] {
			pb := stopPoint(tt.stops[b])
			if pb.Lat()-pa.Lat() > maxLatDiff {
				break
			}
			d := geo.Haversine(pa, pb)
			if d > opts.MaxTransferDist {
				continue
			}
			dur := int(math.Ceil(d / speed))
			if dur < opts.MinTransferTime {
				dur = opts.MinTransferTime
			}
			tt.footpaths[a] = append(tt.footpaths[a], footpath{to: b, dur: dur})
			tt.footpaths[b] = append(tt.footpaths[b], footpath{to: a, dur: dur})
		}
	}
}

// NumConnections returns the number of connections
func (tt *Timetable) NumConnections() int {
	return len(tt.conns)
}
