// Copyright 2016 Patrick Brosi
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package router

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrNoRoute is returned if the destination cannot be reached
var ErrNoRoute = errors.New("no route found")

type leg struct {
	enter, exit int // connection indices, -1 for footpaths
	walkFrom    int
}

// Route returns the earliest-arrival itinerary from any stop named from to
// any stop named to, departing no earlier than startTime (seconds after
// midnight). Changes at the same stop take no time, changes between
// distinct stops use the footpaths.
func (tt *Timetable) Route(from, to string, startTime int) (*Itinerary, error) {
	sources, ok := tt.byName[from]
	if !ok {
		return nil, fmt.Errorf("%w: unknown stop %q", ErrNoRoute, from)
	}
	targets, ok := tt.byName[to]
	if !ok {
		return nil, fmt.Errorf("%w: unknown stop %q", ErrNoRoute, to)
	}

	arr := make([]int, len(tt.stops))
	for i := range arr {
		arr[i] = math.MaxInt
	}
	journey := make([]*leg, len(tt.stops))
	boarded := make(map[int]int)

	isTarget := make(map[int]bool, len(targets))
	for _, t := range targets {
		isTarget[t] = true
	}

	for _, s := range sources {
		arr[s] = startTime
	}

	best := math.MaxInt
	for _, s := range sources {
		if isTarget[s] {
			best = startTime
		}
	}

	first := sort.Search(len(tt.conns), func(i int) bool { return tt.conns[i].dep >= startTime })

	for ci := first; ci < len(tt.conns); ci++ {
		c := tt.conns[ci]
		if c.dep >= best {
			break
		}

		enter, onTrip := boarded[c.trip]
		if !onTrip {
			if arr[c.from] > c.dep {
				continue
			}
			enter = ci
			boarded[c.trip] = ci
		}

		if c.arr >= arr[c.to] {
			continue
		}

		arr[c.to] = c.arr
		journey[c.to] = &leg{enter: enter, exit: ci, walkFrom: -1}
		if isTarget[c.to] && c.arr < best {
			best = c.arr
		}

		for _, fp := range tt.footpaths[c.to] {
			if t := c.arr + fp.dur; t < arr[fp.to] {
				arr[fp.to] = t
				journey[fp.to] = &leg{enter: -1, exit: -1, walkFrom: c.to}
				if isTarget[fp.to] && t < best {
					best = t
				}
			}
		}
	}

	target := -1
	for _, t := range targets {
		if journey[t] != nil && (target < 0 || arr[t] < arr[target]) {
			target = t
		}
	}

	if target < 0 {
		return nil, fmt.Errorf("%w: %s -> %s at %d", ErrNoRoute, from, to, startTime)
	}

	legs := make([]*leg, 0)
	for cur := target; journey[cur] != nil; {
		l := journey[cur]
		if l.enter < 0 {
			cur = l.walkFrom
			continue
		}
		legs = append(legs, l)
		cur = tt.conns[l.enter].from
	}

	if len(legs) == 0 {
		return nil, fmt.Errorf("%w: %s -> %s at %d", ErrNoRoute, from, to, startTime)
	}

	it := &Itinerary{}
	for i := len(legs) - 1; i >= 0; i-- {
		it.Visits = append(it.Visits, tt.visits(legs[i])...)
	}

	return it, nil
}

func (tt *Timetable) visits(l *leg) []*Visit {
	enter := tt.conns[l.enter]
	exit := tt.conns[l.exit]
	trip := tt.trips[enter.trip]
	name := routeName(trip)

	ret := make([]*Visit, 0)
	for i := enter.seq; i < len(trip.StopTimes); i++ {
		st := trip.StopTimes[i]
		v := &Visit{
			StopName:  st.Stop().Name,
			StopID:    st.Stop().Id,
			RouteName: name,
			TripID:    trip.Id,
			Arrival:   Clock(-1),
			Departure: Clock(-1),
		}
		if st.Arrival_time().Hour >= 0 {
			v.Arrival = Clock(st.Arrival_time().SecondsSinceMidnight())
		}
		if st.Departure_time().Hour >= 0 {
			v.Departure = Clock(st.Departure_time().SecondsSinceMidnight())
		}
		ret = append(ret, v)

		if tt.stopIdx[st.Stop()] == exit.to && i > exit.seq {
			break
		}
	}

	return ret
}
