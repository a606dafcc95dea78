// Copyright 2016 Patrick Brosi
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package router

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/patrickbr/gtfsparser/gtfs"
)

// Clock is a time of day in seconds after midnight, formatted HH:MM:SS.
// Negative values are missing times.
type Clock int

// MarshalCSV formats the clock for gocsv
func (c Clock) MarshalCSV() (string, error) {
	return c.String(), nil
}

// UnmarshalCSV parses HH:MM:SS, hours may exceed 23
func (c *Clock) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		*c = -1
		return nil
	}

	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return fmt.Errorf("invalid time %q", s)
	}

	sec := 0
	for _, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("invalid time %q: %w", s, err)
		}
		sec = sec*60 + v
	}

	*c = Clock(sec)
	return nil
}

func (c Clock) String() string {
	if c < 0 {
		return ""
	}
	return fmt.Sprintf("%02d:%02d:%02d", int(c)/3600, (int(c)/60)%60, int(c)%60)
}

// Visit is a stop on an itinerary
type Visit struct {
	StopName  string `csv:"stop_name"`
	StopID    string `csv:"stop_id"`
	RouteName string `csv:"route_name"`
	TripID    string `csv:"trip_id"`
	Arrival   Clock  `csv:"arrival_time"`
	Departure Clock  `csv:"departure_time"`
}

// Itinerary is the ordered list of stops visited on a transit journey.
// Footpaths between trips are implicit.
type Itinerary struct {
	Visits []*Visit
}

// First returns the departure stop
func (it *Itinerary) First() *Visit {
	return it.Visits[0]
}

// Last returns the arrival stop
func (it *Itinerary) Last() *Visit {
	return it.Visits[len(it.Visits)-1]
}

// Duration is the time between the first departure and the last arrival
func (it *Itinerary) Duration() time.Duration {
	if len(it.Visits) == 0 {
		return 0
	}
	dep := it.First().Departure
	if dep < 0 {
		dep = it.First().Arrival
	}
	arr := it.Last().Arrival
	if arr < 0 {
		arr = it.Last().Departure
	}
	return time.Duration(arr-dep) * time.Second
}

// Changes is the number of times the route changes along the itinerary
func (it *Itinerary) Changes() int {
	if len(it.Visits) == 0 {
		return 0
	}
	n := 0
	for i, v := range it.Visits {
		if i == 0 || v.RouteName != it.Visits[i-1].RouteName {
			n++
		}
	}
	return n - 1
}

func routeName(t *gtfs.Trip) string {
	if t.Route == nil {
		return ""
	}
	if len(t.Route.Short_name) > 0 {
		return t.Route.Short_name
	}
	return t.Route.Long_name
}
