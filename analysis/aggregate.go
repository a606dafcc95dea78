// Copyright 2016 Patrick Brosi
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package analysis

import (
	"github.com/kinoaccess/kinoaccess/geodata"
	"github.com/paulmach/orb"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// AreaHour aggregates the variables of an area for one departure hour
type AreaHour struct {
	Area               string   `csv:"area"`
	Hour               int      `csv:"time"`
	AverageSpeed       *float64 `csv:"average speed,omitempty"`
	AverageDuration    *float64 `csv:"average duration,omitempty"`
	AverageTransitTime *float64 `csv:"average transit time,omitempty"`
	AverageWalkTime    *float64 `csv:"average walk time,omitempty"`
	AverageWalkShare   *float64 `csv:"average walk share,omitempty"`
	WalkShareUnder40   *float64 `csv:"walk share under 40%,omitempty"`
	AverageChanges     *float64 `csv:"average amount of changes,omitempty"`
	MaxChanges         *int     `csv:"max changes,omitempty"`
	DifferenceToCar    *float64 `csv:"time difference to car,omitempty"`
	TransitReasonable  float64  `csv:"transit is reasonable"`
	OutOf              int      `csv:"out of"`
}

// Aggregate computes one AreaHour per departure hour, ascending by hour.
// Transit is reasonable is the percentage of entries for which transit is
// faster than walking, out of is the number of entries with a duration.
func Aggregate(area string, vars []*Variables) []*AreaHour {
	byHour := make(map[int][]*HourVariables)
	for _, v := range vars {
		for _, h := range v.Hours {
			byHour[h.Hour] = append(byHour[h.Hour], h)
		}
	}

	hours := maps.Keys(byHour)
	slices.Sort(hours)

	ret := make([]*AreaHour, 0, len(hours))
	for _, hour := range hours {
		ret = append(ret, aggregateHour(area, hour, byHour[hour]))
	}
	return ret
}

func aggregateHour(area string, hour int, hs []*HourVariables) *AreaHour {
	ah := &AreaHour{Area: area, Hour: hour}

	speeds := make([]*float64, len(hs))
	durations := make([]*float64, len(hs))
	transit := make([]*float64, len(hs))
	walks := make([]*float64, len(hs))
	shares := make([]*float64, len(hs))
	changes := make([]*float64, len(hs))
	diffs := make([]*float64, len(hs))

	under := 0
	transitFastest := 0

	for i, h := range hs {
		speeds[i] = h.Speed
		durations[i] = h.TotalDuration
		transit[i] = h.TransitDuration
		walks[i] = h.WalkDuration
		shares[i] = h.WalkShare
		diffs[i] = h.DifferenceToCar

		if h.Changes != nil {
			changes[i] = ptr(float64(*h.Changes))
			if ah.MaxChanges == nil || *h.Changes > *ah.MaxChanges {
				c := *h.Changes
				ah.MaxChanges = &c
			}
		}

		if h.WalkShare != nil && *h.WalkShare < WalkShareCutoff {
			under++
		}
		if h.FastestMode == ModeTransit {
			transitFastest++
		}
		if h.TotalDuration != nil {
			ah.OutOf++
		}
	}

	ah.AverageSpeed = mean(speeds)
	ah.AverageDuration = mean(durations)
	ah.AverageTransitTime = mean(transit)
	ah.AverageWalkTime = mean(walks)
	ah.AverageWalkShare = mean(shares)
	ah.AverageChanges = mean(changes)
	ah.DifferenceToCar = mean(diffs)

	if len(hs) > 0 {
		ah.WalkShareUnder40 = ptr(float64(under) / float64(len(hs)))
		ah.TransitReasonable = 100 / float64(len(hs)) * float64(transitFastest)
	}

	return ah
}

// PointLayer returns the per start point means of the variables as a point
// layer, in order of first appearance of the start points
func PointLayer(vars []*Variables) *geodata.Layer {
	type start struct {
		name     string
		lon, lat float64
	}

	idx := make(map[start]int)
	groups := make([][]*Variables, 0)
	starts := make([]start, 0)

	for _, v := range vars {
		s := start{v.StartName, v.StartLon, v.StartLat}
		i, ok := idx[s]
		if !ok {
			i = len(groups)
			idx[s] = i
			groups = append(groups, nil)
			starts = append(starts, s)
		}
		groups[i] = append(groups[i], v)
	}

	l := &geodata.Layer{}
	for i, g := range groups {
		props := map[string]interface{}{
			"area":       g[0].Area,
			"start_name": starts[i].name,
			"cinemas":    len(g),
		}

		cols := map[string]func(v *Variables) *float64{
			"average duration":          func(v *Variables) *float64 { return v.AverageDuration },
			"average speed":             func(v *Variables) *float64 { return v.AverageSpeed },
			"average transit duration":  func(v *Variables) *float64 { return v.AverageTransitDuration },
			"average walk share":        func(v *Variables) *float64 { return v.AverageWalkShare },
			"average changes":           func(v *Variables) *float64 { return v.AverageChanges },
			"average difference to car": func(v *Variables) *float64 { return v.DifferenceToCar },
			"car_duration":              func(v *Variables) *float64 { return v.CarDuration },
			"foot_duration":             func(v *Variables) *float64 { return v.FootDuration },
			"distance_start_cinema":     func(v *Variables) *float64 { return ptr(v.DistanceToCinema) },
			"distance_start_centroid":   func(v *Variables) *float64 { return ptr(v.DistanceToCentroid) },
		}

		for name, get := range cols {
			vals := make([]*float64, len(g))
			for j, v := range g {
				vals[j] = get(v)
			}
			if m := mean(vals); m != nil {
				props[name] = *m
			}
		}

		l.Add(orb.Point{starts[i].lon, starts[i].lat}, props)
	}

	return l
}
