// Copyright 2016 Patrick Brosi
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

// Package analysis derives travel time variables from routing records,
// aggregates them per area and correlates them with the municipality
// indicators.
package analysis

import (
	"github.com/kinoaccess/kinoaccess/routing"
)

// Travel modes
const (
	ModeTransit = "transit"
	ModeFoot    = "foot"
	ModeCar     = "car"
)

// WalkShareCutoff is the walk share (in percent) below which transit is
// considered a transit trip rather than a walk
const WalkShareCutoff = 40

// HourVariables are the variables of one start point, cinema and hour
type HourVariables struct {
	Area               string   `csv:"area"`
	StartName          string   `csv:"start_name"`
	Cinema             string   `csv:"cinema_name"`
	Hour               int      `csv:"departure time"`
	TotalDuration      *float64 `csv:"total_duration,omitempty"`
	Speed              *float64 `csv:"speed,omitempty"`
	TransitDuration    *float64 `csv:"transit_dur,omitempty"`
	WalkDuration       *float64 `csv:"walk_dur,omitempty"`
	WalkShare          *float64 `csv:"walk_share,omitempty"`
	Changes            *int     `csv:"total_changes,omitempty"`
	DifferenceToCar    *float64 `csv:"difference to car,omitempty"`
	FastestMode        string   `csv:"fastest mode"`
	TripDuration       *float64 `csv:"trip_duration,omitempty"`
	FastestOverallMode string   `csv:"fastest overall mode"`
}

// Variables are the variables of one start point and cinema across all
// hours. AverageDuration, AverageTransitDuration and AverageWalkShare are
// sums over the hours and only defined if every hour is.
type Variables struct {
	Area                   string   `csv:"area"`
	StartName              string   `csv:"start_name"`
	StartLon               float64  `csv:"start_lon"`
	StartLat               float64  `csv:"start_lat"`
	Cinema                 string   `csv:"cinema_name"`
	DistanceToCinema       float64  `csv:"distance_start_cinema"`
	DistanceToCentroid     float64  `csv:"distance_start_centroid"`
	CarDuration            *float64 `csv:"car_duration,omitempty"`
	FootDuration           *float64 `csv:"foot_duration,omitempty"`
	AverageDuration        *float64 `csv:"average duration,omitempty"`
	AverageSpeed           *float64 `csv:"average speed,omitempty"`
	DifferenceToCar        *float64 `csv:"average duration difference to car,omitempty"`
	AverageTransitDuration *float64 `csv:"average transit duration,omitempty"`
	AverageWalkShare       *float64 `csv:"average walk share,omitempty"`
	AverageChanges         *float64 `csv:"average changes,omitempty"`

	Hours []*HourVariables `csv:"-"`
}

func hourVariables(r *routing.Record) *HourVariables {
	hv := &HourVariables{
		Area:          r.Area,
		StartName:     r.StartName,
		Cinema:        r.Cinema,
		Hour:          r.Hour,
		TotalDuration: r.TotalDuration,
		Changes:       r.Changes,
	}

	total := r.TotalDuration

	if total != nil && *total > 0 {
		hv.Speed = ptr(r.DistanceToCinema / *total)
	}

	hv.TransitDuration = r.TransitDuration()

	if r.WalkTo != nil && r.WalkFrom != nil {
		hv.WalkDuration = ptr(*r.WalkTo + *r.WalkFrom)
		if total != nil && *total > 0 {
			hv.WalkShare = ptr(100 / *total * *hv.WalkDuration)
		}
	}

	if total != nil && r.CarDuration != nil {
		hv.DifferenceToCar = ptr(*total - *r.CarDuration)
	}

	hv.FastestMode = ModeFoot
	hv.TripDuration = r.FootDuration
	if faster(total, r.FootDuration) {
		hv.FastestMode = ModeTransit
		hv.TripDuration = total
	}

	hv.FastestOverallMode = ModeCar
	if faster(hv.TripDuration, r.CarDuration) {
		hv.FastestOverallMode = hv.FastestMode
	}

	return hv
}

// faster reports whether a is defined and shorter than b. An undefined b
// is never faster.
func faster(a, b *float64) bool {
	if a == nil {
		return false
	}
	return b == nil || *a < *b
}

type startCinema struct {
	start  string
	lon    float64
	lat    float64
	cinema string
}

// Derive computes the variables of every start point and cinema of the
// records, in order of first appearance
func Derive(recs []*routing.Record) []*Variables {
	idx := make(map[startCinema]int)
	ret := make([]*Variables, 0)

	for _, r := range recs {
		key := startCinema{r.StartName, r.StartLon, r.StartLat, r.Cinema}
		i, ok := idx[key]
		if !ok {
			i = len(ret)
			idx[key] = i
			ret = append(ret, &Variables{
				Area:               r.Area,
				StartName:          r.StartName,
				StartLon:           r.StartLon,
				StartLat:           r.StartLat,
				Cinema:             r.Cinema,
				DistanceToCinema:   r.DistanceToCinema,
				DistanceToCentroid: r.DistanceToCentroid,
				CarDuration:        r.CarDuration,
				FootDuration:       r.FootDuration,
			})
		}
		ret[i].Hours = append(ret[i].Hours, hourVariables(r))
	}

	for _, v := range ret {
		v.summarize()
	}

	return ret
}

func (v *Variables) summarize() {
	n := float64(len(v.Hours))
	if n == 0 {
		return
	}

	durations := make([]*float64, len(v.Hours))
	transit := make([]*float64, len(v.Hours))
	walkShares := make([]*float64, len(v.Hours))
	speeds := make([]*float64, len(v.Hours))
	changes := make([]*float64, len(v.Hours))

	for i, h := range v.Hours {
		durations[i] = h.TotalDuration
		transit[i] = h.TransitDuration
		walkShares[i] = h.WalkShare
		speeds[i] = h.Speed
		if h.Changes != nil {
			changes[i] = ptr(float64(*h.Changes))
		}
	}

	v.AverageDuration = sumAll(durations)
	v.AverageTransitDuration = sumAll(transit)
	v.AverageWalkShare = sumAll(walkShares)

	if s := sumAll(speeds); s != nil {
		v.AverageSpeed = ptr(*s / n)
	}
	v.AverageChanges = mean(changes)

	if v.AverageDuration != nil && v.CarDuration != nil {
		v.DifferenceToCar = ptr(*v.AverageDuration - *v.CarDuration)
	}
}

// sumAll returns the sum of the values, nil if any value is missing
func sumAll(vals []*float64) *float64 {
	s := 0.0
	for _, v := range vals {
		if v == nil {
			return nil
		}
		s += *v
	}
	return &s
}

// mean returns the mean of the defined values, nil if there are none
func mean(vals []*float64) *float64 {
	s := 0.0
	n := 0
	for _, v := range vals {
		if v == nil {
			continue
		}
		s += *v
		n++
	}
	if n == 0 {
		return nil
	}
	return ptr(s / float64(n))
}

func ptr(f float64) *float64 {
	return &f
}
