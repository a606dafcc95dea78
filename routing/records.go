// Copyright 2016 Patrick Brosi
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package routing

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/kinoaccess/kinoaccess/geodata"
	"github.com/paulmach/orb"
)

// Record is the result for one start point, cinema and departure hour.
// Durations are seconds, distances meters. Missing values are nil.
type Record struct {
	Area               string   `csv:"example_for"`
	StartName          string   `csv:"start_name"`
	StartLon           float64  `csv:"start_lon"`
	StartLat           float64  `csv:"start_lat"`
	Cinema             string   `csv:"cinema_name"`
	CinemaLon          float64  `csv:"cinema_lon"`
	CinemaLat          float64  `csv:"cinema_lat"`
	Hour               int      `csv:"hour"`
	Route              string   `csv:"total_route"`
	TotalDuration      *float64 `csv:"total_duration,omitempty"`
	WalkTo             *float64 `csv:"walk_to,omitempty"`
	WalkFrom           *float64 `csv:"walk_from,omitempty"`
	Changes            *int     `csv:"total_changes,omitempty"`
	CarDuration        *float64 `csv:"car_duration,omitempty"`
	FootDuration       *float64 `csv:"foot_duration,omitempty"`
	DistanceToCentroid float64  `csv:"distance_start_centroid"`
	DistanceToCinema   float64  `csv:"distance_start_cinema"`
}

// Start returns the start location
func (r *Record) Start() orb.Point {
	return orb.Point{r.StartLon, r.StartLat}
}

// TransitDuration is the total duration without the walking legs
func (r *Record) TransitDuration() *float64 {
	if r.TotalDuration == nil || r.WalkTo == nil || r.WalkFrom == nil {
		return nil
	}
	d := *r.TotalDuration - *r.WalkTo - *r.WalkFrom
	return &d
}

// Props returns the record as GeoJSON properties
func (r *Record) Props() map[string]interface{} {
	p := map[string]interface{}{
		"example_for":             r.Area,
		"start_name":              r.StartName,
		"cinema_name":             r.Cinema,
		"hour":                    r.Hour,
		"total_route":             r.Route,
		"distance_start_centroid": r.DistanceToCentroid,
		"distance_start_cinema":   r.DistanceToCinema,
	}
	for k, v := range map[string]*float64{
		"total_duration": r.TotalDuration,
		"walk_to":        r.WalkTo,
		"walk_from":      r.WalkFrom,
		"car_duration":   r.CarDuration,
		"foot_duration":  r.FootDuration,
	} {
		if v != nil {
			p[k] = *v
		}
	}
	if r.Changes != nil {
		p["total_changes"] = *r.Changes
	}
	return p
}

// WriteRecords writes records as CSV
func WriteRecords(path string, recs []*Record) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := gocsv.MarshalFile(&recs, f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// ReadRecords reads records written by WriteRecords
func ReadRecords(path string) ([]*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	recs := []*Record{}
	if err := gocsv.UnmarshalFile(f, &recs); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return recs, nil
}

// RecordLayer returns a point layer of the records at their start points
func RecordLayer(recs []*Record) *geodata.Layer {
	l := &geodata.Layer{}
	for _, r := range recs {
		l.Add(r.Start(), r.Props())
	}
	return l
}

// ConcatRecords concatenates record tables into out and writes the layer
// of the result to layer
func ConcatRecords(out string, layer string, in ...string) error {
	all := make([]*Record, 0)
	for _, p := range in {
		recs, err := ReadRecords(p)
		if err != nil {
			return err
		}
		all = append(all, recs...)
	}

	if err := WriteRecords(out, all); err != nil {
		return err
	}
	return geodata.WriteLayer(layer, RecordLayer(all))
}
