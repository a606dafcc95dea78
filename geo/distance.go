// Copyright 2016 Patrick Brosi
// Authors: info@patrickbrosi.de
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

// Package geo contains the geodetic helpers shared by the extraction,
// routing and analysis stages. Points are orb.Points, that is [lon, lat]
// for WGS84 and [easting, northing] for EPSG:25832.
package geo

import (
	"math"

	"github.com/paulmach/orb"
)

var DEG_TO_RAD float64 = 0.017453292519943295769236907684886127134428718885417254560

const earthRadius = 6378137.0

// Haversine calculates the distance in meter between two WGS84 points
func Haversine(a, b orb.Point) float64 {
	latA := a.Lat() * DEG_TO_RAD
	lonA := a.Lon() * DEG_TO_RAD
	latB := b.Lat() * DEG_TO_RAD
	lonB := b.Lon() * DEG_TO_RAD

	dlat := latB - latA
	dlon := lonB - lonA

	sindlat := math.Sin(dlat / 2)
	sindlon := math.Sin(dlon / 2)

	h := sindlat*sindlat + math.Cos(latA)*math.Cos(latB)*sindlon*sindlon

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return c * earthRadius
}

// HaversineApprox calculates the approximate distance in meter between two
// WGS84 points (equirectangular approximation, fine below a few km)
func HaversineApprox(a, b orb.Point) float64 {
	latA := a.Lat() * DEG_TO_RAD
	lonA := a.Lon() * DEG_TO_RAD
	latB := b.Lat() * DEG_TO_RAD
	lonB := b.Lon() * DEG_TO_RAD

	dlat := latB - latA
	dlon := lonB - lonA

	x := dlon * math.Cos(0.5*(latA+latB))

	return math.Sqrt(dlat*dlat+x*x) * earthRadius
}

// Dist is the planar distance between two points, in coordinate units
func Dist(a, b orb.Point) float64 {
	return math.Sqrt((b[0]-a[0])*(b[0]-a[0]) + (b[1]-a[1])*(b[1]-a[1]))
}

// SegmentDist calculates the planar distance from p to the line segment [a, b]
func SegmentDist(p, a, b orb.Point) float64 {
	d := Dist(a, b) * Dist(a, b)

	if d == 0 {
		return Dist(p, a)
	}
	t := ((p[0]-a[0])*(b[0]-a[0]) + (p[1]-a[1])*(b[1]-a[1])) / d
	if t < 0 {
		return Dist(p, a)
	} else if t > 1 {
		return Dist(p, b)
	}

	return Dist(p, orb.Point{a[0] + t*(b[0]-a[0]), a[1] + t*(b[1]-a[1])})
}
