// Copyright 2016 Patrick Brosi
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package geo

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Envelope returns the bounding box of an EPSG:25832 geometry as a WGS84
// ring. The corners follow the exterior order (minx, miny), (maxx, miny),
// (maxx, maxy), (minx, maxy) and the ring is closed.
func Envelope(g orb.Geometry) orb.Ring {
	b := g.Bound()
	ring := orb.Ring{
		FromUTM32(orb.Point{b.Min[0], b.Min[1]}),
		FromUTM32(orb.Point{b.Max[0], b.Min[1]}),
		FromUTM32(orb.Point{b.Max[0], b.Max[1]}),
		FromUTM32(orb.Point{b.Min[0], b.Max[1]}),
	}
	return append(ring, ring[0])
}

// Edges returns the line segments of a closed ring
func Edges(r orb.Ring) []orb.LineString {
	ret := make([]orb.LineString, 0, len(r))
	for i := 0; i+1 < len(r); i++ {
		ret = append(ret, orb.LineString{r[i], r[i+1]})
	}
	return ret
}

// LineDist is the planar distance of p to the nearest segment of l
func LineDist(l orb.LineString, p orb.Point) float64 {
	if len(l) == 1 {
		return Dist(p, l[0])
	}
	min := -1.0
	for i := 0; i+1 < len(l); i++ {
		d := SegmentDist(p, l[i], l[i+1])
		if min < 0 || d < min {
			min = d
		}
	}
	return min
}

// BBoxString formats the WGS84 bounding box of an EPSG:25832 geometry as
// "minlon,minlat,maxlon,maxlat", the argument format of osmium extract
func BBoxString(g orb.Geometry) string {
	b := Envelope(g).Bound()
	return fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", b.Min.Lon(), b.Min.Lat(), b.Max.Lon(), b.Max.Lat())
}

// BBoxPolygon returns the WGS84 bounding box of an EPSG:25832 geometry as a
// polygon outline in [lon, lat] pairs
func BBoxPolygon(g orb.Geometry) [][2]float64 {
	b := Envelope(g).Bound()
	return [][2]float64{
		{b.Min.Lon(), b.Min.Lat()},
		{b.Max.Lon(), b.Min.Lat()},
		{b.Max.Lon(), b.Max.Lat()},
		{b.Min.Lon(), b.Max.Lat()},
		{b.Min.Lon(), b.Min.Lat()},
	}
}

// CentroidUTM returns the area centroid of an EPSG:25832 geometry as WGS84
// point
func CentroidUTM(g orb.Geometry) orb.Point {
	c, _ := planar.CentroidArea(g)
	return FromUTM32(c)
}

// Centroid returns the area centroid of a WGS84 geometry. The centroid is
// computed in EPSG:25832, not in degrees.
func Centroid(g orb.Geometry) orb.Point {
	return CentroidUTM(GeometryToUTM32(g))
}

// Contains reports whether a WGS84 point lies within a WGS84 (multi)polygon
func Contains(g orb.Geometry, p orb.Point) bool {
	switch t := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(t, p)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(t, p)
	case orb.Bound:
		return t.Contains(p)
	case orb.Ring:
		return planar.RingContains(t, p)
	}
	return false
}
