// Copyright 2016 Patrick Brosi
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package geo

import (
	"math"
	"strings"
	"testing"

	"github.com/paulmach/orb"
)

func TestHaversine(t *testing.T) {
	// Heidelberg Hbf -> Bismarckplatz, roughly 1.3 km
	a := orb.Point{8.675, 49.4036}
	b := orb.Point{8.6936, 49.4093}

	d := Haversine(a, b)
	if d < 1300 || d > 1600 {
		t.Errorf("expected ~1.45 km, got %f", d)
	}

	if math.Abs(HaversineApprox(a, b)-d) > 1 {
		t.Errorf("approximation too far off: %f vs %f", HaversineApprox(a, b), d)
	}

	if Haversine(a, a) != 0 {
		t.Error("distance of a point to itself should be 0")
	}
}

func TestSegmentDist(t *testing.T) {
	a := orb.Point{0, 0}
	b := orb.Point{10, 0}

	if d := SegmentDist(orb.Point{5, 3}, a, b); d != 3 {
		t.Errorf("expected 3, got %f", d)
	}

	if d := SegmentDist(orb.Point{-4, 3}, a, b); d != 5 {
		t.Errorf("expected 5 (distance to a), got %f", d)
	}

	if d := SegmentDist(orb.Point{14, 3}, a, b); d != 5 {
		t.Errorf("expected 5 (distance to b), got %f", d)
	}

	if d := SegmentDist(orb.Point{3, 4}, a, a); d != 5 {
		t.Errorf("expected 5 for degenerate segment, got %f", d)
	}
}

func TestUTMRoundTrip(t *testing.T) {
	pts := []orb.Point{
		{9, 0},
		{8.6724, 49.3988},
		{11.9688, 51.4825},
		{6.0839, 50.7753},
		{8.0472, 52.2799},
	}

	for _, p := range pts {
		u := ToUTM32(p)
		back := FromUTM32(u)
		if math.Abs(back[0]-p[0]) > 1e-6 || math.Abs(back[1]-p[1]) > 1e-6 {
			t.Errorf("round trip of %v gave %v", p, back)
		}
	}

	u := ToUTM32(orb.Point{9, 0})
	if math.Abs(u[0]-500000) > 1e-3 || math.Abs(u[1]) > 1e-3 {
		t.Errorf("central meridian at equator should be (500000, 0), got %v", u)
	}

	// Heidelberg is west of the central meridian
	u = ToUTM32(orb.Point{8.6724, 49.3988})
	if u[0] >= 500000 || u[0] < 470000 {
		t.Errorf("unexpected easting %f", u[0])
	}
	if u[1] < 5460000 || u[1] > 5480000 {
		t.Errorf("unexpected northing %f", u[1])
	}
}

func square(cx, cy, half float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{cx - half, cy - half},
		{cx + half, cy - half},
		{cx + half, cy + half},
		{cx - half, cy + half},
		{cx - half, cy - half},
	}}
}

func TestEnvelopeAndCentroid(t *testing.T) {
	center := ToUTM32(orb.Point{8.7, 49.4})
	poly := square(center[0], center[1], 1000)

	env := Envelope(poly)
	if len(env) != 5 || env[0] != env[4] {
		t.Fatalf("envelope should be a closed ring of 4 corners, got %v", env)
	}

	if len(Edges(env)) != 4 {
		t.Errorf("expected 4 edges, got %d", len(Edges(env)))
	}

	c := CentroidUTM(poly)
	if Haversine(c, orb.Point{8.7, 49.4}) > 1 {
		t.Errorf("centroid %v too far from square center", c)
	}

	wgs := GeometryFromUTM32(poly).(orb.Polygon)
	if !Contains(wgs, orb.Point{8.7, 49.4}) {
		t.Error("square should contain its center")
	}
	if Contains(wgs, orb.Point{8.8, 49.4}) {
		t.Error("square should not contain a point 7km away")
	}

	if Haversine(Centroid(wgs), c) > 1 {
		t.Errorf("WGS84 centroid %v differs from projected centroid %v", Centroid(wgs), c)
	}

	s := BBoxString(poly)
	if len(strings.Split(s, ",")) != 4 || !strings.HasPrefix(s, "8.68") {
		t.Errorf("unexpected bbox string %s", s)
	}

	bp := BBoxPolygon(poly)
	if len(bp) != 5 || bp[0] != bp[4] {
		t.Errorf("bbox polygon not closed: %v", bp)
	}
}

func TestLineDist(t *testing.T) {
	l := orb.LineString{{0, 0}, {10, 0}, {10, 10}}

	if d := LineDist(l, orb.Point{12, 5}); d != 2 {
		t.Errorf("expected 2, got %f", d)
	}

	if d := LineDist(orb.LineString{{1, 1}}, orb.Point{4, 5}); d != 5 {
		t.Errorf("expected 5, got %f", d)
	}
}
