// Copyright 2016 Patrick Brosi
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package osmdata

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/kinoaccess/kinoaccess/geo"
	"github.com/kinoaccess/kinoaccess/geodata"
	"github.com/paulmach/orb"
)

// ErrTooFewFeatures is returned if a sample cannot be drawn
var ErrTooFewFeatures = errors.New("too few features")

// RandomSample draws n distinct places. More than n places must be
// available. The same seed yields the same sample.
func RandomSample(places []geodata.Place, n int, seed int64) ([]geodata.Place, error) {
	if len(places) <= n {
		return nil, fmt.Errorf("%w: %d available, %d requested", ErrTooFewFeatures, len(places), n)
	}

	r := rand.New(rand.NewSource(seed))
	ret := make([]geodata.Place, 0, n)
	for _, i := range r.Perm(len(places))[:n] {
		ret = append(ret, places[i])
	}
	return ret, nil
}

// BBoxEdgePoints returns, for each of the four edges of the bounding box of
// an EPSG:25832 area, the place nearest to that edge. Distances are planar
// in degrees.
func BBoxEdgePoints(area orb.Geometry, places []geodata.Place) ([]geodata.Place, error) {
	if len(places) == 0 {
		return nil, fmt.Errorf("%w: no places near the bounding box", ErrTooFewFeatures)
	}

	edges := geo.Edges(geo.Envelope(area))
	ret := make([]geodata.Place, 0, len(edges))

	for _, e := range edges {
		best := 0
		bestDist := geo.LineDist(e, places[0].Point)
		for i, p := range places[1:] {
			if d := geo.LineDist(e, p.Point); d < bestDist {
				best = i + 1
				bestDist = d
			}
		}
		ret = append(ret, places[best])
	}

	return ret, nil
}
