// Copyright 2016 Patrick Brosi
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package routing

import (
	"context"

	"github.com/kinoaccess/kinoaccess/geo"
	"github.com/kinoaccess/kinoaccess/geodata"
	"github.com/kinoaccess/kinoaccess/ors"
	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

// Area is a studied municipality with its cinemas
type Area struct {
	Name     string
	Centroid orb.Point
	Cinemas  []geodata.Place
}

// AreaRouter routes start points of an area to all of its cinemas
type AreaRouter struct {
	Selector     *Selector
	Roads        ors.Router
	Hours        []int
	StationCount int
	Parallelism  int
	Logger       *zap.Logger
}

func (ar *AreaRouter) targets(cinemas []geodata.Place) []Target {
	ret := make([]Target, len(cinemas))
	for i, c := range cinemas {
		ret[i] = Target{
			Name:     c.Name,
			Point:    c.Point,
			Stations: ar.Selector.Stations.ClosestStations(c.Point, ar.StationCount),
		}
	}
	return ret
}

// RouteArea returns one record per start point, departure hour and cinema
func (ar *AreaRouter) RouteArea(ctx context.Context, area Area, starts []geodata.Place) ([]*Record, error) {
	log := ar.Logger
	if log == nil {
		log = zap.NewNop()
	}
	sugar := log.Sugar()

	targets := ar.targets(area.Cinemas)
	dests := make([]orb.Point, len(area.Cinemas))
	for i, c := range area.Cinemas {
		dests[i] = c.Point
	}

	ret := make([]*Record, 0, len(starts)*len(ar.Hours)*len(area.Cinemas))

	for i, start := range starts {
		sugar.Infof("Routing start point %d/%d (%s) in %s...", i+1, len(starts), start.Name, area.Name)

		car, err := ors.AllDurations(ctx, ar.Roads, start.Point, dests, ors.ProfileCar, ar.Parallelism)
		if err != nil {
			return nil, err
		}
		foot, err := ors.AllDurations(ctx, ar.Roads, start.Point, dests, ors.ProfileFoot, ar.Parallelism)
		if err != nil {
			return nil, err
		}

		req := Request{
			StartName:     start.Name,
			Start:         start.Point,
			StartStations: ar.Selector.Stations.ClosestStations(start.Point, ar.StationCount),
			Targets:       targets,
		}

		toCentroid := geo.Haversine(start.Point, area.Centroid)

		for _, hour := range ar.Hours {
			req.Hour = hour
			routes, err := ar.Selector.FastestRoutes(ctx, req)
			if err != nil {
				return nil, err
			}

			for j, r := range routes {
				cinema := area.Cinemas[j]
				ret = append(ret, &Record{
					Area:               area.Name,
					StartName:          start.Name,
					StartLon:           start.Point.Lon(),
					StartLat:           start.Point.Lat(),
					Cinema:             cinema.Name,
					CinemaLon:          cinema.Point.Lon(),
					CinemaLat:          cinema.Point.Lat(),
					Hour:               hour,
					Route:              r.Route,
					TotalDuration:      r.Total.Seconds(),
					WalkTo:             r.WalkTo.Seconds(),
					WalkFrom:           r.WalkFrom.Seconds(),
					Changes:            r.Changes,
					CarDuration:        car[j].Seconds(),
					FootDuration:       foot[j].Seconds(),
					DistanceToCentroid: toCentroid,
					DistanceToCinema:   geo.Haversine(start.Point, cinema.Point),
				})
			}
		}
	}

	sugar.Infof("done. (%d records for %s)", len(ret), area.Name)

	return ret, nil
}
