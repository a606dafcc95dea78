// Copyright 2016 Patrick Brosi
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

// Package routing selects the fastest transit itineraries from start points
// to cinemas and combines them with car and foot durations.
package routing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kinoaccess/kinoaccess/ors"
	"github.com/kinoaccess/kinoaccess/router"
	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

// NoRoute is the route name of a cinema without any valid itinerary
const NoRoute = "no routes possible to this cinema"

// Transit finds transit itineraries between stop names
type Transit interface {
	Route(from, to string, startTime int) (*router.Itinerary, error)
}

// Target is a cinema with its closest stations
type Target struct {
	Name     string
	Point    orb.Point
	Stations []router.Station
}

// Request asks for the fastest routes from one start point to all targets
// at one departure hour
type Request struct {
	StartName     string
	Start         orb.Point
	StartStations []router.Station
	Targets       []Target
	Hour          int
}

// CinemaRoute is the fastest route found to one cinema
type CinemaRoute struct {
	Cinema   string
	Route    string
	Total    ors.NullDuration
	WalkTo   ors.NullDuration
	WalkFrom ors.NullDuration
	Changes  *int
}

// Selector chooses the fastest itineraries. The timetable is only built
// once a route has to be computed.
type Selector struct {
	Stations *router.Stations
	Walker   ors.Router
	Memo     Memo
	Files    RouteFiles
	Logger   *zap.Logger

	build   func() (Transit, error)
	once    sync.Once
	transit Transit
	err     error
}

// NewSelector creates a selector building its timetable with build
func NewSelector(stations *router.Stations, walker ors.Router, memo Memo, files RouteFiles, build func() (Transit, error), log *zap.Logger) *Selector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Selector{
		Stations: stations,
		Walker:   walker,
		Memo:     memo,
		Files:    files,
		Logger:   log,
		build:    build,
	}
}

func (s *Selector) timetable() (Transit, error) {
	s.once.Do(func() {
		s.transit, s.err = s.build()
	})
	return s.transit, s.err
}

type candidate struct {
	it       *router.Itinerary
	key      string
	total    time.Duration
	walkTo   time.Duration
	walkFrom time.Duration
	fromFile bool
}

// FastestRoutes returns the fastest route to every target. Per start
// station a stored route is reused, memoized failures are skipped and
// otherwise every station of the target is tried. Candidates without both
// walking legs are invalid.
func (s *Selector) FastestRoutes(ctx context.Context, req Request) ([]CinemaRoute, error) {
	log := s.Logger.Sugar()
	ret := make([]CinemaRoute, 0, len(req.Targets))

	for _, target := range req.Targets {
		log.Debugf("cinema: %s", target.Name)

		var best *candidate

		for _, station := range req.StartStations {
			stop := SanitizeStopName(station.Name)
			routeKey := RouteKey(target.Name, stop, req.Hour)
			queryKey := QueryKey(target.Name, req.StartName, stop, req.Hour)

			stored, ok, err := s.Files.Read(routeKey)
			if err != nil {
				return nil, err
			}

			if ok {
				c, err := s.evaluate(ctx, stored, req.Start, target.Point)
				if err != nil {
					return nil, err
				}
				if c != nil && (best == nil || c.total < best.total) {
					c.key = routeKey
					c.fromFile = true
					best = c
				}
				log.Debugf("read route from %s from file", station.Name)
				continue
			}

			if skip, err := s.memoized(ctx, routeKey, queryKey); err != nil {
				return nil, err
			} else if skip {
				continue
			}

			cands, err := s.routeToTarget(station.Name, target, req.Hour)
			if err != nil {
				return nil, err
			}

			if len(cands) == 0 {
				log.Debugf("no route possible from %s", station.Name)
				if err := s.Memo.MarkImpossible(ctx, routeKey); err != nil {
					return nil, err
				}
				continue
			}

			var local *candidate
			for _, it := range cands {
				c, err := s.evaluate(ctx, it, req.Start, target.Point)
				if err != nil {
					return nil, err
				}
				if c != nil && (local == nil || c.total < local.total) {
					local = c
				}
			}

			if local == nil {
				log.Debugf("no route possible to %s", target.Name)
				continue
			}

			if best == nil || local.total < best.total {
				local.key = routeKey
				best = local
			} else if err := s.Memo.MarkNotFastest(ctx, queryKey); err != nil {
				return nil, err
			}
		}

		ret = append(ret, s.result(target.Name, best))

		if best != nil && !best.fromFile {
			if err := s.Files.Write(best.key, best.it); err != nil {
				return nil, err
			}
			log.Debugf("route written to %s", s.Files.Path(best.key))
		}
	}

	return ret, nil
}

func (s *Selector) memoized(ctx context.Context, routeKey, queryKey string) (bool, error) {
	imp, err := s.Memo.Impossible(ctx, routeKey)
	if err != nil || imp {
		return imp, err
	}
	return s.Memo.NotFastest(ctx, queryKey)
}

func (s *Selector) routeToTarget(from string, target Target, hour int) ([]*router.Itinerary, error) {
	tt, err := s.timetable()
	if err != nil {
		return nil, fmt.Errorf("building timetable: %w", err)
	}

	ret := make([]*router.Itinerary, 0, len(target.Stations))
	for _, st := range target.Stations {
		it, err := tt.Route(from, st.Name, hour*3600)
		if errors.Is(err, router.ErrNoRoute) {
			continue
		}
		if err != nil {
			return nil, err
		}
		ret = append(ret, it)
	}
	return ret, nil
}

// evaluate adds the walking legs to an itinerary, nil if one is missing
func (s *Selector) evaluate(ctx context.Context, it *router.Itinerary, start, cinema orb.Point) (*candidate, error) {
	to, from, err := ors.WalkToStation(ctx, s.Walker, it, start, cinema, s.Stations)
	if err != nil {
		return nil, err
	}
	if !to.Valid || !from.Valid {
		return nil, nil
	}
	return &candidate{
		it:       it,
		total:    it.Duration() + to.Duration + from.Duration,
		walkTo:   to.Duration,
		walkFrom: from.Duration,
	}, nil
}

func (s *Selector) result(cinema string, best *candidate) CinemaRoute {
	if best == nil {
		return CinemaRoute{Cinema: cinema, Route: NoRoute}
	}
	changes := best.it.Changes()
	return CinemaRoute{
		Cinema:   cinema,
		Route:    s.Files.Name(best.key),
		Total:    ors.Some(best.total),
		WalkTo:   ors.Some(best.walkTo),
		WalkFrom: ors.Some(best.walkFrom),
		Changes:  &changes,
	}
}
