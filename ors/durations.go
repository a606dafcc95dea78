// Copyright 2016 Patrick Brosi
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package ors

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kinoaccess/kinoaccess/router"
	"github.com/paulmach/orb"
	"golang.org/x/sync/errgroup"
)

// NullDuration is a duration that may be missing
type NullDuration struct {
	Duration time.Duration
	Valid    bool
}

// Some returns a valid NullDuration
func Some(d time.Duration) NullDuration {
	return NullDuration{Duration: d, Valid: true}
}

// Seconds returns the duration in seconds, or nil if missing
func (n NullDuration) Seconds() *float64 {
	if !n.Valid {
		return nil
	}
	s := n.Duration.Seconds()
	return &s
}

// Optional turns ErrNoDuration into a missing duration
func Optional(d time.Duration, err error) (NullDuration, error) {
	if errors.Is(err, ErrNoDuration) {
		return NullDuration{}, nil
	}
	if err != nil {
		return NullDuration{}, err
	}
	return Some(d), nil
}

// AllDurations returns one optional duration from start to each of the
// destinations, requesting at most parallelism durations at once
func AllDurations(ctx context.Context, r Router, start orb.Point, dests []orb.Point, profile string, parallelism int) ([]NullDuration, error) {
	ret := make([]NullDuration, len(dests))

	g, ctx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}

	for i, dest := range dests {
		i, dest := i, dest
		g.Go(func() error {
			d, err := Optional(r.Duration(ctx, start, dest, profile))
			if err != nil {
				return err
			}
			ret[i] = d
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ret, nil
}

// WalkToStation returns the walking durations from start to the departure
// stop and from the arrival stop to the cinema. Stops are located by name.
func WalkToStation(ctx context.Context, r Router, it *router.Itinerary, start, cinema orb.Point, stations *router.Stations) (NullDuration, NullDuration, error) {
	if it == nil || len(it.Visits) == 0 {
		return NullDuration{}, NullDuration{}, nil
	}

	dep, ok := stations.Point(it.First().StopName)
	if !ok {
		return NullDuration{}, NullDuration{}, fmt.Errorf("unknown departure stop %q", it.First().StopName)
	}

	arr, ok := stations.Point(it.Last().StopName)
	if !ok {
		return NullDuration{}, NullDuration{}, fmt.Errorf("unknown arrival stop %q", it.Last().StopName)
	}

	to, err := Optional(r.Duration(ctx, start, dep, ProfileFoot))
	if err != nil {
		return NullDuration{}, NullDuration{}, err
	}

	from, err := Optional(r.Duration(ctx, arr, cinema, ProfileFoot))
	if err != nil {
		return NullDuration{}, NullDuration{}, err
	}

	return to, from, nil
}
