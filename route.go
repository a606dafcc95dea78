// Copyright 2016 Patrick Brosi
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package main

import (
	"context"
	"time"

	"github.com/kinoaccess/kinoaccess/admin"
	"github.com/kinoaccess/kinoaccess/geodata"
	"github.com/kinoaccess/kinoaccess/ors"
	"github.com/kinoaccess/kinoaccess/osmdata"
	"github.com/kinoaccess/kinoaccess/processors"
	"github.com/kinoaccess/kinoaccess/router"
	"github.com/kinoaccess/kinoaccess/routing"
	"github.com/spf13/cobra"
)

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "Route random start points to all cinemas of every study area",
	Long: `Draws batchCount*batchSize random residential start points per study area
and routes each of them to every cinema of the area by transit, on foot and
by car, for every configured departure hour.

Routing runs in batches. An interrupted run continues with the first batch
not yet written, areas with a complete result table are skipped.`,
	Args: cobra.NoArgs,
	RunE: runRoute,
}

var cornersCmd = &cobra.Command{
	Use:   "corners",
	Short: "Route the start points nearest to the bounding box edges of every study area",
	Args:  cobra.NoArgs,
	RunE:  runCorners,
}

var concatCornersCmd = &cobra.Command{
	Use:   "concat-corners",
	Short: "Combine the random and the corner start point results of every study area",
	Args:  cobra.NoArgs,
	RunE:  runConcatCorners,
}

// studyArea is a study area prepared for routing
type studyArea struct {
	unit        *admin.Unit
	area        routing.Area
	residential []geodata.Place
	batcher     *routing.Batcher
}

func startCount() int {
	return cfg.BatchCount * cfg.BatchSize
}

// areaFeatures returns the cinemas and residential buildings of an area,
// scanning the OSM extract of the area only if they are not cached yet
func areaFeatures(ctx context.Context, name string, u *admin.Unit) ([]geodata.Place, []geodata.Place, error) {
	l := layout()
	var fs osmdata.Features

	cached := func(k osmdata.Kind) func() ([]geodata.Place, error) {
		return func() ([]geodata.Place, error) {
			if fs == nil {
				path := areaOSMFile(name)
				sugar().Infof("Collecting features of %s from '%s' ...", name, path)

				ex := osmdata.Extractor{
					Kinds:  []osmdata.Kind{osmdata.Cinema, osmdata.Residential},
					Area:   u.WGS84(),
					Logger: logger,
				}
				var err error
				if fs, err = ex.ExtractFile(ctx, path); err != nil {
					return nil, err
				}
				sugar().Infof("done. (%d cinemas, %d residential buildings)", len(fs[osmdata.Cinema]), len(fs[osmdata.Residential]))
			}
			return fs[k], nil
		}
	}

	cinemas, err := routing.CachedPlaces(l.Cinemas(name), cached(osmdata.Cinema))
	if err != nil {
		return nil, nil, err
	}
	residential, err := routing.CachedPlaces(l.Residential(name), cached(osmdata.Residential))
	if err != nil {
		return nil, nil, err
	}
	return cinemas, residential, nil
}

func transitOptions() router.Options {
	opts := router.DefaultOptions(time.Weekday(cfg.WeekdayIndex()))
	opts.MaxTransferDist = cfg.Transfer.MaxDistance
	opts.MinTransferTime = cfg.Transfer.MinTransferTime
	opts.WalkSpeed = cfg.Transfer.WalkSpeed
	opts.Date, opts.UseDate = cfg.GTFSDate()
	opts.Logger = logger
	return opts
}

// prepareArea loads the extracted feed and the OSM features of an area. A
// missing feed fails before anything is routed.
func prepareArea(ctx context.Context, units *admin.Units, name string, roads ors.Router, memo routing.Memo) (*studyArea, error) {
	l := layout()

	u, err := lookupArea(units, name)
	if err != nil {
		return nil, err
	}

	feed, err := processors.LoadFeed(processors.FeedPath(cfg.Paths.GTFS, cfg.FilteredFeedName(name)), logger)
	if err != nil {
		return nil, err
	}

	cinemas, residential, err := areaFeatures(ctx, name, u)
	if err != nil {
		return nil, err
	}
	if len(cinemas) == 0 {
		sugar().Warnf("No cinemas found in %s", name)
	}

	opts := transitOptions()
	build := func() (routing.Transit, error) {
		sugar().Infof("Building timetable of %s...", name)
		tt := router.NewTimetable(feed, opts)
		sugar().Infof("done. (%d connections)", tt.NumConnections())
		return tt, nil
	}

	sel := routing.NewSelector(router.NewStations(feed), roads, memo, routing.RouteFiles{Dir: l.Routes(name)}, build, logger)

	ar := &routing.AreaRouter{
		Selector:     sel,
		Roads:        roads,
		Hours:        cfg.Times,
		StationCount: cfg.StationCount,
		Parallelism:  cfg.ORS.Parallelism,
		Logger:       logger,
	}

	return &studyArea{
		unit:        u,
		area:        routing.Area{Name: name, Centroid: u.Centroid(), Cinemas: cinemas},
		residential: residential,
		batcher: &routing.Batcher{
			Router:    ar,
			Layout:    l,
			TimesDate: cfg.TimesDate(),
			BatchSize: cfg.BatchSize,
			Logger:    logger,
		},
	}, nil
}

// routeAreas prepares every study area without a result table at table and
// calls route on it
func routeAreas(cmd *cobra.Command, table func(area string) string, route func(ctx context.Context, s *studyArea) (string, error)) error {
	ctx := cmdContext(cmd)
	log := sugar()

	units, err := municipalities()
	if err != nil {
		return err
	}

	memo, err := routing.OpenSQLiteMemo(layout().Memo())
	if err != nil {
		return err
	}
	defer memo.Close()

	roads := ors.NewClient(cfg.ORS, logger)

	for _, name := range studyAreas() {
		if geodata.Exists(table(name)) {
			log.Infof("%s already routed to '%s'", name, table(name))
			continue
		}

		s, err := prepareArea(ctx, units, name, roads, memo)
		if err != nil {
			return err
		}

		out, err := route(ctx, s)
		if err != nil {
			return err
		}

		impossible, slower, err := memo.Count(ctx)
		if err != nil {
			return err
		}
		log.Infof("done. (%s written, %d impossible routes and %d slower queries memoized)", out, impossible, slower)
	}

	return nil
}

func runRoute(cmd *cobra.Command, args []string) error {
	l := layout()
	n := startCount()

	return routeAreas(cmd, func(area string) string {
		return l.Table(area, cfg.TimesDate(), n)
	}, func(ctx context.Context, s *studyArea) (string, error) {
		starts, err := routing.CachedPlaces(l.StartPoints(s.area.Name, n), func() ([]geodata.Place, error) {
			return osmdata.RandomSample(s.residential, n, cfg.Seed)
		})
		if err != nil {
			return "", err
		}
		return s.batcher.BatchRoute(ctx, s.area, starts)
	})
}

func runCorners(cmd *cobra.Command, args []string) error {
	l := layout()

	return routeAreas(cmd, func(area string) string {
		return l.Table(area, cfg.TimesDate(), routing.CornerCount)
	}, func(ctx context.Context, s *studyArea) (string, error) {
		corners, err := routing.CachedPlaces(l.BBoxStartPoints(s.area.Name), func() ([]geodata.Place, error) {
			return osmdata.BBoxEdgePoints(s.unit.Geometry, s.residential)
		})
		if err != nil {
			return "", err
		}
		return s.batcher.RouteCorners(ctx, s.area, corners)
	})
}

func runConcatCorners(cmd *cobra.Command, args []string) error {
	b := &routing.Batcher{Layout: layout(), TimesDate: cfg.TimesDate(), Logger: logger}

	for _, area := range studyAreas() {
		out, err := b.ConcatCorners(area, startCount())
		if err != nil {
			return err
		}
		sugar().Infof("done. (%s)", out)
	}
	return nil
}
