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
	"github.com/kinoaccess/kinoaccess/router"
)

// RouteFiles stores chosen itineraries as CSV files named by route key
type RouteFiles struct {
	Dir string
}

// Name returns the file name of a route key
func (rf RouteFiles) Name(routeKey string) string {
	return routeKey + ".csv"
}

// Path returns the file path of a route key
func (rf RouteFiles) Path(routeKey string) string {
	return filepath.Join(rf.Dir, rf.Name(routeKey))
}

// Read returns the stored itinerary of a route key, if any
func (rf RouteFiles) Read(routeKey string) (*router.Itinerary, bool, error) {
	f, err := os.Open(rf.Path(routeKey))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	visits := []*router.Visit{}
	if err := gocsv.UnmarshalFile(f, &visits); err != nil {
		return nil, false, fmt.Errorf("reading route %s: %w", rf.Path(routeKey), err)
	}

	if len(visits) == 0 {
		return nil, false, fmt.Errorf("route %s is empty", rf.Path(routeKey))
	}

	return &router.Itinerary{Visits: visits}, true, nil
}

// Write stores the itinerary of a route key
func (rf RouteFiles) Write(routeKey string, it *router.Itinerary) error {
	if err := os.MkdirAll(rf.Dir, os.ModePerm); err != nil {
		return err
	}

	f, err := os.Create(rf.Path(routeKey))
	if err != nil {
		return err
	}

	if err := gocsv.MarshalFile(&it.Visits, f); err != nil {
		f.Close()
		return fmt.Errorf("writing route %s: %w", rf.Path(routeKey), err)
	}
	return f.Close()
}
