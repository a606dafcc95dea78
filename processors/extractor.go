// Copyright 2016 Patrick Brosi
// Authors: info@patrickbrosi.de
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package processors

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/patrickbr/gtfsparser"
	"github.com/patrickbr/gtfsparser/gtfs"
	"github.com/patrickbr/gtfswriter"
	"go.uber.org/zap"
)

// ErrNoExtractedFeed is returned if the extracted feed of an area is missing
var ErrNoExtractedFeed = errors.New("no extracted GTFS feed")

// FeedPath returns the path of the zipped feed with the given name in dir
func FeedPath(dir string, name string) string {
	return filepath.Join(dir, name+".zip")
}

// ParseOptions are lenient parse options: erroneous values are replaced by
// defaults or dropped, empty strings by the placeholder
func ParseOptions(showWarnings bool) gtfsparser.ParseOptions {
	return gtfsparser.ParseOptions{
		UseDefValueOnError:   true,
		DropErroneous:        true,
		DryRun:               false,
		CheckNullCoordinates: true,
		EmptyStringRepl:      DefaultPlaceholder,
		ZipFix:               true,
		ShowWarnings:         showWarnings,
		DropShapes:           true,
	}
}

// LoadFeed parses an extracted feed. A missing feed yields ErrNoExtractedFeed.
func LoadFeed(path string, log *zap.Logger) (*gtfsparser.Feed, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoExtractedFeed, path)
		}
		return nil, err
	}

	logger(log).Infof("Parsing GTFS feed in '%s' ...", path)

	feed := gtfsparser.NewFeed()
	feed.SetParseOpts(ParseOptions(false))
	if err := feed.Parse(path); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	logger(log).Infof("done. (%d stops, %d trips, %d services)", len(feed.Stops), len(feed.Trips), len(feed.Services))
	return feed, nil
}

// Extractor cuts the feed of a single area out of a larger feed
type Extractor struct {
	// DateFilter restricts services to a single day, the zero date keeps all
	DateFilter   gtfs.Date
	ShowWarnings bool
	Logger       *zap.Logger
}

// Extract parses the feed at in, keeps the complete trips touching the
// bounding box outline bbox ([lon, lat] pairs) and writes the result to out
func (e Extractor) Extract(in string, out string, bbox [][2]float64) error {
	log := logger(e.Logger)

	opts := ParseOptions(e.ShowWarnings)
	opts.DateFilterStart = e.DateFilter
	opts.DateFilterEnd = e.DateFilter

	feed := gtfsparser.NewFeed()
	feed.SetParseOpts(opts)

	log.Infof("Parsing GTFS feed in '%s' ...", in)
	if err := feed.Parse(in); err != nil {
		return fmt.Errorf("parsing %s: %w", in, err)
	}

	s := feed.ErrorStats
	log.Infof("done. (%d trips, %d stop times, %d stops, %d services, %d routes dropped due to errors)",
		s.DroppedTrips, s.DroppedStopTimes, s.DroppedStops, s.DroppedServices, s.DroppedRoutes)

	chain := Chain{
		TripBBoxFilter{Polygons: []gtfsparser.Polygon{gtfsparser.NewPolygon(bbox, nil)}, Logger: e.Logger},
		OrphanRemover{Logger: e.Logger},
		StopNameNormalizer{Logger: e.Logger},
	}
	chain.Run(feed)

	if err := os.MkdirAll(filepath.Dir(out), os.ModePerm); err != nil {
		return err
	}

	if filepath.Ext(out) == ".zip" {
		if _, err := os.Stat(out); os.IsNotExist(err) {
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			f.Close()
		}
	}

	log.Infof("Outputting GTFS feed to '%s'...", out)
	w := gtfswriter.Writer{ZipCompressionLevel: 9, Sorted: true}
	if err := w.Write(feed, out); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	log.Infof("done.")

	return nil
}
