// Copyright 2016 Patrick Brosi
// Authors: info@patrickbrosi.de
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package processors

import (
	"github.com/patrickbr/gtfsparser"
	"github.com/patrickbr/gtfsparser/gtfs"
	"go.uber.org/zap"
)

// TripBBoxFilter keeps complete trips serving at least one stop within the
// polygons and drops all stops no remaining trip uses
type TripBBoxFilter struct {
	Polygons []gtfsparser.Polygon
	Logger   *zap.Logger
}

// Run this TripBBoxFilter on some feed
func (f TripBBoxFilter) Run(feed *gtfsparser.Feed) {
	log := logger(f.Logger)
	log.Infof("Filtering trips by bounding box...")

	tripsB := len(feed.Trips)
	stopsB := len(feed.Stops)

	// collect stops within the polygons
	inside := make(map[*gtfs.Stop]empty)
	used := make(map[*gtfs.Stop]empty)

	for _, s := range feed.Stops {
		for _, poly := range f.Polygons {
			if poly.PolyContains(float64(s.Lon), float64(s.Lat)) {
				inside[s] = empty{}
				break
			}
		}
	}

	for id, t := range feed.Trips {
		contained := false
		for _, st := range t.StopTimes {
			if _, ok := inside[st.Stop()]; ok {
				contained = true
				break
			}
		}

		if !contained {
			feed.DeleteTrip(id)
			continue
		}

		for _, st := range t.StopTimes {
			used[st.Stop()] = empty{}
			if st.Stop().Parent_station != nil {
				used[st.Stop().Parent_station] = empty{}
			}
		}
	}

	// stops inside the box stay, even if unserved
	for s := range inside {
		used[s] = empty{}
		if s.Parent_station != nil {
			used[s.Parent_station] = empty{}
		}
	}

	pathways := make(map[*gtfs.Stop][]*gtfs.Pathway, len(feed.Pathways))
	for _, p := range feed.Pathways {
		pathways[p.From_stop] = append(pathways[p.From_stop], p)
		if p.From_stop != p.To_stop {
			pathways[p.To_stop] = append(pathways[p.To_stop], p)
		}
	}

	toDel := make([]*gtfs.Stop, 0)
	for _, s := range feed.Stops {
		if _, ok := used[s]; !ok {
			toDel = append(toDel, s)
		}
	}

	for _, s := range toDel {
		for _, p := range pathways[s] {
			feed.DeletePathway(p.Id)
		}
		feed.DeleteStop(s.Id)
	}

	feed.CleanTransfers()

	log.Infof("done. (-%d trips [-%.2f%%], -%d stops [-%.2f%%])",
		tripsB-len(feed.Trips), percent(tripsB-len(feed.Trips), tripsB),
		stopsB-len(feed.Stops), percent(stopsB-len(feed.Stops), stopsB))
}
