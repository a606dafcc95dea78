// Copyright 2016 Patrick Brosi
// Authors: info@patrickbrosi.de
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package processors

import (
	"github.com/patrickbr/gtfsparser"
	gtfs "github.com/patrickbr/gtfsparser/gtfs"
	"go.uber.org/zap"
)

// OrphanRemover removes entities that aren't referenced anywhere
type OrphanRemover struct {
	Logger *zap.Logger
}

// Run the OrphanRemover on some feed
func (or OrphanRemover) Run(feed *gtfsparser.Feed) {
	log := logger(or.Logger)
	log.Infof("Removing unreferenced entries...")

	tripsB := len(feed.Trips)
	stopsB := len(feed.Stops)
	shapesB := len(feed.Shapes)
	serviceB := len(feed.Services)
	routesB := len(feed.Routes)
	agenciesB := len(feed.Agencies)

	or.removeTripOrphans(feed)
	or.removeTransferOrphans(feed)

	// stop deletion can create new parent station orphans
	or.removeStopOrphans(feed)
	or.removeStopOrphans(feed)

	or.removeShapeOrphans(feed)
	or.removeServiceOrphans(feed)
	or.removeRouteOrphans(feed)
	or.removeAgencyOrphans(feed)

	feed.CleanTransfers()

	log.Infof("done. (-%d trips [-%.2f%%], -%d stops [-%.2f%%], -%d shapes [-%.2f%%], -%d services [-%.2f%%], -%d routes [-%.2f%%], -%d agencies [-%.2f%%])",
		tripsB-len(feed.Trips), percent(tripsB-len(feed.Trips), tripsB),
		stopsB-len(feed.Stops), percent(stopsB-len(feed.Stops), stopsB),
		shapesB-len(feed.Shapes), percent(shapesB-len(feed.Shapes), shapesB),
		serviceB-len(feed.Services), percent(serviceB-len(feed.Services), serviceB),
		routesB-len(feed.Routes), percent(routesB-len(feed.Routes), routesB),
		agenciesB-len(feed.Agencies), percent(agenciesB-len(feed.Agencies), agenciesB))
}

// trips without stop times cannot be routed
func (or OrphanRemover) removeTripOrphans(feed *gtfsparser.Feed) {
	for id, t := range feed.Trips {
		if len(t.StopTimes) < 2 {
			feed.DeleteTrip(id)
		}
	}
}

func (or OrphanRemover) removeTransferOrphans(feed *gtfsparser.Feed) {
	referenced := make(map[*gtfs.Stop]empty)
	for _, t := range feed.Trips {
		for _, st := range t.StopTimes {
			referenced[st.Stop()] = empty{}
		}
	}

	for tk := range feed.Transfers {
		inFrom, inTo := true, true
		if tk.From_stop != nil {
			_, inFrom = referenced[tk.From_stop]
		}
		if tk.To_stop != nil {
			_, inTo = referenced[tk.To_stop]
		}
		if !inFrom || !inTo {
			feed.DeleteTransfer(tk)
		}
	}
}

func (or OrphanRemover) removeStopOrphans(feed *gtfsparser.Feed) {
	referenced := make(map[*gtfs.Stop]empty)
	for _, t := range feed.Trips {
		for _, st := range t.StopTimes {
			referenced[st.Stop()] = empty{}
		}
	}

	for tk := range feed.Transfers {
		if tk.From_stop != nil {
			referenced[tk.From_stop] = empty{}
		}
		if tk.To_stop != nil {
			referenced[tk.To_stop] = empty{}
		}
	}

	for _, s := range feed.Stops {
		if s.Parent_station != nil {
			referenced[s.Parent_station] = empty{}
		}
	}

	for _, p := range feed.Pathways {
		if p.From_stop != nil {
			referenced[p.From_stop] = empty{}
		}
		if p.To_stop != nil {
			referenced[p.To_stop] = empty{}
		}
	}

	for id, s := range feed.Stops {
		if _, in := referenced[s]; !in && s.Location_type != 2 {
			feed.DeleteStop(id)
		}
	}
}

func (or OrphanRemover) removeShapeOrphans(feed *gtfsparser.Feed) {
	referenced := make(map[*gtfs.Shape]empty)
	for _, t := range feed.Trips {
		if t.Shape != nil {
			referenced[t.Shape] = empty{}
		}
	}

	for id, s := range feed.Shapes {
		if _, in := referenced[s]; !in {
			feed.DeleteShape(id)
		}
	}
}

func (or OrphanRemover) removeServiceOrphans(feed *gtfsparser.Feed) {
	referenced := make(map[*gtfs.Service]empty)
	for _, t := range feed.Trips {
		referenced[t.Service] = empty{}
	}

	for id, s := range feed.Services {
		if _, in := referenced[s]; !in {
			feed.DeleteService(id)
		}
	}
}

func (or OrphanRemover) removeRouteOrphans(feed *gtfsparser.Feed) {
	referenced := make(map[*gtfs.Route]empty)
	for _, t := range feed.Trips {
		referenced[t.Route] = empty{}
	}

	for _, fa := range feed.FareAttributes {
		for _, fr := range fa.Rules {
			if fr.Route != nil {
				referenced[fr.Route] = empty{}
			}
		}
	}

	for id, r := range feed.Routes {
		if _, in := referenced[r]; !in {
			feed.DeleteRoute(id)
		}
	}
}

func (or OrphanRemover) removeAgencyOrphans(feed *gtfsparser.Feed) {
	referenced := make(map[*gtfs.Agency]empty)
	for _, r := range feed.Routes {
		if r.Agency != nil {
			referenced[r.Agency] = empty{}
		}
	}

	for _, fa := range feed.FareAttributes {
		if fa.Agency != nil {
			referenced[fa.Agency] = empty{}
		}
	}

	for id, a := range feed.Agencies {
		if _, in := referenced[a]; !in {
			feed.DeleteAgency(id)
		}
	}
}
