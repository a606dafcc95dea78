// Copyright 2016 Patrick Brosi
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

// Package osmdata collects cinemas and residential buildings from
// OpenStreetMap extracts.
package osmdata

import (
	"context"
	"fmt"
	"os"

	"github.com/kinoaccess/kinoaccess/geo"
	"github.com/kinoaccess/kinoaccess/geodata"
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"go.uber.org/zap"
)

// Kind is a category of collected features
type Kind int

const (
	Cinema Kind = iota
	Residential
)

var residentialBuildings = map[string]bool{
	"apartments":  true,
	"dormitory":   true,
	"residential": true,
}

func (k Kind) String() string {
	switch k {
	case Cinema:
		return "cinema"
	case Residential:
		return "residential"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Matches reports whether the tags describe a feature of kind k
func (k Kind) Matches(tags osm.Tags) bool {
	switch k {
	case Cinema:
		return tags.Find("amenity") == "cinema"
	case Residential:
		return residentialBuildings[tags.Find("building")]
	}
	return false
}

// Features holds the collected features per kind
type Features map[Kind][]geodata.Place

// Scanner is the subset of an OSM object scanner used here. osmpbf.Scanner
// implements it.
type Scanner interface {
	Scan() bool
	Object() osm.Object
	Err() error
}

// Extractor collects features of the requested kinds from OSM data
type Extractor struct {
	Kinds  []Kind
	Area   orb.Geometry // WGS84 filter polygon, nil keeps everything
	Logger *zap.Logger
}

// ExtractFile scans an .osm.pbf file
func (e *Extractor) ExtractFile(ctx context.Context, path string) (Features, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	scanner := osmpbf.New(ctx, f, 0)
	defer scanner.Close()

	ret, err := e.Extract(scanner)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return ret, nil
}

// Extract collects features from a stream of OSM objects. Nodes must
// precede the ways referencing them, as in any sorted OSM file. Closed ways
// are replaced by their centroid, open ways are dropped.
func (e *Extractor) Extract(scanner Scanner) (Features, error) {
	log := e.Logger
	if log == nil {
		log = zap.NewNop()
	}

	coords := make(map[osm.NodeID]orb.Point)
	ret := make(Features)
	nNodes, nWays := 0, 0

	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *osm.Node:
			p := orb.Point{o.Lon, o.Lat}
			coords[o.ID] = p
			nNodes++
			for _, k := range e.Kinds {
				if k.Matches(o.Tags) {
					e.add(ret, k, o.Tags, o.FeatureID(), p)
				}
			}
		case *osm.Way:
			nWays++
			for _, k := range e.Kinds {
				if !k.Matches(o.Tags) {
					continue
				}
				p, ok := wayCentroid(o, coords)
				if !ok {
					continue
				}
				e.add(ret, k, o.Tags, o.FeatureID(), p)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	for _, k := range e.Kinds {
		log.Sugar().Infof("scanned %d nodes and %d ways, %d %s features", nNodes, nWays, len(ret[k]), k)
	}

	return ret, nil
}

func (e *Extractor) add(fs Features, k Kind, tags osm.Tags, id osm.FeatureID, p orb.Point) {
	if e.Area != nil && !geo.Contains(e.Area, p) {
		return
	}
	fs[k] = append(fs[k], geodata.Place{Name: placeName(tags, id), OSMID: id.String(), Point: p})
}

func placeName(tags osm.Tags, id osm.FeatureID) string {
	if n := tags.Find("name"); len(n) > 0 {
		return n
	}
	return fmt.Sprintf("osmid_%s", id)
}

func wayCentroid(w *osm.Way, coords map[osm.NodeID]orb.Point) (orb.Point, bool) {
	if len(w.Nodes) < 4 || w.Nodes[0].ID != w.Nodes[len(w.Nodes)-1].ID {
		return orb.Point{}, false
	}

	ring := make(orb.Ring, 0, len(w.Nodes))
	for _, n := range w.Nodes {
		p, ok := coords[n.ID]
		if !ok {
			return orb.Point{}, false
		}
		ring = append(ring, p)
	}

	return geo.Centroid(orb.Polygon{ring}), true
}

// CountPerUnit counts the places within each of the given WGS84 areas
func CountPerUnit(places []geodata.Place, areas []orb.Geometry) []int {
	ret := make([]int, len(areas))
	for i, a := range areas {
		b := a.Bound()
		for _, p := range places {
			if b.Contains(p.Point) && geo.Contains(a, p.Point) {
				ret[i]++
			}
		}
	}
	return ret
}
