// Copyright 2016 Patrick Brosi
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

// Package admin reads the VG5000 administrative boundaries of Germany.
package admin

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/kinoaccess/kinoaccess/geo"
	"github.com/paulmach/orb"
)

// Administrative levels available in VG5000
const (
	Municipalities   = "GEM"
	Districts        = "KRS"
	States           = "LAN"
	StateBorders     = "LI"
	GovDistricts     = "RBZ"
	StateTerritory   = "STA"
	AdminAssociation = "VWG"
)

// ErrUnknownArea is returned if no unit with the requested name exists
var ErrUnknownArea = errors.New("unknown administrative area")

// Unit is a single administrative unit. Geometry is in EPSG:25832.
type Unit struct {
	Name     string
	Type     string
	State    string
	Geometry orb.MultiPolygon
}

// Centroid returns the WGS84 area centroid of the unit
func (u *Unit) Centroid() orb.Point {
	return geo.CentroidUTM(u.Geometry)
}

// WGS84 returns the unit geometry in WGS84
func (u *Unit) WGS84() orb.MultiPolygon {
	return geo.GeometryFromUTM32(u.Geometry).(orb.MultiPolygon)
}

// Units is an ordered collection of administrative units
type Units struct {
	units  []*Unit
	byName map[string][]*Unit
}

// Path returns the shapefile path for a level in dir
func Path(dir string, level string) string {
	return filepath.Join(dir, fmt.Sprintf("VG5000_%s.shp", level))
}

// Load reads all units of a level from the VG5000 shapefiles in dir
func Load(dir string, level string) (*Units, error) {
	return Read(Path(dir, level))
}

// Read reads all units from a shapefile with GEN, BEZ and LAN attributes
func Read(path string) (*Units, error) {
	r, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer r.Close()

	gen, bez, lan := -1, -1, -1
	for i, f := range r.Fields() {
		switch strings.ToUpper(strings.TrimSpace(f.String())) {
		case "GEN":
			gen = i
		case "BEZ":
			bez = i
		case "LAN":
			lan = i
		}
	}

	if gen < 0 {
		return nil, fmt.Errorf("%s has no GEN attribute", path)
	}

	ret := &Units{byName: make(map[string][]*Unit)}

	for r.Next() {
		n, shape := r.Shape()

		poly, ok := shape.(*shp.Polygon)
		if !ok {
			continue
		}

		u := &Unit{
			Name:     clean(r.ReadAttribute(n, gen)),
			Geometry: shpToMultiPolygon(poly),
		}
		if bez >= 0 {
			u.Type = clean(r.ReadAttribute(n, bez))
		}
		if lan >= 0 {
			u.State = clean(r.ReadAttribute(n, lan))
		}

		ret.add(u)
	}

	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return ret, nil
}

// NewUnits builds a collection from already loaded units
func NewUnits(units ...*Unit) *Units {
	ret := &Units{byName: make(map[string][]*Unit)}
	for _, u := range units {
		ret.add(u)
	}
	return ret
}

func (us *Units) add(u *Unit) {
	us.units = append(us.units, u)
	us.byName[u.Name] = append(us.byName[u.Name], u)
}

// All returns all units in file order
func (us *Units) All() []*Unit {
	return us.units
}

// Lookup returns the idx-th unit (in file order) with the given name.
// Several municipalities share a name, idx selects among them.
func (us *Units) Lookup(name string, idx int) (*Unit, error) {
	cands := us.byName[name]
	if idx < 0 || idx >= len(cands) {
		return nil, fmt.Errorf("%w: %s (#%d)", ErrUnknownArea, name, idx)
	}
	return cands[idx], nil
}

// Has reports whether a unit with this name exists
func (us *Units) Has(name string) bool {
	return len(us.byName[name]) > 0
}

func clean(s string) string {
	return strings.TrimSpace(strings.Trim(s, "\x00"))
}

// shapefile polygons are lists of rings; clockwise rings are outer
// boundaries, counter-clockwise rings are holes of the preceding outer ring
func shpToMultiPolygon(p *shp.Polygon) orb.MultiPolygon {
	ret := orb.MultiPolygon{}

	for i := 0; i < int(p.NumParts); i++ {
		start := int(p.Parts[i])
		end := int(p.NumPoints)
		if i+1 < int(p.NumParts) {
			end = int(p.Parts[i+1])
		}

		ring := make(orb.Ring, 0, end-start)
		for _, pt := range p.Points[start:end] {
			ring = append(ring, orb.Point{pt.X, pt.Y})
		}

		if len(ring) < 4 {
			continue
		}

		if ring.Orientation() == orb.CCW && len(ret) > 0 {
			ret[len(ret)-1] = append(ret[len(ret)-1], ring)
			continue
		}

		ret = append(ret, orb.Polygon{ring})
	}

	return ret
}
