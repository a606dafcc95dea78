// Copyright 2016 Patrick Brosi
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

// Package geodata stores point layers (cinemas, start points, result
// layers) and area layers as GeoJSON files.
package geodata

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
)

// Place is a named WGS84 point, e.g. a cinema or a start point
type Place struct {
	Name  string
	OSMID string
	Point orb.Point
}

// Layer is a point layer with arbitrary properties per point
type Layer struct {
	Points []orb.Point
	Props  []map[string]interface{}
}

// Add appends a point with its properties
func (l *Layer) Add(p orb.Point, props map[string]interface{}) {
	l.Points = append(l.Points, p)
	l.Props = append(l.Props, props)
}

// Exists reports whether a layer file is present
func Exists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

// WritePlaces writes places as a GeoJSON point collection
func WritePlaces(path string, places []Place) error {
	fc := geojson.NewFeatureCollection()
	for _, p := range places {
		f := geojson.NewPointFeature([]float64{p.Point.Lon(), p.Point.Lat()})
		f.SetProperty("name", p.Name)
		if len(p.OSMID) > 0 {
			f.SetProperty("osmid", p.OSMID)
		}
		fc.AddFeature(f)
	}
	return writeFC(path, fc)
}

// ReadPlaces reads a GeoJSON point collection written by WritePlaces.
// Features without point geometry are skipped.
func ReadPlaces(path string) ([]Place, error) {
	fc, err := readFC(path)
	if err != nil {
		return nil, err
	}

	ret := make([]Place, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f.Geometry == nil || !f.Geometry.IsPoint() || len(f.Geometry.Point) < 2 {
			continue
		}
		name, _ := f.PropertyString("name")
		osmid, _ := f.PropertyString("osmid")
		ret = append(ret, Place{
			Name:  name,
			OSMID: osmid,
			Point: orb.Point{f.Geometry.Point[0], f.Geometry.Point[1]},
		})
	}
	return ret, nil
}

// WriteLayer writes a point layer with properties
func WriteLayer(path string, l *Layer) error {
	fc := geojson.NewFeatureCollection()
	for i, p := range l.Points {
		f := geojson.NewPointFeature([]float64{p.Lon(), p.Lat()})
		for k, v := range l.Props[i] {
			f.SetProperty(k, v)
		}
		fc.AddFeature(f)
	}
	return writeFC(path, fc)
}

// ReadLayer reads a point layer with properties
func ReadLayer(path string) (*Layer, error) {
	fc, err := readFC(path)
	if err != nil {
		return nil, err
	}

	ret := &Layer{}
	for _, f := range fc.Features {
		if f.Geometry == nil || !f.Geometry.IsPoint() || len(f.Geometry.Point) < 2 {
			continue
		}
		ret.Add(orb.Point{f.Geometry.Point[0], f.Geometry.Point[1]}, f.Properties)
	}
	return ret, nil
}

// ConcatLayers concatenates point layer files into one
func ConcatLayers(out string, in ...string) error {
	res := &Layer{}
	for _, p := range in {
		l, err := ReadLayer(p)
		if err != nil {
			return err
		}
		res.Points = append(res.Points, l.Points...)
		res.Props = append(res.Props, l.Props...)
	}
	return WriteLayer(out, res)
}

// Area is a named WGS84 multipolygon with properties
type Area struct {
	Geometry orb.MultiPolygon
	Props    map[string]interface{}
}

// WriteAreas writes area polygons with properties
func WriteAreas(path string, areas []Area) error {
	fc := geojson.NewFeatureCollection()
	for _, a := range areas {
		f := geojson.NewMultiPolygonFeature(multiPolygonCoords(a.Geometry)...)
		for k, v := range a.Props {
			f.SetProperty(k, v)
		}
		fc.AddFeature(f)
	}
	return writeFC(path, fc)
}

// ReadAreas reads area polygons written by WriteAreas
func ReadAreas(path string) ([]Area, error) {
	fc, err := readFC(path)
	if err != nil {
		return nil, err
	}

	ret := make([]Area, 0, len(fc.Features))
	for _, f := range fc.Features {
		a := Area{Props: f.Properties}
		if f.Geometry != nil {
			if f.Geometry.IsMultiPolygon() {
				a.Geometry = toMultiPolygon(f.Geometry.MultiPolygon)
			} else if f.Geometry.IsPolygon() {
				a.Geometry = toMultiPolygon([][][][]float64{f.Geometry.Polygon})
			}
		}
		ret = append(ret, a)
	}
	return ret, nil
}

func multiPolygonCoords(mp orb.MultiPolygon) [][][][]float64 {
	ret := make([][][][]float64, len(mp))
	for i, poly := range mp {
		ret[i] = make([][][]float64, len(poly))
		for j, ring := range poly {
			ret[i][j] = make([][]float64, len(ring))
			for k, p := range ring {
				ret[i][j][k] = []float64{p[0], p[1]}
			}
		}
	}
	return ret
}

func toMultiPolygon(coords [][][][]float64) orb.MultiPolygon {
	ret := make(orb.MultiPolygon, len(coords))
	for i, poly := range coords {
		ret[i] = make(orb.Polygon, len(poly))
		for j, ring := range poly {
			ret[i][j] = make(orb.Ring, len(ring))
			for k, c := range ring {
				ret[i][j][k] = orb.Point{c[0], c[1]}
			}
		}
	}
	return ret
}

func writeFC(path string, fc *geojson.FeatureCollection) error {
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func readFC(path string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return fc, nil
}
