// Copyright 2016 Patrick Brosi
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package geodata

import (
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "cinemas.geojson")
	assert.False(t, Exists(path))

	places := []Place{
		{Name: "Gloria", OSMID: "node/1", Point: orb.Point{8.69, 49.41}},
		{Name: "osmid_way/2", OSMID: "way/2", Point: orb.Point{8.70, 49.40}},
	}
	require.NoError(t, WritePlaces(path, places))
	assert.True(t, Exists(path))

	got, err := ReadPlaces(path)
	require.NoError(t, err)
	assert.Equal(t, places, got)
}

func TestLayers(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.geojson")
	b := filepath.Join(dir, "b.geojson")
	out := filepath.Join(dir, "ab.geojson")

	la := &Layer{}
	la.Add(orb.Point{1, 2}, map[string]interface{}{"name": "a", "duration": 12.5})
	lb := &Layer{}
	lb.Add(orb.Point{3, 4}, map[string]interface{}{"name": "b"})
	lb.Add(orb.Point{5, 6}, map[string]interface{}{"name": "c"})

	require.NoError(t, WriteLayer(a, la))
	require.NoError(t, WriteLayer(b, lb))
	require.NoError(t, ConcatLayers(out, a, b))

	l, err := ReadLayer(out)
	require.NoError(t, err)
	require.Len(t, l.Points, 3)
	assert.Equal(t, orb.Point{5, 6}, l.Points[2])
	assert.Equal(t, 12.5, l.Props[0]["duration"])
	assert.Equal(t, "c", l.Props[2]["name"])
}

func TestAreas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "areas.geojson")
	mp := orb.MultiPolygon{{{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}}}

	require.NoError(t, WriteAreas(path, []Area{{Geometry: mp, Props: map[string]interface{}{"GEN": "Ankum"}}}))

	areas, err := ReadAreas(path)
	require.NoError(t, err)
	require.Len(t, areas, 1)
	assert.Equal(t, mp, areas[0].Geometry)
	assert.Equal(t, "Ankum", areas[0].Props["GEN"])
}
