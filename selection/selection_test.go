// Copyright 2016 Patrick Brosi
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package selection

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/kinoaccess/kinoaccess/admin"
	"github.com/kinoaccess/kinoaccess/geo"
	"github.com/kinoaccess/kinoaccess/geodata"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const inkarCSV = `Kennziffer,Raumeinheit,Aggregat,Kinos,Bevölkerung,Einwohnerdichte,Siedlungs- und Verkehrsfläche,ÖV-Abfahrten,ÖV-Haltestellen
08221000,Heidelberg,Gemeinden,3,160000,1468.5,"35,2",900,250
09188139,Seefeld,Gemeinden,1,7000,180,12,40,15
03459005,Ankum,Gemeinden,,7500,120,10,20,8
99999999,Nirgendwo,Gemeinden,1,100,1,1,1,1
`

func unit(name, state string, lon, lat, half float64) *admin.Unit {
	c := geo.ToUTM32(orb.Point{lon, lat})
	return &admin.Unit{
		Name:  name,
		Type:  "Gemeinde",
		State: state,
		Geometry: orb.MultiPolygon{{{
			{c[0] - half, c[1] - half},
			{c[0] + half, c[1] - half},
			{c[0] + half, c[1] + half},
			{c[0] - half, c[1] + half},
			{c[0] - half, c[1] - half},
		}}},
	}
}

func testUnits() *admin.Units {
	return admin.NewUnits(
		unit("Heidelberg", "08", 8.7, 49.4, 5000),
		unit("Seefeld", "09", 11.2, 48.0, 2000),
		unit("Seefeld", "01", 10.3, 53.4, 2000),
		unit("Ankum", "03", 7.9, 52.5, 2000),
	)
}

func TestReadINKAR(t *testing.T) {
	rows, err := ReadINKAR(strings.NewReader(inkarCSV))
	require.NoError(t, err)
	require.Len(t, rows, 4)

	hd := rows[0]
	assert.Equal(t, "08221000", hd.ID)
	assert.Equal(t, "Heidelberg", hd.Name)
	assert.Equal(t, Num(3), hd.Cinemas)
	assert.Equal(t, Num(35.2), hd.BuiltUpArea)
	assert.False(t, rows[2].Cinemas.Valid)

	r, ok := Lookup(rows, "Seefeld")
	require.True(t, ok)
	assert.Equal(t, 7000.0, r.Population.Value)

	_, ok = Lookup(rows, "Mannheim")
	assert.False(t, ok)
}

func TestNumber(t *testing.T) {
	var n Number
	require.NoError(t, n.UnmarshalCSV("k.A."))
	assert.False(t, n.Valid)
	s, err := n.MarshalCSV()
	require.NoError(t, err)
	assert.Empty(t, s)
	assert.True(t, n.Float() != n.Float())

	require.NoError(t, n.UnmarshalCSV(" 12.5 "))
	assert.Equal(t, Num(12.5), n)
	s, err = n.MarshalCSV()
	require.NoError(t, err)
	assert.Equal(t, "12.5", s)
}

func TestSelection(t *testing.T) {
	rows, err := ReadINKAR(strings.NewReader(inkarCSV))
	require.NoError(t, err)

	ms, unmatched := ImportINKAR(rows, testUnits())
	assert.Equal(t, []string{"Nirgendwo"}, unmatched)
	require.Len(t, ms, 4)
	assert.Equal(t, "09", ms[1].Unit.State)
	assert.Equal(t, "01", ms[2].Unit.State)

	cinemas := []geodata.Place{
		{Name: "Gloria", Point: orb.Point{8.70, 49.41}},
		{Name: "Kamera", Point: orb.Point{8.69, 49.40}},
		{Name: "Luxor", Point: orb.Point{8.71, 49.39}},
		{Name: "Kino am See", Point: orb.Point{11.2, 48.0}},
		{Name: "Ankum Lichtspiele", Point: orb.Point{7.9, 52.5}},
		{Name: "Mannheim", Point: orb.Point{8.47, 49.49}},
	}

	PopulationPerCinema(ms, cinemas, nil)

	hd := ms[0]
	require.NotNil(t, hd.OSMCinemas)
	assert.Equal(t, 3, *hd.OSMCinemas)
	require.NotNil(t, hd.CinemasAccuracy)
	assert.Equal(t, 0.0, *hd.CinemasAccuracy)
	require.NotNil(t, hd.PopulationPerCinema)
	assert.InDelta(t, 160000.0/3, *hd.PopulationPerCinema, 1e-9)

	// second Seefeld has no cinema
	assert.Equal(t, 1, *ms[1].OSMCinemas)
	assert.Equal(t, 0, *ms[2].OSMCinemas)
	assert.Nil(t, ms[2].PopulationPerCinema)

	// Ankum has no INKAR cinema count
	assert.Equal(t, 1, *ms[3].OSMCinemas)
	assert.Nil(t, ms[3].CinemasAccuracy)
	assert.Nil(t, ms[3].PopulationPerCinema)

	kept := KeepOptions(ms)
	require.Len(t, kept, 2)
	assert.Equal(t, "Heidelberg", kept[0].Name)
	assert.Equal(t, "09", kept[1].Unit.State)

	dir := t.TempDir()
	table := filepath.Join(dir, "options.csv")
	layer := filepath.Join(dir, "options.geojson")
	require.NoError(t, WriteOptions(table, layer, kept))

	opts, err := ReadOptions(table)
	require.NoError(t, err)
	require.Len(t, opts, 2)
	assert.Equal(t, "Heidelberg", opts[0].Name)
	assert.Equal(t, Num(35.2), opts[0].BuiltUpArea)
	require.NotNil(t, opts[0].OSMCinemas)
	assert.Equal(t, 3, *opts[0].OSMCinemas)
	assert.InDelta(t, 8.7, opts[0].CentroidLon, 1e-4)

	areas, err := geodata.ReadAreas(layer)
	require.NoError(t, err)
	require.Len(t, areas, 2)
	assert.Equal(t, "Seefeld", areas[1].Props["GEN"])
	assert.True(t, geo.Contains(areas[0].Geometry, orb.Point{8.7, 49.4}))
}

func TestAccuracyMismatch(t *testing.T) {
	rows, err := ReadINKAR(strings.NewReader(inkarCSV))
	require.NoError(t, err)

	ms, _ := ImportINKAR(rows[:1], testUnits())
	PopulationPerCinema(ms, []geodata.Place{{Name: "Gloria", Point: orb.Point{8.7, 49.41}}}, nil)

	require.NotNil(t, ms[0].CinemasAccuracy)
	assert.Equal(t, -2.0, *ms[0].CinemasAccuracy)
	assert.Nil(t, ms[0].PopulationPerCinema)
	assert.Empty(t, KeepOptions(ms))
}
