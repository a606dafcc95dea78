// Copyright 2016 Patrick Brosi
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package main

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/kinoaccess/kinoaccess/admin"
	"github.com/kinoaccess/kinoaccess/analysis"
	"github.com/kinoaccess/kinoaccess/config"
	"github.com/kinoaccess/kinoaccess/geo"
	"github.com/kinoaccess/kinoaccess/processors"
	"github.com/kinoaccess/kinoaccess/routing"
	"github.com/paulmach/orb"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testConfig = `
paths:
  data: %[1]s/data
  results: %[1]s/results
  images: %[1]s/images
feed: testfeed
weekday: Sat
date: "20240309"
times: [15, 18]
batchCount: 1
batchSize: 2
ors:
  baseURL: http://127.0.0.1:1/ors
levels:
  top: [Heidelberg]
  base: [Seefeld]
duplicateIndex:
  Seefeld: 1
`

const inkarTop = `Kennziffer,Raumeinheit,Aggregat,Kinos,Bevölkerung,Einwohnerdichte,Siedlungs- und Verkehrsfläche,ÖV-Abfahrten,ÖV-Haltestellen
08221000,Heidelberg,Gemeinden,1,160000,1468.5,35,900,250
`

const inkarBase = `Kennziffer,Raumeinheit,Aggregat,Kinos,Bevölkerung,Einwohnerdichte,Siedlungs- und Verkehrsfläche,ÖV-Abfahrten,ÖV-Haltestellen
01057070,Seefeld,Gemeinden,1,3000,80,8,10,4
`

func square(lon, lat, half float64) [][]shp.Point {
	c := geo.ToUTM32(orb.Point{lon, lat})
	return [][]shp.Point{{
		{X: c[0] - half, Y: c[1] - half},
		{X: c[0] - half, Y: c[1] + half},
		{X: c[0] + half, Y: c[1] + half},
		{X: c[0] + half, Y: c[1] - half},
		{X: c[0] - half, Y: c[1] - half},
	}}
}

func writeMunicipalities(t *testing.T, dir string) {
	require.NoError(t, os.MkdirAll(dir, os.ModePerm))

	w, err := shp.Create(admin.Path(dir, admin.Municipalities), shp.POLYGON)
	require.NoError(t, err)

	require.NoError(t, w.SetFields([]shp.Field{
		shp.StringField("GEN", 50),
		shp.StringField("BEZ", 50),
		shp.StringField("LAN", 2),
	}))

	rows := []struct {
		name, lan string
		parts     [][]shp.Point
	}{
		{"Heidelberg", "08", square(8.7, 49.4, 5000)},
		{"Seefeld", "09", square(11.2, 47.9, 2000)},
		{"Seefeld", "01", square(10.9, 54.0, 2000)},
	}

	for i, r := range rows {
		poly := shp.Polygon(*shp.NewPolyLine(r.parts))
		w.Write(&poly)
		w.WriteAttribute(i, 0, r.name)
		w.WriteAttribute(i, 1, "Gemeinde")
		w.WriteAttribute(i, 2, r.lan)
	}

	w.Close()

	// the writer leaves out the dot of the dbf extension
	base := strings.TrimSuffix(admin.Path(dir, admin.Municipalities), ".shp")
	require.NoError(t, os.Rename(base+"dbf", base+".dbf"))
}

func zipDir(t *testing.T, dir, out string) {
	require.NoError(t, os.MkdirAll(filepath.Dir(out), os.ModePerm))

	f, err := os.Create(out)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	for _, e := range entries {
		w, err := zw.Create(e.Name())
		require.NoError(t, err)
		in, err := os.Open(filepath.Join(dir, e.Name()))
		require.NoError(t, err)
		_, err = io.Copy(w, in)
		in.Close()
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

// setup points the global configuration to a fresh study directory
func setup(t *testing.T) string {
	dir := t.TempDir()

	var err error
	cfg, err = config.Parse([]byte(fmt.Sprintf(testConfig, dir)))
	require.NoError(t, err)

	logger = zap.NewNop()
	levels = nil
	pointCount = 0
	osmFile = ""

	writeMunicipalities(t, cfg.Paths.Admin)

	require.NoError(t, os.MkdirAll(cfg.Paths.INKAR, os.ModePerm))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Paths.INKAR, "cinema-population_top.csv"), []byte(inkarTop), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Paths.INKAR, "cinema-population_base.csv"), []byte(inkarBase), 0o644))

	return dir
}

func testCmd() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	return cmd
}

func TestExtractCommands(t *testing.T) {
	setup(t)
	levels = []string{"top"}

	require.NoError(t, runExtractCommands(testCmd(), nil))

	data, err := os.ReadFile(processors.CommandFile(cfg.Paths.Data, "top"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "osmium extract --bbox 8.6"))
	assert.True(t, strings.HasSuffix(lines[0], "--output Heidelberg-extract.osm.pbf"))

	assert.NoFileExists(t, processors.CommandFile(cfg.Paths.Data, "base"))
}

func TestRootCommand(t *testing.T) {
	dir := setup(t)

	path := filepath.Join(dir, "kinoaccess.yml")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(testConfig, dir)), 0o644))

	rootCmd.SetArgs([]string{"--config", path, "--level", "base", "extract-commands"})
	defer rootCmd.SetArgs(nil)
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))

	data, err := os.ReadFile(processors.CommandFile(cfg.Paths.Data, "base"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "--output Seefeld-extract.osm.pbf")
	// the second Seefeld lies at the Baltic Sea
	assert.Contains(t, string(data), "--bbox 10.8")

	levels = nil
}

func TestUnknownLevel(t *testing.T) {
	setup(t)
	levels = []string{"top", "tpo"}
	defer func() { levels = nil }()

	err := rootCmd.PersistentPreRunE(rootCmd, nil)
	assert.ErrorIs(t, err, config.ErrUnknownLevel)
}

func TestExtract(t *testing.T) {
	setup(t)
	levels = []string{"top"}

	zipDir(t, "testdata/testfeed", processors.FeedPath(cfg.Paths.GTFS, cfg.Feed))

	require.NoError(t, runExtract(testCmd(), nil))

	out := processors.FeedPath(cfg.Paths.GTFS, cfg.FilteredFeedName("Heidelberg"))
	require.FileExists(t, out)

	feed, err := processors.LoadFeed(out, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, feed.Stops)
	assert.NotEmpty(t, feed.Trips)

	// a second run keeps the extracted feed
	fi, err := os.Stat(out)
	require.NoError(t, err)
	require.NoError(t, runExtract(testCmd(), nil))
	fi2, err := os.Stat(out)
	require.NoError(t, err)
	assert.Equal(t, fi.ModTime(), fi2.ModTime())
}

func TestRouteMissingFeed(t *testing.T) {
	setup(t)
	levels = []string{"top"}

	err := runRoute(testCmd(), nil)
	assert.ErrorIs(t, err, processors.ErrNoExtractedFeed)
}

func fp(v float64) *float64 { return &v }
func ip(v int) *int { return &v }

func writeResults(t *testing.T, area string, lon float64, n int) {
	recs := make([]*routing.Record, 0)
	for s := 0; s < n; s++ {
		for _, h := range cfg.Times {
			total := 900 + 300*float64(s) + float64(h)
			recs = append(recs, &routing.Record{
				Area:               area,
				StartName:          fmt.Sprintf("start_%d", s),
				StartLon:           lon + 0.01*float64(s),
				StartLat:           49.4,
				Cinema:             "Kino",
				CinemaLon:          lon,
				CinemaLat:          49.41,
				Hour:               h,
				Route:              fmt.Sprintf("Kino_Stop_%d.csv", h),
				TotalDuration:      fp(total),
				WalkTo:             fp(120),
				WalkFrom:           fp(60 * float64(s+1)),
				Changes:            ip(s % 2),
				CarDuration:        fp(600),
				FootDuration:       fp(1200),
				DistanceToCentroid: 500 * float64(s+1),
				DistanceToCinema:   1000 * float64(s+1),
			})
		}
	}
	require.NoError(t, routing.WriteRecords(layout().Table(area, cfg.TimesDate(), n), recs))
}

func TestConcatCorners(t *testing.T) {
	setup(t)
	levels = []string{"top"}

	writeResults(t, "Heidelberg", 8.69, 2)
	writeResults(t, "Heidelberg", 8.69, routing.CornerCount)

	require.NoError(t, runConcatCorners(testCmd(), nil))

	recs, err := routing.ReadRecords(layout().Table("Heidelberg", cfg.TimesDate(), 2+routing.CornerCount))
	require.NoError(t, err)
	assert.Len(t, recs, (2+routing.CornerCount)*len(cfg.Times))
}

func TestAnalysisStages(t *testing.T) {
	setup(t)
	pointCount = 3

	writeResults(t, "Heidelberg", 8.69, 3)
	writeResults(t, "Seefeld", 10.9, 3)

	require.NoError(t, runVariables(testCmd(), nil))

	l := layout()
	td := cfg.TimesDate()
	assert.FileExists(t, l.Variables("Heidelberg", td, 3))
	assert.FileExists(t, l.AreaVariables("Seefeld", td, 3))
	assert.FileExists(t, l.PointLayer("Seefeld", td, 3))

	hours := []*analysis.HourVariables{}
	require.NoError(t, analysis.ReadCSV(l.HourVariables("Heidelberg", td, 3), &hours))
	assert.Len(t, hours, 3*len(cfg.Times))

	require.NoError(t, runConcat(testCmd(), nil))

	rows, err := readRows()
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, "top", rows[0].Level)
	assert.Equal(t, 3, rows[0].LevelDummy)
	assert.Equal(t, 1, rows[0].OSMCinemas)
	assert.InDelta(t, 160000, rows[0].Population.Value, 1e-9)
	assert.Equal(t, "base", rows[5].Level)
	assert.InDelta(t, 3000, rows[5].Population.Value, 1e-9)

	require.NoError(t, runCorrelate(testCmd(), nil))
	assert.FileExists(t, l.Correlation(fmt.Sprintf("all_%s_3", td)))
	assert.FileExists(t, l.Correlation(fmt.Sprintf("all_areas_%s_3", td)))
	assert.FileExists(t, l.Correlation(fmt.Sprintf("Heidelberg_%s_3", td)))

	corr := []*analysis.Correlation{}
	require.NoError(t, analysis.ReadCSV(l.Correlation(fmt.Sprintf("all_%s_3", td)), &corr))
	require.NotEmpty(t, corr)
	for _, c := range corr {
		if c.Variable == "distance_start_cinema" && c.Dependent == "average duration" {
			assert.Equal(t, 6, c.N)
			assert.Greater(t, c.Correlation, 0.0)
		}
	}

	require.NoError(t, runPlot(testCmd(), nil))
	assert.FileExists(t, filepath.Join(cfg.Paths.Images, "all_overview_average_duration.jpeg"))
	assert.FileExists(t, filepath.Join(cfg.Paths.Images, "fastest_mode_in_Heidelberg.jpeg"))
	assert.FileExists(t, filepath.Join(cfg.Paths.Images, "fastest_overall_mode_in_Seefeld.jpeg"))
}
