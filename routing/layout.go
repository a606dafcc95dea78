// Copyright 2016 Patrick Brosi
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package routing

import (
	"fmt"
	"path/filepath"
)

// Layout names the files of a study below the results directory
type Layout struct {
	Results string
}

// Memo is the attempt memo database
func (l Layout) Memo() string {
	return filepath.Join(l.Results, "routes_memo.db")
}

// Routes is the directory of the chosen route files of an area
func (l Layout) Routes(area string) string {
	return filepath.Join(l.Results, "routes", area)
}

// Table is the routing result table of an area for n start points
func (l Layout) Table(area, timesDate string, n int) string {
	return filepath.Join(l.Results, fmt.Sprintf("%s_%s_%d.csv", area, timesDate, n))
}

// Layer is the point layer belonging to Table
func (l Layout) Layer(area, timesDate string, n int) string {
	return filepath.Join(l.Results, "geo_data", fmt.Sprintf("%s_%s_%d.geojson", area, timesDate, n))
}

// BatchDir holds the intermediate batch results of an area
func (l Layout) BatchDir(area string) string {
	return filepath.Join(l.Results, area+"_batch")
}

// BatchTable is the result table of a single batch
func (l Layout) BatchTable(area, timesDate string, batch int) string {
	return filepath.Join(l.BatchDir(area), fmt.Sprintf("%s_%s_%d.csv", area, timesDate, batch))
}

// BatchLayer is the point layer of a single batch
func (l Layout) BatchLayer(area, timesDate string, batch int) string {
	return filepath.Join(l.BatchDir(area), fmt.Sprintf("%s_%s_%d.geojson", area, timesDate, batch))
}

// Cinemas is the cinema layer of an area
func (l Layout) Cinemas(area string) string {
	return filepath.Join(l.Results, "geo_data", "cinemas", area+"_cinemas.geojson")
}

// AllCinemas is the cinema layer of the whole OSM extract
func (l Layout) AllCinemas() string {
	return filepath.Join(l.Results, "geo_data", "cinemas", "cinemas.geojson")
}

// Residential is the residential building layer of an area
func (l Layout) Residential(area string) string {
	return filepath.Join(l.Results, "geo_data", "residential", "residential_"+area+".geojson")
}

// StartPoints is the layer of n random start points of an area
func (l Layout) StartPoints(area string, n int) string {
	return filepath.Join(l.Results, "geo_data", "start_points", fmt.Sprintf("%d_%s.geojson", n, area))
}

// BBoxStartPoints is the layer of the start points nearest to the edges of
// the bounding box of an area
func (l Layout) BBoxStartPoints(area string) string {
	return filepath.Join(l.Results, "geo_data", "start_points", area+"_closest_to_bbox.geojson")
}

// Variables is the variable table of an area
func (l Layout) Variables(area, timesDate string, n int) string {
	return filepath.Join(l.Results, "variables", fmt.Sprintf("%s_%s_%d_variables.csv", area, timesDate, n))
}

// AreaVariables is the aggregate table of an area per hour
func (l Layout) AreaVariables(area, timesDate string, n int) string {
	return filepath.Join(l.Results, "variables", fmt.Sprintf("%s_%s_%d_area.csv", area, timesDate, n))
}

// PointLayer is the per start point variable layer of an area
func (l Layout) PointLayer(area, timesDate string, n int) string {
	return filepath.Join(l.Results, "geo_data", "variables", fmt.Sprintf("%s_%s_%d_points.geojson", area, timesDate, n))
}

// Concat is the table of all areas of the given levels
func (l Layout) Concat(name, timesDate string, n int) string {
	return filepath.Join(l.Results, "variables", fmt.Sprintf("%s_%s_%d.csv", name, timesDate, n))
}

// Correlation is the correlation table of a dependent variable
func (l Layout) Correlation(name string) string {
	return filepath.Join(l.Results, "correlation", name+"_correlation.csv")
}

// Selection is the table of municipality options of a centrality level
func (l Layout) Selection(level string) string {
	return filepath.Join(l.Results, "selection", fmt.Sprintf("cinema-population_options_%s.csv", level))
}

// SelectionLayer is the area layer belonging to Selection
func (l Layout) SelectionLayer(level string) string {
	return filepath.Join(l.Results, "selection", fmt.Sprintf("cinema-population_options_%s.geojson", level))
}

// HourVariables is the per departure hour variable table of an area
func (l Layout) HourVariables(area, timesDate string, n int) string {
	return filepath.Join(l.Results, "variables", fmt.Sprintf("%s_%s_%d_hours.csv", area, timesDate, n))
}
