// Copyright 2016 Patrick Brosi
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kinoaccess/kinoaccess/analysis"
	"github.com/kinoaccess/kinoaccess/chart"
	"github.com/kinoaccess/kinoaccess/geodata"
	"github.com/kinoaccess/kinoaccess/routing"
	"github.com/kinoaccess/kinoaccess/selection"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"
)

var pointCount int

var variablesCmd = &cobra.Command{
	Use:   "variables",
	Short: "Derive the travel time variables of every study area",
	Args:  cobra.NoArgs,
	RunE:  runVariables,
}

var concatCmd = &cobra.Command{
	Use:   "concat",
	Short: "Combine the variables of all study areas with their INKAR indicators",
	Args:  cobra.NoArgs,
	RunE:  runConcat,
}

var correlateCmd = &cobra.Command{
	Use:   "correlate",
	Short: "Correlate the combined variables",
	Long: `Computes the Pearson correlation and its p-value of the average
duration and speed (and, per area and hour, of the share of reasonable
transit connections) with every other numeric variable.`,
	Args: cobra.NoArgs,
	RunE: runCorrelate,
}

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Draw the result charts",
	Args:  cobra.NoArgs,
	RunE:  runPlot,
}

var (
	startDependents = []string{"average duration", "average speed"}
	areaDependents  = []string{"average duration", "average speed", "transit is reasonable"}
)

// resultCount is the number of start points per area the analysis reads
func resultCount() int {
	if pointCount > 0 {
		return pointCount
	}
	return startCount() + routing.CornerCount
}

func deriveArea(area string) ([]*analysis.Variables, error) {
	path := layout().Table(area, cfg.TimesDate(), resultCount())
	recs, err := routing.ReadRecords(path)
	if err != nil {
		return nil, err
	}
	return analysis.Derive(recs), nil
}

func runVariables(cmd *cobra.Command, args []string) error {
	l := layout()
	td, n := cfg.TimesDate(), resultCount()

	for _, area := range studyAreas() {
		sugar().Infof("Deriving variables of %s...", area)

		vars, err := deriveArea(area)
		if err != nil {
			return err
		}

		if err := analysis.WriteCSV(l.Variables(area, td, n), &vars); err != nil {
			return err
		}

		hours := analysis.HourRows(vars)
		if err := analysis.WriteCSV(l.HourVariables(area, td, n), &hours); err != nil {
			return err
		}

		agg := analysis.Aggregate(area, vars)
		if err := analysis.WriteCSV(l.AreaVariables(area, td, n), &agg); err != nil {
			return err
		}

		if err := geodata.WriteLayer(l.PointLayer(area, td, n), analysis.PointLayer(vars)); err != nil {
			return err
		}

		sugar().Infof("done. (%d start point and cinema pairs, %d hours)", len(vars), len(agg))
	}

	return nil
}

// areaInputs derives the variables of areas and joins their INKAR indicators
func areaInputs(areas []string) ([]analysis.AreaInput, error) {
	inkar := make(map[string][]*selection.Indicators)
	ret := make([]analysis.AreaInput, 0, len(areas))

	for _, area := range areas {
		level, ok := cfg.LevelOf(area)
		if !ok {
			return nil, fmt.Errorf("no centrality level configured for %s", area)
		}

		rows, ok := inkar[level]
		if !ok {
			var err error
			rows, err = selection.ReadINKARFile(selection.INKARFile(cfg.Paths.INKAR, level))
			if err != nil {
				return nil, err
			}
			inkar[level] = rows
		}

		ind, ok := selection.Lookup(rows, area)
		if !ok {
			sugar().Warnf("No INKAR indicators for %s", area)
		}

		vars, err := deriveArea(area)
		if err != nil {
			return nil, err
		}

		ret = append(ret, analysis.AreaInput{
			Area:       area,
			Level:      level,
			LevelDummy: cfg.LevelDummy[level],
			Variables:  vars,
			Indicators: ind,
		})
	}

	return ret, nil
}

func runConcat(cmd *cobra.Command, args []string) error {
	l := layout()
	td, n := cfg.TimesDate(), resultCount()

	inputs, err := areaInputs(studyAreas())
	if err != nil {
		return err
	}

	rows := analysis.Concat(inputs)
	if err := analysis.WriteCSV(l.Concat("all", td, n), &rows); err != nil {
		return err
	}

	arows := analysis.ConcatAreas(inputs)
	if err := analysis.WriteCSV(l.Concat("all_areas", td, n), &arows); err != nil {
		return err
	}

	valid, err := areaInputs(cfg.ValidAreas(levels...))
	if err != nil {
		return err
	}
	vrows := analysis.ConcatAreas(valid)
	if err := analysis.WriteCSV(l.Concat("all_areas_valid", td, n), &vrows); err != nil {
		return err
	}

	sugar().Infof("done. (%d start point rows, %d area rows of %d areas, %d valid)", len(rows), len(arows), len(inputs), len(valid))
	return nil
}

func writeCorrelation(name string, t *analysis.Table, dependents []string) error {
	corr, err := analysis.Correlate(t, dependents)
	if err != nil {
		return err
	}

	path := layout().Correlation(fmt.Sprintf("%s_%s_%d", name, cfg.TimesDate(), resultCount()))
	if err := analysis.WriteCSV(path, &corr); err != nil {
		return err
	}
	sugar().Infof("done. (%d correlations written to '%s')", len(corr), path)
	return nil
}

func readRows() ([]*analysis.Row, error) {
	rows := []*analysis.Row{}
	err := analysis.ReadCSV(layout().Concat("all", cfg.TimesDate(), resultCount()), &rows)
	return rows, err
}

func runCorrelate(cmd *cobra.Command, args []string) error {
	l := layout()
	td, n := cfg.TimesDate(), resultCount()

	rows, err := readRows()
	if err != nil {
		return err
	}
	if err := writeCorrelation("all", analysis.RowTable(rows), startDependents); err != nil {
		return err
	}

	arows := []*analysis.AreaRow{}
	if err := analysis.ReadCSV(l.Concat("all_areas", td, n), &arows); err != nil {
		return err
	}
	if err := writeCorrelation("all_areas", analysis.AreaTable(arows), areaDependents); err != nil {
		return err
	}

	byArea := make(map[string][]*analysis.Row)
	for _, r := range rows {
		byArea[r.Area] = append(byArea[r.Area], r)
	}
	for _, area := range studyAreas() {
		if len(byArea[area]) == 0 {
			continue
		}
		if err := writeCorrelation(area, analysis.RowTable(byArea[area]), startDependents); err != nil {
			return err
		}
	}

	return nil
}

// imageName turns a chart title into a file name
func imageName(parts ...string) string {
	name := strings.Join(parts, "_")
	return strings.NewReplacer(" ", "_", "(", "", ")", "").Replace(name) + ".jpeg"
}

func runPlot(cmd *cobra.Command, args []string) error {
	l := layout()
	td, n := cfg.TimesDate(), resultCount()

	rows, err := readRows()
	if err != nil {
		return err
	}

	overview := filepath.Join(cfg.Paths.Images, imageName("all_overview", "average duration"))
	b := chart.AverageDurations(rows, studyAreas(), selectedLevels())
	if err := b.Save(overview, 10*vg.Inch, 4*vg.Inch); err != nil {
		return err
	}
	sugar().Infof("done. (%s)", overview)

	for _, area := range studyAreas() {
		hours := []*analysis.HourVariables{}
		if err := analysis.ReadCSV(l.HourVariables(area, td, n), &hours); err != nil {
			return err
		}

		for _, overall := range []bool{false, true} {
			b := chart.ModeCounts(area, hours, overall)
			path := filepath.Join(cfg.Paths.Images, imageName(b.Title))
			err := b.Save(path, 6*vg.Inch, 4*vg.Inch)
			if errors.Is(err, chart.ErrEmptyChart) {
				sugar().Warnf("No routes to plot in %s", area)
				break
			}
			if err != nil {
				return fmt.Errorf("plotting %s: %w", area, err)
			}
		}
		sugar().Infof("done. (mode charts of %s)", area)
	}

	return nil
}
