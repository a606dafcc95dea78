// Copyright 2016 Patrick Brosi
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kinoaccess/kinoaccess/config"
	"github.com/kinoaccess/kinoaccess/geo"
	"github.com/kinoaccess/kinoaccess/geodata"
	"github.com/kinoaccess/kinoaccess/osmdata"
	"github.com/kinoaccess/kinoaccess/processors"
	"github.com/kinoaccess/kinoaccess/routing"
	"github.com/kinoaccess/kinoaccess/selection"
	"github.com/spf13/cobra"
)

var osmFile string

var selectCmd = &cobra.Command{
	Use:   "select-areas",
	Short: "Classify municipalities by population per cinema",
	Long: `Joins the INKAR export of every centrality level with the VG5000
municipalities, counts the OSM cinemas of each municipality and writes the
municipalities whose OSM and INKAR cinema counts agree as options.`,
	Args: cobra.NoArgs,
	RunE: runSelectAreas,
}

var extractCommandsCmd = &cobra.Command{
	Use:   "extract-commands",
	Short: "Write the osmium extract commands of the study areas",
	Args:  cobra.NoArgs,
	RunE:  runExtractCommands,
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Cut the GTFS feed of every study area out of the full feed",
	Long: `Parses the full GTFS feed, keeps the complete trips touching the
bounding box of each study area and writes the filtered feed of the area.
Already extracted feeds are kept.`,
	Args: cobra.NoArgs,
	RunE: runExtract,
}

// selectedLevels are the --level flags, or all levels
func selectedLevels() []string {
	if len(levels) == 0 {
		return config.LevelOrder
	}
	return levels
}

func defaultOSMFile() string {
	if osmFile != "" {
		return osmFile
	}
	return filepath.Join(cfg.Paths.OSM, "germany-latest.osm.pbf")
}

// areaOSMFile is the osmium extract of an area
func areaOSMFile(area string) string {
	return filepath.Join(cfg.Paths.OSM, cfg.ExtractedName(area)+"-extract.osm.pbf")
}

func allCinemas(ctx context.Context) ([]geodata.Place, error) {
	return routing.CachedPlaces(layout().AllCinemas(), func() ([]geodata.Place, error) {
		sugar().Infof("Collecting cinemas from '%s' ...", defaultOSMFile())
		ex := osmdata.Extractor{Kinds: []osmdata.Kind{osmdata.Cinema}, Logger: logger}
		fs, err := ex.ExtractFile(ctx, defaultOSMFile())
		if err != nil {
			return nil, err
		}
		sugar().Infof("done. (%d cinemas)", len(fs[osmdata.Cinema]))
		return fs[osmdata.Cinema], nil
	})
}

func runSelectAreas(cmd *cobra.Command, args []string) error {
	log := sugar()

	units, err := municipalities()
	if err != nil {
		return err
	}

	cinemas, err := allCinemas(cmdContext(cmd))
	if err != nil {
		return err
	}

	l := layout()
	for _, level := range selectedLevels() {
		path := selection.INKARFile(cfg.Paths.INKAR, level)
		log.Infof("Importing INKAR indicators from '%s' ...", path)

		rows, err := selection.ReadINKARFile(path)
		if err != nil {
			return err
		}

		ms, unmatched := selection.ImportINKAR(rows, units)
		if len(unmatched) > 0 {
			log.Warnf("%d INKAR rows without municipality: %s", len(unmatched), strings.Join(unmatched, ", "))
		}
		log.Infof("done. (%d municipalities)", len(ms))

		log.Infof("Counting OSM cinemas of %d municipalities...", len(ms))
		selection.PopulationPerCinema(ms, cinemas, logger)

		opts := selection.KeepOptions(ms)
		if err := selection.WriteOptions(l.Selection(level), l.SelectionLayer(level), opts); err != nil {
			return err
		}
		log.Infof("%d options for level %s written to '%s'", len(opts), level, l.Selection(level))
	}

	return nil
}

func runExtractCommands(cmd *cobra.Command, args []string) error {
	units, err := municipalities()
	if err != nil {
		return err
	}

	for _, level := range selectedLevels() {
		cmds := make([]string, 0)
		for _, area := range cfg.Areas(level) {
			u, err := lookupArea(units, area)
			if err != nil {
				return err
			}
			cmds = append(cmds, processors.OsmiumCommand(geo.BBoxString(u.Geometry), cfg.ExtractedName(area)))
		}

		path := processors.CommandFile(cfg.Paths.Data, level)
		if err := processors.WriteCommands(path, cmds); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		sugar().Infof("done. (%d commands written to '%s')", len(cmds), path)
	}

	return nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	log := sugar()

	units, err := municipalities()
	if err != nil {
		return err
	}

	ex := processors.Extractor{Logger: logger}
	ex.DateFilter, _ = cfg.GTFSDate()

	in := processors.FeedPath(cfg.Paths.GTFS, cfg.Feed)
	for _, area := range studyAreas() {
		if err := cmdContext(cmd).Err(); err != nil {
			return err
		}

		out := processors.FeedPath(cfg.Paths.GTFS, cfg.FilteredFeedName(area))
		if geodata.Exists(out) {
			log.Infof("Feed of %s already extracted to '%s'", area, out)
			continue
		}

		u, err := lookupArea(units, area)
		if err != nil {
			return err
		}

		log.Infof("Extracting feed of %s...", area)
		if err := ex.Extract(in, out, geo.BBoxPolygon(u.Geometry)); err != nil {
			return fmt.Errorf("extracting %s: %w", area, err)
		}
	}

	return nil
}
