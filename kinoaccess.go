// Copyright 2016 Patrick Brosi
// Authors: info@patrickbrosi.de
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kinoaccess/kinoaccess/admin"
	"github.com/kinoaccess/kinoaccess/config"
	"github.com/kinoaccess/kinoaccess/routing"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	cfgPath string
	verbose bool
	levels  []string

	logger *zap.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "kinoaccess",
	Short: "Travel time accessibility of cinemas in German municipalities",
	Long: `kinoaccess compares how fast cinemas can be reached by public transit,
on foot and by car from random residential start points of selected
municipalities.

The study runs in stages, each reading the results of the previous ones:

  select-areas      classify municipalities by population per cinema
  extract-commands  write the osmium extract commands of the selected areas
  extract           cut the GTFS feed of every area out of the full feed
  route             route random start points to all cinemas of an area
  corners           route the bounding box corner start points
  concat-corners    combine random and corner start point results
  variables         derive travel time variables per area
  concat            combine the variables of all areas
  correlate         correlate the variables with the INKAR indicators
  plot              draw the result charts`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if err := config.CheckLevels(levels); err != nil {
			return err
		}

		cfg, err = config.Load(cfgPath)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func addFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&cfgPath, "config", "c", "kinoaccess.yml", "study configuration file")
	fs.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	fs.StringSliceVar(&levels, "level", nil, "only process the areas of these centrality levels (top, mid, base), may be repeated")
}

func init() {
	addFlags(rootCmd.PersistentFlags())

	selectCmd.Flags().StringVar(&osmFile, "osm", "", "OSM extract of Germany used to count cinemas (default <osm>/germany-latest.osm.pbf)")
	variablesCmd.Flags().IntVar(&pointCount, "points", 0, "number of start points of the results to read (default batchCount*batchSize+4)")
	concatCmd.Flags().IntVar(&pointCount, "points", 0, "number of start points of the results to read (default batchCount*batchSize+4)")
	plotCmd.Flags().IntVar(&pointCount, "points", 0, "number of start points of the results to read (default batchCount*batchSize+4)")

	rootCmd.AddCommand(
		selectCmd,
		extractCommandsCmd,
		extractCmd,
		routeCmd,
		cornersCmd,
		concatCornersCmd,
		variablesCmd,
		concatCmd,
		correlateCmd,
		plotCmd,
	)
}

func sugar() *zap.SugaredLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger.Sugar()
}

// cmdContext is the context of a running command, commands called
// directly have none
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func layout() routing.Layout {
	return routing.Layout{Results: cfg.Paths.Results}
}

// studyAreas are the configured areas of the selected levels
func studyAreas() []string {
	return cfg.Areas(levels...)
}

// lookupArea returns the municipality boundary of a study area
func lookupArea(units *admin.Units, area string) (*admin.Unit, error) {
	return units.Lookup(area, cfg.DuplicateIndex(area))
}

func municipalities() (*admin.Units, error) {
	sugar().Infof("Reading municipalities from '%s' ...", admin.Path(cfg.Paths.Admin, admin.Municipalities))
	units, err := admin.Load(cfg.Paths.Admin, admin.Municipalities)
	if err != nil {
		return nil, err
	}
	sugar().Infof("done. (%d municipalities)", len(units.All()))
	return units, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
