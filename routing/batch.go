// Copyright 2016 Patrick Brosi
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package routing

import (
	"context"
	"os"

	"github.com/kinoaccess/kinoaccess/geodata"
	"go.uber.org/zap"
)

// CornerCount is the number of bounding box edge start points of an area
const CornerCount = 4

// Batcher routes the start points of an area in batches and combines the
// batch results into the area table
type Batcher struct {
	Router    *AreaRouter
	Layout    Layout
	TimesDate string
	BatchSize int
	Logger    *zap.Logger
}

func (b *Batcher) logger() *zap.SugaredLogger {
	if b.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return b.Logger.Sugar()
}

// BatchRoute routes all start points of an area. Batch results already on
// disk are reused, the batch directory is removed once the area table is
// written. It returns the path of the area table.
func (b *Batcher) BatchRoute(ctx context.Context, area Area, starts []geodata.Place) (string, error) {
	log := b.logger()
	size := b.BatchSize
	if size < 1 {
		size = len(starts)
	}

	tables := make([]string, 0)
	for i, batch := 0, 0; i < len(starts); i, batch = i+size, batch+1 {
		end := i + size
		if end > len(starts) {
			end = len(starts)
		}

		table := b.Layout.BatchTable(area.Name, b.TimesDate, batch)
		tables = append(tables, table)

		if geodata.Exists(table) {
			log.Infof("Batch %d of %s already routed", batch, area.Name)
			continue
		}

		if err := b.route(ctx, area, starts[i:end], table, b.Layout.BatchLayer(area.Name, b.TimesDate, batch)); err != nil {
			return "", err
		}
	}

	out := b.Layout.Table(area.Name, b.TimesDate, len(starts))
	log.Infof("Concatenating %d batches of %s...", len(tables), area.Name)
	if err := ConcatRecords(out, b.Layout.Layer(area.Name, b.TimesDate, len(starts)), tables...); err != nil {
		return "", err
	}

	if err := os.RemoveAll(b.Layout.BatchDir(area.Name)); err != nil {
		return "", err
	}
	log.Infof("done. (%s)", out)

	return out, nil
}

// RouteCorners routes the bounding box edge start points of an area
func (b *Batcher) RouteCorners(ctx context.Context, area Area, corners []geodata.Place) (string, error) {
	out := b.Layout.Table(area.Name, b.TimesDate, CornerCount)
	if err := b.route(ctx, area, corners, out, b.Layout.Layer(area.Name, b.TimesDate, CornerCount)); err != nil {
		return "", err
	}
	return out, nil
}

// ConcatCorners combines the table of n random start points with the
// corner table into the table of n+4 start points
func (b *Batcher) ConcatCorners(area string, n int) (string, error) {
	out := b.Layout.Table(area, b.TimesDate, n+CornerCount)
	err := ConcatRecords(out, b.Layout.Layer(area, b.TimesDate, n+CornerCount),
		b.Layout.Table(area, b.TimesDate, n),
		b.Layout.Table(area, b.TimesDate, CornerCount))
	if err != nil {
		return "", err
	}
	return out, nil
}

func (b *Batcher) route(ctx context.Context, area Area, starts []geodata.Place, table, layer string) error {
	recs, err := b.Router.RouteArea(ctx, area, starts)
	if err != nil {
		return err
	}
	if err := WriteRecords(table, recs); err != nil {
		return err
	}
	return geodata.WriteLayer(layer, RecordLayer(recs))
}

// CachedPlaces reads the places at path, computing and storing them with
// compute if the file does not exist yet
func CachedPlaces(path string, compute func() ([]geodata.Place, error)) ([]geodata.Place, error) {
	if geodata.Exists(path) {
		return geodata.ReadPlaces(path)
	}

	places, err := compute()
	if err != nil {
		return nil, err
	}

	if err := geodata.WritePlaces(path, places); err != nil {
		return nil, err
	}
	return places, nil
}
