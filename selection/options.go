// Copyright 2016 Patrick Brosi
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package selection

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/kinoaccess/kinoaccess/geodata"
	"github.com/kinoaccess/kinoaccess/osmdata"
	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

// PopulationPerCinema counts the OSM cinemas of every municipality and
// compares them with the INKAR cinema count. The population per cinema is
// only set if both counts differ by at most one.
func PopulationPerCinema(ms []*Municipality, cinemas []geodata.Place, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	sugar := log.Sugar()

	areas := make([]orb.Geometry, len(ms))
	for i, m := range ms {
		areas[i] = m.Unit.WGS84()
	}

	counts := osmdata.CountPerUnit(cinemas, areas)

	matched := 0
	for i, m := range ms {
		cnt := counts[i]
		m.OSMCinemas = &cnt
		m.CinemasAccuracy = nil
		m.PopulationPerCinema = nil

		if !m.Cinemas.Valid {
			continue
		}

		acc := float64(cnt) - m.Cinemas.Value
		m.CinemasAccuracy = &acc

		if cnt == 0 || !m.Population.Valid {
			continue
		}

		if math.Abs(acc) > 1 {
			sugar.Debugf("OSM %d does not match INKAR %v for %s", cnt, m.Cinemas.Value, m.Name)
			continue
		}

		ppc := m.Population.Value / float64(cnt)
		m.PopulationPerCinema = &ppc
		matched++
	}

	sugar.Infof("done. (%d of %d municipalities matched)", matched, len(ms))
}

// KeepOptions drops municipalities without OSM cinemas or without
// population per cinema
func KeepOptions(ms []*Municipality) []*Municipality {
	ret := make([]*Municipality, 0, len(ms))
	for _, m := range ms {
		if m.OSMCinemas == nil || *m.OSMCinemas == 0 || m.PopulationPerCinema == nil {
			continue
		}
		ret = append(ret, m)
	}
	return ret
}

// Option is the table row of a selectable municipality
type Option struct {
	Indicators
	Type                string   `csv:"BEZ"`
	State               string   `csv:"LAN"`
	CentroidLon         float64  `csv:"centroid_lon"`
	CentroidLat         float64  `csv:"centroid_lat"`
	OSMCinemas          *int     `csv:"OSM_cinemas,omitempty"`
	CinemasAccuracy     *float64 `csv:"cinemas_accuracy,omitempty"`
	PopulationPerCinema *float64 `csv:"population_per_cinema,omitempty"`
}

func (m *Municipality) option() *Option {
	c := m.Unit.Centroid()
	return &Option{
		Indicators:          *m.Indicators,
		Type:                m.Unit.Type,
		State:               m.Unit.State,
		CentroidLon:         c.Lon(),
		CentroidLat:         c.Lat(),
		OSMCinemas:          m.OSMCinemas,
		CinemasAccuracy:     m.CinemasAccuracy,
		PopulationPerCinema: m.PopulationPerCinema,
	}
}

func (m *Municipality) props() map[string]interface{} {
	p := map[string]interface{}{
		"GEN":        m.Unit.Name,
		"BEZ":        m.Unit.Type,
		"LAN":        m.Unit.State,
		"Kennziffer": m.ID,
	}
	if m.Cinemas.Valid {
		p["Kinos"] = m.Cinemas.Value
	}
	if m.Population.Valid {
		p["Bevölkerung"] = m.Population.Value
	}
	if m.OSMCinemas != nil {
		p["OSM_cinemas"] = *m.OSMCinemas
	}
	if m.CinemasAccuracy != nil {
		p["cinemas_accuracy"] = *m.CinemasAccuracy
	}
	if m.PopulationPerCinema != nil {
		p["population_per_cinema"] = *m.PopulationPerCinema
	}
	return p
}

// WriteOptions writes the municipalities as table and as area layer
func WriteOptions(table, layer string, ms []*Municipality) error {
	opts := make([]*Option, len(ms))
	areas := make([]geodata.Area, len(ms))
	for i, m := range ms {
		opts[i] = m.option()
		areas[i] = geodata.Area{Geometry: m.Unit.WGS84(), Props: m.props()}
	}

	if err := os.MkdirAll(filepath.Dir(table), os.ModePerm); err != nil {
		return err
	}

	f, err := os.Create(table)
	if err != nil {
		return err
	}
	if err := gocsv.MarshalFile(&opts, f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", table, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	return geodata.WriteAreas(layer, areas)
}

// ReadOptions reads a table written by WriteOptions
func ReadOptions(table string) ([]*Option, error) {
	f, err := os.Open(table)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	opts := []*Option{}
	if err := gocsv.UnmarshalFile(f, &opts); err != nil {
		return nil, fmt.Errorf("reading %s: %w", table, err)
	}
	return opts, nil
}
