// Copyright 2016 Patrick Brosi
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

// Package chart draws the bar charts of the study results.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"

	"github.com/kinoaccess/kinoaccess/analysis"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// ErrEmptyChart is returned for a chart without categories or groups
var ErrEmptyChart = errors.New("chart has no data")

// ModeColors are the colors of the travel modes
var ModeColors = map[string]color.Color{
	analysis.ModeCar:     color.RGBA{R: 0x00, G: 0xcc, B: 0x96, A: 0xff},
	analysis.ModeTransit: color.RGBA{R: 0x63, G: 0x6e, B: 0xfa, A: 0xff},
	analysis.ModeFoot:    color.RGBA{R: 0xef, G: 0x55, B: 0x3b, A: 0xff},
}

// Bars is a stacked bar chart with one bar per category, stacked by group
type Bars struct {
	Title      string
	XLabel     string
	YLabel     string
	Categories []string
	Groups     []string
	// Values holds one value per category for each group
	Values map[string][]float64
	Colors map[string]color.Color
}

// Plot builds the chart
func (b *Bars) Plot() (*plot.Plot, error) {
	if len(b.Categories) == 0 || len(b.Groups) == 0 {
		return nil, ErrEmptyChart
	}

	p := plot.New()
	p.Title.Text = b.Title
	p.X.Label.Text = b.XLabel
	p.Y.Label.Text = b.YLabel
	p.Legend.Top = true

	var below *plotter.BarChart
	for i, g := range b.Groups {
		vals := b.Values[g]
		if len(vals) != len(b.Categories) {
			return nil, fmt.Errorf("group %s has %d values for %d categories", g, len(vals), len(b.Categories))
		}

		bars, err := plotter.NewBarChart(plotter.Values(vals), vg.Points(20))
		if err != nil {
			return nil, err
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(i)
		if c, ok := b.Colors[g]; ok {
			bars.Color = c
		}
		if below != nil {
			bars.StackOn(below)
		}

		p.Add(bars)
		p.Legend.Add(g, bars)
		below = bars
	}

	p.NominalX(b.Categories...)

	return p, nil
}

// Save draws the chart to path, the image format follows the extension
func (b *Bars) Save(path string, width, height vg.Length) error {
	p, err := b.Plot()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}
	return p.Save(width, height, path)
}

// AverageDurations is the mean average duration per area, stacked by the
// level of the area. Areas are ordered as given.
func AverageDurations(rows []*analysis.Row, areas, levels []string) *Bars {
	type key struct{ area, level string }
	sums := make(map[key]float64)
	counts := make(map[key]int)

	for _, r := range rows {
		if r.AverageDuration == nil {
			continue
		}
		k := key{r.Area, r.Level}
		sums[k] += *r.AverageDuration
		counts[k]++
	}

	b := &Bars{
		Title:      "average duration per start point",
		XLabel:     "area",
		YLabel:     "average duration (in s)",
		Categories: areas,
		Groups:     levels,
		Values:     make(map[string][]float64),
	}

	for _, l := range levels {
		vals := make([]float64, len(areas))
		for i, a := range areas {
			k := key{a, l}
			if counts[k] > 0 {
				vals[i] = sums[k] / float64(counts[k])
			}
		}
		b.Values[l] = vals
	}
	return b
}

// ModeCounts counts the fastest mode per departure hour. If overall is
// set, the car is included.
func ModeCounts(area string, hours []*analysis.HourVariables, overall bool) *Bars {
	column := "fastest mode"
	modes := []string{analysis.ModeTransit, analysis.ModeFoot}
	if overall {
		column = "fastest overall mode"
		modes = append(modes, analysis.ModeCar)
	}

	hourIdx := make(map[int]int)
	cats := make([]string, 0)
	for _, h := range hours {
		if _, ok := hourIdx[h.Hour]; !ok {
			hourIdx[h.Hour] = len(cats)
			cats = append(cats, strconv.Itoa(h.Hour))
		}
	}

	b := &Bars{
		Title:      fmt.Sprintf("%s in %s", column, area),
		XLabel:     "departure time",
		YLabel:     "count",
		Categories: cats,
		Groups:     modes,
		Values:     make(map[string][]float64),
		Colors:     ModeColors,
	}
	for _, m := range modes {
		b.Values[m] = make([]float64, len(cats))
	}

	for _, h := range hours {
		mode := h.FastestMode
		if overall {
			mode = h.FastestOverallMode
		}
		if vals, ok := b.Values[mode]; ok {
			vals[hourIdx[h.Hour]]++
		}
	}

	return b
}
