// Copyright 2016 Patrick Brosi
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package chart

import (
	"path/filepath"
	"testing"

	"github.com/kinoaccess/kinoaccess/analysis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"
)

func dur(v float64) *float64 { return &v }

func TestAverageDurations(t *testing.T) {
	rows := []*analysis.Row{
		{Variables: analysis.Variables{Area: "Heidelberg", AverageDuration: dur(1000)}, Level: "top"},
		{Variables: analysis.Variables{Area: "Heidelberg", AverageDuration: dur(2000)}, Level: "top"},
		{Variables: analysis.Variables{Area: "Heidelberg"}, Level: "top"},
		{Variables: analysis.Variables{Area: "Ankum", AverageDuration: dur(4000)}, Level: "base"},
	}

	b := AverageDurations(rows, []string{"Heidelberg", "Ankum"}, []string{"top", "base"})
	assert.Equal(t, []float64{1500, 0}, b.Values["top"])
	assert.Equal(t, []float64{0, 4000}, b.Values["base"])

	path := filepath.Join(t.TempDir(), "images", "all_overview.png")
	require.NoError(t, b.Save(path, 6*vg.Inch, 4*vg.Inch))
	assert.FileExists(t, path)
}

func TestModeCounts(t *testing.T) {
	hours := []*analysis.HourVariables{
		{Hour: 15, FastestMode: analysis.ModeTransit, FastestOverallMode: analysis.ModeCar},
		{Hour: 15, FastestMode: analysis.ModeFoot, FastestOverallMode: analysis.ModeFoot},
		{Hour: 18, FastestMode: analysis.ModeTransit, FastestOverallMode: analysis.ModeTransit},
	}

	b := ModeCounts("Heidelberg", hours, false)
	assert.Equal(t, []string{"15", "18"}, b.Categories)
	assert.Equal(t, []float64{1, 1}, b.Values[analysis.ModeTransit])
	assert.Equal(t, []float64{1, 0}, b.Values[analysis.ModeFoot])
	_, ok := b.Values[analysis.ModeCar]
	assert.False(t, ok)

	b = ModeCounts("Heidelberg", hours, true)
	assert.Equal(t, []float64{1, 0}, b.Values[analysis.ModeCar])

	path := filepath.Join(t.TempDir(), "modes.jpeg")
	require.NoError(t, b.Save(path, 4*vg.Inch, 4*vg.Inch))
	assert.FileExists(t, path)
}

func TestEmptyChart(t *testing.T) {
	_, err := (&Bars{}).Plot()
	assert.ErrorIs(t, err, ErrEmptyChart)

	b := &Bars{Categories: []string{"a"}, Groups: []string{"g"}, Values: map[string][]float64{"g": {1, 2}}}
	_, err = b.Plot()
	assert.Error(t, err)
}
