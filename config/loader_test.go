// Copyright 2016 Patrick Brosi
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimal = `
feed: opnv_240218
times: [15, 18, 21]
ors:
  baseURL: http://localhost:8082/ors
levels:
  top: [Heidelberg, Halle (Saale)]
  base: [Seefeld]
extractedNames:
  Halle (Saale): Halle
duplicateIndex:
  Seefeld: 1
`

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte(minimal))
	require.NoError(t, err)

	assert.Equal(t, "Sat", cfg.Weekday)
	assert.Equal(t, 10, cfg.BatchSize)
	assert.Equal(t, 10, cfg.StationCount)
	assert.Equal(t, 200.0, cfg.Transfer.MaxDistance)
	assert.Equal(t, 300, cfg.Transfer.MinTransferTime)
	assert.Equal(t, filepath.Join("data", "gtfs_files"), cfg.Paths.GTFS)
	assert.Equal(t, 3, cfg.LevelDummy["top"])
	assert.Equal(t, 6, cfg.WeekdayIndex())
	require.NotNil(t, cfg.ORS.Retries)
	assert.Equal(t, DefaultRetries, cfg.ORS.MaxRetries())
}

func TestParseNoRetries(t *testing.T) {
	cfg, err := Parse([]byte(strings.Replace(minimal, "ors:\n", "ors:\n  retries: 0\n", 1)))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.ORS.MaxRetries())

	assert.Equal(t, DefaultRetries, ORSConfig{}.MaxRetries())
}

func TestCheckLevels(t *testing.T) {
	assert.NoError(t, CheckLevels(nil))
	assert.NoError(t, CheckLevels([]string{"base", "top"}))

	err := CheckLevels([]string{"top", "tpo"})
	assert.ErrorIs(t, err, ErrUnknownLevel)
	assert.Contains(t, err.Error(), "tpo")
}

func TestAreasAndNames(t *testing.T) {
	cfg, err := Parse([]byte(minimal))
	require.NoError(t, err)

	assert.Equal(t, []string{"Heidelberg", "Halle (Saale)", "Seefeld"}, cfg.Areas())
	assert.Equal(t, []string{"Seefeld"}, cfg.Areas("base"))
	assert.Equal(t, cfg.Areas(), cfg.ValidAreas())

	assert.Equal(t, "Halle", cfg.ExtractedName("Halle (Saale)"))
	assert.Equal(t, "Heidelberg", cfg.ExtractedName("Heidelberg"))
	assert.Equal(t, "Halle_opnv_240218_filtered", cfg.FilteredFeedName("Halle (Saale)"))
	assert.Equal(t, 1, cfg.DuplicateIndex("Seefeld"))
	assert.Equal(t, 0, cfg.DuplicateIndex("Heidelberg"))

	lvl, ok := cfg.LevelOf("Seefeld")
	assert.True(t, ok)
	assert.Equal(t, "base", lvl)

	assert.Equal(t, "15-18-21", cfg.TimeString())
	assert.Equal(t, "15-18-21_Sat", cfg.TimesDate())
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		yml  string
	}{
		{"broken yaml", "invalid: yaml: content: [[["},
		{"no feed", "times: [15]\nlevels:\n  top: [A]\n"},
		{"no times", "feed: f\nlevels:\n  top: [A]\n"},
		{"bad weekday", "feed: f\nweekday: Caturday\ntimes: [15]\nlevels:\n  top: [A]\n"},
		{"bad level", "feed: f\ntimes: [15]\nlevels:\n  central: [A]\n"},
		{"bad date", "feed: f\ndate: \"20241399\"\ntimes: [15]\nlevels:\n  top: [A]\n"},
		{"date off weekday", "feed: f\nweekday: Sat\ndate: \"20240310\"\ntimes: [15]\nlevels:\n  top: [A]\n"},
		{"negative retries", "feed: f\ntimes: [15]\nors:\n  retries: -1\nlevels:\n  top: [A]\n"},
		{"bad url", "feed: f\ntimes: [15]\nors:\n  baseURL: not a url\nlevels:\n  top: [A]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yml))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)

	p := filepath.Join(t.TempDir(), "kinoaccess.yml")
	require.NoError(t, os.WriteFile(p, []byte(minimal), 0644))

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "opnv_240218", cfg.Feed)

	_, ok := cfg.GTFSDate()
	assert.False(t, ok)
}

func TestParseDate(t *testing.T) {
	_, err := ParseDate("20240309")
	assert.NoError(t, err)

	for _, s := range []string{"2024039", "20240009", "20240332", "18990101", "abcdefgh"} {
		_, err := ParseDate(s)
		assert.Error(t, err, s)
	}
}
