// Copyright 2016 Patrick Brosi
// Authors: info@patrickbrosi.de
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

// Package processors prepares GTFS feeds for routing within a single
// study area.
package processors

import (
	"github.com/patrickbr/gtfsparser"
	"go.uber.org/zap"
)

// Processor modifies a feed in place
type Processor interface {
	Run(*gtfsparser.Feed)
}

// Chain runs processors in order
type Chain []Processor

// Run all processors of the chain on some feed
func (c Chain) Run(feed *gtfsparser.Feed) {
	for _, p := range c {
		p.Run(feed)
	}
}

type empty struct{}

func logger(l *zap.Logger) *zap.SugaredLogger {
	if l == nil {
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}

func percent(removed, before int) float64 {
	return 100.0 * float64(removed) / (float64(before) + 0.001)
}
