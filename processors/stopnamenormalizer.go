// Copyright 2016 Patrick Brosi
// Authors: info@patrickbrosi.de
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package processors

import (
	"strings"

	"github.com/patrickbr/gtfsparser"
	"go.uber.org/zap"
)

// DefaultPlaceholder replaces missing string values
const DefaultPlaceholder = "no value"

// StopNameNormalizer trims stop names and replaces empty ones. Stops are
// grouped by name during routing, so a stop without a name would be
// unreachable.
type StopNameNormalizer struct {
	Placeholder string
	Logger      *zap.Logger
}

// Run this StopNameNormalizer on some feed
func (n StopNameNormalizer) Run(feed *gtfsparser.Feed) {
	log := logger(n.Logger)
	log.Infof("Normalizing stop names...")

	repl := n.Placeholder
	if len(repl) == 0 {
		repl = DefaultPlaceholder
	}

	trimmed, replaced := 0, 0
	for _, s := range feed.Stops {
		name := strings.TrimSpace(s.Name)
		if len(name) == 0 {
			name = repl
			replaced++
		} else if name != s.Name {
			trimmed++
		}
		s.Name = name
	}

	log.Infof("done. (%d names trimmed, %d names replaced)", trimmed, replaced)
}
