// Copyright 2016 Patrick Brosi
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package processors

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// OsmiumCommand returns the osmium call extracting a bounding box of an
// OSM file into <name>-extract.osm.pbf
func OsmiumCommand(bbox string, name string) string {
	return fmt.Sprintf("osmium extract --bbox %s --output %s-extract.osm.pbf", bbox, name)
}

// CommandFile returns the path of the osmium command file of a level
func CommandFile(dir string, level string) string {
	return filepath.Join(dir, "commands", fmt.Sprintf("osmium_commands_selected_%s.txt", level))
}

// WriteCommands writes one command per line
func WriteCommands(path string, cmds []string) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	for _, c := range cmds {
		if _, err := w.WriteString(c + "\n"); err != nil {
			f.Close()
			return err
		}
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
