// Copyright 2016 Patrick Brosi
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package analysis

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

// WriteCSV writes a slice of tagged structs as CSV file
func WriteCSV(path string, rows interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := gocsv.MarshalFile(rows, f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// ReadCSV reads a CSV file into a pointer to a slice of tagged structs
func ReadCSV(path string, rows interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := gocsv.UnmarshalFile(f, rows); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}

// HourRows flattens the per hour variables
func HourRows(vars []*Variables) []*HourVariables {
	ret := make([]*HourVariables, 0, len(vars))
	for _, v := range vars {
		ret = append(ret, v.Hours...)
	}
	return ret
}
