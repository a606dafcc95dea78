// Copyright 2016 Patrick Brosi
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
	"github.com/wroge/wgs84"
)

// ETRS89 / UTM zone 32N, the CRS of the VG5000 boundaries (EPSG:25832)
var (
	toUTM32   = wgs84.LonLat().To(wgs84.ETRS89UTM(32))
	fromUTM32 = wgs84.ETRS89UTM(32).To(wgs84.LonLat())
)

// ToUTM32 projects a WGS84 point to ETRS89 / UTM zone 32N
func ToUTM32(p orb.Point) orb.Point {
	x, y, _ := toUTM32(p.Lon(), p.Lat(), 0)
	return orb.Point{x, y}
}

// FromUTM32 unprojects an ETRS89 / UTM zone 32N point to WGS84
func FromUTM32(p orb.Point) orb.Point {
	lon, lat, _ := fromUTM32(p[0], p[1], 0)
	return orb.Point{lon, lat}
}

// GeometryToUTM32 projects any WGS84 geometry to EPSG:25832
func GeometryToUTM32(g orb.Geometry) orb.Geometry {
	return project.Geometry(orb.Clone(g), ToUTM32)
}

// GeometryFromUTM32 unprojects any EPSG:25832 geometry to WGS84
func GeometryFromUTM32(g orb.Geometry) orb.Geometry {
	return project.Geometry(orb.Clone(g), FromUTM32)
}
