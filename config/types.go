// Copyright 2016 Patrick Brosi
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package config

// Paths holds the directory layout of a study run
type Paths struct {
	Data    string `yaml:"data" validate:"required"`
	Results string `yaml:"results" validate:"required"`
	Images  string `yaml:"images" validate:"required"`
	INKAR   string `yaml:"inkar"`
	GTFS    string `yaml:"gtfs"`
	OSM     string `yaml:"osm"`
	Admin   string `yaml:"admin"`
}

// TransferConfig parametrizes the footpath transfer table of the transit router
type TransferConfig struct {
	MaxDistance     float64 `yaml:"maxDistance" validate:"gte=0"`
	MinTransferTime int     `yaml:"minTransferTime" validate:"gte=0"`
	WalkSpeed       float64 `yaml:"walkSpeed" validate:"gte=0"`
}

// ORSConfig configures the openrouteservice instance used for road and foot durations
type ORSConfig struct {
	BaseURL     string `yaml:"baseURL" validate:"required,url"`
	TimeoutMS   int    `yaml:"timeoutMS" validate:"gte=0"`
	Retries     *int   `yaml:"retries" validate:"omitempty,gte=0"`
	CacheSize   int    `yaml:"cacheSize" validate:"gte=0"`
	Parallelism int    `yaml:"parallelism" validate:"gte=0"`
}

// DefaultRetries is the number of ORS retries if none are configured
const DefaultRetries = 3

// MaxRetries is the configured number of retries, 0 disables them
func (c ORSConfig) MaxRetries() int {
	if c.Retries == nil {
		return DefaultRetries
	}
	return *c.Retries
}

// Config is the root configuration of a study
type Config struct {
	Paths        Paths               `yaml:"paths" validate:"required"`
	Feed         string              `yaml:"feed" validate:"required"`
	Weekday      string              `yaml:"weekday" validate:"required,oneof=Mon Tue Wed Thu Fri Sat Sun"`
	Date         string              `yaml:"date" validate:"omitempty,len=8,numeric"`
	Times        []int               `yaml:"times" validate:"required,min=1,dive,gte=0,lte=47"`
	BatchCount   int                 `yaml:"batchCount" validate:"gte=0"`
	BatchSize    int                 `yaml:"batchSize" validate:"gte=0"`
	StationCount int                 `yaml:"stationCount" validate:"gte=0"`
	Seed         int64               `yaml:"seed"`
	Transfer     TransferConfig      `yaml:"transfer"`
	ORS          ORSConfig           `yaml:"ors" validate:"required"`
	Levels       map[string][]string `yaml:"levels" validate:"required,min=1,dive,keys,oneof=top mid base,endkeys,dive,required"`
	Valid        map[string][]string `yaml:"valid"`
	LevelDummy   map[string]int      `yaml:"levelDummy"`
	Extracted    map[string]string   `yaml:"extractedNames"`
	Duplicates   map[string]int      `yaml:"duplicateIndex"`
}
