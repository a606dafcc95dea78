// Copyright 2016 Patrick Brosi
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package ors

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kinoaccess/kinoaccess/config"
	"github.com/kinoaccess/kinoaccess/router"
	"github.com/patrickbr/gtfsparser"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fastjson"
)

// fakeORS answers with the longitude difference of both coordinates times
// 10000 as duration. Starting longitudes >= 100 are unroutable. The given
// number of requests fails with 503 first.
func fakeORS(t *testing.T, failures int32) (*httptest.Server, *int32) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)

		if !strings.HasPrefix(r.URL.Path, "/ors/v2/directions/") || r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		if n <= failures {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		data, _ := io.ReadAll(r.Body)
		v, err := fastjson.ParseBytes(data)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		from := v.GetFloat64("coordinates", "0", "0")
		to := v.GetFloat64("coordinates", "1", "0")

		if from >= 100 {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"error":{"code":2010,"message":"Could not find routable point"}}`)
			return
		}

		if from == to {
			io.WriteString(w, `{"routes":[{"summary":{}}]}`)
			return
		}

		d := (to - from) * 10000
		if d < 0 {
			d = -d
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"routes":[{"summary":{"distance":1000.0,"duration":%f}}]}`, d)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func testClient(url string, retries int) *Client {
	c := NewClient(config.ORSConfig{BaseURL: url + "/ors", Retries: &retries, CacheSize: 100}, nil)
	c.backoffInterval = time.Millisecond
	return c
}

func TestDuration(t *testing.T) {
	srv, calls := fakeORS(t, 0)
	c := testClient(srv.URL, 0)

	d, err := c.Duration(context.Background(), orb.Point{8.0, 49}, orb.Point{8.1, 49}, ProfileCar)
	require.NoError(t, err)
	assert.InDelta(t, 1000, d.Seconds(), 1e-3)

	// cached
	_, err = c.Duration(context.Background(), orb.Point{8.0, 49}, orb.Point{8.1, 49}, ProfileCar)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))

	// other profile, other cache entry
	_, err = c.Duration(context.Background(), orb.Point{8.0, 49}, orb.Point{8.1, 49}, ProfileFoot)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))

	d, err = c.Duration(context.Background(), orb.Point{8.0, 49}, orb.Point{8.0, 49}, ProfileFoot)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), d)
}

func TestDurationUnroutable(t *testing.T) {
	srv, calls := fakeORS(t, 0)
	c := testClient(srv.URL, 3)

	_, err := c.Duration(context.Background(), orb.Point{120, 49}, orb.Point{8.1, 49}, ProfileFoot)
	assert.ErrorIs(t, err, ErrNoDuration)
	assert.Contains(t, err.Error(), "Could not find routable point")

	// client errors are not retried
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestDurationRetry(t *testing.T) {
	srv, calls := fakeORS(t, 2)

	c := testClient(srv.URL, 3)
	d, err := c.Duration(context.Background(), orb.Point{8.0, 49}, orb.Point{8.1, 49}, ProfileCar)
	require.NoError(t, err)
	assert.InDelta(t, 1000, d.Seconds(), 1e-3)
	assert.Equal(t, int32(3), atomic.LoadInt32(calls))

	srv2, _ := fakeORS(t, 5)
	c = testClient(srv2.URL, 1)
	_, err = c.Duration(context.Background(), orb.Point{8.0, 49}, orb.Point{8.1, 49}, ProfileCar)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoDuration)
}

func TestAllDurations(t *testing.T) {
	srv, _ := fakeORS(t, 0)
	c := testClient(srv.URL, 0)

	dests := []orb.Point{{8.1, 49}, {8.2, 49}, {8.0, 49}}
	res, err := AllDurations(context.Background(), c, orb.Point{8.0, 49}, dests, ProfileCar, 2)
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.True(t, res[0].Valid)
	assert.InDelta(t, 2000, res[1].Duration.Seconds(), 1e-3)
	assert.InDelta(t, 0, *res[2].Seconds(), 1e-6)

	res, err = AllDurations(context.Background(), c, orb.Point{120, 49}, dests, ProfileCar, 2)
	require.NoError(t, err)
	for _, r := range res {
		assert.False(t, r.Valid)
		assert.Nil(t, r.Seconds())
	}
}

func TestWalkToStation(t *testing.T) {
	srv, _ := fakeORS(t, 0)
	c := testClient(srv.URL, 0)

	feed := gtfsparser.NewFeed()
	require.NoError(t, feed.Parse("../testdata/testfeed"))
	stations := router.NewStations(feed)

	it := &router.Itinerary{Visits: []*router.Visit{
		{StopName: "Alpha", RouteName: "1"},
		{StopName: "Gamma", RouteName: "1"},
	}}

	to, from, err := WalkToStation(context.Background(), c, it, orb.Point{8.68, 49.4}, orb.Point{8.72, 49.4}, stations)
	require.NoError(t, err)
	assert.InDelta(t, 100, to.Duration.Seconds(), 0.5)
	assert.InDelta(t, 100, from.Duration.Seconds(), 0.5)

	// unroutable start point
	to, from, err = WalkToStation(context.Background(), c, it, orb.Point{120, 49.4}, orb.Point{8.72, 49.4}, stations)
	require.NoError(t, err)
	assert.False(t, to.Valid)
	assert.True(t, from.Valid)

	_, _, err = WalkToStation(context.Background(), c, &router.Itinerary{Visits: []*router.Visit{{StopName: "Atlantis"}}}, orb.Point{}, orb.Point{}, stations)
	assert.Error(t, err)
}
