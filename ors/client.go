// Copyright 2016 Patrick Brosi
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

// Package ors requests car and foot travel durations from an
// openrouteservice instance.
package ors

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bluele/gcache"
	"github.com/cenkalti/backoff/v4"
	"github.com/kinoaccess/kinoaccess/config"
	"github.com/paulmach/orb"
	"github.com/valyala/fastjson"
	"go.uber.org/zap"
)

// Routing profiles
const (
	ProfileCar  = "driving-car"
	ProfileFoot = "foot-walking"
)

// ErrNoDuration is returned if the service cannot route between two points
var ErrNoDuration = errors.New("no ors duration routable")

// Router returns the travel duration between two WGS84 points
type Router interface {
	Duration(ctx context.Context, from, to orb.Point, profile string) (time.Duration, error)
}

// Client is an openrouteservice directions client. Successful durations are
// cached, server errors are retried with exponential backoff.
type Client struct {
	baseURL string
	http    *http.Client
	retries uint64
	cache   gcache.Cache
	log     *zap.Logger

	// initial backoff interval, shortened in tests
	backoffInterval time.Duration
}

// NewClient creates a client from the ORS configuration
func NewClient(c config.ORSConfig, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}

	size := c.CacheSize
	if size <= 0 {
		size = 10000
	}

	timeout := time.Duration(c.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:         strings.TrimRight(c.BaseURL, "/"),
		http:            &http.Client{Timeout: timeout},
		retries:         uint64(c.MaxRetries()),
		cache:           gcache.New(size).LRU().Expiration(24 * time.Hour).Build(),
		log:             log,
		backoffInterval: 500 * time.Millisecond,
	}
}

func cacheKey(from, to orb.Point, profile string) string {
	return fmt.Sprintf("%s:%.6f,%.6f:%.6f,%.6f", profile, from.Lon(), from.Lat(), to.Lon(), to.Lat())
}

// Duration requests the travel duration from one point to another.
// Unroutable points yield ErrNoDuration.
func (c *Client) Duration(ctx context.Context, from, to orb.Point, profile string) (time.Duration, error) {
	key := cacheKey(from, to, profile)
	if cached, err := c.cache.Get(key); err == nil {
		if d, ok := cached.(time.Duration); ok {
			return d, nil
		}
	}

	b := &backoff.ExponentialBackOff{
		InitialInterval:     c.backoffInterval,
		RandomizationFactor: 0.2,
		Multiplier:          2,
		MaxInterval:         30 * time.Second,
		MaxElapsedTime:      5 * time.Minute,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	b.Reset()

	d, err := backoff.RetryNotifyWithData(
		func() (time.Duration, error) {
			return c.request(ctx, from, to, profile)
		},
		backoff.WithContext(backoff.WithMaxRetries(b, c.retries), ctx),
		func(err error, wait time.Duration) {
			c.log.Sugar().Warnf("ors request failed, retrying in %s: %s", wait, err)
		},
	)
	if err != nil {
		return 0, err
	}

	c.cache.Set(key, d)
	return d, nil
}

func requestBody(from, to orb.Point) []byte {
	var a fastjson.Arena
	coords := a.NewArray()
	for i, p := range []orb.Point{from, to} {
		pt := a.NewArray()
		pt.SetArrayItem(0, a.NewNumberFloat64(p.Lon()))
		pt.SetArrayItem(1, a.NewNumberFloat64(p.Lat()))
		coords.SetArrayItem(i, pt)
	}
	body := a.NewObject()
	body.Set("coordinates", coords)
	return body.MarshalTo(nil)
}

func (c *Client) request(ctx context.Context, from, to orb.Point, profile string) (time.Duration, error) {
	url := fmt.Sprintf("%s/v2/directions/%s/json", c.baseURL, profile)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(requestBody(from, to)))
	if err != nil {
		return 0, backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, backoff.Permanent(ctx.Err())
		}
		return 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}

	if resp.StatusCode >= 500 {
		return 0, fmt.Errorf("ors returned %s", resp.Status)
	}

	if resp.StatusCode >= 400 {
		return 0, backoff.Permanent(fmt.Errorf("%w: %s (%s)", ErrNoDuration, resp.Status, errorMessage(data)))
	}

	d, err := parseDuration(data)
	if err != nil {
		return 0, backoff.Permanent(err)
	}
	return d, nil
}

// parseDuration reads routes[0].summary.duration (seconds). A summary
// without duration belongs to a zero-length route.
func parseDuration(data []byte) (time.Duration, error) {
	v, err := fastjson.ParseBytes(data)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid response: %s", ErrNoDuration, err)
	}

	summary := v.Get("routes", "0", "summary")
	if summary == nil {
		return 0, fmt.Errorf("%w: response without route", ErrNoDuration)
	}

	dur := summary.Get("duration")
	if dur == nil {
		return 0, nil
	}

	sec, err := dur.Float64()
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrNoDuration, err)
	}

	return time.Duration(sec * float64(time.Second)), nil
}

func errorMessage(data []byte) string {
	v, err := fastjson.ParseBytes(data)
	if err != nil {
		return strings.TrimSpace(string(data))
	}
	if msg := v.GetStringBytes("error", "message"); msg != nil {
		return string(msg)
	}
	if msg := v.GetStringBytes("error"); msg != nil {
		return string(msg)
	}
	return strings.TrimSpace(string(data))
}
