// Package oracle wraps the external ETH/USD price source behind a narrow
// capability: one call returning the latest reading, scaled by 1e8.
//
// The adapter forwards the raw latest reading — no caching, no retries,
// no staleness checks. A non-positive reading means "no usable data" and
// is the caller's problem to tolerate; only an unreachable upstream is an
// error.
package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// PriceScale is the fixed scaling factor for readings: price × 1e8.
const PriceScale = 100_000_000

// ErrUnavailable is returned when the upstream price source cannot be
// reached or returns an unusable response.
var ErrUnavailable = errors.New("oracle: price source unavailable")

// PriceFeed is the consumed price capability. Latest returns the raw
// ETH/USD rate scaled by 1e8. A zero or negative reading indicates stale
// or missing data, not an error.
type PriceFeed interface {
	Latest(ctx context.Context) (int64, error)
}

// StaticFeed serves a fixed reading. Used for development and tests,
// including modelling a stale feed via a non-positive reading.
type StaticFeed struct {
	Reading int64
}

// NewStaticFeed creates a feed that always reports the given reading.
func NewStaticFeed(reading int64) *StaticFeed {
	return &StaticFeed{Reading: reading}
}

func (f *StaticFeed) Latest(_ context.Context) (int64, error) {
	return f.Reading, nil
}

// HTTPFeed fetches the latest reading from a JSON endpoint of the shape
// {"price": <int64 scaled 1e8>}. Any transport, status, or decode
// failure maps to ErrUnavailable.
type HTTPFeed struct {
	url    string
	client *http.Client
}

// NewHTTPFeed creates a feed backed by the given URL. Pass nil to use a
// default client with a 5-second timeout.
func NewHTTPFeed(url string, client *http.Client) *HTTPFeed {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &HTTPFeed{url: url, client: client}
}

func (f *HTTPFeed) Latest(ctx context.Context) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: upstream returned %d", ErrUnavailable, resp.StatusCode)
	}

	var body struct {
		Price int64 `json:"price"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return body.Price, nil
}
