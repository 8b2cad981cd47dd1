package oracle

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStaticFeed_Latest(t *testing.T) {
	feed := NewStaticFeed(2000 * PriceScale)

	price, err := feed.Latest(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price != 2000*PriceScale {
		t.Errorf("expected %d, got %d", 2000*PriceScale, price)
	}
}

func TestStaticFeed_StaleReading(t *testing.T) {
	// A non-positive reading is data, not an error.
	feed := NewStaticFeed(0)

	price, err := feed.Latest(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price != 0 {
		t.Errorf("expected 0, got %d", price)
	}
}

func TestHTTPFeed_Latest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"price": 200000000000}`))
	}))
	defer srv.Close()

	feed := NewHTTPFeed(srv.URL, srv.Client())
	price, err := feed.Latest(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price != 200000000000 {
		t.Errorf("expected 200000000000, got %d", price)
	}
}

func TestHTTPFeed_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	feed := NewHTTPFeed(srv.URL, srv.Client())
	_, err := feed.Latest(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestHTTPFeed_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	srv.Close() // closed before use: connection refused

	feed := NewHTTPFeed(srv.URL, nil)
	_, err := feed.Latest(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestHTTPFeed_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	feed := NewHTTPFeed(srv.URL, srv.Client())
	_, err := feed.Latest(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}
