package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/skinfolio/skinfolio/internal/contracts"
	"github.com/skinfolio/skinfolio/pkg/httputil"
	"github.com/skinfolio/skinfolio/pkg/logger"
)

func newHTTPProvider(t *testing.T, handler http.HandlerFunc, apiKey string) *HTTP {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := httputil.New(logger.Nop(), 5*time.Second).DisableRetry()
	return NewHTTP(client, server.URL, apiKey)
}

func TestHTTPFetchCurrent(t *testing.T) {
	p := newHTTPProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/price" {
			t.Errorf("path = %q, want /price", r.URL.Path)
		}
		if got := r.URL.Query().Get("name"); got != "AWP | Asiimov (Field-Tested)" {
			t.Errorf("name = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sekrit" {
			t.Errorf("Authorization = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"price_usd": 81.25, "volume_24h": 340,
		})
	}, "sekrit")

	quote, err := p.FetchCurrent(context.Background(), contracts.Item{Name: "AWP | Asiimov (Field-Tested)"})
	if err != nil {
		t.Fatalf("FetchCurrent() error = %v", err)
	}
	if quote.PriceUSD != 81.25 || quote.Volume24h != 340 {
		t.Errorf("quote = %+v", quote)
	}
}

func TestHTTPFetchCurrentNonPositivePrice(t *testing.T) {
	p := newHTTPProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"price_usd": 0})
	}, "")

	_, err := p.FetchCurrent(context.Background(), contracts.Item{Name: "X"})
	if !contracts.IsFetch(err) {
		t.Errorf("error = %v, want FetchError", err)
	}
}

func TestHTTPFetchCurrentUpstreamError(t *testing.T) {
	p := newHTTPProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}, "")

	_, err := p.FetchCurrent(context.Background(), contracts.Item{Name: "X"})
	if !contracts.IsFetch(err) {
		t.Errorf("error = %v, want FetchError", err)
	}
}

func TestHTTPFetchHistory(t *testing.T) {
	p := newHTTPProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/history" {
			t.Errorf("path = %q, want /history", r.URL.Path)
		}
		if got := r.URL.Query().Get("days"); got != "3" {
			t.Errorf("days = %q, want 3", got)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"points": []map[string]interface{}{
				{"date": "2026-03-01", "price_usd": 10.0, "volume_24h": 100},
				{"date": "not-a-date", "price_usd": 99.0, "volume_24h": 1},
				{"date": "2026-03-02", "price_usd": 11.5, "volume_24h": 90},
			},
		})
	}, "")

	points, err := p.FetchHistory(context.Background(), contracts.Item{Name: "X"}, 3)
	if err != nil {
		t.Fatalf("FetchHistory() error = %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("points = %d, want 2 (malformed date dropped)", len(points))
	}
	if points[0].PriceUSD != 10.0 || points[1].PriceUSD != 11.5 {
		t.Errorf("points = %+v", points)
	}
	if points[0].Date.Hour() != 0 || points[0].Date.Location() != time.UTC {
		t.Errorf("dates not day-normalized: %v", points[0].Date)
	}
}
