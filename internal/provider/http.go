package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/skinfolio/skinfolio/internal/contracts"
	"github.com/skinfolio/skinfolio/pkg/httputil"
)

// HTTP delegates to a configurable external endpoint speaking a
// provider-agnostic JSON shape. Used when prices come from a partner feed
// instead of Steam directly.
type HTTP struct {
	http    *httputil.Client
	baseURL string
	apiKey  string
}

// NewHTTP creates the generic-http provider. The bearer token, when set,
// rides on every request.
func NewHTTP(client *httputil.Client, baseURL, apiKey string) *HTTP {
	if apiKey != "" {
		client = client.WithHeaders(map[string]string{
			"Authorization": "Bearer " + apiKey,
		})
	}
	return &HTTP{http: client, baseURL: baseURL, apiKey: apiKey}
}

// Source implements Provider.
func (h *HTTP) Source() contracts.Source { return contracts.SourceHTTP }

type httpQuoteResponse struct {
	PriceUSD  float64 `json:"price_usd"`
	Volume24h int64   `json:"volume_24h"`
}

type httpHistoryResponse struct {
	Points []struct {
		Date      string  `json:"date"`
		PriceUSD  float64 `json:"price_usd"`
		Volume24h int64   `json:"volume_24h"`
	} `json:"points"`
}

// FetchCurrent implements Provider. GET {base}/price?name=...
func (h *HTTP) FetchCurrent(ctx context.Context, item contracts.Item) (Quote, error) {
	reqURL := fmt.Sprintf("%s/price?%s", h.baseURL,
		url.Values{"name": {item.Name}}.Encode())

	var payload httpQuoteResponse
	if err := h.getJSON(ctx, reqURL, &payload); err != nil {
		return Quote{}, contracts.NewFetchError(item.Name, err)
	}
	if payload.PriceUSD <= 0 {
		return Quote{}, contracts.NewFetchError(item.Name,
			fmt.Errorf("endpoint returned non-positive price %f", payload.PriceUSD))
	}

	return Quote{
		PriceUSD:  payload.PriceUSD,
		Volume24h: payload.Volume24h,
		SourceRef: reqURL,
	}, nil
}

// FetchHistory implements Provider. GET {base}/history?name=...&days=N
func (h *HTTP) FetchHistory(ctx context.Context, item contracts.Item, days int) ([]PricePoint, error) {
	reqURL := fmt.Sprintf("%s/history?%s", h.baseURL,
		url.Values{"name": {item.Name}, "days": {fmt.Sprint(days)}}.Encode())

	var payload httpHistoryResponse
	if err := h.getJSON(ctx, reqURL, &payload); err != nil {
		return nil, contracts.NewFetchError(item.Name, err)
	}

	points := make([]PricePoint, 0, len(payload.Points))
	for _, p := range payload.Points {
		date, err := time.Parse("2006-01-02", p.Date)
		if err != nil {
			continue
		}
		points = append(points, PricePoint{
			Date:      contracts.Day(date),
			PriceUSD:  p.PriceUSD,
			Volume24h: p.Volume24h,
		})
	}
	return points, nil
}

func (h *HTTP) getJSON(ctx context.Context, reqURL string, out interface{}) error {
	resp, err := h.http.Get(ctx, reqURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("endpoint status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode endpoint response: %w", err)
	}
	return nil
}
