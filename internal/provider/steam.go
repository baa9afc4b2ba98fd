package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/skinfolio/skinfolio/internal/contracts"
	"github.com/skinfolio/skinfolio/pkg/httputil"
	"github.com/skinfolio/skinfolio/pkg/logger"
)

const (
	steamAppID          = 730
	steamPriceOverview  = "https://steamcommunity.com/market/priceoverview/"
	steamListingBaseURL = "https://steamcommunity.com/market/listings/730/"
)

// Steam is the live-market provider. It talks to the Steam Community
// Market, which rate-limits aggressively and localizes price strings, so
// every call goes through a limiter and the parser normalizes currency
// formatting at this boundary.
type Steam struct {
	http     *httputil.Client
	logger   *logger.Logger
	currency int
	limiter  *rate.Limiter
	now      func() time.Time
}

// NewSteam creates the live-market provider. minDelay spaces out upstream
// calls regardless of how many ingestion workers fan out.
func NewSteam(client *httputil.Client, log *logger.Logger, currency int, minDelay time.Duration) *Steam {
	if minDelay <= 0 {
		minDelay = 150 * time.Millisecond
	}
	return &Steam{
		http:     client,
		logger:   log,
		currency: currency,
		limiter:  rate.NewLimiter(rate.Every(minDelay), 1),
		now:      time.Now,
	}
}

// Source implements Provider.
func (s *Steam) Source() contracts.Source { return contracts.SourceSteam }

type priceOverviewResponse struct {
	Success     bool   `json:"success"`
	LowestPrice string `json:"lowest_price"`
	MedianPrice string `json:"median_price"`
	Volume      string `json:"volume"`
}

// FetchCurrent implements Provider via the priceoverview endpoint.
func (s *Steam) FetchCurrent(ctx context.Context, item contracts.Item) (Quote, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return Quote{}, contracts.NewFetchError(item.Name, err)
	}

	params := url.Values{}
	params.Set("appid", fmt.Sprint(steamAppID))
	params.Set("currency", fmt.Sprint(s.currency))
	params.Set("market_hash_name", item.Name)
	reqURL := steamPriceOverview + "?" + params.Encode()

	resp, err := s.http.Get(ctx, reqURL)
	if err != nil {
		return Quote{}, contracts.NewFetchError(item.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Quote{}, contracts.NewFetchError(item.Name,
			fmt.Errorf("priceoverview status %d", resp.StatusCode))
	}

	var payload priceOverviewResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Quote{}, contracts.NewFetchError(item.Name, fmt.Errorf("decode priceoverview: %w", err))
	}
	if !payload.Success {
		return Quote{}, contracts.NewFetchError(item.Name, fmt.Errorf("priceoverview success=false"))
	}

	priceText := payload.LowestPrice
	if priceText == "" {
		priceText = payload.MedianPrice
	}
	if priceText == "" {
		return Quote{}, contracts.NewFetchError(item.Name, fmt.Errorf("no price in priceoverview response"))
	}

	price, err := parsePrice(priceText)
	if err != nil {
		return Quote{}, contracts.NewFetchError(item.Name, err)
	}

	// Volume is frequently missing for thin items; zero is a valid value,
	// not a failure.
	return Quote{
		PriceUSD:  price,
		Volume24h: parseVolume(payload.Volume),
		SourceRef: reqURL,
	}, nil
}

var line1Pattern = regexp.MustCompile(`var line1=(\[[\s\S]*?\]);`)

// FetchHistory implements Provider by scraping the price graph embedded in
// the public listing page.
func (s *Steam) FetchHistory(ctx context.Context, item contracts.Item, days int) ([]PricePoint, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, contracts.NewFetchError(item.Name, err)
	}

	resp, err := s.http.Get(ctx, s.ListingURL(item.Name))
	if err != nil {
		return nil, contracts.NewFetchError(item.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, contracts.NewFetchError(item.Name,
			fmt.Errorf("listing page status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, contracts.NewFetchError(item.Name, fmt.Errorf("read listing page: %w", err))
	}

	match := line1Pattern.FindSubmatch(body)
	if match == nil {
		return nil, contracts.NewFetchError(item.Name, fmt.Errorf("no price history in listing page"))
	}

	points, err := parseHistoryPoints(match[1], days, contracts.Day(s.now()))
	if err != nil {
		return nil, contracts.NewFetchError(item.Name, err)
	}
	return points, nil
}

// parseHistoryPoints decodes Steam's [["Feb 21 2014 01: +0", 12.34, "217"], ...]
// array, keeps the last observation per calendar day within the cutoff, and
// returns them ascending.
func parseHistoryPoints(raw []byte, days int, today time.Time) ([]PricePoint, error) {
	if days < 1 {
		days = 1
	}
	cutoff := today.AddDate(0, 0, -(days - 1))

	var entries [][]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode history array: %w", err)
	}

	latestByDay := make(map[int64]PricePoint)
	for _, entry := range entries {
		if len(entry) < 3 {
			continue
		}

		var dateText string
		var price float64
		var volumeText string
		if json.Unmarshal(entry[0], &dateText) != nil ||
			json.Unmarshal(entry[1], &price) != nil ||
			json.Unmarshal(entry[2], &volumeText) != nil {
			continue
		}

		date, err := parseHistoryDate(dateText)
		if err != nil || date.Before(cutoff) || date.After(today) {
			continue
		}

		latestByDay[date.Unix()] = PricePoint{
			Date:      date,
			PriceUSD:  price,
			Volume24h: parseVolume(volumeText),
		}
	}

	points := make([]PricePoint, 0, len(latestByDay))
	for _, p := range latestByDay {
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}

// ListingURL implements MediaResolver.
func (s *Steam) ListingURL(itemName string) string {
	return steamListingBaseURL + url.PathEscape(itemName)
}

// ResolveImageURL implements MediaResolver by reading the og:image meta tag
// off the listing page.
func (s *Steam) ResolveImageURL(ctx context.Context, itemName string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}

	resp, err := s.http.Get(ctx, s.ListingURL(itemName))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("listing page status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse listing page: %w", err)
	}

	imageURL, _ := doc.Find(`meta[property="og:image"]`).Attr("content")
	return strings.TrimSpace(imageURL), nil
}
