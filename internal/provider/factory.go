package provider

import (
	"fmt"

	"github.com/skinfolio/skinfolio/internal/contracts"
	"github.com/skinfolio/skinfolio/pkg/config"
	"github.com/skinfolio/skinfolio/pkg/httputil"
	"github.com/skinfolio/skinfolio/pkg/logger"
	"github.com/skinfolio/skinfolio/pkg/redis"
)

// New builds the configured provider variant. This is the only place the
// selection happens; a bad selection is a ConfigurationError and nothing
// downstream runs.
func New(cfg *config.Config, log *logger.Logger, cache *redis.Client) (Provider, error) {
	var p Provider

	switch cfg.Provider.Name {
	case "mock":
		p = NewMock()

	case "steam":
		client := httputil.New(log, cfg.Provider.FetchTimeout).WithHeaders(map[string]string{
			"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)",
			"Accept":     "application/json",
			"Referer":    "https://steamcommunity.com/market/",
		})
		p = NewSteam(client, log, cfg.Provider.SteamCurrency, cfg.Provider.MinCallDelay)

	case "http":
		if cfg.Provider.MarketAPIURL == "" {
			return nil, &contracts.ConfigurationError{
				Reason: "MARKET_API_URL is required for the http provider",
			}
		}
		client := httputil.New(log, cfg.Provider.FetchTimeout)
		p = NewHTTP(client, cfg.Provider.MarketAPIURL, cfg.Provider.MarketAPIKey)

	default:
		return nil, &contracts.ConfigurationError{
			Reason: fmt.Sprintf("unknown provider %q", cfg.Provider.Name),
		}
	}

	if cache != nil && cache.Enabled() {
		p = NewCached(p, cache, cfg.Redis.QuoteTTL)
	}
	return p, nil
}
