// Package providers answers currency and weather lookups from either the
// bundled mock tables or an upstream HTTP API, through a read-through cache.
package providers

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ssovee/Open-Data-API/cache"
)

var (
	ErrUnknownCurrency = errors.New("unknown currency")
	ErrUnknownCity     = errors.New("unknown city")
	ErrUpstream        = errors.New("upstream unavailable")
)

//go:embed mock_data/*.json
var mockData embed.FS

// Options selects and configures the provider implementations.
type Options struct {
	Kind          string
	CurrencyURL   string
	WeatherURL    string
	WeatherAPIKey string
	Timeout       time.Duration
	CacheTTL      time.Duration
}

// New builds the currency and weather services described by opts.
func New(opts Options, c cache.Cache, logger *slog.Logger) (*CurrencyService, *WeatherService, error) {
	var (
		cp  CurrencyProvider
		wp  WeatherProvider
		err error
	)
	switch opts.Kind {
	case "mock", "":
		if cp, err = NewMockCurrency(); err != nil {
			return nil, nil, err
		}
		if wp, err = NewMockWeather(); err != nil {
			return nil, nil, err
		}
	case "http":
		client := &http.Client{Timeout: opts.Timeout}
		cp = NewHTTPCurrency(client, opts.CurrencyURL)
		wp = NewHTTPWeather(client, opts.WeatherURL, opts.WeatherAPIKey)
	default:
		return nil, nil, fmt.Errorf("unknown provider kind %q", opts.Kind)
	}
	return NewCurrencyService(cp, c, opts.CacheTTL, logger), NewWeatherService(wp, c, opts.CacheTTL, logger), nil
}

// cached returns the value stored under key or fetches, stores and returns it.
// Cache failures are logged and never fail the lookup.
func cached[T any](ctx context.Context, c cache.Cache, logger *slog.Logger, key string, ttl time.Duration, fetch func() (T, error)) (T, error) {
	if raw, ok, err := c.Get(ctx, key); err != nil {
		logger.Warn("cache read failed", "key", key, "error", err)
	} else if ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		logger.Warn("discarding undecodable cache entry", "key", key)
	}

	v, err := fetch()
	if err != nil {
		return v, err
	}

	raw, err := json.Marshal(v)
	if err == nil {
		err = c.Set(ctx, key, raw, ttl)
	}
	if err != nil {
		logger.Warn("cache write failed", "key", key, "error", err)
	}
	return v, nil
}
