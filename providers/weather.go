package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ssovee/Open-Data-API/cache"
)

type Weather struct {
	City         string    `json:"city"`
	TemperatureC float64   `json:"temperature_c"`
	Humidity     int       `json:"humidity"`
	Condition    string    `json:"condition"`
	WindKPH      float64   `json:"wind_kph"`
	FetchedAt    time.Time `json:"fetched_at"`
}

type WeatherProvider interface {
	Current(ctx context.Context, city string) (*Weather, error)
}

type MockWeather struct {
	byCity map[string]Weather
}

func NewMockWeather() (*MockWeather, error) {
	raw, err := mockData.ReadFile("mock_data/weather.json")
	if err != nil {
		return nil, err
	}
	var rows []Weather
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode weather: %w", err)
	}
	m := &MockWeather{byCity: make(map[string]Weather, len(rows))}
	for _, w := range rows {
		m.byCity[strings.ToLower(w.City)] = w
	}
	return m, nil
}

func (m *MockWeather) Current(_ context.Context, city string) (*Weather, error) {
	w, ok := m.byCity[strings.ToLower(city)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCity, city)
	}
	return &w, nil
}

// HTTPWeather calls a weatherapi.com-compatible current conditions endpoint.
type HTTPWeather struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

func NewHTTPWeather(client *http.Client, baseURL, apiKey string) *HTTPWeather {
	return &HTTPWeather{client: client, baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey}
}

type upstreamWeather struct {
	Location struct {
		Name string `json:"name"`
	} `json:"location"`
	Current struct {
		TempC     float64 `json:"temp_c"`
		Humidity  int     `json:"humidity"`
		WindKPH   float64 `json:"wind_kph"`
		Condition struct {
			Text string `json:"text"`
		} `json:"condition"`
	} `json:"current"`
}

func (h *HTTPWeather) Current(ctx context.Context, city string) (*Weather, error) {
	q := url.Values{"q": {city}}
	if h.apiKey != "" {
		q.Set("key", h.apiKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/current.json?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCity, city)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var body upstreamWeather
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrUpstream, err)
	}
	name := body.Location.Name
	if name == "" {
		name = city
	}
	return &Weather{
		City:         name,
		TemperatureC: body.Current.TempC,
		Humidity:     body.Current.Humidity,
		Condition:    body.Current.Condition.Text,
		WindKPH:      body.Current.WindKPH,
	}, nil
}

type WeatherService struct {
	provider WeatherProvider
	cache    cache.Cache
	ttl      time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

func NewWeatherService(p WeatherProvider, c cache.Cache, ttl time.Duration, logger *slog.Logger) *WeatherService {
	return &WeatherService{
		provider: p,
		cache:    c,
		ttl:      ttl,
		logger:   logger.With("component", "weather"),
		now:      time.Now,
	}
}

func (s *WeatherService) Current(ctx context.Context, city string) (*Weather, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, fmt.Errorf("%w: empty name", ErrUnknownCity)
	}
	return cached(ctx, s.cache, s.logger, "weather:"+strings.ToLower(city), s.ttl, func() (*Weather, error) {
		w, err := s.provider.Current(ctx, city)
		if err != nil {
			return nil, err
		}
		w.FetchedAt = s.now().UTC()
		return w, nil
	})
}
