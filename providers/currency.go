package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/ssovee/Open-Data-API/cache"
)

type Rate struct {
	Base      string    `json:"base"`
	Target    string    `json:"target"`
	Rate      float64   `json:"rate"`
	FetchedAt time.Time `json:"fetched_at"`
}

type RateTable struct {
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
	FetchedAt time.Time          `json:"fetched_at"`
}

// CurrencyProvider returns the exchange rates of every known currency
// against base, including base itself at 1.
type CurrencyProvider interface {
	Rates(ctx context.Context, base string) (map[string]float64, error)
}

// MockCurrency derives cross rates from a bundled USD table.
type MockCurrency struct {
	usd map[string]float64
}

func NewMockCurrency() (*MockCurrency, error) {
	raw, err := mockData.ReadFile("mock_data/rates.json")
	if err != nil {
		return nil, err
	}
	var usd map[string]float64
	if err := json.Unmarshal(raw, &usd); err != nil {
		return nil, fmt.Errorf("decode rates: %w", err)
	}
	return &MockCurrency{usd: usd}, nil
}

func (m *MockCurrency) Rates(_ context.Context, base string) (map[string]float64, error) {
	baseUSD, ok := m.usd[base]
	if !ok || baseUSD == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCurrency, base)
	}
	out := make(map[string]float64, len(m.usd))
	for code, v := range m.usd {
		out[code] = v / baseUSD
	}
	return out, nil
}

// HTTPCurrency calls an exchangerate-style API: GET {base}/latest?base=XXX
// answering {"base": "XXX", "rates": {...}}.
type HTTPCurrency struct {
	client  *http.Client
	baseURL string
}

func NewHTTPCurrency(client *http.Client, baseURL string) *HTTPCurrency {
	return &HTTPCurrency{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

func (h *HTTPCurrency) Rates(ctx context.Context, base string) (map[string]float64, error) {
	u := h.baseURL + "/latest?" + url.Values{"base": {base}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusUnprocessableEntity:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCurrency, base)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var body struct {
		Base  string             `json:"base"`
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrUpstream, err)
	}
	if body.Rates == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCurrency, base)
	}
	body.Rates[base] = 1
	return body.Rates, nil
}

type CurrencyService struct {
	provider CurrencyProvider
	cache    cache.Cache
	ttl      time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

func NewCurrencyService(p CurrencyProvider, c cache.Cache, ttl time.Duration, logger *slog.Logger) *CurrencyService {
	return &CurrencyService{
		provider: p,
		cache:    c,
		ttl:      ttl,
		logger:   logger.With("component", "currency"),
		now:      time.Now,
	}
}

// Rates returns the rate table for base. Codes are case-insensitive.
func (s *CurrencyService) Rates(ctx context.Context, base string) (*RateTable, error) {
	base = normalizeCode(base)
	if base == "" {
		return nil, fmt.Errorf("%w: empty code", ErrUnknownCurrency)
	}
	return cached(ctx, s.cache, s.logger, "rates:"+base, s.ttl, func() (*RateTable, error) {
		rates, err := s.provider.Rates(ctx, base)
		if err != nil {
			return nil, err
		}
		return &RateTable{Base: base, Rates: rates, FetchedAt: s.now().UTC()}, nil
	})
}

// Rate returns the exchange rate from one currency to another.
func (s *CurrencyService) Rate(ctx context.Context, from, to string) (*Rate, error) {
	table, err := s.Rates(ctx, from)
	if err != nil {
		return nil, err
	}
	to = normalizeCode(to)
	r, ok := table.Rates[to]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCurrency, to)
	}
	return &Rate{Base: table.Base, Target: to, Rate: r, FetchedAt: table.FetchedAt}, nil
}

// Codes lists the currencies known for base, sorted.
func (t *RateTable) Codes() []string {
	out := make([]string, 0, len(t.Rates))
	for code := range t.Rates {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
