package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/LukasBrandt/PaySweep/internal/pkg/cache"
	"github.com/LukasBrandt/PaySweep/internal/pkg/env"
	"github.com/shopspring/decimal"
)

const defaultRatesBaseURL = "https://api.paywave.io/v1/rates"

// Service resolves exchange rates through a shared, redis-backed cache with
// an explicit TTL. The cache is safe across multiple instances; an
// in-process map would not be.
type Service struct {
	BaseURL string
	TTL     time.Duration

	HTTP *http.Client
}

// NewServiceFromEnv builds the rates service from environment configuration.
func NewServiceFromEnv() *Service {
	ttlMinutes, err := strconv.Atoi(env.GetEnv("RATES_TTL_MINUTES", "60"))
	if err != nil || ttlMinutes <= 0 {
		ttlMinutes = 60
	}
	return &Service{
		BaseURL: strings.TrimRight(env.GetEnv("RATES_API_BASE_URL", defaultRatesBaseURL), "/"),
		TTL:     time.Duration(ttlMinutes) * time.Minute,
		HTTP: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Rate returns the exchange rate from one currency into another, consulting
// the cache before the provider.
func (s *Service) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == "" || to == "" {
		return decimal.Zero, fmt.Errorf("both currencies are required")
	}
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	key := fmt.Sprintf("rates:%s:%s", from, to)
	if cached, err := cache.Get(key); err == nil {
		if rate, parseErr := decimal.NewFromString(cached); parseErr == nil {
			return rate, nil
		}
	}

	rate, err := s.fetchRate(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}

	if err := cache.Set(key, rate.String(), s.TTL); err != nil {
		// A cold cache is only a latency problem, not a correctness one.
		return rate, nil
	}
	return rate, nil
}

// Convert converts an amount between currencies using the cached rate.
func (s *Service) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	rate, err := s.Rate(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate).Round(2), nil
}

func (s *Service) fetchRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s?base=%s&quote=%s", s.BaseURL, from, to)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.HTTP.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decimal.Zero, fmt.Errorf("rate request failed: status=%d", resp.StatusCode)
	}

	var out struct {
		Rate decimal.Decimal `json:"rate"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return decimal.Zero, err
	}
	if out.Rate.IsZero() {
		return decimal.Zero, fmt.Errorf("rate response returned zero rate for %s/%s", from, to)
	}
	return out.Rate, nil
}
