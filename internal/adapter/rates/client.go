package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/finadem/core-banking/internal/domain"
	"github.com/finadem/core-banking/internal/logger"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const rateCacheTTL = 5 * time.Minute

// Client converts amounts using the external rate API. Rates are cached
// in Redis when a cache client is supplied; a nil cache disables
// caching. Any upstream failure surfaces as domain.ErrRateUnavailable.
type Client struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	cache      *redis.Client
}

func NewClient(apiURL, apiKey string, cache *redis.Client) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiURL:     strings.TrimSpace(apiURL),
		apiKey:     strings.TrimSpace(apiKey),
		cache:      cache,
	}
}

func (c *Client) Convert(ctx context.Context, amount decimal.Decimal, fromCurrency, toCurrency string) (domain.Money, error) {
	from := strings.ToUpper(strings.TrimSpace(fromCurrency))
	to := strings.ToUpper(strings.TrimSpace(toCurrency))

	if from == to {
		return domain.NewMoney(amount, to).Rounded(), nil
	}

	rate, err := c.rate(ctx, from, to)
	if err != nil {
		return domain.Money{}, err
	}

	return domain.NewMoney(amount.Mul(rate), to).Rounded(), nil
}

func (c *Client) rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	cacheKey := fmt.Sprintf("rate:%s:%s", from, to)

	if c.cache != nil {
		if val, err := c.cache.Get(ctx, cacheKey).Result(); err == nil {
			if cached, parseErr := decimal.NewFromString(val); parseErr == nil {
				return cached, nil
			}
		}
	}

	rate, err := c.fetchRate(ctx, from, to)
	if err != nil {
		return decimal.Decimal{}, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, rate.String(), rateCacheTTL).Err(); err != nil {
			logger.Error("rates client cache set failed", err, logger.Fields{
				"fromCurrency": from,
				"toCurrency":   to,
			})
		}
	}

	return rate, nil
}

func (c *Client) fetchRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	query := url.Values{}
	query.Set("apikey", c.apiKey)
	query.Set("base_currency", from)
	query.Set("currencies", to)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+query.Encode(), nil)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: build rate request: %v", domain.ErrRateUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: call rate api: %v", domain.ErrRateUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Decimal{}, fmt.Errorf("%w: rate api returned status %d", domain.ErrRateUnavailable, resp.StatusCode)
	}

	var payload struct {
		Data map[string]json.Number `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: decode rate response: %v", domain.ErrRateUnavailable, err)
	}

	raw, ok := payload.Data[to]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: rate for %s missing in response", domain.ErrRateUnavailable, to)
	}

	rate, err := decimal.NewFromString(raw.String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: rate for %s is not a number", domain.ErrRateUnavailable, to)
	}
	if rate.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, fmt.Errorf("%w: rate for %s must be greater than zero", domain.ErrRateUnavailable, to)
	}

	return rate, nil
}
