// Package nhtsa is a client for the NHTSA complaints, recalls and products
// APIs. Calls are rate limited, retried with jittered backoff and guarded by
// a circuit breaker so one bad stretch of upstream behavior does not hammer
// the API.
package nhtsa

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"time"

	"github.com/LemonScout/lemonscout-mvp/engine/ingest"
	"github.com/LemonScout/lemonscout-mvp/pkg/fn"
	"github.com/LemonScout/lemonscout-mvp/pkg/resilience"
)

// DefaultBaseURL is the production NHTSA API host.
const DefaultBaseURL = "https://api.nhtsa.gov"

const userAgent = "lemonscout-collector/1.0 (vehicle reliability data collection)"

// Config controls client behavior.
type Config struct {
	BaseURL string
	// RPS is the sustained request rate against the API.
	RPS   float64
	Burst int
	Retry fn.RetryOpts
}

// DefaultConfig suits the public API: two requests per second, three
// attempts with jittered backoff.
func DefaultConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		RPS:     2,
		Burst:   1,
		Retry: fn.RetryOpts{
			MaxAttempts: 3,
			InitialWait: 5 * time.Second,
			MaxWait:     30 * time.Second,
			Jitter:      true,
		},
	}
}

// Client fetches vehicle safety data from api.nhtsa.gov.
type Client struct {
	cfg     Config
	client  *http.Client
	limiter *resilience.Limiter
	breaker *resilience.Breaker
}

// New creates a Client, filling unset config from the defaults.
func New(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.RPS <= 0 {
		cfg.RPS = def.RPS
	}
	if cfg.Burst <= 0 {
		cfg.Burst = def.Burst
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = def.Retry
	}
	return &Client{
		cfg:     cfg,
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: resilience.NewLimiter(cfg.RPS, cfg.Burst),
		breaker: resilience.NewBreaker(resilience.DefaultBreakerOpts),
	}
}

// Models returns the model names NHTSA has complaint data for, for one make
// and model year.
func (c *Client) Models(ctx context.Context, make_ string, year int) ([]string, error) {
	u := fmt.Sprintf("%s/products/vehicle/models?modelYear=%d&make=%s&issueType=c",
		c.cfg.BaseURL, year, neturl.QueryEscape(make_))

	var resp struct {
		Count   int `json:"count"`
		Results []struct {
			Model string `json:"model"`
		} `json:"results"`
	}
	if err := c.get(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("nhtsa models %s %d: %w", make_, year, err)
	}

	models := make([]string, 0, len(resp.Results))
	for _, m := range resp.Results {
		models = append(models, m.Model)
	}
	return models, nil
}

// Complaints returns the raw complaint rows for one make/model/year.
func (c *Client) Complaints(ctx context.Context, make_, model string, year int) ([]ingest.RawComplaint, error) {
	u := fmt.Sprintf("%s/complaints/complaintsByVehicle?make=%s&model=%s&modelYear=%d",
		c.cfg.BaseURL, neturl.QueryEscape(make_), neturl.QueryEscape(model), year)

	var resp struct {
		Count   int                   `json:"count"`
		Results []ingest.RawComplaint `json:"results"`
	}
	if err := c.get(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("nhtsa complaints %s %s %d: %w", make_, model, year, err)
	}
	return resp.Results, nil
}

// Recalls returns the recall campaign rows for one make/model/year.
func (c *Client) Recalls(ctx context.Context, make_, model string, year int) ([]ingest.RawRecall, error) {
	u := fmt.Sprintf("%s/recalls/recallsByVehicle?make=%s&model=%s&modelYear=%d",
		c.cfg.BaseURL, neturl.QueryEscape(make_), neturl.QueryEscape(model), year)

	var resp struct {
		Count   int                `json:"count"`
		Results []ingest.RawRecall `json:"results"`
	}
	if err := c.get(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("nhtsa recalls %s %s %d: %w", make_, model, year, err)
	}
	return resp.Results, nil
}

// get runs one rate-limited, breaker-guarded, retried GET and decodes the
// JSON body into out.
func (c *Client) get(ctx context.Context, url string, out any) error {
	result := fn.Retry(ctx, c.cfg.Retry, func(ctx context.Context) fn.Result[[]byte] {
		return resilience.CallResult(c.breaker, ctx, func(ctx context.Context) fn.Result[[]byte] {
			if err := c.limiter.Wait(ctx); err != nil {
				return fn.Err[[]byte](err)
			}
			return c.doGet(ctx, url)
		})
	})

	body, err := result.Unwrap()
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

func (c *Client) doGet(ctx context.Context, url string) fn.Result[[]byte] {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fn.Err[[]byte](err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return fn.Err[[]byte](err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fn.Err[[]byte](fmt.Errorf("http %d from %s", resp.StatusCode, url))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fn.Err[[]byte](fmt.Errorf("read body: %w", err))
	}
	return fn.Ok(body)
}
