// Package fuel supplies current retail fuel prices from the EIA open-data
// API, falling back to the static default table when the API is
// unreachable or unconfigured.
package fuel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	neturl "net/url"
	"time"

	"github.com/LemonScout/lemonscout-mvp/engine/domain"
)

// DefaultBaseURL is the EIA API v2 host.
const DefaultBaseURL = "https://api.eia.gov"

// Weekly US-average retail price series, dollars per gallon.
var gasolineSeries = map[domain.FuelType]string{
	domain.FuelRegular: "EMM_EPMR_PTE_NUS_DPG",
	domain.FuelPremium: "EMM_EPMP_PTE_NUS_DPG",
	domain.FuelDiesel:  "EMD_EPD2D_PTE_NUS_DPG",
}

// Source fetches prices from the EIA API.
type Source struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

// New creates a Source. An empty apiKey disables fetching; Prices then
// returns the static defaults.
func New(baseURL, apiKey string, logger *slog.Logger) *Source {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

// Prices returns the current retail price table. Each series is fetched
// independently; any failure falls back to that fuel's static default, so a
// partial EIA outage degrades rather than fails.
func (s *Source) Prices(ctx context.Context) domain.FuelPrices {
	prices := domain.DefaultFuelPrices()
	if s.apiKey == "" {
		return prices
	}

	for fuel, series := range gasolineSeries {
		v, err := s.latestGasolinePrice(ctx, series)
		if err != nil {
			s.logger.Warn("fuel price fetch failed, using default",
				"fuel", string(fuel), "error", err)
			continue
		}
		prices[fuel] = v
	}

	return prices
}

type seriesResponse struct {
	Response struct {
		Data []struct {
			Value float64 `json:"value"`
		} `json:"data"`
	} `json:"response"`
}

// latestGasolinePrice fetches the most recent weekly observation of one
// petroleum price series.
func (s *Source) latestGasolinePrice(ctx context.Context, series string) (float64, error) {
	q := neturl.Values{}
	q.Set("api_key", s.apiKey)
	q.Set("frequency", "weekly")
	q.Set("data[0]", "value")
	q.Set("facets[series][]", series)
	q.Set("sort[0][column]", "period")
	q.Set("sort[0][direction]", "desc")
	q.Set("length", "1")
	u := s.baseURL + "/v2/petroleum/pri/gnd/data/?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("eia fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("eia: http %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}

	var sr seriesResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return 0, fmt.Errorf("eia decode: %w", err)
	}
	if len(sr.Response.Data) == 0 {
		return 0, fmt.Errorf("eia: no observations for %s", series)
	}
	v := sr.Response.Data[0].Value
	if v <= 0 {
		return 0, fmt.Errorf("eia: non-positive price %g for %s", v, series)
	}
	return v, nil
}
