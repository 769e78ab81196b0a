// Package bcb reads reference-rate series from the Banco Central do Brasil
// time-series service (SGS).
package bcb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carteira-app/carteira/internal/model"
)

const (
	defaultBaseURL = "https://api.bcb.gov.br/dados/serie"

	// SeriesCDI is the SGS code of the daily CDI rate, in percent per day.
	SeriesCDI = 12

	dateLayout = "02/01/2006"
	// SGS rejects daily-series windows longer than ten years.
	maxWindowYears = 10
	// Digits kept on the accumulated factor; bounds growth over long ranges.
	indexPrecision = 16
)

// Observation is a single raw SGS data point.
type Observation struct {
	Date  string `json:"data"`  // dd/mm/yyyy
	Value string `json:"valor"` // decimal with a dot separator
}

// Client queries the SGS JSON API.
type Client struct {
	httpClient *http.Client
	baseURL    string // overridable for tests
}

// NewClient creates an SGS client. A nil httpClient falls back to http.DefaultClient.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{httpClient: httpClient, baseURL: defaultBaseURL}
}

// WithBaseURL returns a copy of the client targeting another endpoint.
func (c *Client) WithBaseURL(baseURL string) *Client {
	return &Client{httpClient: c.httpClient, baseURL: baseURL}
}

// Observations fetches the raw observations of series between start and end,
// inclusive. Long ranges are split into windows the service accepts.
func (c *Client) Observations(ctx context.Context, series int, start, end time.Time) ([]Observation, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("bcb: end %s before start %s", end.Format(time.DateOnly), start.Format(time.DateOnly))
	}

	var all []Observation
	for from := start; !from.After(end); {
		to := from.AddDate(maxWindowYears, 0, -1)
		if to.After(end) {
			to = end
		}
		obs, err := c.fetch(ctx, series, from, to)
		if err != nil {
			return nil, err
		}
		all = append(all, obs...)
		from = to.AddDate(0, 0, 1)
	}
	return all, nil
}

// CDIIndex returns the accumulated CDI as an index series over [start, end]:
// each daily rate r (percent) becomes the factor 1 + r/100 and the factors are
// multiplied in date order. The first point is the first day's factor.
func (c *Client) CDIIndex(ctx context.Context, start, end time.Time) (model.PriceSeries, error) {
	obs, err := c.Observations(ctx, SeriesCDI, start, end)
	if err != nil {
		return nil, err
	}
	return Accumulate(obs)
}

// Accumulate turns daily percentage rates into a cumulative product index.
func Accumulate(obs []Observation) (model.PriceSeries, error) {
	series := make(model.PriceSeries, 0, len(obs))
	hundred := decimal.NewFromInt(100)
	acc := decimal.NewFromInt(1)

	for _, o := range obs {
		date, err := time.Parse(dateLayout, o.Date)
		if err != nil {
			return nil, fmt.Errorf("bcb: invalid date %q: %w", o.Date, err)
		}
		rate, err := decimal.NewFromString(o.Value)
		if err != nil {
			return nil, fmt.Errorf("bcb: invalid value %q on %s: %w", o.Value, o.Date, err)
		}
		factor := decimal.NewFromInt(1).Add(rate.Div(hundred))
		acc = acc.Mul(factor).Round(indexPrecision)
		series = append(series, model.PricePoint{Date: date, Value: acc})
	}

	return series, nil
}

func (c *Client) fetch(ctx context.Context, series int, start, end time.Time) ([]Observation, error) {
	params := url.Values{}
	params.Set("formato", "json")
	params.Set("dataInicial", start.Format(dateLayout))
	params.Set("dataFinal", end.Format(dateLayout))
	endpoint := fmt.Sprintf("%s/bcdata.sgs.%d/dados?%s", c.baseURL, series, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	// SGS answers 406 without an explicit Accept header.
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bcb: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// SGS reports an empty window as 404.
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bcb: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("bcb: %w", err)
	}

	var obs []Observation
	if err := json.Unmarshal(data, &obs); err != nil {
		return nil, fmt.Errorf("bcb: decoding response: %w", err)
	}
	return obs, nil
}
