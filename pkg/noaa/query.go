package noaa

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/spencer-p/tidewire/pkg/metrics"
)

const (
	NOAA_URL          = "https://api.tidesandcurrents.noaa.gov/api/prod/datagetter"
	NOAA_METADATA_URL = "https://api.tidesandcurrents.noaa.gov/mdapi/prod/webapi"
	TIME_FMT          = "20060102"
)

// Client talks to NOAA. The zero value is not usable; see NewClient.
type Client struct {
	dataURL     string
	metadataURL string
	http        *http.Client
	log         zerolog.Logger
}

// ClientConfig configures a Client. Empty URLs use the production APIs.
type ClientConfig struct {
	DataURL     string
	MetadataURL string
	HTTPClient  *http.Client
	Logger      zerolog.Logger
}

func NewClient(cfg ClientConfig) *Client {
	c := &Client{
		dataURL:     cfg.DataURL,
		metadataURL: cfg.MetadataURL,
		http:        cfg.HTTPClient,
		log:         cfg.Logger.With().Str("component", "noaa").Logger(),
	}
	if c.dataURL == "" {
		c.dataURL = NOAA_URL
	}
	if c.metadataURL == "" {
		c.metadataURL = NOAA_METADATA_URL
	}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	return c
}

// GetPredictions fetches hi/lo tide predictions for the query window.
func (c *Client) GetPredictions(ctx context.Context, q *PredictionQuery) ([]RawPrediction, error) {
	var result DataResult
	if err := c.fetch(ctx, "predictions", q.url(c.dataURL), &result); err != nil {
		return nil, err
	}
	if result.Error != nil {
		metrics.ObserveUpstream("predictions", "upstream_error")
		return nil, result.Error
	}
	return result.Predictions, nil
}

// GetWind fetches recent wind samples, oldest first.
func (c *Client) GetWind(ctx context.Context, q *WindQuery) ([]RawWind, error) {
	var result DataResult
	if err := c.fetch(ctx, "wind", q.url(c.dataURL), &result); err != nil {
		return nil, err
	}
	if result.Error != nil {
		metrics.ObserveUpstream("wind", "upstream_error")
		return nil, result.Error
	}
	return result.Data, nil
}

// GetStation fetches metadata for a single station.
func (c *Client) GetStation(ctx context.Context, id string) (*Station, error) {
	addr, err := url.Parse(c.metadataURL + "/stations/" + url.PathEscape(id) + ".json")
	if err != nil {
		return nil, err
	}
	var result MetadataResult
	if err := c.fetch(ctx, "station", addr, &result); err != nil {
		return nil, err
	}
	if result.Error != nil {
		metrics.ObserveUpstream("station", "upstream_error")
		return nil, result.Error
	}
	if len(result.Stations) == 0 {
		return nil, fmt.Errorf("station %q not found", id)
	}
	return &result.Stations[0], nil
}

// GetStations lists every station with tide predictions.
func (c *Client) GetStations(ctx context.Context) ([]Station, error) {
	addr, err := url.Parse(c.metadataURL + "/stations.json")
	if err != nil {
		return nil, err
	}
	addr.RawQuery = url.Values{"type": {"tidepredictions"}}.Encode()

	var result MetadataResult
	if err := c.fetch(ctx, "stations", addr, &result); err != nil {
		return nil, err
	}
	if result.Error != nil {
		metrics.ObserveUpstream("stations", "upstream_error")
		return nil, result.Error
	}
	return result.Stations, nil
}

// fetch performs one GET and decodes the JSON body into v. There are no
// retries.
func (c *Client) fetch(ctx context.Context, product string, addr *url.URL, v any) error {
	if addr == nil {
		return fmt.Errorf("no url for %s", product)
	}
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr.String(), http.NoBody)
	if err != nil {
		return fmt.Errorf("creating %s request: %w", product, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveUpstream(product, "transport_error")
		return fmt.Errorf("fetching %s: %w", product, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ObserveUpstream(product, "bad_status")
		return fmt.Errorf("fetching %s: unexpected status %s", product, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		metrics.ObserveUpstream(product, "decode_error")
		return fmt.Errorf("decoding %s: %w", product, err)
	}

	metrics.ObserveUpstream(product, "ok")
	c.log.Debug().
		Str("product", product).
		Dur("duration", time.Since(start)).
		Msg("fetched")
	return nil
}

func (q *PredictionQuery) url(base string) *url.URL {
	addr, err := url.Parse(base)
	if err != nil {
		return nil
	}
	addr.RawQuery = q.build().Encode()
	return addr
}

func (q *PredictionQuery) build() url.Values {
	// end_date is inclusive, so step back inside the window.
	end := q.Start
	if q.Duration > 0 {
		end = q.Start.Add(q.Duration - time.Nanosecond)
	}
	vals := make(url.Values)
	vals.Add("begin_date", q.Start.Format(TIME_FMT))
	vals.Add("end_date", end.Format(TIME_FMT))
	vals.Add("station", q.Station)
	vals.Add("product", "predictions")
	vals.Add("datum", "MLLW")
	vals.Add("time_zone", "lst_ldt")
	vals.Add("interval", "hilo")
	vals.Add("units", "english")
	vals.Add("format", "json")
	return vals
}

func (q *WindQuery) url(base string) *url.URL {
	addr, err := url.Parse(base)
	if err != nil {
		return nil
	}
	hours := q.Hours
	if hours < 1 {
		hours = 1
	}
	vals := make(url.Values)
	vals.Add("station", q.Station)
	vals.Add("product", "wind")
	vals.Add("range", strconv.Itoa(hours))
	vals.Add("time_zone", "lst_ldt")
	vals.Add("units", "english")
	vals.Add("format", "json")
	addr.RawQuery = vals.Encode()
	return addr
}
