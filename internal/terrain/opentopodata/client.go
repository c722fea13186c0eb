// Package opentopodata provides a client for the Open Topo Data elevation API.
package opentopodata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/trekatlas/trekatlas/internal/provider/resilience"
	"github.com/trekatlas/trekatlas/internal/terrain"
	"github.com/trekatlas/trekatlas/pkg/geo"
)

const (
	// ProviderName identifies this elevation provider.
	ProviderName = "opentopodata"

	// DefaultBaseURL is the public Open Topo Data API.
	DefaultBaseURL = "https://api.opentopodata.org"

	// DefaultDataset is the SRTM 90m dataset, which covers every trekking
	// region we carry.
	DefaultDataset = "srtm90m"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second

	// maxLocationsPerRequest is the API's batch limit.
	maxLocationsPerRequest = 100
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Open Topo Data client.
type ClientConfig struct {
	// BaseURL is the API base URL (optional, defaults to the public API).
	BaseURL string

	// Dataset is the elevation dataset to query (optional, defaults to srtm90m).
	Dataset string

	// HTTPClient is the HTTP client to use (optional). If nil, a resilient
	// client with defaults is created.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 10s).
	Timeout time.Duration

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an Open Topo Data API client.
type Client struct {
	baseURL    string
	dataset    string
	httpClient HTTPDoer
	registry   *resilience.Registry
	logger     zerolog.Logger
}

// NewClient creates a new Open Topo Data client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	dataset := cfg.Dataset
	if dataset == "" {
		dataset = DefaultDataset
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		client := resilience.NewClient(resilience.ClientConfig{
			Name:    ProviderName,
			Timeout: timeout,
			Logger:  cfg.Logger,
		})
		if cfg.Registry != nil {
			cfg.Registry.Register(ProviderName, client)
		}
		httpClient = client
	}

	return &Client{
		baseURL:    baseURL,
		dataset:    dataset,
		httpClient: httpClient,
		registry:   cfg.Registry,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Elevations queries the dataset for each point, batching requests at the
// API's location limit. The result has one elevation per input point, in
// order; points without data come back as 0.
func (c *Client) Elevations(ctx context.Context, points []geo.Point) ([]float64, error) {
	if len(points) == 0 {
		return nil, nil
	}

	for _, p := range points {
		if p.Lat < -90 || p.Lat > 90 || p.Lon < -180 || p.Lon > 180 {
			return nil, &terrain.Error{
				Provider: ProviderName,
				Code:     "INVALID_LOCATION",
				Message:  fmt.Sprintf("coordinates out of range: %f,%f", p.Lat, p.Lon),
				Err:      terrain.ErrInvalidCoordinates,
			}
		}
	}

	elevations := make([]float64, 0, len(points))
	for start := 0; start < len(points); start += maxLocationsPerRequest {
		end := min(start+maxLocationsPerRequest, len(points))

		batch, err := c.queryBatch(ctx, points[start:end])
		if err != nil {
			if c.registry != nil {
				c.registry.RecordFailure(ProviderName, err)
			}
			return nil, err
		}
		elevations = append(elevations, batch...)
	}

	if c.registry != nil {
		c.registry.RecordSuccess(ProviderName)
	}

	c.logger.Debug().
		Str("dataset", c.dataset).
		Int("points", len(points)).
		Msg("resolved elevations")

	return elevations, nil
}

// queryBatch fetches elevations for at most maxLocationsPerRequest points.
func (c *Client) queryBatch(ctx context.Context, points []geo.Point) ([]float64, error) {
	var locations strings.Builder
	for i, p := range points {
		if i > 0 {
			locations.WriteByte('|')
		}
		locations.WriteString(strconv.FormatFloat(p.Lat, 'f', 6, 64))
		locations.WriteByte(',')
		locations.WriteString(strconv.FormatFloat(p.Lon, 'f', 6, 64))
	}

	url := fmt.Sprintf("%s/v1/%s?locations=%s", c.baseURL, c.dataset, locations.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &terrain.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "failed to reach elevation provider",
			Err:      terrain.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp.StatusCode, body)
	}

	var otd otdResponse
	if err := json.Unmarshal(body, &otd); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if otd.Status != "OK" {
		return nil, &terrain.Error{
			Provider: ProviderName,
			Code:     "PROVIDER_ERROR",
			Message:  otd.ErrorMessage,
			Err:      terrain.ErrProviderUnavailable,
		}
	}
	if len(otd.Results) != len(points) {
		return nil, &terrain.Error{
			Provider: ProviderName,
			Code:     "RESULT_MISMATCH",
			Message:  fmt.Sprintf("asked for %d locations, got %d results", len(points), len(otd.Results)),
			Err:      terrain.ErrProviderUnavailable,
		}
	}

	elevations := make([]float64, len(otd.Results))
	for i, r := range otd.Results {
		// Null elevation means no data at that location (open water, voids).
		if r.Elevation != nil {
			elevations[i] = *r.Elevation
		}
	}
	return elevations, nil
}

// handleErrorResponse maps API error responses to domain errors.
func (c *Client) handleErrorResponse(statusCode int, body []byte) error {
	var otd otdResponse
	_ = json.Unmarshal(body, &otd)

	switch {
	case statusCode == http.StatusTooManyRequests:
		return &terrain.Error{
			Provider: ProviderName,
			Code:     "RATE_LIMIT",
			Message:  "elevation API rate limit exceeded",
			Err:      terrain.ErrRateLimitExceeded,
		}
	case statusCode == http.StatusBadRequest:
		return &terrain.Error{
			Provider: ProviderName,
			Code:     "BAD_REQUEST",
			Message:  otd.ErrorMessage,
			Err:      terrain.ErrInvalidCoordinates,
		}
	case statusCode >= 500:
		return &terrain.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("SERVER_%d", statusCode),
			Message:  "elevation provider is temporarily unavailable",
			Err:      terrain.ErrProviderUnavailable,
		}
	default:
		return &terrain.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", statusCode),
			Message:  otd.ErrorMessage,
			Err:      terrain.ErrProviderUnavailable,
		}
	}
}

// otdResponse is the Open Topo Data API response envelope.
type otdResponse struct {
	Status       string      `json:"status"`
	ErrorMessage string      `json:"error"`
	Results      []otdResult `json:"results"`
}

type otdResult struct {
	Elevation *float64 `json:"elevation"`
	Location  struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
}
