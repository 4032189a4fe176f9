package libs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"food-order/models"

	"github.com/sony/gobreaker/v2"
)

const (
	defaultGeocodingURL        = "https://maps.googleapis.com/maps/api/geocode/json"
	geocodeBodyReadLimit int64 = 1024
)

var errGeocodingKeyRequired = errors.New("google geocoding api key is required")

// GeocodingClient talks to the Google Geocoding API. Every call goes through
// a circuit breaker so a failing upstream is not hammered.
type GeocodingClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	breaker    *gobreaker.CircuitBreaker[geocodeResponse]
}

type GeocodingOption func(*GeocodingClient)

func WithGeocodingHTTPClient(client *http.Client) GeocodingOption {
	return func(c *GeocodingClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithGeocodingBaseURL(baseURL string) GeocodingOption {
	return func(c *GeocodingClient) {
		if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

func NewGeocodingClient(apiKey string, opts ...GeocodingOption) (*GeocodingClient, error) {
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, errGeocodingKeyRequired
	}

	client := &GeocodingClient{
		apiKey:     trimmedKey,
		baseURL:    defaultGeocodingURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	client.breaker = gobreaker.NewCircuitBreaker[geocodeResponse](gobreaker.Settings{
		Name:        "google-geocoding",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// A ZERO_RESULTS answer is a healthy upstream.
			return err == nil || errors.Is(err, errNoResults)
		},
	})

	return client, nil
}

var (
	errNoResults      = errors.New("no geocoding results")
	errUpstreamStatus = errors.New("geocoding status not OK")
)

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
	ErrorMessage string `json:"error_message"`
}

// Geocode resolves a free-form address to coordinates.
func (c *GeocodingClient) Geocode(ctx context.Context, address string) (*models.GeocodeResult, error) {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return nil, models.ValidationError("address is required")
	}

	resp, err := c.call(ctx, url.Values{"address": {trimmed}})
	if err != nil {
		return nil, c.mapError(err, fmt.Sprintf("no location found for address %q", trimmed))
	}

	first := resp.Results[0]
	return &models.GeocodeResult{
		Latitude:         first.Geometry.Location.Lat,
		Longitude:        first.Geometry.Location.Lng,
		FormattedAddress: first.FormattedAddress,
	}, nil
}

// ReverseGeocode returns the formatted address nearest to the coordinate.
func (c *GeocodingClient) ReverseGeocode(ctx context.Context, coord models.Coordinate) (string, error) {
	latlng := strconv.FormatFloat(coord.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(coord.Longitude, 'f', -1, 64)

	resp, err := c.call(ctx, url.Values{"latlng": {latlng}})
	if err != nil {
		return "", c.mapError(err, fmt.Sprintf("no address found for %s", latlng))
	}
	return resp.Results[0].FormattedAddress, nil
}

func (c *GeocodingClient) call(ctx context.Context, params url.Values) (geocodeResponse, error) {
	return c.breaker.Execute(func() (geocodeResponse, error) {
		return c.do(ctx, params)
	})
}

func (c *GeocodingClient) do(ctx context.Context, params url.Values) (geocodeResponse, error) {
	var out geocodeResponse

	params.Set("key", c.apiKey)
	endpoint := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return out, fmt.Errorf("build geocode request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return out, fmt.Errorf("execute geocode request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, geocodeBodyReadLimit))
		return out, fmt.Errorf("geocode status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("decode geocode response: %w", err)
	}

	switch {
	case out.Status == "OK" && len(out.Results) > 0:
		return out, nil
	case out.Status == "OK", out.Status == "ZERO_RESULTS":
		return out, errNoResults
	default:
		return out, fmt.Errorf("%w: %s %s", errUpstreamStatus, out.Status, out.ErrorMessage)
	}
}

func (c *GeocodingClient) mapError(err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, errNoResults), errors.Is(err, errUpstreamStatus):
		return models.WrapAppError(models.CodeNotFound, err, notFoundMsg)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return models.WrapAppError(models.CodeDependency, err, "geocoding temporarily unavailable")
	default:
		return models.WrapAppError(models.CodeDependency, err, "geocoding request failed")
	}
}
