// Package geocode resolves coordinates to postal addresses.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	domainErrors "github.com/polkiloo/dispatch/internal/domain/errors"
	"github.com/polkiloo/dispatch/internal/domain/model"
)

const userAgent = "dispatchd/1.0"

// Client exposes reverse geocoding.
type Client interface {
	Reverse(ctx context.Context, lat, lng float64) (*model.Address, error)
}

// TooManyRequestsError is returned when the upstream throttles us.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

// NominatimClient implements Client against a Nominatim compatible API.
type NominatimClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

type response struct {
	Error       string         `json:"error"`
	DisplayName string         `json:"display_name"`
	Address     addressDetails `json:"address"`
}

type addressDetails struct {
	HouseNumber string `json:"house_number"`
	Road        string `json:"road"`
	Suburb      string `json:"suburb"`
	City        string `json:"city"`
	Town        string `json:"town"`
	Village     string `json:"village"`
	Postcode    string `json:"postcode"`
	Country     string `json:"country"`
}

// NewNominatimClient creates a client that issues at most rps requests per second.
func NewNominatimClient(baseURL string, rps float64, logger *slog.Logger) (*NominatimClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse geocoder url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("geocoder url must be absolute")
	}
	if rps <= 0 {
		rps = 1
	}
	return &NominatimClient{
		baseURL: parsed,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// Reverse looks up the address closest to lat/lng.
func (c *NominatimClient) Reverse(ctx context.Context, lat, lng float64) (*model.Address, error) {
	if err := validate(lat, lng); err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/reverse")
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("zoom", "18")
	q.Set("addressdetails", "1")
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		var data response
		if err := json.Unmarshal(body, &data); err != nil {
			return nil, err
		}
		if data.Error != "" {
			return nil, domainErrors.ErrGeocodeNotFound
		}
		return data.toAddress(lat, lng), nil
	case http.StatusNotFound:
		return nil, domainErrors.ErrGeocodeNotFound
	case http.StatusTooManyRequests:
		return nil, TooManyRequestsError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	default:
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("geocoder request failed", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return nil, fmt.Errorf("geocoder error: %s", resp.Status)
	}
}

func validate(lat, lng float64) error {
	fields := map[string]string{}
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		fields["lat"] = "must be between -90 and 90"
	}
	if math.IsNaN(lng) || lng < -180 || lng > 180 {
		fields["lng"] = "must be between -180 and 180"
	}
	return domainErrors.NewValidationError(fields)
}

func (r response) toAddress(lat, lng float64) *model.Address {
	a := r.Address
	street := a.Road
	if a.HouseNumber != "" && street != "" {
		street = a.HouseNumber + " " + street
	}
	city := a.City
	if city == "" {
		city = a.Town
	}
	if city == "" {
		city = a.Village
	}
	return &model.Address{
		Street:  street,
		Line2:   a.Suburb,
		City:    city,
		ZipCode: a.Postcode,
		Country: a.Country,
		Lat:     &lat,
		Lng:     &lng,
	}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 5 * time.Second
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 5 * time.Second
}
