package geocode

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/polkiloo/dispatch/internal/config"
	domainErrors "github.com/polkiloo/dispatch/internal/domain/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *NominatimClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewNominatimClient(srv.URL, 100, testLogger())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client
}

func TestNewNominatimClientValidatesURL(t *testing.T) {
	if _, err := NewNominatimClient("://bad-url", 1, testLogger()); err == nil {
		t.Fatal("expected error for invalid url")
	}
	if _, err := NewNominatimClient("/relative", 1, testLogger()); err == nil {
		t.Fatal("expected error for relative url")
	}
}

func TestNewNominatimClientDefaultsRate(t *testing.T) {
	c, err := NewNominatimClient("http://geo.local", 0, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.limiter.Limit() != 1 {
		t.Fatalf("expected 1 rps, got %v", c.limiter.Limit())
	}
}

func TestReverseBuildsAddress(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reverse" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("format") != "jsonv2" || q.Get("lat") != "40.7128" || q.Get("lon") != "-74.006" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		if r.Header.Get("User-Agent") == "" {
			t.Error("expected user agent")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"display_name":"x","address":{"house_number":"12","road":"Main St","suburb":"Downtown","town":"Springfield","postcode":"12345","country":"USA"}}`)
	})

	addr, err := client.Reverse(context.Background(), 40.7128, -74.006)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addr.Street != "12 Main St" || addr.City != "Springfield" || addr.ZipCode != "12345" || addr.Country != "USA" || addr.Line2 != "Downtown" {
		t.Fatalf("unexpected address %+v", addr)
	}
	if !addr.HasCoordinates() || *addr.Lat != 40.7128 || *addr.Lng != -74.006 {
		t.Fatalf("expected coordinates carried over, got %+v", addr)
	}
}

func TestReverseNotFound(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "error body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `{"error":"Unable to geocode"}`)
			},
		},
		{
			name: "404",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, tc.handler)
			_, err := client.Reverse(context.Background(), 1, 1)
			if !errors.Is(err, domainErrors.ErrGeocodeNotFound) {
				t.Fatalf("expected not found, got %v", err)
			}
		})
	}
}

func TestReverseRateLimited(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	})
	_, err := client.Reverse(context.Background(), 1, 1)
	var tooMany TooManyRequestsError
	if !errors.As(err, &tooMany) {
		t.Fatalf("expected TooManyRequestsError, got %v", err)
	}
	if tooMany.RetryAfter != 7*time.Second {
		t.Fatalf("expected 7s, got %v", tooMany.RetryAfter)
	}
}

func TestReverseUpstreamFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	if _, err := client.Reverse(context.Background(), 1, 1); err == nil {
		t.Fatal("expected error")
	}
}

func TestReverseBadJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{`)
	})
	if _, err := client.Reverse(context.Background(), 1, 1); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestReverseValidatesCoordinates(t *testing.T) {
	client := newTestClient(t, func(http.ResponseWriter, *http.Request) {
		t.Error("request must not be sent")
	})
	_, err := client.Reverse(context.Background(), 91, -181)
	var verr *domainErrors.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(verr.Fields) != 2 {
		t.Fatalf("expected both fields flagged, got %v", verr.Fields)
	}
}

func TestReverseRejectsNaNCoordinates(t *testing.T) {
	client := newTestClient(t, func(http.ResponseWriter, *http.Request) {
		t.Error("request must not be sent")
	})
	tests := []struct {
		name     string
		lat, lng float64
		field    string
	}{
		{"lat", math.NaN(), 13.4, "lat"},
		{"lng", 52.5, math.NaN(), "lng"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Reverse(context.Background(), tt.lat, tt.lng)
			verr, ok := domainErrors.IsValidation(err)
			if !ok {
				t.Fatalf("expected validation error, got %v", err)
			}
			if _, ok := verr.Fields[tt.field]; !ok || len(verr.Fields) != 1 {
				t.Fatalf("expected only %s flagged, got %v", tt.field, verr.Fields)
			}
		})
	}
}

func TestReverseHonoursCancelledContext(t *testing.T) {
	client := newTestClient(t, func(http.ResponseWriter, *http.Request) {})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.Reverse(ctx, 1, 1); err == nil {
		t.Fatal("expected context error")
	}
}

func TestParseRetryAfter(t *testing.T) {
	if got := parseRetryAfter(""); got != 5*time.Second {
		t.Fatalf("expected default, got %v", got)
	}
	if got := parseRetryAfter("junk"); got != 5*time.Second {
		t.Fatalf("expected default, got %v", got)
	}
	if got := parseRetryAfter("3"); got != 3*time.Second {
		t.Fatalf("expected 3s, got %v", got)
	}
}

func TestNewClientUsesConfig(t *testing.T) {
	cfg := &config.Config{GeocoderURL: "http://example.com", GeocoderRPS: 2}
	client, err := newClient(clientParams{Config: cfg, Logger: testLogger()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client == nil {
		t.Fatal("expected client instance")
	}
}
