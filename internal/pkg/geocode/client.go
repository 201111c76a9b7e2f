// Package geocode wraps the structured-address geocoding provider.
// Address-in, point-out; the provider makes no fuzzy matching guarantees.
package geocode

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/bantay-ph/bantay-api/internal/pkg/apperrors"
	"github.com/bantay-ph/bantay-api/internal/pkg/env"
)

type Address struct {
	Street   string
	Barangay string
	City     string
	ZipCode  string
}

func (a Address) String() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.Street, a.Barangay, a.City, a.ZipCode} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	return strings.Join(parts, ", ")
}

// Client resolves structured addresses to longitude/latitude points.
type Client interface {
	Resolve(ctx context.Context, addr Address) (lon, lat float64, err error)
}

type httpClient struct {
	rest *resty.Client
}

// New builds the default HTTP geocoder from GEOCODER_URL and GEOCODER_KEY.
func New() Client {
	return &httpClient{
		rest: resty.New().
			SetBaseURL(env.GetEnv("GEOCODER_URL", "")).
			SetTimeout(10 * time.Second),
	}
}

type resolveResponse struct {
	Success     bool      `json:"success"`
	Coordinates []float64 `json:"coordinates"` // [lon, lat]
	Message     string    `json:"message"`
}

func (c *httpClient) Resolve(ctx context.Context, addr Address) (float64, float64, error) {
	var out resolveResponse
	res, err := c.rest.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"address": addr.String(),
			"key":     env.GetEnv("GEOCODER_KEY", ""),
		}).
		SetResult(&out).
		Get("/geocode")
	if err != nil {
		return 0, 0, apperrors.Wrap(apperrors.KindGeocodingFailure, err, "geocoder request failed")
	}
	if !res.IsSuccess() {
		return 0, 0, apperrors.E(apperrors.KindGeocodingFailure, "geocoder returned status %d", res.StatusCode())
	}
	if !out.Success || len(out.Coordinates) != 2 {
		msg := out.Message
		if msg == "" {
			msg = fmt.Sprintf("address %q did not resolve", addr.String())
		}
		return 0, 0, apperrors.E(apperrors.KindGeocodingFailure, "%s", msg)
	}
	return out.Coordinates[0], out.Coordinates[1], nil
}
