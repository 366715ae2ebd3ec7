package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/nascimento1980/SmartCHAPP-sub000/config"
	"github.com/nascimento1980/SmartCHAPP-sub000/pkg/redis"
)

// ErrGeocodeNotFound marks a lookup that completed but resolved nothing.
var ErrGeocodeNotFound = errors.New("geocoding: no result for query")

// GeocodingClient is the external geocoding boundary. Implementations must
// bound every lookup with a timeout; the provider is rate-limited and a
// user-facing request can be waiting on the result.
type GeocodingClient interface {
	GeocodePostalCode(ctx context.Context, postalCode string) (Coordinates, error)
	GeocodeAddress(ctx context.Context, address, city, state string) (Coordinates, error)
}

// httpGeocodingClient resolves Brazilian CEPs via the BrasilAPI v2 endpoint
// and free-form addresses via a Nominatim-compatible endpoint. Results are
// cached in Redis: geocoding output for a fixed query is stable and the
// providers are rate-limited.
type httpGeocodingClient struct {
	cfg    *config.GeocodingConfig
	client *http.Client
	cache  *redis.Client // nil when Redis is degraded
	logger *zap.Logger
}

// NewGeocodingClient creates the HTTP geocoding client.
func NewGeocodingClient(cfg *config.GeocodingConfig, cache *redis.Client, logger *zap.Logger) GeocodingClient {
	return &httpGeocodingClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		cache:  cache,
		logger: logger,
	}
}

// brasilAPICEPResponse is the subset of the BrasilAPI v2 payload we read.
type brasilAPICEPResponse struct {
	Location struct {
		Coordinates struct {
			Latitude  string `json:"latitude"`
			Longitude string `json:"longitude"`
		} `json:"coordinates"`
	} `json:"location"`
}

func (g *httpGeocodingClient) GeocodePostalCode(ctx context.Context, postalCode string) (Coordinates, error) {
	cep := strings.ReplaceAll(postalCode, "-", "")
	if len(cep) != 8 {
		return Coordinates{}, fmt.Errorf("geocoding: malformed postal code %q", postalCode)
	}

	cacheKey := "cep:" + cep
	if coords, ok := g.fromCache(ctx, cacheKey); ok {
		return coords, nil
	}

	reqURL := fmt.Sprintf("%s/%s", strings.TrimRight(g.cfg.PostalCodeURL, "/"), cep)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Coordinates{}, err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return Coordinates{}, fmt.Errorf("geocoding: postal code lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Coordinates{}, ErrGeocodeNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return Coordinates{}, fmt.Errorf("geocoding: postal code lookup: HTTP %d", resp.StatusCode)
	}

	var payload brasilAPICEPResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Coordinates{}, fmt.Errorf("geocoding: decode postal code response: %w", err)
	}

	lat, errLat := strconv.ParseFloat(payload.Location.Coordinates.Latitude, 64)
	lon, errLon := strconv.ParseFloat(payload.Location.Coordinates.Longitude, 64)
	if errLat != nil || errLon != nil {
		// CEP exists but the provider has no coordinates for it.
		return Coordinates{}, ErrGeocodeNotFound
	}

	coords := Coordinates{Lat: lat, Lon: lon}
	g.toCache(ctx, cacheKey, coords)
	return coords, nil
}

// nominatimResult is one entry of a Nominatim search response.
type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (g *httpGeocodingClient) GeocodeAddress(ctx context.Context, address, city, state string) (Coordinates, error) {
	parts := make([]string, 0, 4)
	for _, p := range []string{address, city, state, "Brasil"} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	query := strings.Join(parts, ", ")
	if query == "" {
		return Coordinates{}, ErrGeocodeNotFound
	}

	cacheKey := "addr:" + strings.ToLower(query)
	if coords, ok := g.fromCache(ctx, cacheKey); ok {
		return coords, nil
	}

	reqURL := fmt.Sprintf("%s?q=%s&format=json&limit=1", g.cfg.AddressURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Coordinates{}, err
	}
	req.Header.Set("User-Agent", "smartch-planning/1.0")

	resp, err := g.client.Do(req)
	if err != nil {
		return Coordinates{}, fmt.Errorf("geocoding: address lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Coordinates{}, fmt.Errorf("geocoding: address lookup: HTTP %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return Coordinates{}, fmt.Errorf("geocoding: decode address response: %w", err)
	}
	if len(results) == 0 {
		return Coordinates{}, ErrGeocodeNotFound
	}

	lat, errLat := strconv.ParseFloat(results[0].Lat, 64)
	lon, errLon := strconv.ParseFloat(results[0].Lon, 64)
	if errLat != nil || errLon != nil {
		return Coordinates{}, fmt.Errorf("geocoding: malformed coordinates in response")
	}

	coords := Coordinates{Lat: lat, Lon: lon}
	g.toCache(ctx, cacheKey, coords)
	return coords, nil
}

func (g *httpGeocodingClient) fromCache(ctx context.Context, key string) (Coordinates, bool) {
	if g.cache == nil {
		return Coordinates{}, false
	}
	cached, ok, err := g.cache.GetGeocode(ctx, key)
	if err != nil {
		g.logger.Warn("geocode cache read failed", zap.String("key", key), zap.Error(err))
		return Coordinates{}, false
	}
	if !ok {
		return Coordinates{}, false
	}
	return Coordinates{Lat: cached.Lat, Lon: cached.Lon}, true
}

func (g *httpGeocodingClient) toCache(ctx context.Context, key string, coords Coordinates) {
	if g.cache == nil {
		return
	}
	err := g.cache.SetGeocode(ctx, key, redis.CachedCoordinates{Lat: coords.Lat, Lon: coords.Lon}, g.cfg.CacheTTL)
	if err != nil {
		g.logger.Warn("geocode cache write failed", zap.String("key", key), zap.Error(err))
	}
}
