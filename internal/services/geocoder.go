package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/nkoz18/photography-blog-sub000/internal/apperr"
	"github.com/nkoz18/photography-blog-sub000/internal/config"
	"github.com/nkoz18/photography-blog-sub000/internal/logger"
	"github.com/nkoz18/photography-blog-sub000/internal/models"
	"golang.org/x/sync/singleflight"
)

const geocodeBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

// placeNameTypes are the address-component types treated as a venue name
var placeNameTypes = map[string]bool{
	"establishment":     true,
	"point_of_interest": true,
	"business":          true,
}

// Location is a resolved reverse-geocoding result
type Location struct {
	Address   string  `json:"address"`
	PlaceName *string `json:"place_name"`
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress  string `json:"formatted_address"`
		AddressComponents []struct {
			LongName string   `json:"long_name"`
			Types    []string `json:"types"`
		} `json:"address_components"`
	} `json:"results"`
	ErrorMessage string `json:"error_message"`
}

// Geocoder resolves coordinates to addresses through the Google geocoding
// API, behind a durable cache keyed on the rounded coordinate pair.
type Geocoder struct {
	cfg        *config.Config
	store      GeoCacheStore
	httpClient *http.Client
	group      singleflight.Group
	baseURL    string
	now        func() time.Time
}

func NewGeocoder(cfg *config.Config, store GeoCacheStore) *Geocoder {
	return &Geocoder{
		cfg:   cfg,
		store: store,
		httpClient: &http.Client{
			Timeout: cfg.GeocodeTimeout,
		},
		baseURL: geocodeBaseURL,
		now:     time.Now,
	}
}

// CacheKey returns the durable cache key for a coordinate pair, each
// coordinate rounded to 6 decimal places.
func CacheKey(lat, lng float64) string {
	return fmt.Sprintf("%.6f,%.6f", lat, lng)
}

// Reverse resolves lat/lng to an address and optional place name. Cached
// rows younger than the configured validity window short-circuit the
// upstream call; concurrent misses for the same key collapse into one.
func (g *Geocoder) Reverse(ctx context.Context, lat, lng float64) (*Location, error) {
	key := CacheKey(lat, lng)

	v, err, _ := g.group.Do(key, func() (interface{}, error) {
		return g.reverse(ctx, key, lat, lng)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Location), nil
}

func (g *Geocoder) reverse(ctx context.Context, key string, lat, lng float64) (*Location, error) {
	log := logger.GetLogger("service.geocoder")

	maxAge := time.Duration(g.cfg.GeocodeCacheDays) * 24 * time.Hour
	rec, err := g.store.Get(ctx, key)
	if err != nil {
		// Cache reads are best-effort, same as writes.
		log.Warnf("Geocode cache read failed for %s: %v", key, err)
	} else if rec != nil && g.now().Sub(rec.CreatedAt) < maxAge {
		return &Location{Address: rec.Address, PlaceName: rec.PlaceName}, nil
	}

	loc, err := g.fetch(ctx, lat, lng)
	if err != nil {
		return nil, err
	}

	if err := g.store.Upsert(ctx, &models.GeocodeCache{
		CacheKey:  key,
		Address:   loc.Address,
		PlaceName: loc.PlaceName,
		CreatedAt: g.now(),
	}); err != nil {
		log.Warnf("Geocode cache write failed for %s: %v", key, err)
	}

	return loc, nil
}

func (g *Geocoder) fetch(ctx context.Context, lat, lng float64) (*Location, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", g.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	q := url.Values{}
	q.Add("latlng", fmt.Sprintf("%f,%f", lat, lng))
	q.Add("key", g.cfg.GoogleMapsAPIKey)
	req.URL.RawQuery = q.Encode()

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	var result geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode geocode response: %w", err)
	}

	if result.Status != "OK" || len(result.Results) == 0 {
		return nil, apperr.Upstream(result.Status, "reverse geocoding failed: %s", result.ErrorMessage)
	}

	first := result.Results[0]
	loc := &Location{Address: first.FormattedAddress}
	for _, comp := range first.AddressComponents {
		for _, t := range comp.Types {
			if placeNameTypes[t] {
				name := comp.LongName
				loc.PlaceName = &name
				break
			}
		}
		if loc.PlaceName != nil {
			break
		}
	}

	return loc, nil
}
