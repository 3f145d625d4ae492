package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/nkoz18/photography-blog-sub000/internal/apperr"
	"github.com/nkoz18/photography-blog-sub000/internal/cache"
	"github.com/nkoz18/photography-blog-sub000/internal/config"
)

const placesBaseURL = "https://maps.googleapis.com/maps/api/place"

// Prediction is an autocomplete suggestion
type Prediction struct {
	Description   string `json:"description"`
	PlaceID       string `json:"place_id"`
	MainText      string `json:"main_text"`
	SecondaryText string `json:"secondary_text"`
}

// PlaceDetail is a resolved place
type PlaceDetail struct {
	PlaceID          string  `json:"place_id"`
	Name             string  `json:"name"`
	FormattedAddress string  `json:"formatted_address"`
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
}

type autocompleteResponse struct {
	Status      string `json:"status"`
	Predictions []struct {
		Description          string `json:"description"`
		PlaceID              string `json:"place_id"`
		StructuredFormatting struct {
			MainText      string `json:"main_text"`
			SecondaryText string `json:"secondary_text"`
		} `json:"structured_formatting"`
	} `json:"predictions"`
	ErrorMessage string `json:"error_message"`
}

type detailsResponse struct {
	Status string `json:"status"`
	Result struct {
		PlaceID          string `json:"place_id"`
		Name             string `json:"name"`
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"result"`
	ErrorMessage string `json:"error_message"`
}

// Places wraps the Google Places autocomplete/details endpoints behind an
// in-memory TTL cache. Failures are never cached.
type Places struct {
	cfg        *config.Config
	cache      *cache.Store
	httpClient *http.Client
	baseURL    string
}

func NewPlaces(cfg *config.Config, store *cache.Store) *Places {
	return &Places{
		cfg:   cfg,
		cache: store,
		httpClient: &http.Client{
			Timeout: cfg.GeocodeTimeout,
		},
		baseURL: placesBaseURL,
	}
}

// Autocomplete returns place predictions for a partial input.
func (p *Places) Autocomplete(ctx context.Context, input string) ([]Prediction, error) {
	v, err := p.cache.GetOrCompute(ctx, "ac:"+input, p.cfg.PlacesCacheTTL, func(ctx context.Context) (interface{}, error) {
		return p.fetchAutocomplete(ctx, input)
	})
	if err != nil {
		return nil, err
	}
	return v.([]Prediction), nil
}

// Details resolves a place ID to a full place record.
func (p *Places) Details(ctx context.Context, placeID string) (*PlaceDetail, error) {
	v, err := p.cache.GetOrCompute(ctx, "dt:"+placeID, p.cfg.PlacesCacheTTL, func(ctx context.Context) (interface{}, error) {
		return p.fetchDetails(ctx, placeID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*PlaceDetail), nil
}

func (p *Places) fetchAutocomplete(ctx context.Context, input string) ([]Prediction, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", p.baseURL+"/autocomplete/json", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	q := url.Values{}
	q.Add("input", input)
	q.Add("key", p.cfg.GoogleMapsAPIKey)
	req.URL.RawQuery = q.Encode()

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("autocomplete request failed: %w", err)
	}
	defer resp.Body.Close()

	var result autocompleteResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode autocomplete response: %w", err)
	}

	// ZERO_RESULTS is an empty answer, not an upstream failure.
	if result.Status != "OK" && result.Status != "ZERO_RESULTS" {
		return nil, apperr.Upstream(result.Status, "place autocomplete failed: %s", result.ErrorMessage)
	}

	predictions := make([]Prediction, 0, len(result.Predictions))
	for _, pred := range result.Predictions {
		predictions = append(predictions, Prediction{
			Description:   pred.Description,
			PlaceID:       pred.PlaceID,
			MainText:      pred.StructuredFormatting.MainText,
			SecondaryText: pred.StructuredFormatting.SecondaryText,
		})
	}
	return predictions, nil
}

func (p *Places) fetchDetails(ctx context.Context, placeID string) (*PlaceDetail, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", p.baseURL+"/details/json", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	q := url.Values{}
	q.Add("place_id", placeID)
	q.Add("key", p.cfg.GoogleMapsAPIKey)
	req.URL.RawQuery = q.Encode()

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("place details request failed: %w", err)
	}
	defer resp.Body.Close()

	var result detailsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode place details response: %w", err)
	}

	if result.Status != "OK" {
		return nil, apperr.Upstream(result.Status, "place details failed: %s", result.ErrorMessage)
	}

	return &PlaceDetail{
		PlaceID:          result.Result.PlaceID,
		Name:             result.Result.Name,
		FormattedAddress: result.Result.FormattedAddress,
		Lat:              result.Result.Geometry.Location.Lat,
		Lng:              result.Result.Geometry.Location.Lng,
	}, nil
}
