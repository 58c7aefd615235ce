package directions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"relaxed-route-service/internal/domain"
)

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// fetchGeocode resolves a single normalized address with the Geocoding API.
func (g *GoogleDirectionsProvider) fetchGeocode(ctx context.Context, address string) (domain.Coordinates, error) {
	endpoint := g.baseURL + "/maps/api/geocode/json"

	resp, err := g.doWithRetry(ctx, "geocode", func() (*http.Request, error) {
		req, err := g.newRequest(ctx, http.MethodGet, endpoint)
		if err != nil {
			return nil, err
		}
		params := req.URL.Query()
		params.Set("address", address)
		params.Set("key", g.apiKey)
		req.URL.RawQuery = params.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, fmt.Errorf("decode geocode response: %w", err)
	}

	if decoded.Status != statusOK {
		return domain.Coordinates{}, fmt.Errorf("geocoding API error: %s - %s", decoded.Status, decoded.ErrorMessage)
	}

	if len(decoded.Results) == 0 {
		return domain.Coordinates{}, errors.New("geocoding API returned no results")
	}

	loc := decoded.Results[0].Geometry.Location
	return domain.Coordinates{Lat: loc.Lat, Lng: loc.Lng}, nil
}
