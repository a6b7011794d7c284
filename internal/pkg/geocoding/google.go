package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kickabout/kickabout/internal/pkg/logger"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api"

// GoogleClient implements Client against the Google Maps Geocoding and
// Places web services.
type GoogleClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewGoogleClient creates a Google Maps backed geocoding client.
func NewGoogleClient(apiKey string) *GoogleClient {
	return &GoogleClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewGoogleClientWithBaseURL is used by tests to point the client at a
// local test server.
func NewGoogleClientWithBaseURL(apiKey, baseURL string) *GoogleClient {
	c := NewGoogleClient(apiKey)
	c.baseURL = baseURL
	return c
}

type googleAddressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

type googleGeometry struct {
	Location struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
}

type googleResult struct {
	PlaceID           string                   `json:"place_id"`
	Name              string                   `json:"name"`
	FormattedAddress  string                   `json:"formatted_address"`
	AddressComponents []googleAddressComponent `json:"address_components"`
	Geometry          googleGeometry           `json:"geometry"`
}

type googleResponse struct {
	Status       string         `json:"status"`
	ErrorMessage string         `json:"error_message"`
	Results      []googleResult `json:"results"`
	Result       *googleResult  `json:"result"`
}

// Geocode resolves a free-form address to a normalized location.
func (c *GoogleClient) Geocode(ctx context.Context, address string) (*Location, error) {
	params := url.Values{}
	params.Set("address", address)

	result, err := c.fetchOne(ctx, "/geocode/json", params)
	if err != nil {
		return nil, err
	}
	return parseResult(result), nil
}

// ReverseGeocode resolves coordinates to a normalized location.
func (c *GoogleClient) ReverseGeocode(ctx context.Context, lat, lon float64) (*Location, error) {
	params := url.Values{}
	params.Set("latlng", fmt.Sprintf("%f,%f", lat, lon))

	result, err := c.fetchOne(ctx, "/geocode/json", params)
	if err != nil {
		return nil, err
	}
	return parseResult(result), nil
}

// PlaceDetails resolves a Google place ID to a normalized location.
func (c *GoogleClient) PlaceDetails(ctx context.Context, placeID string) (*Location, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", "place_id,name,formatted_address,address_component,geometry")

	resp, err := c.fetch(ctx, "/place/details/json", params)
	if err != nil {
		return nil, err
	}
	if resp.Result == nil {
		return nil, ErrNoResults
	}
	return parseResult(resp.Result), nil
}

// SearchPlaces runs a text search for autocomplete suggestions.
// searchType is passed through to the provider when non-empty.
func (c *GoogleClient) SearchPlaces(ctx context.Context, query, searchType string) ([]Place, error) {
	params := url.Values{}
	params.Set("query", query)
	if searchType != "" {
		params.Set("type", searchType)
	}

	resp, err := c.fetch(ctx, "/place/textsearch/json", params)
	if err != nil {
		return nil, err
	}
	return toPlaces(resp.Results), nil
}

// SearchPostcode geocodes a postcode and returns it as a single place
// suggestion.
func (c *GoogleClient) SearchPostcode(ctx context.Context, postcode string) ([]Place, error) {
	params := url.Values{}
	params.Set("address", postcode)
	params.Set("components", "postal_code:"+postcode)

	resp, err := c.fetch(ctx, "/geocode/json", params)
	if err != nil {
		return nil, err
	}
	return toPlaces(resp.Results), nil
}

// NearbyPlaces lists places of the given type within radiusMeters of the
// coordinates.
func (c *GoogleClient) NearbyPlaces(ctx context.Context, lat, lon float64, placeType string, radiusMeters int) ([]Place, error) {
	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", lat, lon))
	params.Set("radius", strconv.Itoa(radiusMeters))
	if placeType != "" {
		params.Set("type", placeType)
	}

	resp, err := c.fetch(ctx, "/place/nearbysearch/json", params)
	if err != nil {
		return nil, err
	}
	return toPlaces(resp.Results), nil
}

func (c *GoogleClient) fetchOne(ctx context.Context, path string, params url.Values) (*googleResult, error) {
	resp, err := c.fetch(ctx, path, params)
	if err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, ErrNoResults
	}
	return &resp.Results[0], nil
}

func (c *GoogleClient) fetch(ctx context.Context, path string, params url.Values) (*googleResponse, error) {
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocoding request: %w", err)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding provider returned HTTP %d", httpResp.StatusCode)
	}

	var resp googleResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode geocoding response: %w", err)
	}

	switch resp.Status {
	case "OK":
		return &resp, nil
	case "ZERO_RESULTS":
		return nil, ErrNoResults
	default:
		logger.Warn().
			Str("status", resp.Status).
			Str("message", resp.ErrorMessage).
			Msg("Geocoding provider returned error status")
		return nil, fmt.Errorf("geocoding provider status %s", resp.Status)
	}
}

// parseResult maps Google address components onto the normalized
// location. Borough resolution prefers sublocality_level_1, then falls
// back to administrative_area_level_2; community name comes from the
// bare sublocality type.
func parseResult(result *googleResult) *Location {
	loc := &Location{FormattedAddress: result.FormattedAddress}

	lat := result.Geometry.Location.Lat
	lng := result.Geometry.Location.Lng
	loc.Latitude = &lat
	loc.Longitude = &lng

	var streetNumber, route string
	var adminArea2 string

	for _, component := range result.AddressComponents {
		for _, t := range component.Types {
			switch t {
			case "street_number":
				streetNumber = component.LongName
			case "route":
				route = component.LongName
			case "locality", "postal_town":
				if loc.City == nil {
					city := component.LongName
					loc.City = &city
				}
			case "administrative_area_level_1":
				state := component.LongName
				loc.State = &state
			case "administrative_area_level_2":
				adminArea2 = component.LongName
			case "postal_code":
				code := component.LongName
				loc.PostalCode = &code
			case "country":
				country := component.LongName
				loc.Country = &country
			case "sublocality_level_1":
				borough := component.LongName
				loc.Borough = &borough
			case "sublocality":
				if loc.CommunityName == nil {
					name := component.LongName
					loc.CommunityName = &name
				}
			}
		}
	}

	if loc.Borough == nil && adminArea2 != "" {
		loc.Borough = &adminArea2
	}

	if route != "" {
		address := route
		if streetNumber != "" {
			address = streetNumber + " " + route
		}
		loc.Address = &address
	}

	return loc
}

func toPlaces(results []googleResult) []Place {
	places := make([]Place, 0, len(results))
	for _, r := range results {
		name := r.Name
		if name == "" {
			name = r.FormattedAddress
		}
		places = append(places, Place{
			PlaceID:          r.PlaceID,
			Name:             name,
			FormattedAddress: r.FormattedAddress,
			Latitude:         r.Geometry.Location.Lat,
			Longitude:        r.Geometry.Location.Lng,
		})
	}
	return places
}
