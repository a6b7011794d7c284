package geocoding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const westminsterGeocodeBody = `{
	"status": "OK",
	"results": [{
		"place_id": "abc123",
		"formatted_address": "10 Victoria St, London SW1H 0NB, UK",
		"geometry": {"location": {"lat": 51.4995, "lng": -0.1337}},
		"address_components": [
			{"long_name": "10", "short_name": "10", "types": ["street_number"]},
			{"long_name": "Victoria Street", "short_name": "Victoria St", "types": ["route"]},
			{"long_name": "Westminster", "short_name": "Westminster", "types": ["sublocality_level_1", "sublocality", "political"]},
			{"long_name": "London", "short_name": "London", "types": ["postal_town"]},
			{"long_name": "Greater London", "short_name": "Greater London", "types": ["administrative_area_level_2", "political"]},
			{"long_name": "England", "short_name": "England", "types": ["administrative_area_level_1", "political"]},
			{"long_name": "United Kingdom", "short_name": "GB", "types": ["country", "political"]},
			{"long_name": "SW1H 0NB", "short_name": "SW1H 0NB", "types": ["postal_code"]}
		]
	}]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *GoogleClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGoogleClientWithBaseURL("test-key", srv.URL)
}

func TestGeocodeParsesAddressComponents(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geocode/json", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "10 Victoria St, London", r.URL.Query().Get("address"))
		w.Write([]byte(westminsterGeocodeBody))
	})

	loc, err := client.Geocode(context.Background(), "10 Victoria St, London")
	require.NoError(t, err)

	assert.Equal(t, "10 Victoria St, London SW1H 0NB, UK", loc.FormattedAddress)
	require.NotNil(t, loc.Address)
	assert.Equal(t, "10 Victoria Street", *loc.Address)
	require.NotNil(t, loc.City)
	assert.Equal(t, "London", *loc.City)
	require.NotNil(t, loc.State)
	assert.Equal(t, "England", *loc.State)
	require.NotNil(t, loc.Country)
	assert.Equal(t, "United Kingdom", *loc.Country)
	require.NotNil(t, loc.PostalCode)
	assert.Equal(t, "SW1H 0NB", *loc.PostalCode)
	require.NotNil(t, loc.Borough)
	assert.Equal(t, "Westminster", *loc.Borough)
	require.NotNil(t, loc.CommunityName)
	assert.Equal(t, "Westminster", *loc.CommunityName)
	require.NotNil(t, loc.Latitude)
	assert.InDelta(t, 51.4995, *loc.Latitude, 0.0001)
	require.NotNil(t, loc.Longitude)
	assert.InDelta(t, -0.1337, *loc.Longitude, 0.0001)
}

func TestGeocodeBoroughFallsBackToAdminArea2(t *testing.T) {
	body := `{
		"status": "OK",
		"results": [{
			"formatted_address": "Richmond, UK",
			"geometry": {"location": {"lat": 51.4613, "lng": -0.3037}},
			"address_components": [
				{"long_name": "Richmond", "short_name": "Richmond", "types": ["locality", "political"]},
				{"long_name": "Greater London", "short_name": "Greater London", "types": ["administrative_area_level_2", "political"]}
			]
		}]
	}`
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	})

	loc, err := client.Geocode(context.Background(), "Richmond")
	require.NoError(t, err)
	require.NotNil(t, loc.Borough)
	assert.Equal(t, "Greater London", *loc.Borough)
	assert.Nil(t, loc.CommunityName)
}

func TestGeocodeZeroResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	})

	_, err := client.Geocode(context.Background(), "nowhere at all")
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestGeocodeProviderError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "REQUEST_DENIED", "error_message": "bad key"}`))
	})

	_, err := client.Geocode(context.Background(), "London")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoResults)
}

func TestSearchPlacesUsesNameOrAddress(t *testing.T) {
	body := `{
		"status": "OK",
		"results": [
			{"place_id": "p1", "name": "Hyde Park", "formatted_address": "London W2 2UH, UK", "geometry": {"location": {"lat": 51.5073, "lng": -0.1657}}},
			{"place_id": "p2", "formatted_address": "Regent's Park, London, UK", "geometry": {"location": {"lat": 51.5313, "lng": -0.1570}}}
		]
	}`
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/place/textsearch/json", r.URL.Path)
		assert.Equal(t, "park", r.URL.Query().Get("type"))
		w.Write([]byte(body))
	})

	places, err := client.SearchPlaces(context.Background(), "park london", "park")
	require.NoError(t, err)
	require.Len(t, places, 2)
	assert.Equal(t, "Hyde Park", places[0].Name)
	assert.Equal(t, "Regent's Park, London, UK", places[1].Name)
}
