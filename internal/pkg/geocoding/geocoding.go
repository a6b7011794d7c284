// Package geocoding defines the geocoding collaborator consumed by the
// location features, plus a Google Maps backed implementation.
package geocoding

import (
	"context"
	"errors"
)

// ErrNoResults is returned when the provider answers successfully but has
// no usable result for the query.
var ErrNoResults = errors.New("geocoding: no results")

// Location is a normalized geocoding result. All fields except
// FormattedAddress are nullable; when the provider exposes no usable
// locality, City stays nil and community-resolution defaults apply
// downstream.
type Location struct {
	FormattedAddress string   `json:"formatted_address"`
	Address          *string  `json:"address"`
	City             *string  `json:"city"`
	State            *string  `json:"state"`
	PostalCode       *string  `json:"postal_code"`
	Country          *string  `json:"country"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	CommunityName    *string  `json:"community_name"`
	Borough          *string  `json:"borough"`
}

// Place is a lightweight search result used for autocomplete suggestions.
type Place struct {
	PlaceID          string  `json:"place_id"`
	Name             string  `json:"name"`
	FormattedAddress string  `json:"formatted_address"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
}

// Client is the geocoding collaborator. Implementations return
// ErrNoResults when the provider has nothing for the query; any other
// error is a transport or provider failure.
type Client interface {
	Geocode(ctx context.Context, address string) (*Location, error)
	ReverseGeocode(ctx context.Context, lat, lon float64) (*Location, error)
	PlaceDetails(ctx context.Context, placeID string) (*Location, error)
	SearchPlaces(ctx context.Context, query, searchType string) ([]Place, error)
	SearchPostcode(ctx context.Context, postcode string) ([]Place, error)
	NearbyPlaces(ctx context.Context, lat, lon float64, placeType string, radiusMeters int) ([]Place, error)
}
