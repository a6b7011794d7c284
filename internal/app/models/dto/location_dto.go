package dto

import "github.com/kickabout/kickabout/internal/pkg/geocoding"

// GeocodeRequest represents an address lookup request
type GeocodeRequest struct {
	Address string `json:"address" binding:"required,max=255"`
}

// ReverseGeocodeRequest represents a coordinate lookup request
type ReverseGeocodeRequest struct {
	Latitude  float64 `json:"latitude" binding:"required,min=-90,max=90"`
	Longitude float64 `json:"longitude" binding:"required,min=-180,max=180"`
}

// LocationResponse represents a normalized geocoding result
type LocationResponse struct {
	FormattedAddress string   `json:"formattedAddress"`
	Address          *string  `json:"address,omitempty"`
	City             *string  `json:"city,omitempty"`
	State            *string  `json:"state,omitempty"`
	PostalCode       *string  `json:"postalCode,omitempty"`
	Country          *string  `json:"country,omitempty"`
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
	CommunityName    *string  `json:"communityName,omitempty"`
	Borough          *string  `json:"borough,omitempty"`
}

// FromGeocodingLocation converts a geocoding result into a response DTO
func FromGeocodingLocation(loc *geocoding.Location) LocationResponse {
	return LocationResponse{
		FormattedAddress: loc.FormattedAddress,
		Address:          loc.Address,
		City:             loc.City,
		State:            loc.State,
		PostalCode:       loc.PostalCode,
		Country:          loc.Country,
		Latitude:         loc.Latitude,
		Longitude:        loc.Longitude,
		CommunityName:    loc.CommunityName,
		Borough:          loc.Borough,
	}
}

// PlaceResponse represents a place suggestion
type PlaceResponse struct {
	PlaceID          string  `json:"placeId"`
	Name             string  `json:"name"`
	FormattedAddress string  `json:"formattedAddress"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
}

// FromGeocodingPlaces converts place suggestions into response DTOs
func FromGeocodingPlaces(places []geocoding.Place) []PlaceResponse {
	out := make([]PlaceResponse, 0, len(places))
	for _, p := range places {
		out = append(out, PlaceResponse{
			PlaceID:          p.PlaceID,
			Name:             p.Name,
			FormattedAddress: p.FormattedAddress,
			Latitude:         p.Latitude,
			Longitude:        p.Longitude,
		})
	}
	return out
}

// DashboardRecommendationsResponse bundles the location-based dashboard
// feed: nearby games plus suggested communities.
type DashboardRecommendationsResponse struct {
	Events      []EventResponse     `json:"events"`
	Communities []CommunityResponse `json:"communities"`
	Reason      string              `json:"reason,omitempty" example:"no_location"`
}

// LocationUpdateResponse is returned after a profile location update. It
// echoes the resolved location plus the community assignment outcome.
type LocationUpdateResponse struct {
	Location  LocationResponse   `json:"location"`
	User      UserResponse       `json:"user"`
	Community *CommunityResponse `json:"community,omitempty"`
}
