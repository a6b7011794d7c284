package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/kickabout/kickabout/internal/app/models"
	"github.com/kickabout/kickabout/internal/app/models/dto"
	"github.com/kickabout/kickabout/internal/pkg/apperrors"
	"github.com/kickabout/kickabout/internal/pkg/geo"
	"github.com/kickabout/kickabout/internal/pkg/geocoding"
)

// Search radii in kilometers.
const (
	// EventListingRadiusKm bounds the main nearby-games listing.
	EventListingRadiusKm = 10.0
	// DashboardRadiusKm bounds the tighter dashboard feed.
	DashboardRadiusKm = 5.0
	// CommunityRecommendationRadiusKm bounds community suggestions.
	CommunityRecommendationRadiusKm = 50.0
)

// ReasonNoLocation marks listings that are empty because the user has no
// stored coordinates, not because nothing is nearby.
const ReasonNoLocation = "no_location"

// CommunityDefaults fill in community fields the geocoder could not
// resolve.
type CommunityDefaults struct {
	City    string
	State   string
	Country string
}

// userLocationStore is the slice of the user repository the location
// service needs.
type userLocationStore interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	UpdateLocation(ctx context.Context, userID int64, address, city, state, postalCode, country, communityName, borough *string, latitude, longitude *float64) error
	SetCommunity(ctx context.Context, userID int64, communityID *int64) error
}

// communityStore is the slice of the community repository the location
// service needs.
type communityStore interface {
	FindOrCreate(ctx context.Context, name, city, state, country string, latitude, longitude *float64) (*models.Community, error)
	Attach(ctx context.Context, userID, communityID int64) (*models.UserCommunity, error)
	ListActive(ctx context.Context) ([]models.Community, error)
}

// LocationService handles geocoding, user location updates and
// location-driven community assignment
type LocationService struct {
	geocoder    geocoding.Client
	userRepo    userLocationStore
	communities communityStore
	defaults    CommunityDefaults
	logger      zerolog.Logger
}

// NewLocationService creates a new LocationService
func NewLocationService(
	geocoder geocoding.Client,
	userRepo userLocationStore,
	communities communityStore,
	defaults CommunityDefaults,
	logger zerolog.Logger,
) *LocationService {
	return &LocationService{
		geocoder:    geocoder,
		userRepo:    userRepo,
		communities: communities,
		defaults:    defaults,
		logger:      logger,
	}
}

// Geocode resolves a free-form address
func (s *LocationService) Geocode(ctx context.Context, address string) (*geocoding.Location, error) {
	loc, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		if errors.Is(err, geocoding.ErrNoResults) {
			return nil, apperrors.ErrGeocodingFailed
		}
		return nil, err
	}
	return loc, nil
}

// ReverseGeocode resolves coordinates to an address
func (s *LocationService) ReverseGeocode(ctx context.Context, lat, lon float64) (*geocoding.Location, error) {
	loc, err := s.geocoder.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		if errors.Is(err, geocoding.ErrNoResults) {
			return nil, apperrors.ErrGeocodingFailed
		}
		return nil, err
	}
	return loc, nil
}

// SearchPlaces proxies a place text search
func (s *LocationService) SearchPlaces(ctx context.Context, query, searchType string) ([]geocoding.Place, error) {
	return s.geocoder.SearchPlaces(ctx, query, searchType)
}

// SearchPostcode resolves a postcode to place suggestions
func (s *LocationService) SearchPostcode(ctx context.Context, postcode string) ([]geocoding.Place, error) {
	return s.geocoder.SearchPostcode(ctx, postcode)
}

// NearbyPlaces lists places of a type around the coordinates
func (s *LocationService) NearbyPlaces(ctx context.Context, lat, lon float64, placeType string, radiusMeters int) ([]geocoding.Place, error) {
	return s.geocoder.NearbyPlaces(ctx, lat, lon, placeType, radiusMeters)
}

// PlaceDetails resolves a place ID to a normalized location
func (s *LocationService) PlaceDetails(ctx context.Context, placeID string) (*geocoding.Location, error) {
	loc, err := s.geocoder.PlaceDetails(ctx, placeID)
	if err != nil {
		if errors.Is(err, geocoding.ErrNoResults) {
			return nil, apperrors.ErrGeocodingFailed
		}
		return nil, err
	}
	return loc, nil
}

// UpdateUserLocation resolves the request (address lookup or reverse
// geocode), stores the location on the user and re-runs community
// assignment.
func (s *LocationService) UpdateUserLocation(ctx context.Context, userID int64, req *dto.UpdateLocationRequest) (*geocoding.Location, *models.Community, error) {
	var loc *geocoding.Location
	var err error

	switch {
	case req.Address != nil && *req.Address != "":
		loc, err = s.Geocode(ctx, *req.Address)
	case req.Latitude != nil && req.Longitude != nil:
		loc, err = s.ReverseGeocode(ctx, *req.Latitude, *req.Longitude)
		// The caller's coordinates win over the geocoder's snap point.
		if err == nil {
			loc.Latitude = req.Latitude
			loc.Longitude = req.Longitude
		}
	default:
		return nil, nil, apperrors.NewBadRequestError("Either an address or coordinates are required")
	}
	if err != nil {
		return nil, nil, err
	}

	if err := s.userRepo.UpdateLocation(ctx, userID,
		loc.Address, loc.City, loc.State, loc.PostalCode, loc.Country,
		loc.CommunityName, loc.Borough,
		loc.Latitude, loc.Longitude); err != nil {
		return nil, nil, err
	}

	community, err := s.AssignCommunity(ctx, userID, loc)
	if err != nil {
		s.logger.Warn().Err(err).Int64("userID", userID).Msg("Community assignment failed after location update")
		return loc, nil, nil
	}
	return loc, community, nil
}

// UpdateUserLocationFromAddress is the address-only variant used during
// registration.
func (s *LocationService) UpdateUserLocationFromAddress(ctx context.Context, userID int64, address string) (*models.Community, error) {
	addr := address
	_, community, err := s.UpdateUserLocation(ctx, userID, &dto.UpdateLocationRequest{Address: &addr})
	return community, err
}

// ResolveCommunityName picks the community name for a geocoded location.
// Sublocality wins, then borough. Locations that carry neither resolve
// to nothing; the city and configured defaults fill in the remaining
// community fields but never name one.
func (s *LocationService) ResolveCommunityName(loc *geocoding.Location) string {
	if loc.CommunityName != nil && *loc.CommunityName != "" {
		return *loc.CommunityName
	}
	if loc.Borough != nil && *loc.Borough != "" {
		return *loc.Borough
	}
	return ""
}

// AssignCommunity finds or creates the borough community for a location
// and attaches the user to it. The membership becomes primary when the
// user has none; in that case the user's community pointer follows.
// Locations without a sublocality or borough leave the user unassigned
// and return nil.
func (s *LocationService) AssignCommunity(ctx context.Context, userID int64, loc *geocoding.Location) (*models.Community, error) {
	name := s.ResolveCommunityName(loc)
	if name == "" {
		s.logger.Debug().Int64("userID", userID).Msg("Location carries no community name, skipping assignment")
		return nil, nil
	}

	city := s.defaults.City
	if loc.City != nil && *loc.City != "" {
		city = *loc.City
	}
	state := s.defaults.State
	if loc.State != nil && *loc.State != "" {
		state = *loc.State
	}
	country := s.defaults.Country
	if loc.Country != nil && *loc.Country != "" {
		country = *loc.Country
	}

	community, err := s.communities.FindOrCreate(ctx, name, city, state, country, loc.Latitude, loc.Longitude)
	if err != nil {
		return nil, err
	}

	membership, err := s.communities.Attach(ctx, userID, community.ID)
	if err != nil {
		return nil, err
	}

	if membership.IsPrimary {
		if err := s.userRepo.SetCommunity(ctx, userID, &community.ID); err != nil {
			s.logger.Warn().Err(err).Int64("userID", userID).Int64("communityID", community.ID).Msg("Failed to point user at primary community")
		}
	}

	s.logger.Info().
		Int64("userID", userID).
		Int64("communityID", community.ID).
		Str("community", community.Name).
		Bool("isPrimary", membership.IsPrimary).
		Msg("User assigned to community")
	return community, nil
}

// ResolveCommunity finds or creates the community for a raw community
// name and borough pair, with the configured defaults filling in city,
// state and country. Pairs that name no community resolve to nil.
func (s *LocationService) ResolveCommunity(ctx context.Context, communityName, borough *string, latitude, longitude *float64) (*models.Community, error) {
	name := s.ResolveCommunityName(&geocoding.Location{CommunityName: communityName, Borough: borough})
	if name == "" {
		return nil, nil
	}
	return s.communities.FindOrCreate(ctx, name, s.defaults.City, s.defaults.State, s.defaults.Country, latitude, longitude)
}

// RecommendCommunities ranks active communities within the
// recommendation radius of the user. Users without a location get an
// explicit empty result instead of a global list.
func (s *LocationService) RecommendCommunities(ctx context.Context, userID int64) ([]geo.Ranked[*models.Community], string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	if !user.HasLocation() {
		return []geo.Ranked[*models.Community]{}, ReasonNoLocation, nil
	}

	communities, err := s.communities.ListActive(ctx)
	if err != nil {
		return nil, "", err
	}

	candidates := make([]*models.Community, 0, len(communities))
	for i := range communities {
		candidates = append(candidates, &communities[i])
	}

	from := geo.Point{Latitude: *user.Latitude, Longitude: *user.Longitude}
	ranked := geo.FilterAndRank(from, candidates, CommunityRecommendationRadiusKm, func(a, b *models.Community) bool {
		return a.MemberCount > b.MemberCount
	})
	return ranked, "", nil
}
