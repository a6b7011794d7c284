package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kickabout/kickabout/internal/app/models"
	"github.com/kickabout/kickabout/internal/app/models/dto"
	"github.com/kickabout/kickabout/internal/pkg/geocoding"
)

type fakeUserStore struct {
	users       map[int64]*models.User
	communityID map[int64]*int64
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	store := &fakeUserStore{
		users:       make(map[int64]*models.User),
		communityID: make(map[int64]*int64),
	}
	for _, u := range users {
		store.users[u.ID] = u
	}
	return store
}

func (f *fakeUserStore) GetByID(_ context.Context, id int64) (*models.User, error) {
	return f.users[id], nil
}

func (f *fakeUserStore) UpdateLocation(_ context.Context, userID int64, address, city, state, postalCode, country, communityName, borough *string, latitude, longitude *float64) error {
	u := f.users[userID]
	u.Address, u.City, u.State, u.PostalCode, u.Country = address, city, state, postalCode, country
	u.CommunityName, u.Borough = communityName, borough
	u.Latitude, u.Longitude = latitude, longitude
	u.LocationVerified = true
	return nil
}

func (f *fakeUserStore) SetCommunity(_ context.Context, userID int64, communityID *int64) error {
	f.communityID[userID] = communityID
	return nil
}

type fakeCommunityStore struct {
	nextID      int64
	communities []*models.Community
	memberships map[int64][]*models.UserCommunity
}

func newFakeCommunityStore() *fakeCommunityStore {
	return &fakeCommunityStore{
		nextID:      1,
		memberships: make(map[int64][]*models.UserCommunity),
	}
}

func (f *fakeCommunityStore) FindOrCreate(_ context.Context, name, city, state, country string, latitude, longitude *float64) (*models.Community, error) {
	for _, c := range f.communities {
		if c.Name == name && c.City == city && c.State == state && c.Country == country {
			return c, nil
		}
	}
	c := &models.Community{
		ID: f.nextID, Name: name, Type: models.CommunityTypeBorough,
		City: city, State: state, Country: country,
		Latitude: latitude, Longitude: longitude, IsActive: true,
	}
	f.nextID++
	f.communities = append(f.communities, c)
	return c, nil
}

func (f *fakeCommunityStore) Attach(_ context.Context, userID, communityID int64) (*models.UserCommunity, error) {
	for _, m := range f.memberships[userID] {
		if m.CommunityID == communityID {
			m.IsActive = true
			return m, nil
		}
	}
	hasPrimary := false
	for _, m := range f.memberships[userID] {
		if m.IsPrimary && m.IsActive {
			hasPrimary = true
		}
	}
	m := &models.UserCommunity{
		UserID: userID, CommunityID: communityID,
		IsPrimary: !hasPrimary, IsActive: true,
	}
	f.memberships[userID] = append(f.memberships[userID], m)
	return m, nil
}

func (f *fakeCommunityStore) ListActive(_ context.Context) ([]models.Community, error) {
	out := make([]models.Community, 0, len(f.communities))
	for _, c := range f.communities {
		out = append(out, *c)
	}
	return out, nil
}

type stubGeocoder struct {
	location *geocoding.Location
	err      error
}

func (s *stubGeocoder) Geocode(context.Context, string) (*geocoding.Location, error) {
	return s.location, s.err
}
func (s *stubGeocoder) ReverseGeocode(context.Context, float64, float64) (*geocoding.Location, error) {
	return s.location, s.err
}
func (s *stubGeocoder) PlaceDetails(context.Context, string) (*geocoding.Location, error) {
	return s.location, s.err
}
func (s *stubGeocoder) SearchPlaces(context.Context, string, string) ([]geocoding.Place, error) {
	return nil, s.err
}
func (s *stubGeocoder) SearchPostcode(context.Context, string) ([]geocoding.Place, error) {
	return nil, s.err
}
func (s *stubGeocoder) NearbyPlaces(context.Context, float64, float64, string, int) ([]geocoding.Place, error) {
	return nil, s.err
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func defaultsForTest() CommunityDefaults {
	return CommunityDefaults{City: "London", State: "England", Country: "United Kingdom"}
}

func westminsterLocation() *geocoding.Location {
	return &geocoding.Location{
		FormattedAddress: "10 Victoria St, London SW1H 0NB, UK",
		City:             strPtr("London"),
		State:            strPtr("England"),
		Country:          strPtr("United Kingdom"),
		Borough:          strPtr("Westminster"),
		CommunityName:    strPtr("Westminster"),
		Latitude:         floatPtr(51.4995),
		Longitude:        floatPtr(-0.1337),
	}
}

func newLocationServiceForTest(geocoder geocoding.Client, users *fakeUserStore, communities *fakeCommunityStore) *LocationService {
	return NewLocationService(geocoder, users, communities, defaultsForTest(), zerolog.Nop())
}

func TestResolveCommunityNamePrecedence(t *testing.T) {
	svc := newLocationServiceForTest(&stubGeocoder{}, newFakeUserStore(), newFakeCommunityStore())

	tests := []struct {
		name string
		loc  *geocoding.Location
		want string
	}{
		{
			name: "sublocality wins",
			loc:  &geocoding.Location{CommunityName: strPtr("Soho"), Borough: strPtr("Westminster"), City: strPtr("London")},
			want: "Soho",
		},
		{
			name: "borough next",
			loc:  &geocoding.Location{Borough: strPtr("Camden"), City: strPtr("London")},
			want: "Camden",
		},
		{
			name: "city alone names no community",
			loc:  &geocoding.Location{City: strPtr("Manchester")},
			want: "",
		},
		{
			name: "empty location names no community",
			loc:  &geocoding.Location{},
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.ResolveCommunityName(tt.loc))
		})
	}
}

func TestAssignCommunityCreatesBoroughAndSetsPrimary(t *testing.T) {
	users := newFakeUserStore(&models.User{ID: 1})
	communities := newFakeCommunityStore()
	svc := newLocationServiceForTest(&stubGeocoder{}, users, communities)

	community, err := svc.AssignCommunity(context.Background(), 1, westminsterLocation())
	require.NoError(t, err)

	assert.Equal(t, "Westminster", community.Name)
	assert.Equal(t, models.CommunityTypeBorough, community.Type)
	assert.Equal(t, "London", community.City)

	require.Len(t, communities.memberships[1], 1)
	assert.True(t, communities.memberships[1][0].IsPrimary)
	require.NotNil(t, users.communityID[1])
	assert.Equal(t, community.ID, *users.communityID[1])
}

func TestAssignCommunityIsIdempotent(t *testing.T) {
	users := newFakeUserStore(&models.User{ID: 1})
	communities := newFakeCommunityStore()
	svc := newLocationServiceForTest(&stubGeocoder{}, users, communities)

	first, err := svc.AssignCommunity(context.Background(), 1, westminsterLocation())
	require.NoError(t, err)
	second, err := svc.AssignCommunity(context.Background(), 1, westminsterLocation())
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, communities.communities, 1)
	assert.Len(t, communities.memberships[1], 1)
}

func TestAssignCommunitySecondMembershipIsNotPrimary(t *testing.T) {
	users := newFakeUserStore(&models.User{ID: 1})
	communities := newFakeCommunityStore()
	svc := newLocationServiceForTest(&stubGeocoder{}, users, communities)

	_, err := svc.AssignCommunity(context.Background(), 1, westminsterLocation())
	require.NoError(t, err)

	camden := &geocoding.Location{
		City:    strPtr("London"),
		State:   strPtr("England"),
		Country: strPtr("United Kingdom"),
		Borough: strPtr("Camden"),
	}
	_, err = svc.AssignCommunity(context.Background(), 1, camden)
	require.NoError(t, err)

	require.Len(t, communities.memberships[1], 2)
	assert.True(t, communities.memberships[1][0].IsPrimary)
	assert.False(t, communities.memberships[1][1].IsPrimary)
}

func TestAssignCommunitySkipsLocationWithoutName(t *testing.T) {
	users := newFakeUserStore(&models.User{ID: 1})
	communities := newFakeCommunityStore()
	svc := newLocationServiceForTest(&stubGeocoder{}, users, communities)

	community, err := svc.AssignCommunity(context.Background(), 1, &geocoding.Location{})
	require.NoError(t, err)

	assert.Nil(t, community)
	assert.Empty(t, communities.communities)
	assert.Empty(t, communities.memberships[1])
	assert.Nil(t, users.communityID[1])
}

func TestAssignCommunityDefaultsFillCityStateCountryOnly(t *testing.T) {
	users := newFakeUserStore(&models.User{ID: 1})
	communities := newFakeCommunityStore()
	svc := newLocationServiceForTest(&stubGeocoder{}, users, communities)

	community, err := svc.AssignCommunity(context.Background(), 1, &geocoding.Location{
		Borough: strPtr("Hackney"),
	})
	require.NoError(t, err)
	require.NotNil(t, community)

	assert.Equal(t, "Hackney", community.Name)
	assert.Equal(t, "London", community.City)
	assert.Equal(t, "England", community.State)
	assert.Equal(t, "United Kingdom", community.Country)
}

func TestResolveCommunityCreatesNamedCommunity(t *testing.T) {
	communities := newFakeCommunityStore()
	svc := newLocationServiceForTest(&stubGeocoder{}, newFakeUserStore(), communities)

	community, err := svc.ResolveCommunity(context.Background(), nil, strPtr("Islington"), floatPtr(51.5465), floatPtr(-0.1058))
	require.NoError(t, err)
	require.NotNil(t, community)

	assert.Equal(t, "Islington", community.Name)
	assert.Equal(t, "London", community.City)

	again, err := svc.ResolveCommunity(context.Background(), nil, strPtr("Islington"), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, community.ID, again.ID)
	assert.Len(t, communities.communities, 1)
}

func TestResolveCommunityUnnamedResolvesToNil(t *testing.T) {
	communities := newFakeCommunityStore()
	svc := newLocationServiceForTest(&stubGeocoder{}, newFakeUserStore(), communities)

	community, err := svc.ResolveCommunity(context.Background(), nil, nil, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, community)
	assert.Empty(t, communities.communities)
}

func TestUpdateUserLocationStoresResolvedFields(t *testing.T) {
	users := newFakeUserStore(&models.User{ID: 1})
	communities := newFakeCommunityStore()
	svc := newLocationServiceForTest(&stubGeocoder{location: westminsterLocation()}, users, communities)

	loc, community, err := svc.UpdateUserLocation(context.Background(), 1, &dto.UpdateLocationRequest{
		Address: strPtr("10 Victoria St, London"),
	})
	require.NoError(t, err)
	require.NotNil(t, community)

	assert.Equal(t, "Westminster", community.Name)
	assert.NotNil(t, loc.Latitude)

	user := users.users[1]
	require.NotNil(t, user.City)
	assert.Equal(t, "London", *user.City)
	require.NotNil(t, user.Borough)
	assert.Equal(t, "Westminster", *user.Borough)
	assert.True(t, user.LocationVerified)
	assert.NotNil(t, user.Latitude)
}

func TestUpdateUserLocationCallerCoordinatesWin(t *testing.T) {
	users := newFakeUserStore(&models.User{ID: 1})
	svc := newLocationServiceForTest(&stubGeocoder{location: westminsterLocation()}, users, newFakeCommunityStore())

	_, _, err := svc.UpdateUserLocation(context.Background(), 1, &dto.UpdateLocationRequest{
		Latitude:  floatPtr(51.5000),
		Longitude: floatPtr(-0.1340),
	})
	require.NoError(t, err)

	user := users.users[1]
	require.NotNil(t, user.Latitude)
	assert.Equal(t, 51.5000, *user.Latitude)
	assert.Equal(t, -0.1340, *user.Longitude)
}

func TestUpdateUserLocationRequiresInput(t *testing.T) {
	svc := newLocationServiceForTest(&stubGeocoder{}, newFakeUserStore(&models.User{ID: 1}), newFakeCommunityStore())

	_, _, err := svc.UpdateUserLocation(context.Background(), 1, &dto.UpdateLocationRequest{})
	require.Error(t, err)
}

func TestRecommendCommunitiesWithoutLocation(t *testing.T) {
	users := newFakeUserStore(&models.User{ID: 1})
	svc := newLocationServiceForTest(&stubGeocoder{}, users, newFakeCommunityStore())

	ranked, reason, err := svc.RecommendCommunities(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, ranked)
	assert.Equal(t, ReasonNoLocation, reason)
}

func TestRecommendCommunitiesFiltersByRadius(t *testing.T) {
	users := newFakeUserStore(&models.User{
		ID:        1,
		Latitude:  floatPtr(51.4995),
		Longitude: floatPtr(-0.1337),
	})
	communities := newFakeCommunityStore()
	// Camden is a few km from Westminster; Manchester is well outside 50km.
	_, err := communities.FindOrCreate(context.Background(), "Camden", "London", "England", "United Kingdom", floatPtr(51.5390), floatPtr(-0.1426))
	require.NoError(t, err)
	_, err = communities.FindOrCreate(context.Background(), "Manchester", "Manchester", "England", "United Kingdom", floatPtr(53.4808), floatPtr(-2.2426))
	require.NoError(t, err)

	svc := newLocationServiceForTest(&stubGeocoder{}, users, communities)

	ranked, reason, err := svc.RecommendCommunities(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, reason)
	require.Len(t, ranked, 1)
	assert.Equal(t, "Camden", ranked[0].Item.Name)
	require.NotNil(t, ranked[0].DistanceKm)
	assert.Less(t, *ranked[0].DistanceKm, CommunityRecommendationRadiusKm)
}
