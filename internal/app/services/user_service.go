package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/kickabout/kickabout/internal/app/models"
	"github.com/kickabout/kickabout/internal/app/models/dto"
	"github.com/kickabout/kickabout/internal/app/repositories"
	"github.com/kickabout/kickabout/internal/pkg/apperrors"
	"github.com/kickabout/kickabout/internal/pkg/geo"
)

// nearbyUsersLimit caps the SQL candidate set for nearby-user lookups.
const nearbyUsersLimit = 100

// UserService handles profile operations
type UserService struct {
	userRepo  *repositories.UserRepository
	eventRepo *repositories.GameEventRepository
	logger    zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo *repositories.UserRepository,
	eventRepo *repositories.GameEventRepository,
	logger zerolog.Logger,
) *UserService {
	return &UserService{
		userRepo:  userRepo,
		eventRepo: eventRepo,
		logger:    logger,
	}
}

// GetProfile returns the user's profile
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateProfile applies profile changes
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*models.User, error) {
	var skillLevel *models.SkillLevel
	if req.SkillLevel != nil {
		level := models.SkillLevel(*req.SkillLevel)
		if !level.Valid() {
			return nil, apperrors.NewBadRequestError("Skill level must be between 1 and 3")
		}
		skillLevel = &level
	}

	if err := s.userRepo.UpdateProfile(ctx, userID, req.FirstName, req.LastName, req.Phone, req.Bio, skillLevel); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, userID)
}

// SetGameInterest records or updates the user's interest in a game type
func (s *UserService) SetGameInterest(ctx context.Context, userID int64, req *dto.GameInterestRequest) error {
	level := models.SkillLevel(req.SkillLevel)
	if !level.Valid() {
		return apperrors.NewBadRequestError("Skill level must be between 1 and 3")
	}
	return s.userRepo.UpsertGameInterest(ctx, userID, req.GameTypeID, level)
}

// RemoveGameInterest drops the user's interest in a game type
func (s *UserService) RemoveGameInterest(ctx context.Context, userID, gameTypeID int64) error {
	return s.userRepo.RemoveGameInterest(ctx, userID, gameTypeID)
}

// GetGameInterests lists the user's game interests
func (s *UserService) GetGameInterests(ctx context.Context, userID int64) ([]models.GameUserInterest, error) {
	return s.userRepo.GetGameInterests(ctx, userID)
}

// NearbyUsers ranks active users within radiusKm of the user's stored
// location. Users without a location get an explicit empty result.
func (s *UserService) NearbyUsers(ctx context.Context, userID int64, radiusKm float64) ([]geo.Ranked[*models.User], string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	if !user.HasLocation() {
		return []geo.Ranked[*models.User]{}, ReasonNoLocation, nil
	}

	candidates, err := s.userRepo.ListNearby(ctx, *user.Latitude, *user.Longitude, radiusKm, userID, nearbyUsersLimit)
	if err != nil {
		return nil, "", err
	}

	items := make([]*models.User, 0, len(candidates))
	for i := range candidates {
		items = append(items, &candidates[i])
	}

	from := geo.Point{Latitude: *user.Latitude, Longitude: *user.Longitude}
	ranked := geo.FilterAndRank(from, items, radiusKm, nil)
	return ranked, "", nil
}

// GetSportStats aggregates the user's participation stats with their
// game interests.
func (s *UserService) GetSportStats(ctx context.Context, userID int64) (*dto.SportStatsResponse, error) {
	organized, joined, upcoming, err := s.eventRepo.UserStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	interests, err := s.userRepo.GetGameInterests(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &dto.SportStatsResponse{
		GamesOrganized: organized,
		GamesJoined:    joined,
		GamesUpcoming:  upcoming,
		Interests:      make([]dto.GameInterestResponse, 0, len(interests)),
	}
	for _, interest := range interests {
		resp := dto.GameInterestResponse{
			GameTypeID:     interest.GameTypeID,
			SkillLevel:     int(interest.SkillLevel),
			SkillLevelName: interest.SkillLevel.Label(),
		}
		if interest.GameType != nil {
			resp.GameTypeName = interest.GameType.Name
		}
		stats.Interests = append(stats.Interests, resp)
	}
	return stats, nil
}
