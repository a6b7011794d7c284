package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/kickabout/kickabout/internal/app/models"
	"github.com/kickabout/kickabout/internal/app/models/dto"
	"github.com/kickabout/kickabout/internal/app/repositories"
	"github.com/kickabout/kickabout/internal/pkg/apperrors"
)

// CommunityService handles community listing and membership operations
type CommunityService struct {
	communityRepo  *repositories.CommunityRepository
	userRepo       *repositories.UserRepository
	eventRepo      *repositories.GameEventRepository
	discussionRepo *repositories.DiscussionRepository
	logger         zerolog.Logger
}

// NewCommunityService creates a new CommunityService
func NewCommunityService(
	communityRepo *repositories.CommunityRepository,
	userRepo *repositories.UserRepository,
	eventRepo *repositories.GameEventRepository,
	discussionRepo *repositories.DiscussionRepository,
	logger zerolog.Logger,
) *CommunityService {
	return &CommunityService{
		communityRepo:  communityRepo,
		userRepo:       userRepo,
		eventRepo:      eventRepo,
		discussionRepo: discussionRepo,
		logger:         logger,
	}
}

// List retrieves active communities with optional search
func (s *CommunityService) List(ctx context.Context, search *string, page, pageSize int) ([]models.Community, int64, error) {
	return s.communityRepo.GetAll(ctx, search, page, pageSize)
}

// Get retrieves a community with its member count
func (s *CommunityService) Get(ctx context.Context, id int64) (*models.Community, error) {
	community, err := s.communityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.communityRepo.MemberCount(ctx, id)
	if err != nil {
		return nil, err
	}
	community.MemberCount = count
	return community, nil
}

// Join attaches the user to a community, optionally making it primary
func (s *CommunityService) Join(ctx context.Context, userID, communityID int64, setPrimary bool) (*models.UserCommunity, error) {
	community, err := s.communityRepo.GetByID(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if !community.IsActive {
		return nil, apperrors.NewBadRequestError("This community is not active")
	}

	membership, err := s.communityRepo.Attach(ctx, userID, communityID)
	if err != nil {
		return nil, err
	}

	if setPrimary && !membership.IsPrimary {
		if err := s.communityRepo.SetPrimary(ctx, userID, communityID); err != nil {
			return nil, err
		}
		membership.IsPrimary = true
	}

	if membership.IsPrimary {
		if err := s.userRepo.SetCommunity(ctx, userID, &communityID); err != nil {
			s.logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to point user at primary community")
		}
	}
	return membership, nil
}

// Leave deactivates the user's membership. When the primary membership
// goes, the user's community pointer is cleared; no other membership is
// promoted automatically.
func (s *CommunityService) Leave(ctx context.Context, userID, communityID int64) error {
	memberships, err := s.communityRepo.GetUserCommunities(ctx, userID)
	if err != nil {
		return err
	}

	wasPrimary := false
	found := false
	for _, m := range memberships {
		if m.CommunityID == communityID {
			found = true
			wasPrimary = m.IsPrimary
		}
	}
	if !found {
		return apperrors.NewResourceNotFoundError("You are not a member of this community")
	}

	if err := s.communityRepo.Detach(ctx, userID, communityID); err != nil {
		return err
	}

	if wasPrimary {
		if err := s.userRepo.SetCommunity(ctx, userID, nil); err != nil {
			s.logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to clear user community pointer")
		}
	}
	return nil
}

// SetPrimary switches the user's primary community
func (s *CommunityService) SetPrimary(ctx context.Context, userID, communityID int64) error {
	if err := s.communityRepo.SetPrimary(ctx, userID, communityID); err != nil {
		return err
	}
	if err := s.userRepo.SetCommunity(ctx, userID, &communityID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to point user at primary community")
	}
	return nil
}

// MyCommunities lists the user's active memberships
func (s *CommunityService) MyCommunities(ctx context.Context, userID int64) ([]models.UserCommunity, error) {
	return s.communityRepo.GetUserCommunities(ctx, userID)
}

// Primary retrieves the user's primary community with its member count
func (s *CommunityService) Primary(ctx context.Context, userID int64) (*models.Community, error) {
	community, err := s.communityRepo.GetPrimaryCommunity(ctx, userID)
	if err != nil {
		return nil, err
	}
	count, err := s.communityRepo.MemberCount(ctx, community.ID)
	if err != nil {
		return nil, err
	}
	community.MemberCount = count
	return community, nil
}

// Popular lists the most joined active communities
func (s *CommunityService) Popular(ctx context.Context, limit int) ([]models.Community, error) {
	return s.communityRepo.ListPopular(ctx, limit)
}

// Members lists a community's active members
func (s *CommunityService) Members(ctx context.Context, communityID int64, page, pageSize int) ([]models.User, int64, error) {
	if _, err := s.communityRepo.GetByID(ctx, communityID); err != nil {
		return nil, 0, err
	}
	return s.userRepo.ListByCommunity(ctx, communityID, page, pageSize)
}

// Stats aggregates member, upcoming event and discussion counts for a
// community.
func (s *CommunityService) Stats(ctx context.Context, communityID int64) (*dto.CommunityStatsResponse, error) {
	community, err := s.communityRepo.GetByID(ctx, communityID)
	if err != nil {
		return nil, err
	}

	members, err := s.communityRepo.MemberCount(ctx, communityID)
	if err != nil {
		return nil, err
	}
	upcoming, err := s.eventRepo.CountUpcomingByCommunity(ctx, communityID)
	if err != nil {
		return nil, err
	}
	discussions, err := s.discussionRepo.CountByCommunity(ctx, communityID)
	if err != nil {
		return nil, err
	}

	return &dto.CommunityStatsResponse{
		CommunityID:    community.ID,
		Name:           community.Name,
		MemberCount:    members,
		UpcomingEvents: upcoming,
		Discussions:    discussions,
	}, nil
}
