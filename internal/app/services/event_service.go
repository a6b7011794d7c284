package services

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/kickabout/kickabout/internal/app/models"
	"github.com/kickabout/kickabout/internal/app/models/dto"
	"github.com/kickabout/kickabout/internal/app/participation"
	"github.com/kickabout/kickabout/internal/app/repositories"
	"github.com/kickabout/kickabout/internal/db"
	"github.com/kickabout/kickabout/internal/pkg/apperrors"
)

// communityResolver finds or creates the community a game belongs to
// from the game's own location fields.
type communityResolver interface {
	ResolveCommunity(ctx context.Context, communityName, borough *string, latitude, longitude *float64) (*models.Community, error)
}

// EventService handles game event operations
type EventService struct {
	database     *db.PostgresDB
	eventRepo    *repositories.GameEventRepository
	gameTypeRepo *repositories.GameTypeRepository
	communities  communityResolver
	userRepo     *repositories.UserRepository
	logger       zerolog.Logger
}

// NewEventService creates a new EventService
func NewEventService(
	database *db.PostgresDB,
	eventRepo *repositories.GameEventRepository,
	gameTypeRepo *repositories.GameTypeRepository,
	communities communityResolver,
	userRepo *repositories.UserRepository,
	logger zerolog.Logger,
) *EventService {
	return &EventService{
		database:     database,
		eventRepo:    eventRepo,
		gameTypeRepo: gameTypeRepo,
		communities:  communities,
		userRepo:     userRepo,
		logger:       logger,
	}
}

// Create validates and stores a new game event. The organizer is
// attached as a confirmed player in the same transaction, and the event
// lands in the community its own location names, created on first use.
func (s *EventService) Create(ctx context.Context, organizerID int64, req *dto.CreateEventRequest) (*models.GameEvent, error) {
	if _, err := s.gameTypeRepo.GetByID(ctx, req.GameTypeID); err != nil {
		return nil, err
	}
	if req.StartTime.Before(time.Now()) {
		return nil, apperrors.NewBadRequestError("Start time must be in the future")
	}
	if req.EndTime != nil && req.EndTime.Before(req.StartTime) {
		return nil, apperrors.NewBadRequestError("End time must be after the start time")
	}
	skillLevelMin, skillLevelMax, err := skillRange(req.SkillLevelMin, req.SkillLevelMax)
	if err != nil {
		return nil, err
	}

	event := &models.GameEvent{
		OrganizerID:     organizerID,
		GameTypeID:      req.GameTypeID,
		Title:           req.Title,
		Description:     req.Description,
		LocationName:    req.LocationName,
		Address:         req.Address,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		MaxPlayers:      req.MaxPlayers,
		CostPerPlayer:   req.CostPerPlayer,
		SkillLevelMin:   skillLevelMin,
		SkillLevelMax:   skillLevelMax,
		WaitlistEnabled: req.WaitlistEnabled,
		VenueBooked:     req.VenueBooked,
		Notes:           req.Notes,
	}

	community, err := s.communities.ResolveCommunity(ctx, req.CommunityName, req.Borough, req.Latitude, req.Longitude)
	if err != nil {
		return nil, err
	}
	if community != nil {
		event.CommunityID = &community.ID
	}

	err = s.database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return s.eventRepo.Create(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("eventID", event.ID).Int64("organizerID", organizerID).Msg("Game event created")
	return s.eventRepo.GetByID(ctx, event.ID)
}

func skillRange(min, max *int) (*models.SkillLevel, *models.SkillLevel, error) {
	var lo, hi *models.SkillLevel
	if min != nil {
		level := models.SkillLevel(*min)
		if !level.Valid() {
			return nil, nil, apperrors.NewBadRequestError("Skill level must be between 1 and 3")
		}
		lo = &level
	}
	if max != nil {
		level := models.SkillLevel(*max)
		if !level.Valid() {
			return nil, nil, apperrors.NewBadRequestError("Skill level must be between 1 and 3")
		}
		hi = &level
	}
	if lo != nil && hi != nil && *lo > *hi {
		return nil, nil, apperrors.NewBadRequestError("Minimum skill level cannot exceed the maximum")
	}
	return lo, hi, nil
}

// Get retrieves an event with the viewer's participation state and its
// participant list.
func (s *EventService) Get(ctx context.Context, eventID, viewerID int64) (*models.GameEvent, []models.GameEventParticipant, bool, bool, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, nil, false, false, err
	}

	participants, err := s.eventRepo.ListParticipants(ctx, eventID)
	if err != nil {
		return nil, nil, false, false, err
	}

	isJoined, isWaiting := false, false
	for _, p := range participants {
		if p.UserID == viewerID {
			isJoined = true
			isWaiting = p.IsWaiting
		}
	}
	return event, participants, isJoined, isWaiting, nil
}

// ListNearby lists upcoming scheduled events within radiusKm of the
// user's stored location. Users without a location get an explicit
// empty listing.
func (s *EventService) ListNearby(ctx context.Context, userID int64, radiusKm float64, filters repositories.EventFilters, page, pageSize int) ([]models.GameEvent, int64, string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, 0, "", err
	}
	if !user.HasLocation() {
		return []models.GameEvent{}, 0, ReasonNoLocation, nil
	}

	filters.Latitude = user.Latitude
	filters.Longitude = user.Longitude
	filters.RadiusKm = &radiusKm
	applyUpcomingDefaults(&filters)

	events, total, err := s.eventRepo.List(ctx, filters, page, pageSize)
	if err != nil {
		return nil, 0, "", err
	}
	return events, total, "", nil
}

// List lists events without a proximity requirement
func (s *EventService) List(ctx context.Context, filters repositories.EventFilters, page, pageSize int) ([]models.GameEvent, int64, error) {
	applyUpcomingDefaults(&filters)
	return s.eventRepo.List(ctx, filters, page, pageSize)
}

// ListMine lists events the user organizes or participates in,
// regardless of status.
func (s *EventService) ListMine(ctx context.Context, userID int64, page, pageSize int) ([]models.GameEvent, int64, error) {
	filters := repositories.EventFilters{JoinedBy: &userID}
	return s.eventRepo.List(ctx, filters, page, pageSize)
}

func applyUpcomingDefaults(filters *repositories.EventFilters) {
	if filters.Status == nil {
		scheduled := models.EventStatusScheduled
		filters.Status = &scheduled
	}
	if filters.From == nil {
		now := time.Now()
		filters.From = &now
	}
}

// Update applies changes to an event; only the organizer may edit
func (s *EventService) Update(ctx context.Context, eventID, userID int64, req *dto.UpdateEventRequest) (*models.GameEvent, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != userID {
		return nil, apperrors.NewForbiddenError("Only the organizer can edit this game")
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = req.Description
	}
	if req.LocationName != nil {
		event.LocationName = *req.LocationName
	}
	if req.Address != nil {
		event.Address = req.Address
	}
	if req.Latitude != nil {
		event.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		event.Longitude = req.Longitude
	}
	if req.StartTime != nil {
		event.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		event.EndTime = req.EndTime
	}
	if req.MaxPlayers != nil {
		event.MaxPlayers = req.MaxPlayers
	}
	if req.CostPerPlayer != nil {
		event.CostPerPlayer = req.CostPerPlayer
	}
	if req.SkillLevelMin != nil || req.SkillLevelMax != nil {
		minReq, maxReq := req.SkillLevelMin, req.SkillLevelMax
		if minReq == nil && event.SkillLevelMin != nil {
			v := int(*event.SkillLevelMin)
			minReq = &v
		}
		if maxReq == nil && event.SkillLevelMax != nil {
			v := int(*event.SkillLevelMax)
			maxReq = &v
		}
		lo, hi, err := skillRange(minReq, maxReq)
		if err != nil {
			return nil, err
		}
		event.SkillLevelMin, event.SkillLevelMax = lo, hi
	}
	if req.WaitlistEnabled != nil {
		event.WaitlistEnabled = *req.WaitlistEnabled
	}
	if req.VenueBooked != nil {
		event.VenueBooked = *req.VenueBooked
	}
	if req.Notes != nil {
		event.Notes = req.Notes
	}
	if req.Status != nil {
		event.Status = *req.Status
	}
	if event.EndTime != nil && event.EndTime.Before(event.StartTime) {
		return nil, apperrors.NewBadRequestError("End time must be after the start time")
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	return s.eventRepo.GetByID(ctx, eventID)
}

// Cancel marks an event cancelled; only the organizer may cancel
func (s *EventService) Cancel(ctx context.Context, eventID, userID int64) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if event.OrganizerID != userID {
		return apperrors.NewForbiddenError("Only the organizer can cancel this game")
	}
	if event.Status == models.EventStatusCancelled {
		return apperrors.NewBadRequestError("This game is already cancelled")
	}

	event.Status = models.EventStatusCancelled
	return s.eventRepo.Update(ctx, event)
}

// Join adds the user to an event, waitlisting them when the game is
// full and the waitlist is open. The event row is locked for the
// duration of the decision so concurrent joins cannot oversubscribe the
// game; the unique participant constraint backs up the duplicate check.
func (s *EventService) Join(ctx context.Context, eventID, userID int64) (bool, error) {
	var isWaiting bool
	err := s.database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		event, err := s.eventRepo.GetForUpdate(ctx, tx, eventID)
		if err != nil {
			return err
		}

		alreadyJoined, err := s.eventRepo.IsParticipant(ctx, tx, eventID, userID)
		if err != nil {
			return err
		}

		activeCount, err := s.eventRepo.CountActive(ctx, tx, eventID)
		if err != nil {
			return err
		}

		outcome, err := participation.DecideJoin(participation.EventState{
			MaxPlayers:      event.MaxPlayers,
			ActiveCount:     activeCount,
			WaitlistEnabled: event.WaitlistEnabled,
			Status:          event.Status,
			AlreadyJoined:   alreadyJoined,
		})
		if err != nil {
			return err
		}

		isWaiting = outcome == participation.Waiting
		return s.eventRepo.InsertParticipant(ctx, tx, eventID, userID, isWaiting)
	})
	if err != nil {
		return false, err
	}

	s.logger.Info().Int64("eventID", eventID).Int64("userID", userID).Bool("isWaiting", isWaiting).Msg("User joined game event")
	return isWaiting, nil
}

// Leave detaches the user from an event. Waitlisted players are not
// promoted automatically when a confirmed spot frees up.
func (s *EventService) Leave(ctx context.Context, eventID, userID int64) error {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return err
	}
	if _, err := s.eventRepo.GetParticipation(ctx, eventID, userID); err != nil {
		return err
	}
	if err := s.eventRepo.RemoveParticipant(ctx, eventID, userID); err != nil {
		return err
	}

	s.logger.Info().Int64("eventID", eventID).Int64("userID", userID).Msg("User left game event")
	return nil
}

// Participants lists an event's participants
func (s *EventService) Participants(ctx context.Context, eventID int64) ([]models.GameEventParticipant, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.eventRepo.ListParticipants(ctx, eventID)
}

// GameTypes lists all game formats
func (s *EventService) GameTypes(ctx context.Context) ([]models.GameType, error) {
	return s.gameTypeRepo.GetAll(ctx)
}
