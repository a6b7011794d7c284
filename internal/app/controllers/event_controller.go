package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kickabout/kickabout/internal/app/models"
	"github.com/kickabout/kickabout/internal/app/models/dto"
	"github.com/kickabout/kickabout/internal/app/participation"
	"github.com/kickabout/kickabout/internal/app/repositories"
	"github.com/kickabout/kickabout/internal/app/services"
	"github.com/kickabout/kickabout/internal/middleware"
	"github.com/kickabout/kickabout/internal/pkg/geo"
	"github.com/kickabout/kickabout/internal/pkg/helpers"
)

// EventController handles game event operations
type EventController struct {
	eventService *services.EventService
	logger       zerolog.Logger
}

// NewEventController creates a new EventController
func NewEventController(eventService *services.EventService, logger zerolog.Logger) *EventController {
	return &EventController{
		eventService: eventService,
		logger:       logger,
	}
}

// Create creates a game event
// @Summary Create event
// @Description Creates a game event. The organizer is attached as a confirmed player and the event joins the community its own location names.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateEventRequest true "Event details"
// @Success 201 {object} dto.APIResponse{data=dto.EventResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request format or times"
// @Failure 404 {object} dto.ErrorResponse "Game type not found"
// @Router /events [post]
func (c *EventController) Create(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)

	var req dto.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.HandleValidationError(err)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	event, err := c.eventService.Create(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{Data: toEventResponse(event)})
}

// List lists events with optional filters
// @Summary List events
// @Description Lists upcoming scheduled events. Filter with gameTypeId, communityId, skillLevel, status, location and mine=true.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param gameTypeId query int false "Game type filter"
// @Param communityId query int false "Community filter"
// @Param skillLevel query int false "Skill level filter (1-3)"
// @Param status query string false "Status filter"
// @Param location query string false "Venue name or address search"
// @Param mine query bool false "Only events the user organizes or joined"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.EventListResponse}
// @Router /events [get]
func (c *EventController) List(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)
	page, size := helpers.ParsePaginationParams(ctx, helpers.DefaultEventPageSize)

	var (
		events []models.GameEvent
		total  int64
		err    error
	)
	if ctx.Query("mine") == "true" {
		events, total, err = c.eventService.ListMine(ctx.Request.Context(), userID, page, size)
	} else {
		filters := parseEventFilters(ctx)
		events, total, err = c.eventService.List(ctx.Request.Context(), filters, page, size)
	}
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp := dto.EventListResponse{
		Events:     toEventResponses(events),
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: resp})
}

// Get retrieves an event with its roster
// @Summary Event details
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=dto.EventResponse}
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id} [get]
func (c *EventController) Get(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)
	eventID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	event, participants, isJoined, isWaiting, err := c.eventService.Get(ctx.Request.Context(), eventID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp := toEventResponse(event)
	resp.IsJoined = isJoined
	resp.IsWaiting = isWaiting
	resp.Participants = toParticipantResponses(participants)

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: resp})
}

// Update edits an event
// @Summary Update event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param request body dto.UpdateEventRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.EventResponse}
// @Failure 403 {object} dto.ErrorResponse "Not the organizer"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id} [put]
func (c *EventController) Update(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)
	eventID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.HandleValidationError(err)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	event, err := c.eventService.Update(ctx.Request.Context(), eventID, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: toEventResponse(event)})
}

// Cancel cancels an event
// @Summary Cancel event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 403 {object} dto.ErrorResponse "Not the organizer"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id} [delete]
func (c *EventController) Cancel(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)
	eventID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.eventService.Cancel(ctx.Request.Context(), eventID, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("eventID", eventID).Int64("userID", userID).Msg("Event cancelled")
	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.SuccessResponse{Message: "Event cancelled"},
	})
}

// Join joins an event
// @Summary Join event
// @Description Joins the game, or the waitlist when the game is full and the waitlist is open.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=dto.JoinEventResponse}
// @Failure 400 {object} dto.ErrorResponse "Already joined, event full, or not open"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id}/join [post]
func (c *EventController) Join(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)
	eventID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	isWaiting, err := c.eventService.Join(ctx.Request.Context(), eventID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	message := "You're in. See you on the pitch."
	if isWaiting {
		message = "The game is full; you're on the waiting list."
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.JoinEventResponse{
			EventID:   eventID,
			IsWaiting: isWaiting,
			Message:   message,
			JoinedAt:  time.Now(),
		},
	})
}

// Leave leaves an event
// @Summary Leave event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 400 {object} dto.ErrorResponse "Not participating"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id}/leave [delete]
func (c *EventController) Leave(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)
	eventID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.eventService.Leave(ctx.Request.Context(), eventID, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.SuccessResponse{Message: "You left the game"},
	})
}

// Participants lists an event's roster
// @Summary Event participants
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.ParticipantResponse}
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id}/participants [get]
func (c *EventController) Participants(ctx *gin.Context) {
	eventID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	participants, err := c.eventService.Participants(ctx.Request.Context(), eventID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: toParticipantResponses(participants)})
}

// GameTypes lists all playable game formats
// @Summary List game types
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.GameTypeResponse}
// @Router /game-types [get]
func (c *EventController) GameTypes(ctx *gin.Context) {
	gameTypes, err := c.eventService.GameTypes(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	out := make([]dto.GameTypeResponse, 0, len(gameTypes))
	for i := range gameTypes {
		out = append(out, dto.FromGameType(&gameTypes[i]))
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: out})
}

func parseEventFilters(ctx *gin.Context) repositories.EventFilters {
	var filters repositories.EventFilters

	if raw := ctx.Query("gameTypeId"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filters.GameTypeID = &id
		}
	}
	if raw := ctx.Query("communityId"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filters.CommunityID = &id
		}
	}
	if raw := ctx.Query("skillLevel"); raw != "" {
		if level, err := strconv.Atoi(raw); err == nil && models.SkillLevel(level).Valid() {
			skillLevel := models.SkillLevel(level)
			filters.SkillLevel = &skillLevel
		}
	}
	if raw := ctx.Query("status"); raw != "" {
		status := raw
		filters.Status = &status
	}
	if raw := ctx.Query("location"); raw != "" {
		location := raw
		filters.Location = &location
	}
	if raw := ctx.Query("from"); raw != "" {
		if from, err := time.Parse(time.RFC3339, raw); err == nil {
			filters.From = &from
		}
	}
	if raw := ctx.Query("to"); raw != "" {
		if to, err := time.Parse(time.RFC3339, raw); err == nil {
			filters.To = &to
		}
	}
	return filters
}

func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id < 1 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name+" parameter")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

func toEventResponses(events []models.GameEvent) []dto.EventResponse {
	out := make([]dto.EventResponse, 0, len(events))
	for i := range events {
		out = append(out, toEventResponse(&events[i]))
	}
	return out
}

func toEventResponse(event *models.GameEvent) dto.EventResponse {
	resp := dto.EventResponse{
		ID:              event.ID,
		Title:           event.Title,
		Description:     event.Description,
		CommunityID:     event.CommunityID,
		LocationName:    event.LocationName,
		Address:         event.Address,
		Latitude:        event.Latitude,
		Longitude:       event.Longitude,
		StartTime:       event.StartTime,
		EndTime:         event.EndTime,
		MaxPlayers:      event.MaxPlayers,
		ActiveCount:     event.ActiveCount,
		CostPerPlayer:   event.CostPerPlayer,
		WaitlistEnabled: event.WaitlistEnabled,
		VenueBooked:     event.VenueBooked,
		Notes:           event.Notes,
		Status:          event.Status,
		CreatedAt:       event.CreatedAt,
	}

	// Uncapped games have no spot count and never show as full.
	if event.MaxPlayers != nil {
		spotsLeft := *event.MaxPlayers - event.ActiveCount
		if spotsLeft < 0 {
			spotsLeft = 0
		}
		resp.SpotsLeft = &spotsLeft
	}
	// Display fullness counts every roster row, waitlist included.
	resp.IsFull = participation.IsFull(event.ParticipantCount, event.MaxPlayers)

	if event.SkillLevelMin != nil {
		level := int(*event.SkillLevelMin)
		resp.SkillLevelMin = &level
	}
	if event.SkillLevelMax != nil {
		level := int(*event.SkillLevelMax)
		resp.SkillLevelMax = &level
	}
	if event.DistanceKm != nil {
		resp.DistanceKm = event.DistanceKm
		resp.Distance = geo.FormatDistance(*event.DistanceKm)
	}
	if event.GameType != nil {
		resp.GameType = dto.FromGameType(event.GameType)
	} else {
		resp.GameType = dto.GameTypeResponse{ID: event.GameTypeID}
	}
	if event.Organizer != nil {
		organizer := dto.ParticipantResponse{
			UserID:          event.Organizer.ID,
			FirstName:       event.Organizer.FirstName,
			LastName:        event.Organizer.LastName,
			ProfilePhotoURL: event.Organizer.ProfilePhotoURL,
		}
		if event.Organizer.SkillLevel != nil {
			level := int(*event.Organizer.SkillLevel)
			organizer.SkillLevel = &level
		}
		resp.Organizer = &organizer
	}
	return resp
}

func toParticipantResponses(participants []models.GameEventParticipant) []dto.ParticipantResponse {
	out := make([]dto.ParticipantResponse, 0, len(participants))
	for _, p := range participants {
		resp := dto.ParticipantResponse{
			UserID:    p.UserID,
			IsWaiting: p.IsWaiting,
		}
		joinedAt := p.JoinedAt
		resp.JoinedAt = &joinedAt
		if p.User != nil {
			resp.FirstName = p.User.FirstName
			resp.LastName = p.User.LastName
			resp.ProfilePhotoURL = p.User.ProfilePhotoURL
			if p.User.SkillLevel != nil {
				level := int(*p.User.SkillLevel)
				resp.SkillLevel = &level
			}
		}
		out = append(out, resp)
	}
	return out
}
