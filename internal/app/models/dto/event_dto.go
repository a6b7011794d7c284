package dto

import (
	"time"

	"github.com/kickabout/kickabout/internal/app/models"
)

// CreateEventRequest represents a request to create a game event.
// MaxPlayers is optional; games without a cap accept any number of
// players. CommunityName and Borough place the game in its own
// community, independent of the organizer's.
type CreateEventRequest struct {
	GameTypeID      int64      `json:"gameTypeId" binding:"required,min=1"`
	Title           string     `json:"title" binding:"required,max=150"`
	Description     *string    `json:"description,omitempty" binding:"omitempty,max=2000"`
	LocationName    string     `json:"locationName" binding:"required,max=150"`
	Address         *string    `json:"address,omitempty" binding:"omitempty,max=255"`
	CommunityName   *string    `json:"communityName,omitempty" binding:"omitempty,max=100"`
	Borough         *string    `json:"borough,omitempty" binding:"omitempty,max=100"`
	Latitude        *float64   `json:"latitude,omitempty" binding:"omitempty,min=-90,max=90"`
	Longitude       *float64   `json:"longitude,omitempty" binding:"omitempty,min=-180,max=180"`
	StartTime       time.Time  `json:"startTime" binding:"required"`
	EndTime         *time.Time `json:"endTime,omitempty"`
	MaxPlayers      *int       `json:"maxPlayers,omitempty" binding:"omitempty,min=1,max=50"`
	CostPerPlayer   *float64   `json:"costPerPlayer,omitempty" binding:"omitempty,min=0"`
	SkillLevelMin   *int       `json:"skillLevelMin,omitempty" binding:"omitempty,min=1,max=3"`
	SkillLevelMax   *int       `json:"skillLevelMax,omitempty" binding:"omitempty,min=1,max=3"`
	WaitlistEnabled bool       `json:"waitlistEnabled"`
	VenueBooked     bool       `json:"venueBooked"`
	Notes           *string    `json:"notes,omitempty" binding:"omitempty,max=2000"`
}

// UpdateEventRequest represents a request to update a game event
type UpdateEventRequest struct {
	Title           *string    `json:"title,omitempty" binding:"omitempty,max=150"`
	Description     *string    `json:"description,omitempty" binding:"omitempty,max=2000"`
	LocationName    *string    `json:"locationName,omitempty" binding:"omitempty,max=150"`
	Address         *string    `json:"address,omitempty" binding:"omitempty,max=255"`
	Latitude        *float64   `json:"latitude,omitempty" binding:"omitempty,min=-90,max=90"`
	Longitude       *float64   `json:"longitude,omitempty" binding:"omitempty,min=-180,max=180"`
	StartTime       *time.Time `json:"startTime,omitempty"`
	EndTime         *time.Time `json:"endTime,omitempty"`
	MaxPlayers      *int       `json:"maxPlayers,omitempty" binding:"omitempty,min=1,max=50"`
	CostPerPlayer   *float64   `json:"costPerPlayer,omitempty" binding:"omitempty,min=0"`
	SkillLevelMin   *int       `json:"skillLevelMin,omitempty" binding:"omitempty,min=1,max=3"`
	SkillLevelMax   *int       `json:"skillLevelMax,omitempty" binding:"omitempty,min=1,max=3"`
	WaitlistEnabled *bool      `json:"waitlistEnabled,omitempty"`
	VenueBooked     *bool      `json:"venueBooked,omitempty"`
	Notes           *string    `json:"notes,omitempty" binding:"omitempty,max=2000"`
	Status          *string    `json:"status,omitempty" binding:"omitempty,oneof=scheduled cancelled completed"`
}

// EventResponse represents a game event
type EventResponse struct {
	ID              int64                 `json:"id"`
	Title           string                `json:"title"`
	Description     *string               `json:"description,omitempty"`
	GameType        GameTypeResponse      `json:"gameType"`
	Organizer       *ParticipantResponse  `json:"organizer,omitempty"`
	CommunityID     *int64                `json:"communityId,omitempty"`
	LocationName    string                `json:"locationName"`
	Address         *string               `json:"address,omitempty"`
	Latitude        *float64              `json:"latitude,omitempty"`
	Longitude       *float64              `json:"longitude,omitempty"`
	StartTime       time.Time             `json:"startTime"`
	EndTime         *time.Time            `json:"endTime,omitempty"`
	MaxPlayers      *int                  `json:"maxPlayers,omitempty"`
	ActiveCount     int                   `json:"activeCount"`
	SpotsLeft       *int                  `json:"spotsLeft,omitempty"`
	IsFull          bool                  `json:"isFull"`
	CostPerPlayer   *float64              `json:"costPerPlayer,omitempty"`
	SkillLevelMin   *int                  `json:"skillLevelMin,omitempty"`
	SkillLevelMax   *int                  `json:"skillLevelMax,omitempty"`
	WaitlistEnabled bool                  `json:"waitlistEnabled"`
	VenueBooked     bool                  `json:"venueBooked"`
	Notes           *string               `json:"notes,omitempty"`
	Status          string                `json:"status"`
	Distance        string                `json:"distance,omitempty"`
	DistanceKm      *float64              `json:"distanceKm,omitempty"`
	IsJoined        bool                  `json:"isJoined,omitempty"`
	IsWaiting       bool                  `json:"isWaiting,omitempty"`
	Participants    []ParticipantResponse `json:"participants,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
}

// ParticipantResponse represents a user attached to an event
type ParticipantResponse struct {
	UserID          int64      `json:"userId"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	ProfilePhotoURL *string    `json:"profilePhotoUrl,omitempty"`
	SkillLevel      *int       `json:"skillLevel,omitempty"`
	IsWaiting       bool       `json:"isWaiting"`
	JoinedAt        *time.Time `json:"joinedAt,omitempty"`
}

// EventListResponse represents a paginated event list
type EventListResponse struct {
	Events     []EventResponse `json:"events"`
	Pagination PaginationInfo  `json:"pagination"`
	Reason     string          `json:"reason,omitempty" example:"no_location"`
}

// JoinEventResponse represents the outcome of a join request
type JoinEventResponse struct {
	EventID   int64     `json:"eventId"`
	IsWaiting bool      `json:"isWaiting"`
	Message   string    `json:"message"`
	JoinedAt  time.Time `json:"joinedAt"`
}

// GameTypeResponse represents a game format
type GameTypeResponse struct {
	ID                int64   `json:"id"`
	Name              string  `json:"name"`
	Slug              string  `json:"slug"`
	Description       *string `json:"description,omitempty"`
	DefaultMaxPlayers *int    `json:"defaultMaxPlayers,omitempty"`
}

// FromGameType converts a models.GameType to a GameTypeResponse
func FromGameType(gt *models.GameType) GameTypeResponse {
	return GameTypeResponse{
		ID:                gt.ID,
		Name:              gt.Name,
		Slug:              gt.Slug,
		Description:       gt.Description,
		DefaultMaxPlayers: gt.DefaultMaxPlayers,
	}
}

// SportStatsResponse aggregates a user's participation stats
type SportStatsResponse struct {
	GamesOrganized int64                  `json:"gamesOrganized"`
	GamesJoined    int64                  `json:"gamesJoined"`
	GamesUpcoming  int64                  `json:"gamesUpcoming"`
	Interests      []GameInterestResponse `json:"interests"`
}
