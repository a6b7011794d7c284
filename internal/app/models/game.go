package models

import "time"

// Game event lifecycle states.
const (
	EventStatusScheduled = "scheduled"
	EventStatusCancelled = "cancelled"
	EventStatusCompleted = "completed"
)

// GameType defines a playable game format based on the 'game_types' table
type GameType struct {
	ID                int64     `json:"id" db:"id"`
	Name              string    `json:"name" db:"name" example:"5-a-side"`
	Slug              string    `json:"slug" db:"slug" example:"5-a-side"`
	Description       *string   `json:"description,omitempty" db:"description"`
	DefaultMaxPlayers *int      `json:"defaultMaxPlayers,omitempty" db:"default_max_players"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
}

// GameUserInterest links a user to a game type with their skill level for
// that format, based on the 'game_user_interests' table.
type GameUserInterest struct {
	ID         int64      `json:"id" db:"id"`
	UserID     int64      `json:"userId" db:"user_id"`
	GameTypeID int64      `json:"gameTypeId" db:"game_type_id"`
	SkillLevel SkillLevel `json:"skillLevel" db:"skill_level"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`

	GameType *GameType `json:"gameType,omitempty"` // relation, no db tag
}

// GameEvent defines a scheduled game based on the 'game_events' table
type GameEvent struct {
	ID              int64       `json:"id" db:"id"`
	OrganizerID     int64       `json:"organizerId" db:"organizer_id"`
	GameTypeID      int64       `json:"gameTypeId" db:"game_type_id"`
	CommunityID     *int64      `json:"communityId,omitempty" db:"community_id"`
	Title           string      `json:"title" db:"title" example:"Sunday kickabout at the park"`
	Description     *string     `json:"description,omitempty" db:"description"`
	LocationName    string      `json:"locationName" db:"location_name" example:"Paddington Rec"`
	Address         *string     `json:"address,omitempty" db:"address"`
	Latitude        *float64    `json:"latitude,omitempty" db:"latitude"`
	Longitude       *float64    `json:"longitude,omitempty" db:"longitude"`
	StartTime       time.Time   `json:"startTime" db:"start_time"`
	EndTime         *time.Time  `json:"endTime,omitempty" db:"end_time"`
	MaxPlayers      *int        `json:"maxPlayers,omitempty" db:"max_players" example:"10"`
	CostPerPlayer   *float64    `json:"costPerPlayer,omitempty" db:"cost_per_player"`
	SkillLevelMin   *SkillLevel `json:"skillLevelMin,omitempty" db:"skill_level_min"`
	SkillLevelMax   *SkillLevel `json:"skillLevelMax,omitempty" db:"skill_level_max"`
	WaitlistEnabled bool        `json:"waitlistEnabled" db:"waitlist_enabled"`
	VenueBooked     bool        `json:"venueBooked" db:"venue_booked"`
	Notes           *string     `json:"notes,omitempty" db:"notes"`
	Status          string      `json:"status" db:"status" example:"scheduled"`
	CreatedAt       time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time   `json:"updatedAt" db:"updated_at"`

	Organizer        *User     `json:"organizer,omitempty"` // relation, no db tag
	GameType         *GameType `json:"gameType,omitempty"`  // relation, no db tag
	ActiveCount      int       `json:"activeCount,omitempty" db:"-"`
	ParticipantCount int       `json:"participantCount,omitempty" db:"-"`
	DistanceKm       *float64  `json:"distanceKm,omitempty" db:"-"`
}

// Coordinates implements geo.Locatable.
func (e *GameEvent) Coordinates() (lat, lon float64, ok bool) {
	if e.Latitude == nil || e.Longitude == nil {
		return 0, 0, false
	}
	return *e.Latitude, *e.Longitude, true
}

// GameEventParticipant defines a row in the 'game_event_participants'
// table. Unique on (game_event_id, user_id); IsWaiting marks waitlist
// entries.
type GameEventParticipant struct {
	ID          int64     `json:"id" db:"id"`
	GameEventID int64     `json:"gameEventId" db:"game_event_id"`
	UserID      int64     `json:"userId" db:"user_id"`
	IsWaiting   bool      `json:"isWaiting" db:"is_waiting"`
	JoinedAt    time.Time `json:"joinedAt" db:"joined_at"`

	User *User `json:"user,omitempty"` // relation, no db tag
}
