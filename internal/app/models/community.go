package models

import "time"

// CommunityTypeBorough is the community type created by location based
// auto-assignment.
const CommunityTypeBorough = "borough"

// Community defines the community model based on the 'communities' table.
// Communities are unique on (name, city, state, country).
type Community struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name" example:"Westminster"`
	Type        string    `json:"type" db:"type" example:"borough"`
	Description *string   `json:"description,omitempty" db:"description"`
	City        string    `json:"city" db:"city" example:"London"`
	State       string    `json:"state" db:"state" example:"England"`
	Country     string    `json:"country" db:"country" example:"United Kingdom"`
	Latitude    *float64  `json:"latitude,omitempty" db:"latitude"`
	Longitude   *float64  `json:"longitude,omitempty" db:"longitude"`
	IsActive    bool      `json:"isActive" db:"is_active"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`

	MemberCount int64 `json:"memberCount,omitempty" db:"-"`
}

// Coordinates implements geo.Locatable.
func (c *Community) Coordinates() (lat, lon float64, ok bool) {
	if c.Latitude == nil || c.Longitude == nil {
		return 0, 0, false
	}
	return *c.Latitude, *c.Longitude, true
}

// UserCommunity defines a membership row in the 'user_communities' pivot
// table. A user has at most one primary community.
type UserCommunity struct {
	ID          int64     `json:"id" db:"id"`
	UserID      int64     `json:"userId" db:"user_id"`
	CommunityID int64     `json:"communityId" db:"community_id"`
	IsPrimary   bool      `json:"isPrimary" db:"is_primary"`
	IsActive    bool      `json:"isActive" db:"is_active"`
	JoinedAt    time.Time `json:"joinedAt" db:"joined_at"`

	Community *Community `json:"community,omitempty"` // relation, no db tag
}
