package models

import (
	"time"
)

// SkillLevel is an ordinal football skill rating stored as a small
// integer so level ranges can be compared numerically.
type SkillLevel int

const (
	SkillBeginner     SkillLevel = 1
	SkillIntermediate SkillLevel = 2
	SkillAdvanced     SkillLevel = 3
)

// Label returns the display name for the skill level.
func (s SkillLevel) Label() string {
	switch s {
	case SkillBeginner:
		return "Beginner"
	case SkillIntermediate:
		return "Intermediate"
	case SkillAdvanced:
		return "Advanced"
	default:
		return "Unknown"
	}
}

// Valid reports whether the value is a known skill level.
func (s SkillLevel) Valid() bool {
	return s >= SkillBeginner && s <= SkillAdvanced
}

// User defines the user model based on the 'users' table
type User struct {
	ID               int64       `json:"id" db:"id" example:"1"`
	Email            string      `json:"email" db:"email" example:"player@example.com"`
	Password         string      `json:"-" db:"password"` // hashed, excluded from JSON
	FirstName        string      `json:"firstName" db:"first_name" example:"Alex"`
	LastName         string      `json:"lastName" db:"last_name" example:"Morgan"`
	Phone            *string     `json:"phone,omitempty" db:"phone"`
	Bio              *string     `json:"bio,omitempty" db:"bio"`
	ProfilePhotoURL  *string     `json:"profilePhotoUrl,omitempty" db:"profile_photo_url"`
	SkillLevel       *SkillLevel `json:"skillLevel,omitempty" db:"skill_level" example:"2"`
	Address          *string     `json:"address,omitempty" db:"address"`
	City             *string     `json:"city,omitempty" db:"city" example:"London"`
	State            *string     `json:"state,omitempty" db:"state" example:"England"`
	PostalCode       *string     `json:"postalCode,omitempty" db:"postal_code"`
	Country          *string     `json:"country,omitempty" db:"country" example:"United Kingdom"`
	CommunityName    *string     `json:"communityName,omitempty" db:"community_name" example:"Westminster"`
	Borough          *string     `json:"borough,omitempty" db:"borough" example:"Westminster"`
	Latitude         *float64    `json:"latitude,omitempty" db:"latitude" example:"51.4995"`
	Longitude        *float64    `json:"longitude,omitempty" db:"longitude" example:"-0.1337"`
	LocationVerified bool        `json:"locationVerified" db:"location_verified"`
	CommunityID      *int64      `json:"communityId,omitempty" db:"community_id"`
	IsActive         bool        `json:"isActive" db:"is_active" example:"true"`
	EmailVerified    bool        `json:"emailVerified" db:"email_verified" example:"true"`
	LastLoginAt      *time.Time  `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt        time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time   `json:"updatedAt" db:"updated_at"`
}

// Coordinates implements geo.Locatable.
func (u *User) Coordinates() (lat, lon float64, ok bool) {
	if u.Latitude == nil || u.Longitude == nil {
		return 0, 0, false
	}
	return *u.Latitude, *u.Longitude, true
}

// HasLocation reports whether the user has stored coordinates.
func (u *User) HasLocation() bool {
	return u.Latitude != nil && u.Longitude != nil
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
