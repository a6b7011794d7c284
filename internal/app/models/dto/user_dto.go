package dto

import (
	"time"

	"github.com/kickabout/kickabout/internal/app/models"
)

// UserResponse represents basic user information
type UserResponse struct {
	ID               int64      `json:"id"`
	Email            string     `json:"email"`
	FirstName        string     `json:"firstName"`
	LastName         string     `json:"lastName"`
	Phone            *string    `json:"phone,omitempty"`
	Bio              *string    `json:"bio,omitempty"`
	ProfilePhotoURL  *string    `json:"profilePhotoUrl,omitempty"`
	SkillLevel       *int       `json:"skillLevel,omitempty"`
	SkillLevelName   string     `json:"skillLevelName,omitempty"`
	City             *string    `json:"city,omitempty"`
	State            *string    `json:"state,omitempty"`
	Country          *string    `json:"country,omitempty"`
	CommunityName    *string    `json:"communityName,omitempty"`
	Borough          *string    `json:"borough,omitempty"`
	Latitude         *float64   `json:"latitude,omitempty"`
	Longitude        *float64   `json:"longitude,omitempty"`
	LocationVerified bool       `json:"locationVerified"`
	CommunityID      *int64     `json:"communityId,omitempty"`
	EmailVerified    bool       `json:"emailVerified"`
	CreatedAt        time.Time  `json:"createdAt"`
	LastLoginAt      *time.Time `json:"lastLoginAt,omitempty"`
}

// FromUser converts a models.User to a UserResponse
func FromUser(user *models.User) UserResponse {
	resp := UserResponse{
		ID:               user.ID,
		Email:            user.Email,
		FirstName:        user.FirstName,
		LastName:         user.LastName,
		Phone:            user.Phone,
		Bio:              user.Bio,
		ProfilePhotoURL:  user.ProfilePhotoURL,
		City:             user.City,
		State:            user.State,
		Country:          user.Country,
		CommunityName:    user.CommunityName,
		Borough:          user.Borough,
		Latitude:         user.Latitude,
		Longitude:        user.Longitude,
		LocationVerified: user.LocationVerified,
		CommunityID:      user.CommunityID,
		EmailVerified:    user.EmailVerified,
		CreatedAt:        user.CreatedAt,
		LastLoginAt:      user.LastLoginAt,
	}
	if user.SkillLevel != nil {
		level := int(*user.SkillLevel)
		resp.SkillLevel = &level
		resp.SkillLevelName = user.SkillLevel.Label()
	}
	return resp
}

// UpdateProfileRequest represents profile update data
type UpdateProfileRequest struct {
	FirstName  string  `json:"firstName" binding:"required"`
	LastName   string  `json:"lastName" binding:"required"`
	Phone      *string `json:"phone,omitempty"`
	Bio        *string `json:"bio,omitempty" binding:"omitempty,max=1000"`
	SkillLevel *int    `json:"skillLevel,omitempty" binding:"omitempty,min=1,max=3"`
}

// UpdateLocationRequest sets the user's location either from a free-form
// address (geocoded server side) or from explicit coordinates.
type UpdateLocationRequest struct {
	Address   *string  `json:"address,omitempty" binding:"omitempty,max=255"`
	Latitude  *float64 `json:"latitude,omitempty" binding:"omitempty,min=-90,max=90"`
	Longitude *float64 `json:"longitude,omitempty" binding:"omitempty,min=-180,max=180"`
}

// NearbyUserResponse represents another user ranked by distance
type NearbyUserResponse struct {
	ID              int64    `json:"id"`
	FirstName       string   `json:"firstName"`
	LastName        string   `json:"lastName"`
	ProfilePhotoURL *string  `json:"profilePhotoUrl,omitempty"`
	SkillLevel      *int     `json:"skillLevel,omitempty"`
	City            *string  `json:"city,omitempty"`
	Distance        string   `json:"distance,omitempty"`
	DistanceKm      *float64 `json:"distanceKm,omitempty"`
}

// NearbyUsersResponse lists users near the current user
type NearbyUsersResponse struct {
	Users  []NearbyUserResponse `json:"users"`
	Reason string               `json:"reason,omitempty" example:"no_location"`
}

// CommunityUsersResponse lists a community's members
type CommunityUsersResponse struct {
	Users      []NearbyUserResponse `json:"users"`
	Pagination PaginationInfo       `json:"pagination"`
}

// GameInterestRequest sets a user's interest in a game type
type GameInterestRequest struct {
	GameTypeID int64 `json:"gameTypeId" binding:"required,min=1"`
	SkillLevel int   `json:"skillLevel" binding:"required,min=1,max=3"`
}

// GameInterestResponse represents a user's interest in a game type
type GameInterestResponse struct {
	GameTypeID     int64  `json:"gameTypeId"`
	GameTypeName   string `json:"gameTypeName"`
	SkillLevel     int    `json:"skillLevel"`
	SkillLevelName string `json:"skillLevelName"`
}
