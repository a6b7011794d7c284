package dto

import (
	"time"

	"github.com/kickabout/kickabout/internal/app/models"
)

// CommunityResponse represents a community
type CommunityResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Description *string   `json:"description,omitempty"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	Country     string    `json:"country"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	MemberCount int64     `json:"memberCount"`
	Distance    string    `json:"distance,omitempty"`
	DistanceKm  *float64  `json:"distanceKm,omitempty"`
	IsMember    bool      `json:"isMember,omitempty"`
	IsPrimary   bool      `json:"isPrimary,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// FromCommunity converts a models.Community to a CommunityResponse
func FromCommunity(c *models.Community) CommunityResponse {
	return CommunityResponse{
		ID:          c.ID,
		Name:        c.Name,
		Type:        c.Type,
		Description: c.Description,
		City:        c.City,
		State:       c.State,
		Country:     c.Country,
		Latitude:    c.Latitude,
		Longitude:   c.Longitude,
		MemberCount: c.MemberCount,
		CreatedAt:   c.CreatedAt,
	}
}

// CommunityListResponse represents a paginated community list
type CommunityListResponse struct {
	Communities []CommunityResponse `json:"communities"`
	Pagination  PaginationInfo      `json:"pagination"`
}

// CommunityRecommendationsResponse lists nearby communities for the
// current user. Reason is set when the list is empty for a policy reason
// rather than a genuine absence of communities.
type CommunityRecommendationsResponse struct {
	Communities []CommunityResponse `json:"communities"`
	Reason      string              `json:"reason,omitempty" example:"no_location"`
}

// JoinCommunityRequest represents a request to join a community
type JoinCommunityRequest struct {
	SetPrimary bool `json:"setPrimary"`
}

// CommunityStatsResponse aggregates activity counts for a community
type CommunityStatsResponse struct {
	CommunityID    int64  `json:"communityId"`
	Name           string `json:"name"`
	MemberCount    int64  `json:"memberCount"`
	UpcomingEvents int64  `json:"upcomingEvents"`
	Discussions    int64  `json:"discussions"`
}

// MembershipResponse represents the outcome of a community join
type MembershipResponse struct {
	CommunityID int64     `json:"communityId"`
	IsPrimary   bool      `json:"isPrimary"`
	JoinedAt    time.Time `json:"joinedAt"`
}
