package dto

import (
	"time"

	"github.com/kickabout/kickabout/internal/app/models"
)

// CreateDiscussionRequest represents a request to start a discussion.
// GameTypeID optionally ties the thread to a game format.
type CreateDiscussionRequest struct {
	CommunityID int64  `json:"communityId" binding:"required,min=1"`
	GameTypeID  *int64 `json:"gameTypeId,omitempty" binding:"omitempty,min=1"`
	Title       string `json:"title" binding:"required,max=200"`
	Body        string `json:"body" binding:"required,max=5000"`
}

// UpdateDiscussionRequest represents a request to edit a discussion
type UpdateDiscussionRequest struct {
	Title *string `json:"title,omitempty" binding:"omitempty,max=200"`
	Body  *string `json:"body,omitempty" binding:"omitempty,max=5000"`
}

// DiscussionResponse represents a discussion thread
type DiscussionResponse struct {
	ID           int64              `json:"id"`
	CommunityID  int64              `json:"communityId"`
	GameTypeID   *int64             `json:"gameTypeId,omitempty"`
	Title        string             `json:"title"`
	Body         string             `json:"body"`
	Author       *AuthorResponse    `json:"author,omitempty"`
	Community    *CommunityResponse `json:"community,omitempty"`
	CommentCount int64              `json:"commentCount"`
	LikeCount    int64              `json:"likeCount"`
	LikedByMe    bool               `json:"likedByMe"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

// AuthorResponse represents the author of a discussion or comment
type AuthorResponse struct {
	ID              int64   `json:"id"`
	FirstName       string  `json:"firstName"`
	LastName        string  `json:"lastName"`
	ProfilePhotoURL *string `json:"profilePhotoUrl,omitempty"`
}

// FromDiscussion converts a models.Discussion to a DiscussionResponse
func FromDiscussion(d *models.Discussion) DiscussionResponse {
	resp := DiscussionResponse{
		ID:           d.ID,
		CommunityID:  d.CommunityID,
		GameTypeID:   d.GameTypeID,
		Title:        d.Title,
		Body:         d.Body,
		CommentCount: d.CommentCount,
		LikeCount:    d.LikeCount,
		LikedByMe:    d.LikedByMe,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	if d.Author != nil {
		resp.Author = &AuthorResponse{
			ID:              d.Author.ID,
			FirstName:       d.Author.FirstName,
			LastName:        d.Author.LastName,
			ProfilePhotoURL: d.Author.ProfilePhotoURL,
		}
	}
	if d.Community != nil {
		community := FromCommunity(d.Community)
		resp.Community = &community
	}
	return resp
}

// DiscussionListResponse represents a paginated discussion feed
type DiscussionListResponse struct {
	Discussions []DiscussionResponse `json:"discussions"`
	Pagination  PaginationInfo       `json:"pagination"`
}

// CreateCommentRequest represents a request to comment on a discussion
type CreateCommentRequest struct {
	Body string `json:"body" binding:"required,max=2000"`
}

// CommentResponse represents a comment on a discussion
type CommentResponse struct {
	ID           int64           `json:"id"`
	DiscussionID int64           `json:"discussionId"`
	Body         string          `json:"body"`
	Author       *AuthorResponse `json:"author,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// FromComment converts a models.Comment to a CommentResponse
func FromComment(c *models.Comment) CommentResponse {
	resp := CommentResponse{
		ID:           c.ID,
		DiscussionID: c.DiscussionID,
		Body:         c.Body,
		CreatedAt:    c.CreatedAt,
	}
	if c.Author != nil {
		resp.Author = &AuthorResponse{
			ID:              c.Author.ID,
			FirstName:       c.Author.FirstName,
			LastName:        c.Author.LastName,
			ProfilePhotoURL: c.Author.ProfilePhotoURL,
		}
	}
	return resp
}

// CommentListResponse represents a paginated comment list
type CommentListResponse struct {
	Comments   []CommentResponse `json:"comments"`
	Pagination PaginationInfo    `json:"pagination"`
}

// LikeResponse represents the outcome of a like toggle
type LikeResponse struct {
	DiscussionID int64 `json:"discussionId"`
	Liked        bool  `json:"liked"`
	LikeCount    int64 `json:"likeCount"`
}
