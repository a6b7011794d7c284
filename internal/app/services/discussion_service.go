package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/kickabout/kickabout/internal/app/models"
	"github.com/kickabout/kickabout/internal/app/models/dto"
	"github.com/kickabout/kickabout/internal/app/repositories"
	"github.com/kickabout/kickabout/internal/pkg/apperrors"
)

// trendingWindow bounds how far back trending ranking looks.
const trendingWindow = 7 * 24 * time.Hour

// DiscussionService handles community discussion operations
type DiscussionService struct {
	discussionRepo *repositories.DiscussionRepository
	communityRepo  *repositories.CommunityRepository
	logger         zerolog.Logger
}

// NewDiscussionService creates a new DiscussionService
func NewDiscussionService(
	discussionRepo *repositories.DiscussionRepository,
	communityRepo *repositories.CommunityRepository,
	logger zerolog.Logger,
) *DiscussionService {
	return &DiscussionService{
		discussionRepo: discussionRepo,
		communityRepo:  communityRepo,
		logger:         logger,
	}
}

// Create starts a new discussion in a community
func (s *DiscussionService) Create(ctx context.Context, authorID int64, req *dto.CreateDiscussionRequest) (*models.Discussion, error) {
	if _, err := s.communityRepo.GetByID(ctx, req.CommunityID); err != nil {
		return nil, err
	}

	discussion := &models.Discussion{
		CommunityID: req.CommunityID,
		GameTypeID:  req.GameTypeID,
		AuthorID:    authorID,
		Title:       req.Title,
		Body:        req.Body,
	}
	if err := s.discussionRepo.Create(ctx, discussion); err != nil {
		return nil, err
	}
	return s.discussionRepo.GetByID(ctx, discussion.ID, authorID)
}

// Get retrieves a discussion
func (s *DiscussionService) Get(ctx context.Context, discussionID, viewerID int64) (*models.Discussion, error) {
	return s.discussionRepo.GetByID(ctx, discussionID, viewerID)
}

// ListByCommunity lists a community's discussions newest first,
// optionally narrowed to one game type.
func (s *DiscussionService) ListByCommunity(ctx context.Context, communityID, viewerID int64, gameTypeID *int64, page, pageSize int) ([]models.Discussion, int64, error) {
	if _, err := s.communityRepo.GetByID(ctx, communityID); err != nil {
		return nil, 0, err
	}
	return s.discussionRepo.ListByCommunity(ctx, communityID, viewerID, gameTypeID, page, pageSize)
}

// ListTrending lists recent discussions ranked by engagement
func (s *DiscussionService) ListTrending(ctx context.Context, viewerID int64, page, pageSize int) ([]models.Discussion, int64, error) {
	since := time.Now().Add(-trendingWindow)
	return s.discussionRepo.ListTrending(ctx, viewerID, since, page, pageSize)
}

// Update edits a discussion; only the author may edit
func (s *DiscussionService) Update(ctx context.Context, discussionID, userID int64, req *dto.UpdateDiscussionRequest) (*models.Discussion, error) {
	discussion, err := s.discussionRepo.GetByID(ctx, discussionID, userID)
	if err != nil {
		return nil, err
	}
	if discussion.AuthorID != userID {
		return nil, apperrors.NewForbiddenError("Only the author can edit this discussion")
	}

	title := discussion.Title
	if req.Title != nil {
		title = *req.Title
	}
	body := discussion.Body
	if req.Body != nil {
		body = *req.Body
	}

	if err := s.discussionRepo.Update(ctx, discussionID, title, body); err != nil {
		return nil, err
	}
	return s.discussionRepo.GetByID(ctx, discussionID, userID)
}

// Delete removes a discussion; only the author may delete
func (s *DiscussionService) Delete(ctx context.Context, discussionID, userID int64) error {
	discussion, err := s.discussionRepo.GetByID(ctx, discussionID, userID)
	if err != nil {
		return err
	}
	if discussion.AuthorID != userID {
		return apperrors.NewForbiddenError("Only the author can delete this discussion")
	}
	return s.discussionRepo.Delete(ctx, discussionID)
}

// AddComment replies to a discussion
func (s *DiscussionService) AddComment(ctx context.Context, discussionID, authorID int64, body string) (*models.Comment, error) {
	if _, err := s.discussionRepo.GetByID(ctx, discussionID, authorID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		DiscussionID: discussionID,
		AuthorID:     authorID,
		Body:         body,
	}
	if err := s.discussionRepo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments lists a discussion's comments oldest first
func (s *DiscussionService) ListComments(ctx context.Context, discussionID int64, page, pageSize int) ([]models.Comment, int64, error) {
	return s.discussionRepo.ListComments(ctx, discussionID, page, pageSize)
}

// DeleteComment removes a comment; only its author may delete it
func (s *DiscussionService) DeleteComment(ctx context.Context, commentID, userID int64) error {
	comment, err := s.discussionRepo.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.AuthorID != userID {
		return apperrors.NewForbiddenError("Only the author can delete this comment")
	}
	return s.discussionRepo.DeleteComment(ctx, commentID)
}

// ToggleLike likes the discussion when unliked and unlikes it when
// already liked, returning the new state and count.
func (s *DiscussionService) ToggleLike(ctx context.Context, discussionID, userID int64) (bool, int64, error) {
	if _, err := s.discussionRepo.GetByID(ctx, discussionID, userID); err != nil {
		return false, 0, err
	}

	liked := true
	err := s.discussionRepo.AddLike(ctx, discussionID, userID)
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrAlreadyLiked) {
			return false, 0, err
		}
		if err := s.discussionRepo.RemoveLike(ctx, discussionID, userID); err != nil {
			return false, 0, err
		}
		liked = false
	}

	count, err := s.discussionRepo.LikeCount(ctx, discussionID)
	if err != nil {
		return false, 0, err
	}
	return liked, count, nil
}
