package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kickabout/kickabout/internal/app/models/dto"
	"github.com/kickabout/kickabout/internal/app/services"
	"github.com/kickabout/kickabout/internal/middleware"
	"github.com/kickabout/kickabout/internal/pkg/helpers"
)

// DiscussionController handles community discussion operations
type DiscussionController struct {
	discussionService *services.DiscussionService
	logger            zerolog.Logger
}

// NewDiscussionController creates a new DiscussionController
func NewDiscussionController(discussionService *services.DiscussionService, logger zerolog.Logger) *DiscussionController {
	return &DiscussionController{
		discussionService: discussionService,
		logger:            logger,
	}
}

// Create starts a discussion
// @Summary Create discussion
// @Tags discussions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateDiscussionRequest true "Discussion content"
// @Success 201 {object} dto.APIResponse{data=dto.DiscussionResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 404 {object} dto.ErrorResponse "Community not found"
// @Router /discussions [post]
func (c *DiscussionController) Create(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)

	var req dto.CreateDiscussionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.HandleValidationError(err)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	discussion, err := c.discussionService.Create(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{Data: dto.FromDiscussion(discussion)})
}

// List lists a community's discussions
// @Summary List discussions
// @Tags discussions
// @Produce json
// @Security BearerAuth
// @Param communityId query int true "Community ID"
// @Param gameTypeId query int false "Game type filter"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.DiscussionListResponse}
// @Failure 404 {object} dto.ErrorResponse "Community not found"
// @Router /discussions [get]
func (c *DiscussionController) List(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)
	communityID, ok := parseIDQuery(ctx, "communityId")
	if !ok {
		return
	}

	var gameTypeID *int64
	if raw := ctx.Query("gameTypeId"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			gameTypeID = &id
		}
	}

	page, size := helpers.ParsePaginationParams(ctx, helpers.DefaultDiscussionPageSize)
	discussions, total, err := c.discussionService.ListByCommunity(ctx.Request.Context(), communityID, userID, gameTypeID, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	out := make([]dto.DiscussionResponse, 0, len(discussions))
	for i := range discussions {
		out = append(out, dto.FromDiscussion(&discussions[i]))
	}

	resp := dto.DiscussionListResponse{
		Discussions: out,
		Pagination:  helpers.NewPaginationInfo(total, page, size),
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: resp})
}

// Trending lists recent discussions ranked by engagement
// @Summary Trending discussions
// @Description Discussions from the last week ranked by likes and comments.
// @Tags discussions
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.DiscussionListResponse}
// @Router /discussions/trending/topics [get]
func (c *DiscussionController) Trending(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)

	page, size := helpers.ParsePaginationParams(ctx, helpers.DefaultDiscussionPageSize)
	discussions, total, err := c.discussionService.ListTrending(ctx.Request.Context(), userID, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	out := make([]dto.DiscussionResponse, 0, len(discussions))
	for i := range discussions {
		out = append(out, dto.FromDiscussion(&discussions[i]))
	}

	resp := dto.DiscussionListResponse{
		Discussions: out,
		Pagination:  helpers.NewPaginationInfo(total, page, size),
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: resp})
}

// Get retrieves a discussion
// @Summary Discussion details
// @Tags discussions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Discussion ID"
// @Success 200 {object} dto.APIResponse{data=dto.DiscussionResponse}
// @Failure 404 {object} dto.ErrorResponse "Discussion not found"
// @Router /discussions/{id} [get]
func (c *DiscussionController) Get(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)
	discussionID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	discussion, err := c.discussionService.Get(ctx.Request.Context(), discussionID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: dto.FromDiscussion(discussion)})
}

// Update edits a discussion
// @Summary Update discussion
// @Tags discussions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Discussion ID"
// @Param request body dto.UpdateDiscussionRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.DiscussionResponse}
// @Failure 403 {object} dto.ErrorResponse "Not the author"
// @Failure 404 {object} dto.ErrorResponse "Discussion not found"
// @Router /discussions/{id} [put]
func (c *DiscussionController) Update(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)
	discussionID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateDiscussionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.HandleValidationError(err)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	discussion, err := c.discussionService.Update(ctx.Request.Context(), discussionID, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: dto.FromDiscussion(discussion)})
}

// Delete removes a discussion
// @Summary Delete discussion
// @Tags discussions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Discussion ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 403 {object} dto.ErrorResponse "Not the author"
// @Failure 404 {object} dto.ErrorResponse "Discussion not found"
// @Router /discussions/{id} [delete]
func (c *DiscussionController) Delete(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)
	discussionID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.discussionService.Delete(ctx.Request.Context(), discussionID, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.SuccessResponse{Message: "Discussion deleted"},
	})
}

// AddComment replies to a discussion
// @Summary Add comment
// @Tags discussions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Discussion ID"
// @Param request body dto.CreateCommentRequest true "Comment body"
// @Success 201 {object} dto.APIResponse{data=dto.CommentResponse}
// @Failure 404 {object} dto.ErrorResponse "Discussion not found"
// @Router /discussions/{id}/comments [post]
func (c *DiscussionController) AddComment(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)
	discussionID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.CreateCommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.HandleValidationError(err)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	comment, err := c.discussionService.AddComment(ctx.Request.Context(), discussionID, userID, req.Body)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{Data: dto.FromComment(comment)})
}

// ListComments lists a discussion's comments
// @Summary List comments
// @Tags discussions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Discussion ID"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.CommentListResponse}
// @Router /discussions/{id}/comments [get]
func (c *DiscussionController) ListComments(ctx *gin.Context) {
	discussionID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	page, size := helpers.ParsePaginationParams(ctx, helpers.DefaultDiscussionPageSize)
	comments, total, err := c.discussionService.ListComments(ctx.Request.Context(), discussionID, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	out := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, dto.FromComment(&comments[i]))
	}

	resp := dto.CommentListResponse{
		Comments:   out,
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: resp})
}

// DeleteComment removes a comment
// @Summary Delete comment
// @Tags discussions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Discussion ID"
// @Param commentId path int true "Comment ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 403 {object} dto.ErrorResponse "Not the author"
// @Failure 404 {object} dto.ErrorResponse "Comment not found"
// @Router /discussions/{id}/comments/{commentId} [delete]
func (c *DiscussionController) DeleteComment(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)
	commentID, ok := parseIDParam(ctx, "commentId")
	if !ok {
		return
	}

	if err := c.discussionService.DeleteComment(ctx.Request.Context(), commentID, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.SuccessResponse{Message: "Comment deleted"},
	})
}

// ToggleLike likes or unlikes a discussion
// @Summary Toggle like
// @Description Likes the discussion when unliked and removes the like otherwise.
// @Tags discussions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Discussion ID"
// @Success 200 {object} dto.APIResponse{data=dto.LikeResponse}
// @Failure 404 {object} dto.ErrorResponse "Discussion not found"
// @Router /discussions/{id}/likes [post]
func (c *DiscussionController) ToggleLike(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)
	discussionID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	liked, count, err := c.discussionService.ToggleLike(ctx.Request.Context(), discussionID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.LikeResponse{
			DiscussionID: discussionID,
			Liked:        liked,
			LikeCount:    count,
		},
	})
}

func parseIDQuery(ctx *gin.Context, name string) (int64, bool) {
	raw := ctx.Query(name)
	if raw == "" {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Missing "+name+" parameter")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name+" parameter")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}
