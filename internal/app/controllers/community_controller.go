package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kickabout/kickabout/internal/app/models/dto"
	"github.com/kickabout/kickabout/internal/app/services"
	"github.com/kickabout/kickabout/internal/middleware"
	"github.com/kickabout/kickabout/internal/pkg/helpers"
)

// CommunityController handles community listing and membership operations
type CommunityController struct {
	communityService *services.CommunityService
	logger           zerolog.Logger
}

// NewCommunityController creates a new CommunityController
func NewCommunityController(communityService *services.CommunityService, logger zerolog.Logger) *CommunityController {
	return &CommunityController{
		communityService: communityService,
		logger:           logger,
	}
}

// List lists active communities
// @Summary List communities
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Param q query string false "Search by name or city"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.CommunityListResponse}
// @Router /communities [get]
func (c *CommunityController) List(ctx *gin.Context) {
	var search *string
	if q := ctx.Query("q"); q != "" {
		search = &q
	}

	page, size := helpers.ParsePaginationParams(ctx, helpers.DefaultEventPageSize)
	communities, total, err := c.communityService.List(ctx.Request.Context(), search, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	out := make([]dto.CommunityResponse, 0, len(communities))
	for i := range communities {
		out = append(out, dto.FromCommunity(&communities[i]))
	}

	resp := dto.CommunityListResponse{
		Communities: out,
		Pagination:  helpers.NewPaginationInfo(total, page, size),
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: resp})
}

// Get retrieves a community
// @Summary Community details
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Success 200 {object} dto.APIResponse{data=dto.CommunityResponse}
// @Failure 404 {object} dto.ErrorResponse "Community not found"
// @Router /communities/{id} [get]
func (c *CommunityController) Get(ctx *gin.Context) {
	communityID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	community, err := c.communityService.Get(ctx.Request.Context(), communityID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: dto.FromCommunity(community)})
}

// Stats aggregates a community's activity counts
// @Summary Community statistics
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Success 200 {object} dto.APIResponse{data=dto.CommunityStatsResponse}
// @Failure 404 {object} dto.ErrorResponse "Community not found"
// @Router /communities/{id}/stats [get]
func (c *CommunityController) Stats(ctx *gin.Context) {
	communityID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	stats, err := c.communityService.Stats(ctx.Request.Context(), communityID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: stats})
}

// Join joins a community
// @Summary Join community
// @Tags communities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Param request body dto.JoinCommunityRequest false "Join options"
// @Success 200 {object} dto.APIResponse{data=dto.MembershipResponse}
// @Failure 400 {object} dto.ErrorResponse "Community not active"
// @Failure 404 {object} dto.ErrorResponse "Community not found"
// @Router /communities/{id}/join [post]
func (c *CommunityController) Join(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)
	communityID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.JoinCommunityRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			errorDetail := dto.HandleValidationError(err)
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}
	}

	membership, err := c.communityService.Join(ctx.Request.Context(), userID, communityID, req.SetPrimary)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("userID", userID).Int64("communityID", communityID).Msg("User joined community")
	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.MembershipResponse{
			CommunityID: communityID,
			IsPrimary:   membership.IsPrimary,
			JoinedAt:    membership.JoinedAt,
		},
	})
}

// Leave leaves a community
// @Summary Leave community
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 404 {object} dto.ErrorResponse "Not a member"
// @Router /communities/{id}/leave [delete]
func (c *CommunityController) Leave(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)
	communityID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.communityService.Leave(ctx.Request.Context(), userID, communityID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.SuccessResponse{Message: "You left the community"},
	})
}

// SetPrimary switches the user's primary community
// @Summary Set primary community
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 404 {object} dto.ErrorResponse "Not a member"
// @Router /communities/{id}/primary [put]
func (c *CommunityController) SetPrimary(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)
	communityID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.communityService.SetPrimary(ctx.Request.Context(), userID, communityID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.SuccessResponse{Message: "Primary community updated"},
	})
}

// MyCommunities lists the user's memberships
// @Summary My communities
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.CommunityResponse}
// @Router /communities/my [get]
func (c *CommunityController) MyCommunities(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)

	memberships, err := c.communityService.MyCommunities(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	out := make([]dto.CommunityResponse, 0, len(memberships))
	for _, m := range memberships {
		if m.Community == nil {
			continue
		}
		resp := dto.FromCommunity(m.Community)
		resp.IsMember = true
		resp.IsPrimary = m.IsPrimary
		out = append(out, resp)
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: out})
}

// Primary retrieves the user's primary community
// @Summary Primary community
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.CommunityResponse}
// @Failure 404 {object} dto.ErrorResponse "No primary community"
// @Router /communities/primary [get]
func (c *CommunityController) Primary(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)

	community, err := c.communityService.Primary(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp := dto.FromCommunity(community)
	resp.IsMember = true
	resp.IsPrimary = true
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: resp})
}
