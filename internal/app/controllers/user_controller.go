package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kickabout/kickabout/internal/app/models/dto"
	"github.com/kickabout/kickabout/internal/app/services"
	"github.com/kickabout/kickabout/internal/middleware"
)

// UserController handles profile and game interest operations
type UserController struct {
	userService *services.UserService
	logger      zerolog.Logger
}

// NewUserController creates a new UserController
func NewUserController(userService *services.UserService, logger zerolog.Logger) *UserController {
	return &UserController{
		userService: userService,
		logger:      logger,
	}
}

// GetProfile returns the current user's profile
// @Summary Get profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /profile [get]
func (c *UserController) GetProfile(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)

	user, err := c.userService.GetProfile(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.FromUser(user),
	})
}

// UpdateProfile updates the current user's profile
// @Summary Update profile
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /profile [put]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)

	var req dto.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.HandleValidationError(err)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	user, err := c.userService.UpdateProfile(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("userID", userID).Msg("Profile updated")
	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.FromUser(user),
	})
}

// GetGameInterests lists the current user's game interests
// @Summary List game interests
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.GameInterestResponse}
// @Router /profile/game-interests [get]
func (c *UserController) GetGameInterests(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)

	interests, err := c.userService.GetGameInterests(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	out := make([]dto.GameInterestResponse, 0, len(interests))
	for _, interest := range interests {
		resp := dto.GameInterestResponse{
			GameTypeID:     interest.GameTypeID,
			SkillLevel:     int(interest.SkillLevel),
			SkillLevelName: interest.SkillLevel.Label(),
		}
		if interest.GameType != nil {
			resp.GameTypeName = interest.GameType.Name
		}
		out = append(out, resp)
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: out})
}

// SetGameInterest records or updates a game interest
// @Summary Set game interest
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.GameInterestRequest true "Game type and skill level"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 404 {object} dto.ErrorResponse "Game type not found"
// @Router /profile/game-interests [put]
func (c *UserController) SetGameInterest(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)

	var req dto.GameInterestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.HandleValidationError(err)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	if err := c.userService.SetGameInterest(ctx.Request.Context(), userID, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.SuccessResponse{Message: "Game interest saved"},
	})
}

// RemoveGameInterest drops a game interest
// @Summary Remove game interest
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Param gameTypeId path int true "Game type ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 404 {object} dto.ErrorResponse "Interest not found"
// @Router /profile/game-interests/{gameTypeId} [delete]
func (c *UserController) RemoveGameInterest(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)

	gameTypeID, err := strconv.ParseInt(ctx.Param("gameTypeId"), 10, 64)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid game type ID")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	if err := c.userService.RemoveGameInterest(ctx.Request.Context(), userID, gameTypeID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.SuccessResponse{Message: "Game interest removed"},
	})
}

// GetSportStats aggregates the current user's participation stats
// @Summary Sport stats
// @Description Counts of games organized, joined and upcoming, with game interests.
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.SportStatsResponse}
// @Router /sport-stats [get]
func (c *UserController) GetSportStats(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)

	stats, err := c.userService.GetSportStats(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: stats})
}
