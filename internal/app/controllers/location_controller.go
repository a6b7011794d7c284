package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kickabout/kickabout/internal/app/models"
	"github.com/kickabout/kickabout/internal/app/models/dto"
	"github.com/kickabout/kickabout/internal/app/repositories"
	"github.com/kickabout/kickabout/internal/app/services"
	"github.com/kickabout/kickabout/internal/middleware"
	"github.com/kickabout/kickabout/internal/pkg/geo"
	"github.com/kickabout/kickabout/internal/pkg/helpers"
)

// LocationController handles geocoding, location updates and the
// location-driven discovery endpoints.
type LocationController struct {
	locationService  *services.LocationService
	userService      *services.UserService
	eventService     *services.EventService
	communityService *services.CommunityService
	logger           zerolog.Logger
}

// NewLocationController creates a new LocationController
func NewLocationController(
	locationService *services.LocationService,
	userService *services.UserService,
	eventService *services.EventService,
	communityService *services.CommunityService,
	logger zerolog.Logger,
) *LocationController {
	return &LocationController{
		locationService:  locationService,
		userService:      userService,
		eventService:     eventService,
		communityService: communityService,
		logger:           logger,
	}
}

// UpdateLocation sets the current user's location
// @Summary Update location
// @Description Resolves the supplied address or coordinates, stores the location and re-runs borough community assignment.
// @Tags location
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateLocationRequest true "Address or coordinates"
// @Success 200 {object} dto.APIResponse{data=dto.LocationUpdateResponse}
// @Failure 400 {object} dto.ErrorResponse "Missing input or unresolvable address"
// @Router /location/update [post]
func (c *LocationController) UpdateLocation(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)

	var req dto.UpdateLocationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.HandleValidationError(err)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	loc, community, err := c.locationService.UpdateUserLocation(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	user, err := c.userService.GetProfile(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp := dto.LocationUpdateResponse{
		Location: dto.FromGeocodingLocation(loc),
		User:     dto.FromUser(user),
	}
	if community != nil {
		communityResp := dto.FromCommunity(community)
		resp.Community = &communityResp
	}

	c.logger.Info().Int64("userID", userID).Msg("Location updated")
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: resp})
}

// ValidateAddress geocodes an address without storing anything
// @Summary Validate address
// @Tags location
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.GeocodeRequest true "Address to resolve"
// @Success 200 {object} dto.APIResponse{data=dto.LocationResponse}
// @Failure 400 {object} dto.ErrorResponse "Unresolvable address"
// @Router /location/validate [post]
func (c *LocationController) ValidateAddress(ctx *gin.Context) {
	var req dto.GeocodeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.HandleValidationError(err)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	loc, err := c.locationService.Geocode(ctx.Request.Context(), req.Address)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: dto.FromGeocodingLocation(loc)})
}

// Suggestions proxies a place text search
// @Summary Place suggestions
// @Tags location
// @Produce json
// @Security BearerAuth
// @Param query query string true "Free-form search text"
// @Param type query string false "Place type filter"
// @Success 200 {object} dto.APIResponse{data=[]dto.PlaceResponse}
// @Router /location/suggestions [get]
func (c *LocationController) Suggestions(ctx *gin.Context) {
	query := ctx.Query("query")
	if query == "" {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Missing query parameter")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	places, err := c.locationService.SearchPlaces(ctx.Request.Context(), query, ctx.Query("type"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: dto.FromGeocodingPlaces(places)})
}

// PlaceDetails resolves a place ID
// @Summary Place details
// @Tags location
// @Produce json
// @Security BearerAuth
// @Param placeId query string true "Provider place ID"
// @Success 200 {object} dto.APIResponse{data=dto.LocationResponse}
// @Failure 400 {object} dto.ErrorResponse "Unknown place"
// @Router /location/place-details [get]
func (c *LocationController) PlaceDetails(ctx *gin.Context) {
	placeID := ctx.Query("placeId")
	if placeID == "" {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Missing placeId parameter")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	loc, err := c.locationService.PlaceDetails(ctx.Request.Context(), placeID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: dto.FromGeocodingLocation(loc)})
}

// SearchPostcode resolves a postcode to place suggestions
// @Summary Postcode search
// @Tags location
// @Produce json
// @Security BearerAuth
// @Param postcode query string true "Postcode"
// @Success 200 {object} dto.APIResponse{data=[]dto.PlaceResponse}
// @Router /location/search-postcode [get]
func (c *LocationController) SearchPostcode(ctx *gin.Context) {
	postcode := ctx.Query("postcode")
	if postcode == "" {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Missing postcode parameter")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	places, err := c.locationService.SearchPostcode(ctx.Request.Context(), postcode)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: dto.FromGeocodingPlaces(places)})
}

// NearbyPlaces lists provider places of a type around coordinates
// @Summary Nearby places
// @Tags location
// @Produce json
// @Security BearerAuth
// @Param latitude query number true "Latitude"
// @Param longitude query number true "Longitude"
// @Param type query string false "Place type"
// @Param radius query int false "Radius in meters (default 2000)"
// @Success 200 {object} dto.APIResponse{data=[]dto.PlaceResponse}
// @Router /location/nearby-places [get]
func (c *LocationController) NearbyPlaces(ctx *gin.Context) {
	lat, err1 := strconv.ParseFloat(ctx.Query("latitude"), 64)
	lon, err2 := strconv.ParseFloat(ctx.Query("longitude"), 64)
	if err1 != nil || err2 != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Valid latitude and longitude are required")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	radius := 2000
	if raw := ctx.Query("radius"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			radius = parsed
		}
	}

	places, err := c.locationService.NearbyPlaces(ctx.Request.Context(), lat, lon, ctx.Query("type"), radius)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: dto.FromGeocodingPlaces(places)})
}

// NearbyUsers lists players near the current user
// @Summary Nearby users
// @Tags location
// @Produce json
// @Security BearerAuth
// @Param radius query number false "Radius in km (default 10)"
// @Success 200 {object} dto.APIResponse{data=dto.NearbyUsersResponse}
// @Router /location/nearby-users [get]
func (c *LocationController) NearbyUsers(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)

	radius := services.EventListingRadiusKm
	if raw := ctx.Query("radius"); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil && parsed > 0 {
			radius = parsed
		}
	}

	ranked, reason, err := c.userService.NearbyUsers(ctx.Request.Context(), userID, radius)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp := dto.NearbyUsersResponse{
		Users:  toNearbyUserResponses(ranked),
		Reason: reason,
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: resp})
}

// CommunityUsers lists the members of the user's primary community
// @Summary Community members
// @Tags location
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.CommunityUsersResponse}
// @Failure 404 {object} dto.ErrorResponse "No primary community"
// @Router /location/community-users [get]
func (c *LocationController) CommunityUsers(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)

	community, err := c.communityService.Primary(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	page, size := helpers.ParsePaginationParams(ctx, helpers.DefaultEventPageSize)
	members, total, err := c.communityService.Members(ctx.Request.Context(), community.ID, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	users := make([]dto.NearbyUserResponse, 0, len(members))
	for i := range members {
		users = append(users, toMemberResponse(&members[i]))
	}

	resp := dto.CommunityUsersResponse{
		Users:      users,
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: resp})
}

// NearbyEvents lists upcoming games near the current user
// @Summary Nearby events
// @Tags location
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.EventListResponse}
// @Router /location/nearby-events [get]
func (c *LocationController) NearbyEvents(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)
	page, size := helpers.ParsePaginationParams(ctx, helpers.DefaultEventPageSize)

	events, total, reason, err := c.eventService.ListNearby(ctx.Request.Context(), userID, services.EventListingRadiusKm, repositories.EventFilters{}, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp := dto.EventListResponse{
		Events:     toEventResponses(events),
		Pagination: helpers.NewPaginationInfo(total, page, size),
		Reason:     reason,
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: resp})
}

// CommunityEvents lists upcoming games in the user's primary community
// @Summary Community events
// @Tags location
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.EventListResponse}
// @Failure 404 {object} dto.ErrorResponse "No primary community"
// @Router /location/community-events [get]
func (c *LocationController) CommunityEvents(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)

	community, err := c.communityService.Primary(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	page, size := helpers.ParsePaginationParams(ctx, helpers.DefaultEventPageSize)
	filters := repositories.EventFilters{CommunityID: &community.ID}
	events, total, err := c.eventService.List(ctx.Request.Context(), filters, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp := dto.EventListResponse{
		Events:     toEventResponses(events),
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: resp})
}

// CommunityStatistics aggregates the user's primary community activity
// @Summary Community statistics
// @Tags location
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.CommunityStatsResponse}
// @Failure 404 {object} dto.ErrorResponse "No primary community"
// @Router /location/community-statistics [get]
func (c *LocationController) CommunityStatistics(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)

	community, err := c.communityService.Primary(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	stats, err := c.communityService.Stats(ctx.Request.Context(), community.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: stats})
}

// SearchCommunities searches communities by name or city
// @Summary Search communities
// @Tags location
// @Produce json
// @Security BearerAuth
// @Param q query string true "Search text"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.CommunityListResponse}
// @Router /location/search-communities [get]
func (c *LocationController) SearchCommunities(ctx *gin.Context) {
	search := ctx.Query("q")
	page, size := helpers.ParsePaginationParams(ctx, helpers.DefaultEventPageSize)

	communities, total, err := c.communityService.List(ctx.Request.Context(), &search, page, size)
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

// PopularCommunities lists the most joined communities
// @Summary Popular communities
// @Tags location
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum results (default 10)"
// @Success 200 {object} dto.APIResponse{data=[]dto.CommunityResponse}
// @Router /location/popular-communities [get]
func (c *LocationController) PopularCommunities(ctx *gin.Context) {
	limit := 10
	if raw := ctx.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= helpers.MaxPageSize {
			limit = parsed
		}
	}

	communities, err := c.communityService.Popular(ctx.Request.Context(), limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	out := make([]dto.CommunityResponse, 0, len(communities))
	for i := range communities {
		out = append(out, dto.FromCommunity(&communities[i]))
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: out})
}

// CommunityRecommendations suggests communities near the current user
// @Summary Community recommendations
// @Tags location
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.CommunityRecommendationsResponse}
// @Router /location/community-recommendations [get]
func (c *LocationController) CommunityRecommendations(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)

	ranked, reason, err := c.locationService.RecommendCommunities(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp := dto.CommunityRecommendationsResponse{
		Communities: toRankedCommunityResponses(ranked),
		Reason:      reason,
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: resp})
}

// Recommendations serves the location-based dashboard feed
// @Summary Dashboard recommendations
// @Description Nearby games within the dashboard radius plus suggested communities.
// @Tags location
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.DashboardRecommendationsResponse}
// @Router /location/recommendations [get]
func (c *LocationController) Recommendations(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)

	events, _, reason, err := c.eventService.ListNearby(ctx.Request.Context(), userID, services.DashboardRadiusKm, repositories.EventFilters{}, helpers.DefaultPage, helpers.DefaultEventPageSize)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp := dto.DashboardRecommendationsResponse{
		Events: toEventResponses(events),
		Reason: reason,
	}

	if reason == "" {
		ranked, _, err := c.locationService.RecommendCommunities(ctx.Request.Context(), userID)
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		resp.Communities = toRankedCommunityResponses(ranked)
	} else {
		resp.Communities = []dto.CommunityResponse{}
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: resp})
}

func toNearbyUserResponses(ranked []geo.Ranked[*models.User]) []dto.NearbyUserResponse {
	out := make([]dto.NearbyUserResponse, 0, len(ranked))
	for _, r := range ranked {
		resp := toMemberResponse(r.Item)
		if r.DistanceKm != nil {
			resp.DistanceKm = r.DistanceKm
			resp.Distance = geo.FormatDistance(*r.DistanceKm)
		}
		out = append(out, resp)
	}
	return out
}

func toMemberResponse(user *models.User) dto.NearbyUserResponse {
	resp := dto.NearbyUserResponse{
		ID:              user.ID,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		ProfilePhotoURL: user.ProfilePhotoURL,
		City:            user.City,
	}
	if user.SkillLevel != nil {
		level := int(*user.SkillLevel)
		resp.SkillLevel = &level
	}
	return resp
}

func toRankedCommunityResponses(ranked []geo.Ranked[*models.Community]) []dto.CommunityResponse {
	out := make([]dto.CommunityResponse, 0, len(ranked))
	for _, r := range ranked {
		resp := dto.FromCommunity(r.Item)
		if r.DistanceKm != nil {
			resp.DistanceKm = r.DistanceKm
			resp.Distance = geo.FormatDistance(*r.DistanceKm)
		}
		out = append(out, resp)
	}
	return out
}
