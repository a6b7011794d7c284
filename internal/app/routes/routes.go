package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/kickabout/kickabout/internal/app/controllers"
	"github.com/kickabout/kickabout/internal/app/models/dto"
	"github.com/kickabout/kickabout/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	userController *controllers.UserController,
	locationController *controllers.LocationController,
	communityController *controllers.CommunityController,
	eventController *controllers.EventController,
	discussionController *controllers.DiscussionController,
	authMiddleware *middleware.AuthMiddleware,
) {
	v1 := router.Group("/api/v1")

	// --- Public auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.RefreshToken)
		auth.POST("/logout", authController.Logout)
		auth.GET("/verify-email", authController.VerifyEmail)
		auth.POST("/verify-email", authController.VerifyEmail)
		auth.POST("/resend-verification", authController.ResendVerification)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	// Profile stays reachable before email verification so users can see
	// their own account state.
	profile := authenticated.Group("/profile")
	{
		profile.GET("", userController.GetProfile)
		profile.PUT("", userController.UpdateProfile)
		profile.GET("/game-interests", userController.GetGameInterests)
		profile.PUT("/game-interests", userController.SetGameInterest)
		profile.DELETE("/game-interests/:gameTypeId", userController.RemoveGameInterest)
	}

	verified := authenticated.Group("")
	verified.Use(authMiddleware.EmailVerificationRequired())
	{
		location := verified.Group("/location")
		{
			location.POST("/update", locationController.UpdateLocation)
			location.POST("/validate", locationController.ValidateAddress)
			location.GET("/suggestions", locationController.Suggestions)
			location.GET("/place-details", locationController.PlaceDetails)
			location.GET("/search-postcode", locationController.SearchPostcode)
			location.GET("/nearby-places", locationController.NearbyPlaces)
			location.GET("/nearby-users", locationController.NearbyUsers)
			location.GET("/community-users", locationController.CommunityUsers)
			location.GET("/nearby-events", locationController.NearbyEvents)
			location.GET("/community-events", locationController.CommunityEvents)
			location.GET("/community-statistics", locationController.CommunityStatistics)
			location.GET("/search-communities", locationController.SearchCommunities)
			location.GET("/popular-communities", locationController.PopularCommunities)
			location.GET("/community-recommendations", locationController.CommunityRecommendations)
			location.GET("/recommendations", locationController.Recommendations)
		}

		communities := verified.Group("/communities")
		{
			communities.GET("", communityController.List)
			communities.GET("/my", communityController.MyCommunities)
			communities.GET("/primary", communityController.Primary)
			communities.GET("/:id", communityController.Get)
			communities.GET("/:id/stats", communityController.Stats)
			communities.POST("/:id/join", communityController.Join)
			communities.DELETE("/:id/leave", communityController.Leave)
			communities.PUT("/:id/primary", communityController.SetPrimary)
		}

		events := verified.Group("/events")
		{
			events.GET("", eventController.List)
			events.POST("", eventController.Create)
			events.GET("/stats", userController.GetSportStats)
			events.GET("/:id", eventController.Get)
			events.PUT("/:id", eventController.Update)
			events.DELETE("/:id", eventController.Cancel)
			events.POST("/:id/join", eventController.Join)
			events.DELETE("/:id/leave", eventController.Leave)
			events.GET("/:id/participants", eventController.Participants)
		}

		discussions := verified.Group("/discussions")
		{
			discussions.GET("", discussionController.List)
			discussions.POST("", discussionController.Create)
			discussions.GET("/trending/topics", discussionController.Trending)
			discussions.GET("/:id", discussionController.Get)
			discussions.PUT("/:id", discussionController.Update)
			discussions.DELETE("/:id", discussionController.Delete)
			discussions.GET("/:id/comments", discussionController.ListComments)
			discussions.POST("/:id/comments", discussionController.AddComment)
			discussions.DELETE("/:id/comments/:commentId", discussionController.DeleteComment)
			discussions.POST("/:id/likes", discussionController.ToggleLike)
			discussions.DELETE("/:id/likes", discussionController.ToggleLike)
		}

		verified.GET("/game-types", eventController.GameTypes)
		verified.GET("/sport-stats", userController.GetSportStats)
	}

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(200, dto.APIResponse{
			Data: gin.H{"status": "ok"},
		})
	})
}
