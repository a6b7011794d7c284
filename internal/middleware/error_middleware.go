package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kickabout/kickabout/internal/app/models/dto"
	"github.com/kickabout/kickabout/internal/pkg/apperrors"
	"github.com/kickabout/kickabout/internal/pkg/logger"
)

// HandleAPIError maps application errors to HTTP responses. Controllers
// call this with any error bubbling up from the service layer.
func HandleAPIError(c *gin.Context, err error) {
	status, detail := classifyError(err)

	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled API error")
	}

	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

func classifyError(err error) (int, *dto.ErrorDetail) {
	var customErr *apperrors.CustomError
	message := ""
	if errors.As(err, &customErr) {
		message = customErr.Message
	}

	switch {
	case apperrors.Is(err, apperrors.ErrUserNotFound,
		apperrors.ErrEventNotFound,
		apperrors.ErrCommunityNotFound,
		apperrors.ErrDiscussionNotFound,
		apperrors.ErrGameTypeNotFound,
		apperrors.ErrNoPrimaryCommunity,
		apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, messageOr(message, err.Error()))

	case apperrors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Invalid email or password")

	case apperrors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token has expired")

	case apperrors.Is(err, apperrors.ErrTokenInvalid,
		apperrors.ErrTokenNotFound,
		apperrors.ErrTokenRevoked,
		apperrors.ErrInvalidFormat):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")

	case apperrors.Is(err, apperrors.ErrAccountDisabled):
		return http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "This account is disabled")

	case apperrors.Is(err, apperrors.ErrEmailNotVerified):
		return http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeEmailNotVerified, "Email not verified")

	case apperrors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeUnauthorized, messageOr(message, "Permission denied"))

	case apperrors.Is(err, apperrors.ErrEmailAlreadyExists):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, "An account with this email already exists")

	case apperrors.Is(err, apperrors.ErrAlreadyJoined):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeAlreadyJoined, "You are already participating in this game")

	case apperrors.Is(err, apperrors.ErrEventFull):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeEventFull, "This game is already full")

	case apperrors.Is(err, apperrors.ErrNotParticipating):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeNotParticipating, "You are not participating in this game")

	case apperrors.Is(err, apperrors.ErrAlreadyLiked, apperrors.ErrNotLiked):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeResourceInvalid, messageOr(message, err.Error()))

	case apperrors.Is(err, apperrors.ErrNoLocation):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeNoLocation, "Set your location first")

	case apperrors.Is(err, apperrors.ErrGeocodingFailed):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeGeocodingFailed, "Unable to resolve that address")

	case apperrors.Is(err, apperrors.ErrInvalidEmailToken):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid or expired verification token")

	case apperrors.Is(err, apperrors.ErrEmailAlreadyVerified):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeResourceInvalid, "Email is already verified")

	case apperrors.Is(err, apperrors.ErrConflict, apperrors.ErrResourceAlreadyExists):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, messageOr(message, err.Error()))

	case apperrors.Is(err, apperrors.ErrValidationFailed):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, messageOr(message, "Validation failed"))

	case apperrors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeResourceInvalid, messageOr(message, "Bad request"))

	default:
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "An internal server error occurred")
	}
}

func messageOr(message, fallback string) string {
	if message != "" {
		return message
	}
	return fallback
}
