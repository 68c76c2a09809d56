package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/learnway/member/internal/app/models/dto"
	"github.com/learnway/member/internal/pkg/apperrors"
	"github.com/learnway/member/internal/pkg/logger"
)

// HandleAPIError maps service errors to a status code and ErrorResponse
func HandleAPIError(c *gin.Context, err error) {
	status, detail := classify(err)
	if field, ok := apperrors.FieldOf(err); ok {
		detail = detail.WithField(field)
	}
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

func classify(err error) (int, *dto.ErrorDetail) {
	var fieldErr *apperrors.FieldError
	message := func(fallback string) string {
		if errors.As(err, &fieldErr) && fieldErr.Message != "" {
			return fieldErr.Message
		}
		return fallback
	}

	switch {
	case errors.Is(err, apperrors.ErrDuplicateIdentity):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, message("Member id already in use"))
	case errors.Is(err, apperrors.ErrTargetUniRankTaken):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, "Target university rank already set")
	case errors.Is(err, apperrors.ErrPasswordMismatch):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodePasswordMismatch, message("Password confirmation does not match"))
	case errors.Is(err, apperrors.ErrInvalidFieldValue):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeInvalidFieldValue, message("Invalid field value"))
	case errors.Is(err, apperrors.ErrMemberNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Member not found")
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Resource not found")
	case errors.Is(err, apperrors.ErrFileIO):
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeFileStorage, "Failed to store image").
			WithSeverity(dto.ErrorSeverityCritical)
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeForbidden, "Permission denied")
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenInvalid), errors.Is(err, apperrors.ErrInvalidFormat):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")
	case errors.Is(err, apperrors.ErrValidationFailed), errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Validation failed")
	default:
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	}
}
