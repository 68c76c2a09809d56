package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/learnway/member/internal/app/models/dto"
	"github.com/learnway/member/internal/pkg/apperrors"
	"github.com/learnway/member/internal/pkg/auth"
	"github.com/learnway/member/internal/pkg/session"
	"github.com/rs/zerolog"
)

// Context keys set by JWTAuth
const (
	ContextKeyMemberID = "memberID"
	ContextKeyRole     = "role"
	ContextKeyIdentity = "identity"
)

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *auth.JWTService
	identities session.IdentityStore
	logger     zerolog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService, identities session.IdentityStore, logger zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		identities: identities,
		logger:     logger,
	}
}

func abortUnauthorized(c *gin.Context, code dto.ErrorCode, details string) {
	errorDetail := dto.NewErrorDetail(code, "Authentication required").WithDetails(details)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
}

// JWTAuth validates the bearer token and loads the member identity.
// The stored identity wins over the token claims so role and profile changes apply immediately.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := auth.ExtractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Authorization header missing")
			return
		}

		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			if errors.Is(err, apperrors.ErrTokenExpired) {
				abortUnauthorized(c, dto.ErrorCodeExpiredToken, "Token has expired")
				return
			}
			abortUnauthorized(c, dto.ErrorCodeInvalidToken, "Invalid token")
			return
		}

		role := claims.Role
		identity, err := m.identities.Get(c.Request.Context(), claims.MemberID)
		switch {
		case err == nil:
			role = identity.Role
			c.Set(ContextKeyIdentity, identity)
		case errors.Is(err, session.ErrIdentityNotFound):
		default:
			m.logger.Warn().Err(err).Str("memberId", claims.MemberID).Msg("Failed to load identity, using token claims")
		}

		c.Set(ContextKeyMemberID, claims.MemberID)
		c.Set(ContextKeyRole, role)
		c.Next()
	}
}

// RoleRequired middleware to check if the member has the required role
func (m *AuthMiddleware) RoleRequired(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextKeyRole)
		if !exists {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Member role not found")
			return
		}

		if roleStr, ok := role.(string); !ok || roleStr != requiredRole {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").
				WithDetails("You don't have sufficient permissions for this operation")
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
			return
		}

		c.Next()
	}
}

// CurrentMemberID returns the login id set by JWTAuth
func CurrentMemberID(c *gin.Context) (string, bool) {
	memberID := c.GetString(ContextKeyMemberID)
	return memberID, memberID != ""
}
