package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/learnway/member/internal/app/controllers"
	"github.com/learnway/member/internal/app/models"
	"github.com/learnway/member/internal/app/models/dto"
	"github.com/learnway/member/internal/middleware"
	"github.com/learnway/member/internal/pkg/metrics"
)

// HealthCheck reports whether a backing dependency is reachable
type HealthCheck func(ctx context.Context) error

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	memberController *controllers.MemberController,
	authMiddleware *middleware.AuthMiddleware,
	health HealthCheck,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", authController.Login)
		auth.POST("/logout", authMiddleware.JWTAuth(), authController.Logout)
	}

	members := v1.Group("/members")
	{
		members.POST("/join", memberController.Join)
		members.GET("/check-id", memberController.CheckID)
	}

	// --- Authenticated routes ---
	me := members.Group("/me")
	me.Use(authMiddleware.JWTAuth())
	{
		me.GET("", memberController.GetMe)
		me.PUT("", memberController.UpdateMe)
	}

	admin := v1.Group("/admin")
	admin.Use(authMiddleware.JWTAuth(), authMiddleware.RoleRequired(string(models.RoleAdmin)))
	{
		admin.GET("/members", memberController.ListMembers)
		admin.PATCH("/members/:id/note", memberController.UpdateNote)
	}

	v1.GET("/health", healthHandler(health))
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
}

func healthHandler(health HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		if health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := health(ctx); err != nil {
				errorDetail := dto.NewErrorDetail(dto.ErrorCodeExternalServiceError, "Service unavailable").
					WithDetails(err.Error())
				c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(errorDetail))
				return
			}
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "UP"}, ""))
	}
}
