package api

import (
	"fernnog/reading-plan/internal/domain"
	"fernnog/reading-plan/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	planService service.ReadingPlanService,
	backupService service.BackupService,
) {
	authHandler := NewAuthHandler(authService)
	planHandler := NewPlanHandler(planService, backupService)
	backupHandler := NewBackupHandler(backupService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		apiV1.GET("/books", ListBooks)
		apiV1.POST("/books/parse", ParseChapters)
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": role})
		})

		planGroup := protected.Group("/plans")
		{
			planGroup.POST("", planHandler.CreatePlan)
			planGroup.GET("", planHandler.ListPlans)
			planGroup.GET("/:planId", planHandler.GetPlan)
			planGroup.DELETE("/:planId", planHandler.DeletePlan)

			planGroup.POST("/:planId/read", planHandler.MarkRead)
			planGroup.POST("/:planId/recalculate", planHandler.Recalculate)
			planGroup.GET("/:planId/pace-preview", planHandler.PacePreview)
			planGroup.GET("/:planId/schedule", planHandler.GetSchedule)
			planGroup.GET("/:planId/progress", planHandler.GetProgress)

			planGroup.POST("/:planId/backups", backupHandler.CreateBackup)
			planGroup.GET("/:planId/backups", backupHandler.ListBackups)
		}

		backupGroup := protected.Group("/backups")
		{
			backupGroup.GET("/:backupId", backupHandler.GetBackup)
			backupGroup.DELETE("/:backupId", backupHandler.DeleteBackup)
		}

		// Admins may look at anyone's plan list.
		adminGroup := protected.Group("/admin")
		adminGroup.Use(RoleMiddleware(domain.RoleAdmin))
		{
			adminGroup.GET("/users/:userId/plans", planHandler.ListPlansForUser)
		}
	}
}
