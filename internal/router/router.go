package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/issuedesk-dev/issuedesk/internal/handlers"
	"github.com/issuedesk-dev/issuedesk/internal/middleware"
	"github.com/issuedesk-dev/issuedesk/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", handlers.HealthCheck)

	r.POST("/signup", handlers.Signup)
	r.POST("/login", handlers.Login)
	r.POST("/refresh", handlers.Refresh)
	r.POST("/verify", handlers.Verify)

	r.GET("/ws/projects/:project_id", middleware.AuthMiddleware(), handlers.ProjectEvents)

	projects := r.Group("/projects", middleware.AuthMiddleware())
	{
		projects.GET("", handlers.ListProjects)
		projects.POST("", handlers.CreateProject)

		projects.GET("/:project_id", handlers.GetProject)
		projects.PUT("/:project_id", handlers.UpdateProject)
		projects.DELETE("/:project_id", handlers.DeleteProject)
		projects.PATCH("/:project_id", handlers.MethodNotAllowed)

		// Contributor management, owner only. Memberships have no detail
		// representation, so everything but DELETE answers 405.
		projects.GET("/:project_id/users", handlers.ListContributors)
		projects.POST("/:project_id/users", handlers.AddContributor)
		projects.DELETE("/:project_id/users/:contributor_id", handlers.RemoveContributor)
		projects.GET("/:project_id/users/:contributor_id", handlers.MethodNotAllowed)
		projects.PUT("/:project_id/users/:contributor_id", handlers.MethodNotAllowed)
		projects.PATCH("/:project_id/users/:contributor_id", handlers.MethodNotAllowed)

		// Issues are retrieved through the list, never individually.
		projects.GET("/:project_id/issues", handlers.ListIssues)
		projects.POST("/:project_id/issues", handlers.CreateIssue)
		projects.PUT("/:project_id/issues/:issue_id", handlers.UpdateIssue)
		projects.DELETE("/:project_id/issues/:issue_id", handlers.DeleteIssue)
		projects.GET("/:project_id/issues/:issue_id", handlers.MethodNotAllowed)
		projects.PATCH("/:project_id/issues/:issue_id", handlers.MethodNotAllowed)

		projects.GET("/:project_id/issues/:issue_id/comments", handlers.ListComments)
		projects.POST("/:project_id/issues/:issue_id/comments", handlers.CreateComment)
		projects.GET("/:project_id/issues/:issue_id/comments/:comment_id", handlers.GetComment)
		projects.PUT("/:project_id/issues/:issue_id/comments/:comment_id", handlers.UpdateComment)
		projects.DELETE("/:project_id/issues/:issue_id/comments/:comment_id", handlers.DeleteComment)
		projects.PATCH("/:project_id/issues/:issue_id/comments/:comment_id", handlers.MethodNotAllowed)

		projects.GET("/:project_id/activity", handlers.ListActivity)

		projects.GET("/:project_id/notifications", handlers.ListNotificationRules)
		projects.POST("/:project_id/notifications", handlers.CreateNotificationRule)
		projects.DELETE("/:project_id/notifications/:rule_id", handlers.DeleteNotificationRule)
	}

	return r
}
