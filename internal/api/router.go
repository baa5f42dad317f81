package api

import (
	"net/http"

	"github.com/enterprise-pm/enterprise-project-management/internal/auth"
	"github.com/enterprise-pm/enterprise-project-management/internal/database"
	"github.com/enterprise-pm/enterprise-project-management/internal/models"
	"github.com/enterprise-pm/enterprise-project-management/internal/service"
	"github.com/enterprise-pm/enterprise-project-management/internal/storage"
	pkgauth "github.com/enterprise-pm/enterprise-project-management/pkg/auth"
	"github.com/enterprise-pm/enterprise-project-management/pkg/config"
	"github.com/enterprise-pm/enterprise-project-management/pkg/identity"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRouter wires the full API surface. Mutating project and task routes
// are gated to admins and project managers; task updates stay open to every
// role because team members may move their own tasks.
func SetupRouter(
	cfg *config.Config,
	db *database.Database,
	fileStorage *storage.FileStorage,
	jwtManager *pkgauth.JWTManager,
	provider *identity.Client,
	notifier *service.Notifier,
) *gin.Engine {
	router := gin.Default()

	allowed := map[string]bool{}
	allowAll := false
	for _, origin := range cfg.CORS.Origins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = true
	}
	router.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return allowAll || allowed[origin]
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Session-ID"},
		AllowCredentials: true,
	}))

	authHandler := NewAuthHandler(db, jwtManager, provider)
	userHandler := NewUserHandler(db, fileStorage, notifier)
	projectHandler := NewProjectHandler(db, notifier)
	taskHandler := NewTaskHandler(db, notifier)
	chatHandler := NewChatHandler(db)
	notificationHandler := NewNotificationHandler(db)
	dashboardHandler := NewDashboardHandler(db)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	router.Static("/api/uploads", fileStorage.BasePath())

	manageOnly := auth.RequireRoles(models.UserRoleAdmin, models.UserRoleProjectManager)
	adminOnly := auth.RequireRoles(models.UserRoleAdmin)

	api := router.Group("/api")
	{
		api.GET("", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "Enterprise PM System API", "status": "running"})
		})

		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/session", authHandler.ProcessSession)
		api.POST("/auth/logout", authHandler.Logout)
	}

	protected := api.Group("", auth.Authenticate(db, jwtManager))
	{
		protected.GET("/auth/me", authHandler.Me)

		protected.GET("/users", userHandler.List)
		protected.GET("/users/:user_id", userHandler.Get)
		protected.PUT("/users/:user_id", userHandler.Update)
		protected.DELETE("/users/:user_id", adminOnly, userHandler.Delete)
		protected.POST("/users/comments", userHandler.CreateComment)
		protected.GET("/users/comments/:entity_type/:entity_id", userHandler.ListComments)
		protected.POST("/users/files/upload", userHandler.UploadFile)
		protected.GET("/users/files/:entity_type/:entity_id", userHandler.ListFiles)

		protected.GET("/projects", projectHandler.List)
		protected.POST("/projects", manageOnly, projectHandler.Create)
		protected.GET("/projects/:project_id", projectHandler.Get)
		protected.PUT("/projects/:project_id", manageOnly, projectHandler.Update)
		protected.DELETE("/projects/:project_id", manageOnly, projectHandler.Delete)
		protected.GET("/projects/:project_id/milestones", projectHandler.ListMilestones)
		protected.POST("/projects/:project_id/milestones", manageOnly, projectHandler.CreateMilestone)
		protected.PUT("/projects/:project_id/milestones/:milestone_id", manageOnly, projectHandler.ToggleMilestone)

		protected.GET("/tasks", taskHandler.List)
		protected.POST("/tasks", manageOnly, taskHandler.Create)
		protected.GET("/tasks/:task_id", taskHandler.Get)
		protected.PUT("/tasks/:task_id", taskHandler.Update)
		protected.DELETE("/tasks/:task_id", manageOnly, taskHandler.Delete)

		protected.GET("/chat/channels", chatHandler.ListChannels)
		protected.GET("/chat/messages/:channel_id", chatHandler.ListMessages)
		protected.POST("/chat/messages", chatHandler.SendMessage)
		protected.POST("/chat/dm/:target_user_id", chatHandler.GetOrCreateDM)

		protected.GET("/notifications", notificationHandler.List)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:notification_id/read", notificationHandler.MarkRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllRead)

		protected.GET("/dashboard/stats", dashboardHandler.Stats)
		protected.GET("/dashboard/charts", dashboardHandler.Charts)
		protected.GET("/dashboard/activity", dashboardHandler.Activity)
	}

	return router
}
