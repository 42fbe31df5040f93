package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/taskbridge/taskbridge/internal/handlers"
	"github.com/taskbridge/taskbridge/internal/middleware"
	"github.com/taskbridge/taskbridge/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		users := api.Group("/users")
		{
			users.POST("/register", handlers.Register)
			users.POST("/verify", handlers.VerifyOTP)
			users.POST("/login", handlers.Login)

			authed := users.Group("", middleware.AuthMiddleware())
			{
				authed.GET("", middleware.RequireAdmin(), handlers.ListUsers)
				authed.GET("/:id", middleware.RequireSelfOrAdmin(), handlers.GetUser)
				authed.PUT("/:id", middleware.RequireSelfOrAdmin(), handlers.UpdateUser)
				authed.DELETE("/:id", middleware.RequireSelfOrAdmin(), handlers.DeleteUser)
				authed.PATCH("/:id/role", middleware.RequireAdmin(), handlers.UpdateUserRole)
			}
		}

		projects := api.Group("/projects", middleware.AuthMiddleware(), middleware.RequireProjectAccess())
		{
			projects.POST("/create", handlers.CreateProject)
			projects.GET("", handlers.ListProjects)
			projects.GET("/:project_id", handlers.GetProject)
			projects.PUT("/:project_id", handlers.UpdateProject)
			projects.DELETE("/:project_id", handlers.DeleteProject)
			projects.POST("/:project_id/invite", handlers.InviteUser)

			// Task endpoints
			projects.POST("/:project_id/tasks/create", handlers.CreateTask)
			projects.GET("/:project_id/tasks", handlers.ListTasks)
			projects.GET("/:project_id/tasks/:task_id", handlers.GetTask)
			projects.PUT("/:project_id/tasks/:task_id", middleware.RequireTaskOwner(), handlers.UpdateTask)
			projects.DELETE("/:project_id/tasks/:task_id", middleware.RequireTaskOwner(), handlers.DeleteTask)

			// Subtask endpoints
			projects.POST("/:project_id/tasks/:task_id/subtasks/create", handlers.CreateSubtask)
			projects.GET("/:project_id/tasks/:task_id/subtasks", handlers.ListSubtasks)
			projects.PUT("/:project_id/tasks/:task_id/subtasks/:subtask_id", handlers.UpdateSubtask)
			projects.DELETE("/:project_id/tasks/:task_id/subtasks/:subtask_id", handlers.DeleteSubtask)

			// File endpoints
			projects.POST("/:project_id/tasks/:task_id/upload", middleware.RequireTaskOwner(), handlers.UploadFile)
			projects.GET("/:project_id/tasks/:task_id/files", handlers.ListFiles)
			projects.GET("/:project_id/tasks/:task_id/files/:file_id/download", handlers.DownloadFile)
		}
	}

	return r
}
