package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskbridge/taskbridge/db"
	"github.com/taskbridge/taskbridge/internal/models"
	"gorm.io/gorm"
)

// RequireAdmin only lets admins through.
func RequireAdmin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := currentUser(ctx)

		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		if user.Role != models.RoleAdmin {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}

		ctx.Next()
	}
}

// RequireSelfOrAdmin lets a caller act on their own user record only.
// Admins bypass the check.
func RequireSelfOrAdmin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := currentUser(ctx)

		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		if user.Role == models.RoleAdmin {
			ctx.Next()
			return
		}

		if ctx.Param("id") != strconv.FormatUint(uint64(user.ID), 10) {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}

		ctx.Next()
	}
}

// RequireProjectAccess checks the caller holds a grant for the project named
// in the route. Admins bypass. Routes without a project id pass through:
// list endpoints filter by the caller's grants instead of denying.
func RequireProjectAccess() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := currentUser(ctx)

		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		if user.Role == models.RoleAdmin {
			ctx.Next()
			return
		}

		projectID := ctx.Param("project_id")

		if projectID == "" {
			ctx.Next()
			return
		}

		var grant models.UserProject

		if err := db.DB.Where("user_id = ? AND project_id = ?", user.ID, projectID).First(&grant).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden - You do not have access to this project"})
			} else {
				ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
			return
		}

		ctx.Next()
	}
}

// RequireTaskOwner checks the caller owns the task named in the route.
// Ownership is the owner_id foreign key, never a display-name comparison.
// Admins bypass; routes without a task id pass through.
func RequireTaskOwner() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := currentUser(ctx)

		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		if user.Role == models.RoleAdmin {
			ctx.Next()
			return
		}

		taskID := ctx.Param("task_id")

		if taskID == "" {
			ctx.Next()
			return
		}

		var task models.Task

		if err := db.DB.Where("id = ?", taskID).First(&task).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			} else {
				ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
			return
		}

		if task.OwnerID != user.ID {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden - You do not have access to this task"})
			return
		}

		ctx.Next()
	}
}
