package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/taskbridge/taskbridge/db"
	"github.com/taskbridge/taskbridge/internal/models"
	"github.com/taskbridge/taskbridge/internal/services"
	"github.com/taskbridge/taskbridge/internal/utils"
	"gorm.io/gorm"
)

type CreateProjectRequest struct {
	ProjectName string  `json:"projectName" binding:"required"`
	PIC         string  `json:"PIC" binding:"required"`
	Budget      float64 `json:"budget" binding:"required,gt=0"`
	StartDate   string  `json:"startDate" binding:"required,datetime=2006-01-02"`
	EndDate     string  `json:"endDate" binding:"required,datetime=2006-01-02"`
}

type UpdateProjectRequest struct {
	ProjectName string  `json:"projectName"`
	PIC         string  `json:"PIC"`
	Budget      float64 `json:"budget" binding:"omitempty,gt=0"`
	StartDate   string  `json:"startDate" binding:"omitempty,datetime=2006-01-02"`
	EndDate     string  `json:"endDate" binding:"omitempty,datetime=2006-01-02"`
}

type InviteUserRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func CreateProject(ctx *gin.Context) {
	var body CreateProjectRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	project := models.Project{
		ProjectName: body.ProjectName,
		PIC:         body.PIC,
		Budget:      body.Budget,
		StartDate:   body.StartDate,
		EndDate:     body.EndDate,
	}

	if err := db.DB.Create(&project).Error; err != nil {
		log.Printf("Failed to create project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	// The creator gets a grant immediately, otherwise a non-admin could
	// create a project they cannot see.
	grant := models.UserProject{
		UserID:      userID,
		ProjectID:   project.ID,
		AccessLevel: models.AccessLevelAdmin,
	}

	if err := db.DB.Create(&grant).Error; err != nil {
		log.Printf("Failed to create project grant: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	if err := services.RecordHistory(models.HistoryModelProject, models.HistoryActionCreate, project, userID); err != nil {
		log.Printf("Failed to record history: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record history"})
		return
	}

	ctx.JSON(http.StatusCreated, project)
}

// ListProjects returns the full set for admins and exactly the granted
// projects for everyone else. Listing filters, it never denies.
func ListProjects(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var projects []models.Project

	if currentUser.Role == models.RoleAdmin {
		if err := db.DB.Find(&projects).Error; err != nil {
			log.Printf("Failed to list projects: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve projects"})
			return
		}
		ctx.JSON(http.StatusOK, projects)
		return
	}

	var grants []models.UserProject

	if err := db.DB.Where("user_id = ?", currentUser.ID).Find(&grants).Error; err != nil {
		log.Printf("Failed to load project grants: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve projects"})
		return
	}

	projectIDs := make([]uint, 0, len(grants))
	for _, grant := range grants {
		projectIDs = append(projectIDs, grant.ProjectID)
	}

	if len(projectIDs) == 0 {
		ctx.JSON(http.StatusOK, []models.Project{})
		return
	}

	if err := db.DB.Where("id IN ?", projectIDs).Find(&projects).Error; err != nil {
		log.Printf("Failed to list projects: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve projects"})
		return
	}

	ctx.JSON(http.StatusOK, projects)
}

func GetProject(ctx *gin.Context) {
	var project models.Project

	if err := db.DB.Where("id = ?", ctx.Param("project_id")).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	ctx.JSON(http.StatusOK, project)
}

// UpdateProject merges the provided fields onto the stored record. Absent or
// zero-valued fields are left unchanged.
func UpdateProject(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body UpdateProjectRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var project models.Project

	if err := db.DB.Where("id = ?", ctx.Param("project_id")).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	updates := make(map[string]interface{})

	if body.ProjectName != "" {
		updates["project_name"] = strings.TrimSpace(body.ProjectName)
	}
	if body.PIC != "" {
		updates["pic"] = strings.TrimSpace(body.PIC)
	}
	if body.Budget != 0 {
		updates["budget"] = body.Budget
	}
	if body.StartDate != "" {
		updates["start_date"] = body.StartDate
	}
	if body.EndDate != "" {
		updates["end_date"] = body.EndDate
	}

	if len(updates) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields to update"})
		return
	}

	if err := db.DB.Model(&project).Updates(updates).Error; err != nil {
		log.Printf("Failed to update project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}

	if err := db.DB.First(&project, project.ID).Error; err != nil {
		log.Printf("Failed to refresh project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}

	if err := services.RecordHistory(models.HistoryModelProject, models.HistoryActionUpdate, project, userID); err != nil {
		log.Printf("Failed to record history: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record history"})
		return
	}

	ctx.JSON(http.StatusOK, project)
}

func DeleteProject(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var project models.Project

	if err := db.DB.Where("id = ?", ctx.Param("project_id")).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	// Hard delete, cascading through the whole hierarchy: a removed project
	// takes its tasks, their subtasks and file rows, and its grants with it.
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		var taskIDs []uint
		if err := tx.Model(&models.Task{}).Where("project_id = ?", project.ID).Pluck("id", &taskIDs).Error; err != nil {
			return err
		}
		if len(taskIDs) > 0 {
			if err := tx.Unscoped().Where("task_id IN ?", taskIDs).Delete(&models.Subtask{}).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Where("task_id IN ?", taskIDs).Delete(&models.File{}).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Where("project_id = ?", project.ID).Delete(&models.Task{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Unscoped().Where("project_id = ?", project.ID).Delete(&models.UserProject{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&project).Error
	})

	if err != nil {
		log.Printf("Failed to delete project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		return
	}

	if err := services.RecordDeletion(models.HistoryModelProject, userID); err != nil {
		log.Printf("Failed to record history: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record history"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}

// InviteUser grants an existing user access to the project with the "user"
// access level.
func InviteUser(ctx *gin.Context) {
	var body InviteUserRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var project models.Project

	if err := db.DB.Where("id = ?", ctx.Param("project_id")).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	var invitedUser models.User

	email := strings.ToLower(strings.TrimSpace(body.Email))

	if err := db.DB.Where("email = ?", email).First(&invitedUser).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	var existingGrant models.UserProject

	err := db.DB.Where("user_id = ? AND project_id = ?", invitedUser.ID, project.ID).First(&existingGrant).Error

	if err == nil {
		ctx.JSON(http.StatusConflict, gin.H{"error": "User already has access to this project"})
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Database error when checking existing grant: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	grant := models.UserProject{
		UserID:      invitedUser.ID,
		ProjectID:   project.ID,
		AccessLevel: models.AccessLevelUser,
	}

	if err := db.DB.Create(&grant).Error; err != nil {
		log.Printf("Failed to create grant: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to invite user"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"userProject": grant})
}
