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

type CreateTaskRequest struct {
	TaskName      string  `json:"taskName" binding:"required"`
	TaskPIC       string  `json:"taskPIC" binding:"required"`
	TaskBudget    float64 `json:"taskBudget" binding:"required,gt=0"`
	TaskStartDate string  `json:"taskStartDate" binding:"required,datetime=2006-01-02"`
	TaskEndDate   string  `json:"taskEndDate" binding:"required,datetime=2006-01-02"`
	OwnerID       uint    `json:"ownerId"`
}

type UpdateTaskRequest struct {
	TaskName      string  `json:"taskName"`
	TaskPIC       string  `json:"taskPIC"`
	TaskBudget    float64 `json:"taskBudget" binding:"omitempty,gt=0"`
	TaskStartDate string  `json:"taskStartDate" binding:"omitempty,datetime=2006-01-02"`
	TaskEndDate   string  `json:"taskEndDate" binding:"omitempty,datetime=2006-01-02"`
	OwnerID       uint    `json:"ownerId"`
}

func findProject(ctx *gin.Context) (models.Project, bool) {
	var project models.Project

	if err := db.DB.Where("id = ?", ctx.Param("project_id")).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return models.Project{}, false
	}

	return project, true
}

func findTask(ctx *gin.Context) (models.Task, bool) {
	var task models.Task

	if err := db.DB.Where("id = ? AND project_id = ?", ctx.Param("task_id"), ctx.Param("project_id")).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		}
		return models.Task{}, false
	}

	return task, true
}

func CreateTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body CreateTaskRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	project, ok := findProject(ctx)

	if !ok {
		return
	}

	ownerID := body.OwnerID

	if ownerID == 0 {
		ownerID = userID
	} else {
		var owner models.User
		if err := db.DB.Where("id = ?", ownerID).First(&owner).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			} else {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
			return
		}
	}

	task := models.Task{
		ProjectID:     project.ID,
		OwnerID:       ownerID,
		TaskName:      body.TaskName,
		TaskPIC:       body.TaskPIC,
		TaskBudget:    body.TaskBudget,
		TaskStartDate: body.TaskStartDate,
		TaskEndDate:   body.TaskEndDate,
	}

	if err := db.DB.Create(&task).Error; err != nil {
		log.Printf("Failed to create task: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	if err := services.RecordHistory(models.HistoryModelTask, models.HistoryActionCreate, task, userID); err != nil {
		log.Printf("Failed to record history: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record history"})
		return
	}

	ctx.JSON(http.StatusCreated, task)
}

// ListTasks returns the tasks under the named project. There is no unscoped
// task listing.
func ListTasks(ctx *gin.Context) {
	project, ok := findProject(ctx)

	if !ok {
		return
	}

	var tasks []models.Task

	if err := db.DB.Where("project_id = ?", project.ID).Find(&tasks).Error; err != nil {
		log.Printf("Failed to list tasks: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}

	ctx.JSON(http.StatusOK, tasks)
}

func GetTask(ctx *gin.Context) {
	task, ok := findTask(ctx)

	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, task)
}

func UpdateTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body UpdateTaskRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task, ok := findTask(ctx)

	if !ok {
		return
	}

	updates := make(map[string]interface{})

	if body.TaskName != "" {
		updates["task_name"] = strings.TrimSpace(body.TaskName)
	}
	if body.TaskPIC != "" {
		updates["task_pic"] = strings.TrimSpace(body.TaskPIC)
	}
	if body.TaskBudget != 0 {
		updates["task_budget"] = body.TaskBudget
	}
	if body.TaskStartDate != "" {
		updates["task_start_date"] = body.TaskStartDate
	}
	if body.TaskEndDate != "" {
		updates["task_end_date"] = body.TaskEndDate
	}
	if body.OwnerID != 0 {
		var owner models.User
		if err := db.DB.Where("id = ?", body.OwnerID).First(&owner).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			} else {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
			return
		}
		updates["owner_id"] = body.OwnerID
	}

	if len(updates) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields to update"})
		return
	}

	if err := db.DB.Model(&task).Updates(updates).Error; err != nil {
		log.Printf("Failed to update task: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	if err := db.DB.First(&task, task.ID).Error; err != nil {
		log.Printf("Failed to refresh task: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	if err := services.RecordHistory(models.HistoryModelTask, models.HistoryActionUpdate, task, userID); err != nil {
		log.Printf("Failed to record history: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record history"})
		return
	}

	ctx.JSON(http.StatusOK, task)
}

// DeleteTask hard-deletes a task together with its subtasks and file rows.
func DeleteTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	task, ok := findTask(ctx)

	if !ok {
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("task_id = ?", task.ID).Delete(&models.Subtask{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("task_id = ?", task.ID).Delete(&models.File{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&task).Error
	})

	if err != nil {
		log.Printf("Failed to delete task: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
		return
	}

	if err := services.RecordDeletion(models.HistoryModelTask, userID); err != nil {
		log.Printf("Failed to record history: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record history"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}
