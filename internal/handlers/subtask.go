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

type CreateSubtaskRequest struct {
	SubtaskName      string `json:"subtaskName" binding:"required"`
	SubtaskManPower  int    `json:"subtaskManPower" binding:"required,gt=0"`
	SubtaskStartDate string `json:"subtaskStartDate" binding:"required,datetime=2006-01-02"`
	SubtaskEndDate   string `json:"subtaskEndDate" binding:"required,datetime=2006-01-02"`
}

type UpdateSubtaskRequest struct {
	SubtaskName      string `json:"subtaskName"`
	SubtaskManPower  int    `json:"subtaskManPower" binding:"omitempty,gt=0"`
	SubtaskStartDate string `json:"subtaskStartDate" binding:"omitempty,datetime=2006-01-02"`
	SubtaskEndDate   string `json:"subtaskEndDate" binding:"omitempty,datetime=2006-01-02"`
	Completed        *bool  `json:"completed"`
}

func CreateSubtask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body CreateSubtaskRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task, ok := findTask(ctx)

	if !ok {
		return
	}

	subtask := models.Subtask{
		TaskID:           task.ID,
		SubtaskName:      body.SubtaskName,
		SubtaskManPower:  body.SubtaskManPower,
		SubtaskStartDate: body.SubtaskStartDate,
		SubtaskEndDate:   body.SubtaskEndDate,
	}

	if err := db.DB.Create(&subtask).Error; err != nil {
		log.Printf("Failed to create subtask: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subtask"})
		return
	}

	if err := services.RecordHistory(models.HistoryModelSubtask, models.HistoryActionCreate, subtask, userID); err != nil {
		log.Printf("Failed to record history: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record history"})
		return
	}

	ctx.JSON(http.StatusCreated, subtask)
}

func ListSubtasks(ctx *gin.Context) {
	task, ok := findTask(ctx)

	if !ok {
		return
	}

	var subtasks []models.Subtask

	if err := db.DB.Where("task_id = ?", task.ID).Find(&subtasks).Error; err != nil {
		log.Printf("Failed to list subtasks: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve subtasks"})
		return
	}

	ctx.JSON(http.StatusOK, subtasks)
}

func findSubtask(ctx *gin.Context) (models.Subtask, bool) {
	task, ok := findTask(ctx)

	if !ok {
		return models.Subtask{}, false
	}

	var subtask models.Subtask

	if err := db.DB.Where("id = ? AND task_id = ?", ctx.Param("subtask_id"), task.ID).First(&subtask).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Subtask not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve subtask"})
		}
		return models.Subtask{}, false
	}

	return subtask, true
}

func UpdateSubtask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body UpdateSubtaskRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	subtask, ok := findSubtask(ctx)

	if !ok {
		return
	}

	updates := make(map[string]interface{})

	if body.SubtaskName != "" {
		updates["subtask_name"] = strings.TrimSpace(body.SubtaskName)
	}
	if body.SubtaskManPower != 0 {
		updates["subtask_man_power"] = body.SubtaskManPower
	}
	if body.SubtaskStartDate != "" {
		updates["subtask_start_date"] = body.SubtaskStartDate
	}
	if body.SubtaskEndDate != "" {
		updates["subtask_end_date"] = body.SubtaskEndDate
	}
	if body.Completed != nil {
		updates["completed"] = *body.Completed
	}

	if len(updates) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields to update"})
		return
	}

	if err := db.DB.Model(&subtask).Updates(updates).Error; err != nil {
		log.Printf("Failed to update subtask: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update subtask"})
		return
	}

	if err := db.DB.First(&subtask, subtask.ID).Error; err != nil {
		log.Printf("Failed to refresh subtask: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update subtask"})
		return
	}

	if err := services.RecordHistory(models.HistoryModelSubtask, models.HistoryActionUpdate, subtask, userID); err != nil {
		log.Printf("Failed to record history: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record history"})
		return
	}

	ctx.JSON(http.StatusOK, subtask)
}

func DeleteSubtask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	subtask, ok := findSubtask(ctx)

	if !ok {
		return
	}

	if err := db.DB.Unscoped().Delete(&subtask).Error; err != nil {
		log.Printf("Failed to delete subtask: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete subtask"})
		return
	}

	if err := services.RecordDeletion(models.HistoryModelSubtask, userID); err != nil {
		log.Printf("Failed to record history: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record history"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Subtask deleted successfully"})
}
