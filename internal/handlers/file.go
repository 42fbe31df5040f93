package handlers

import (
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/taskbridge/taskbridge/db"
	"github.com/taskbridge/taskbridge/internal/models"
	"github.com/taskbridge/taskbridge/internal/services"
	"github.com/taskbridge/taskbridge/internal/utils"
	"gorm.io/gorm"
)

func uploadsDir() string {
	if dir := os.Getenv("UPLOADS_DIR"); dir != "" {
		return dir
	}
	return "./uploads"
}

// UploadFile stores a single multipart file for a task. The stored path is
// server-controlled; the original filename survives only as metadata.
func UploadFile(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	task, ok := findTask(ctx)

	if !ok {
		return
	}

	fileHeader, err := ctx.FormFile("file")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}

	dir := uploadsDir()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("Failed to create uploads dir: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	storedName := uuid.New().String() + filepath.Ext(fileHeader.Filename)
	storedPath := filepath.Join(dir, storedName)

	if err := ctx.SaveUploadedFile(fileHeader, storedPath); err != nil {
		log.Printf("Failed to save uploaded file: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	file := models.File{
		TaskID: task.ID,
		Name:   filepath.Base(fileHeader.Filename),
		Path:   storedPath,
	}

	if err := db.DB.Create(&file).Error; err != nil {
		log.Printf("Failed to create file record: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	if err := services.RecordHistory(models.HistoryModelFile, models.HistoryActionCreate, file, userID); err != nil {
		log.Printf("Failed to record history: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record history"})
		return
	}

	ctx.JSON(http.StatusCreated, file)
}

func ListFiles(ctx *gin.Context) {
	task, ok := findTask(ctx)

	if !ok {
		return
	}

	var files []models.File

	if err := db.DB.Where("task_id = ?", task.ID).Find(&files).Error; err != nil {
		log.Printf("Failed to list files: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve files"})
		return
	}

	ctx.JSON(http.StatusOK, files)
}

// DownloadFile streams the stored bytes as an attachment. The bytes must
// still exist on disk: a database row alone is not enough.
func DownloadFile(ctx *gin.Context) {
	task, ok := findTask(ctx)

	if !ok {
		return
	}

	var file models.File

	if err := db.DB.Where("id = ? AND task_id = ?", ctx.Param("file_id"), task.ID).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve file"})
		}
		return
	}

	if _, err := os.Stat(file.Path); err != nil {
		if os.IsNotExist(err) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		} else {
			log.Printf("Failed to stat stored file: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve file"})
		}
		return
	}

	ctx.FileAttachment(file.Path, file.Name)
}
