package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/taskbridge/taskbridge/db"
	"github.com/taskbridge/taskbridge/internal/auth"
	"github.com/taskbridge/taskbridge/internal/models"
	"github.com/taskbridge/taskbridge/internal/router"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testPassword = "password123"

// setupTest wires a fresh in-memory database and the real router.
func setupTest(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "test-secret")

	if err := auth.InitJWTSecret(); err != nil {
		t.Fatalf("Failed to init JWT secret: %v", err)
	}

	os.Setenv("UPLOADS_DIR", t.TempDir())

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))

	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	db.DB = gdb

	if err := db.MigrateDatabase(); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return router.NewRouter()
}

func createTestUser(t *testing.T, fullName, email, role string) models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := models.User{
		FullName: fullName,
		Email:    email,
		Hash:     string(hash),
		Role:     role,
	}

	if err := db.DB.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	return user
}

func tokenFor(t *testing.T, user models.User) string {
	t.Helper()

	token, err := auth.GenerateJWT(user.ID, user.Role)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	return token
}

func createTestProject(t *testing.T, name string) models.Project {
	t.Helper()

	project := models.Project{
		ProjectName: name,
		PIC:         "Dana",
		Budget:      1000,
		StartDate:   "2024-01-01",
		EndDate:     "2024-06-30",
	}

	if err := db.DB.Create(&project).Error; err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}

	return project
}

func grantAccess(t *testing.T, user models.User, project models.Project, level string) {
	t.Helper()

	grant := models.UserProject{
		UserID:      user.ID,
		ProjectID:   project.ID,
		AccessLevel: level,
	}

	if err := db.DB.Create(&grant).Error; err != nil {
		t.Fatalf("Failed to create grant: %v", err)
	}
}

func createTestTask(t *testing.T, project models.Project, owner models.User, name string) models.Task {
	t.Helper()

	task := models.Task{
		ProjectID:     project.ID,
		OwnerID:       owner.ID,
		TaskName:      name,
		TaskPIC:       owner.FullName,
		TaskBudget:    200,
		TaskStartDate: "2024-02-01",
		TaskEndDate:   "2024-03-01",
	}

	if err := db.DB.Create(&task).Error; err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	return task
}

func performRequest(t *testing.T, r http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewBuffer(payload)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func countHistory(t *testing.T, model models.HistoryModel, action models.HistoryAction) int64 {
	t.Helper()

	var count int64

	if err := db.DB.Model(&models.History{}).Where("model = ? AND action = ?", model, action).Count(&count).Error; err != nil {
		t.Fatalf("Failed to count history: %v", err)
	}

	return count
}
