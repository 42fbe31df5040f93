package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/taskbridge/taskbridge/db"
	"github.com/taskbridge/taskbridge/internal/models"
)

func uploadFile(t *testing.T, r http.Handler, path, token, filename, content string) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("Failed to write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest("POST", path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestUploadListDownload(t *testing.T) {
	r := setupTest(t)
	owner := createTestUser(t, "Alice Tan", "alice@example.com", models.RoleUser)
	project := createTestProject(t, "Apollo")
	grantAccess(t, owner, project, models.AccessLevelUser)
	task := createTestTask(t, project, owner, "Design")
	token := tokenFor(t, owner)
	base := taskPath(project, task)

	w := uploadFile(t, r, base+"/upload", token, "brief.pdf", "attachment-bytes")
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201 from upload, got %d: %s", w.Code, w.Body.String())
	}

	var file models.File
	if err := json.Unmarshal(w.Body.Bytes(), &file); err != nil {
		t.Fatalf("Failed to decode file: %v", err)
	}

	if file.Name != "brief.pdf" {
		t.Errorf("Expected original filename as metadata, got %q", file.Name)
	}
	if filepath.Base(file.Path) == "brief.pdf" {
		t.Error("Expected a server-controlled stored name, got the original filename")
	}
	if _, err := os.Stat(file.Path); err != nil {
		t.Errorf("Expected stored bytes on disk: %v", err)
	}

	if got := countHistory(t, models.HistoryModelFile, models.HistoryActionCreate); got != 1 {
		t.Errorf("Expected 1 file create history record, got %d", got)
	}

	w2 := performRequest(t, r, "GET", base+"/files", token, nil)
	if w2.Code != http.StatusOK {
		t.Fatalf("Expected 200 from list, got %d", w2.Code)
	}
	var files []models.File
	if err := json.Unmarshal(w2.Body.Bytes(), &files); err != nil {
		t.Fatalf("Failed to decode files: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("Expected 1 file, got %d", len(files))
	}

	w3 := performRequest(t, r, "GET", fmt.Sprintf("%s/files/%d/download", base, file.ID), token, nil)
	if w3.Code != http.StatusOK {
		t.Fatalf("Expected 200 from download, got %d", w3.Code)
	}
	if w3.Body.String() != "attachment-bytes" {
		t.Errorf("Expected streamed bytes to match upload, got %q", w3.Body.String())
	}
	disposition := w3.Header().Get("Content-Disposition")
	if !strings.Contains(disposition, "attachment") || !strings.Contains(disposition, "brief.pdf") {
		t.Errorf("Expected attachment disposition with original name, got %q", disposition)
	}
}

func TestDownloadMissingBytes(t *testing.T) {
	r := setupTest(t)
	owner := createTestUser(t, "Alice Tan", "alice@example.com", models.RoleUser)
	project := createTestProject(t, "Apollo")
	grantAccess(t, owner, project, models.AccessLevelUser)
	task := createTestTask(t, project, owner, "Design")

	// The row exists, the bytes do not.
	file := models.File{TaskID: task.ID, Name: "ghost.txt", Path: filepath.Join(t.TempDir(), "missing.txt")}
	if err := db.DB.Create(&file).Error; err != nil {
		t.Fatalf("Failed to create file row: %v", err)
	}

	w := performRequest(t, r, "GET", fmt.Sprintf("%s/files/%d/download", taskPath(project, task), file.ID), tokenFor(t, owner), nil)

	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 for missing bytes, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "File not found") {
		t.Errorf("Expected a File not found message, got %s", w.Body.String())
	}
}

func TestUploadRequiresFile(t *testing.T) {
	r := setupTest(t)
	owner := createTestUser(t, "Alice Tan", "alice@example.com", models.RoleUser)
	project := createTestProject(t, "Apollo")
	grantAccess(t, owner, project, models.AccessLevelUser)
	task := createTestTask(t, project, owner, "Design")

	w := performRequest(t, r, "POST", taskPath(project, task)+"/upload", tokenFor(t, owner), nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without a file part, got %d", w.Code)
	}
}
