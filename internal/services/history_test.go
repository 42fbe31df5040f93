package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/taskbridge/taskbridge/db"
	"github.com/taskbridge/taskbridge/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupHistoryDB(t *testing.T) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))

	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	db.DB = gdb

	if err := db.DB.AutoMigrate(&models.History{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
}

func TestRecordHistory(t *testing.T) {
	setupHistoryDB(t)

	snapshot := map[string]interface{}{"id": 7, "projectName": "Apollo"}

	if err := RecordHistory(models.HistoryModelProject, models.HistoryActionCreate, snapshot, 42); err != nil {
		t.Fatalf("Failed to record history: %v", err)
	}

	var entry models.History
	if err := db.DB.First(&entry).Error; err != nil {
		t.Fatalf("Expected a history row: %v", err)
	}

	if entry.Model != models.HistoryModelProject {
		t.Errorf("Expected model %q, got %q", models.HistoryModelProject, entry.Model)
	}
	if entry.Action != models.HistoryActionCreate {
		t.Errorf("Expected action %q, got %q", models.HistoryActionCreate, entry.Action)
	}
	if entry.UserID != 42 {
		t.Errorf("Expected actor 42, got %d", entry.UserID)
	}
	if entry.Timestamp.IsZero() {
		t.Error("Expected a timestamp")
	}
	if !strings.Contains(string(entry.Data), "Apollo") {
		t.Errorf("Expected serialized snapshot, got %s", entry.Data)
	}
}

func TestRecordDeletionMarker(t *testing.T) {
	setupHistoryDB(t)

	if err := RecordDeletion(models.HistoryModelTask, 7); err != nil {
		t.Fatalf("Failed to record deletion: %v", err)
	}

	var entry models.History
	if err := db.DB.First(&entry).Error; err != nil {
		t.Fatalf("Expected a history row: %v", err)
	}

	if string(entry.Data) != `"deleted"` {
		t.Errorf("Expected the literal deleted marker, got %s", entry.Data)
	}
	if entry.Action != models.HistoryActionDelete {
		t.Errorf("Expected delete action, got %q", entry.Action)
	}
}

func TestRecordHistoryRejectsUnserializable(t *testing.T) {
	setupHistoryDB(t)

	if err := RecordHistory(models.HistoryModelProject, models.HistoryActionCreate, make(chan int), 1); err == nil {
		t.Error("Expected an error for an unserializable snapshot")
	}

	var count int64
	db.DB.Model(&models.History{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected no rows after failed append, got %d", count)
	}
}
