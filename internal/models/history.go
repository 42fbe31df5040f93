package models

import (
	"time"

	"gorm.io/datatypes"
)

// HistoryModel is the closed set of entity kinds the audit trail records.
type HistoryModel string

const (
	HistoryModelUser    HistoryModel = "user"
	HistoryModelProject HistoryModel = "project"
	HistoryModelTask    HistoryModel = "task"
	HistoryModelSubtask HistoryModel = "subtask"
	HistoryModelFile    HistoryModel = "file"
)

type HistoryAction string

const (
	HistoryActionCreate HistoryAction = "create"
	HistoryActionUpdate HistoryAction = "update"
	HistoryActionDelete HistoryAction = "delete"
)

// History is an append-only audit record. It references its subject by id
// only, with no foreign key constraint: rows must outlive the entities they
// describe. The application never updates or deletes them.
type History struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Model     HistoryModel   `gorm:"not null;index" json:"model"`
	Action    HistoryAction  `gorm:"not null" json:"action"`
	Data      datatypes.JSON `gorm:"not null" json:"data"`
	UserID    uint           `gorm:"not null;index" json:"userId"`
	Timestamp time.Time      `gorm:"not null" json:"timestamp"`
}
