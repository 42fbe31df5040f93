package models

import "gorm.io/gorm"

// File is a task attachment. Name keeps the uploaded filename as metadata;
// Path points at the server-controlled location of the stored bytes.
type File struct {
	gorm.Model

	TaskID uint   `gorm:"not null;index" json:"taskId"`
	Name   string `gorm:"not null" json:"name"`
	Path   string `gorm:"not null" json:"path"`

	// Relationships
	Task Task `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
