package models

import "gorm.io/gorm"

type Task struct {
	gorm.Model

	ProjectID     uint    `gorm:"not null;index" json:"projectId"`
	OwnerID       uint    `gorm:"not null;index" json:"ownerId"` // User authorized to modify this task
	TaskName      string  `gorm:"not null" json:"taskName"`
	TaskPIC       string  `gorm:"not null" json:"taskPIC"` // Display label only, never used for authorization
	TaskBudget    float64 `gorm:"not null" json:"taskBudget"`
	TaskStartDate string  `gorm:"not null" json:"taskStartDate"` // YYYY-MM-DD
	TaskEndDate   string  `gorm:"not null" json:"taskEndDate"`   // YYYY-MM-DD

	// Relationships
	Project  Project   `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Owner    User      `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Subtasks []Subtask `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Files    []File    `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
