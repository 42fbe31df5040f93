package models

import "gorm.io/gorm"

type Subtask struct {
	gorm.Model

	TaskID           uint   `gorm:"not null;index" json:"taskId"`
	SubtaskName      string `gorm:"not null" json:"subtaskName"`
	SubtaskManPower  int    `gorm:"not null" json:"subtaskManPower"`
	SubtaskStartDate string `gorm:"not null" json:"subtaskStartDate"` // YYYY-MM-DD
	SubtaskEndDate   string `gorm:"not null" json:"subtaskEndDate"`   // YYYY-MM-DD
	Completed        bool   `gorm:"not null;default:false" json:"completed"`

	// Relationships
	Task Task `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
