package models

import "gorm.io/gorm"

type Project struct {
	gorm.Model

	ProjectName string  `gorm:"not null" json:"projectName"`
	PIC         string  `gorm:"not null" json:"PIC"`
	Budget      float64 `gorm:"not null" json:"budget"`
	StartDate   string  `gorm:"not null" json:"startDate"` // YYYY-MM-DD
	EndDate     string  `gorm:"not null" json:"endDate"`   // YYYY-MM-DD

	// Relationships
	Tasks        []Task        `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	UserProjects []UserProject `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
