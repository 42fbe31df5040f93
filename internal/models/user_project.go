package models

import "gorm.io/gorm"

const (
	AccessLevelUser  = "user"
	AccessLevelAdmin = "admin"
)

// UserProject grants a user access to a project.
type UserProject struct {
	gorm.Model

	UserID      uint   `gorm:"not null;uniqueIndex:idx_user_project" json:"userId"`
	ProjectID   uint   `gorm:"not null;uniqueIndex:idx_user_project" json:"projectId"`
	AccessLevel string `gorm:"not null" json:"accessLevel"`

	// Relationships
	User    User    `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
