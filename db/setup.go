package db

import (
	"errors"
	"fmt"

	"github.com/taskbridge/taskbridge/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDatabase(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})

	if err != nil {
		return err
	}

	return nil
}

func MigrateDatabase() error {
	models := []interface{}{
		&models.User{},
		&models.EmailOTP{},
		&models.Project{},
		&models.UserProject{},
		&models.Task{},
		&models.Subtask{},
		&models.File{},
		&models.History{},
	}

	migrator := DB.Migrator()

	for _, model := range models {
		if !migrator.HasTable(model) {
			if err := DB.AutoMigrate(model); err != nil {
				return err
			}
		}
	}

	return nil
}

// EnsureAdminUser seeds the admin account from the environment. Roles are
// never inferred from user-supplied data; this and the role endpoint are the
// only ways an account becomes admin.
func EnsureAdminUser(email, password string) error {
	if email == "" {
		return nil
	}

	if password == "" {
		return fmt.Errorf("admin password is required when admin email is set")
	}

	var user models.User

	err := DB.Where("email = ?", email).First(&user).Error

	if err == nil {
		if user.Role == models.RoleAdmin {
			return nil
		}
		return DB.Model(&user).Update("role", models.RoleAdmin).Error
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	if err != nil {
		return err
	}

	admin := models.User{
		FullName: "Administrator",
		Email:    email,
		Hash:     string(hash),
		Role:     models.RoleAdmin,
	}

	return DB.Create(&admin).Error
}
