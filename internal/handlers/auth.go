package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/taskbridge/taskbridge/db"
	"github.com/taskbridge/taskbridge/internal/auth"
	"github.com/taskbridge/taskbridge/internal/models"
	"github.com/taskbridge/taskbridge/internal/services"
	"github.com/taskbridge/taskbridge/internal/types"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type VerifyRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register starts an OTP-gated signup. Nothing is written to the users table
// until the passcode is verified; the pending registration lives in a keyed
// expiring store so concurrent signups stay isolated.
func Register(ctx *gin.Context) {
	var body RegisterRequest

	if err := ctx.BindJSON(&body); err != nil {
		log.Printf("Failed to bind JSON: %v", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	body.Email = strings.ToLower(strings.TrimSpace(body.Email))

	var existingUser models.User

	err := db.DB.Where("email = ?", body.Email).First(&existingUser).Error

	if err == nil {
		ctx.JSON(http.StatusConflict, gin.H{"error": "Email already exists"})
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Database error when checking existing user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)

	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	otp, err := auth.GenerateOTP(6)

	if err != nil {
		log.Printf("Failed to generate OTP: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	auth.Registrations.Put(auth.PendingRegistration{
		FullName: body.FullName,
		Email:    body.Email,
		Hash:     string(hash),
	})

	emailOTP := models.EmailOTP{
		Email: body.Email,
		OTP:   otp,
	}

	if err := db.DB.Create(&emailOTP).Error; err != nil {
		log.Printf("Failed to store OTP: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := services.SendOTPMail(body.Email, otp); err != nil {
		if errors.Is(err, services.ErrSMTPNotConfigured) {
			log.Printf("SMTP not configured, OTP for %s: %s", body.Email, otp)
		} else {
			log.Printf("Failed to send OTP mail: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send verification email"})
			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "OTP sent to email"})
}

// VerifyOTP completes a signup: the newest passcode for the email must
// match, all passcodes for that email are consumed, and the user is created.
func VerifyOTP(ctx *gin.Context) {
	var body VerifyRequest

	if err := ctx.BindJSON(&body); err != nil {
		log.Printf("Failed to bind JSON: %v", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	body.Email = strings.ToLower(strings.TrimSpace(body.Email))

	var emailOTP models.EmailOTP

	err := db.DB.Where("email = ?", body.Email).Order("created_at DESC").First(&emailOTP).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired OTP"})
			return
		}
		log.Printf("Database error when fetching OTP: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if emailOTP.OTP != body.OTP {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired OTP"})
		return
	}

	pending, ok := auth.Registrations.Take(body.Email)

	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Registration expired, please register again"})
		return
	}

	if err := db.DB.Unscoped().Where("email = ?", body.Email).Delete(&models.EmailOTP{}).Error; err != nil {
		log.Printf("Failed to consume OTP rows: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	newUser := models.User{
		FullName: pending.FullName,
		Email:    pending.Email,
		Hash:     pending.Hash,
		Role:     models.RoleUser,
	}

	if err := db.DB.Create(&newUser).Error; err != nil {
		log.Printf("Failed to create user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := services.RecordHistory(models.HistoryModelUser, models.HistoryActionCreate, newUser, newUser.ID); err != nil {
		log.Printf("Failed to record history: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record history"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"user": types.UserResponse{
			ID:       newUser.ID,
			FullName: newUser.FullName,
			Email:    newUser.Email,
			Role:     newUser.Role,
		},
	})
}

func Login(ctx *gin.Context) {
	var body LoginRequest

	if err := ctx.BindJSON(&body); err != nil {
		log.Printf("Failed to bind JSON: %v", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	body.Email = strings.ToLower(strings.TrimSpace(body.Email))

	var user models.User

	err := db.DB.Where("email = ?", body.Email).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Email or password is incorrect"})
			return
		}
		log.Printf("Database error when fetching user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Hash), []byte(body.Password)); err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Email or password is incorrect"})
		return
	}

	token, err := auth.GenerateJWT(user.ID, user.Role)

	if err != nil {
		log.Printf("Failed to generate JWT: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": types.UserResponse{
			ID:       user.ID,
			FullName: user.FullName,
			Email:    user.Email,
			Role:     user.Role,
		},
	})
}
