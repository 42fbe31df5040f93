package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/taskbridge/taskbridge/db"
	"github.com/taskbridge/taskbridge/internal/models"
)

func TestRegisterAndVerify(t *testing.T) {
	r := setupTest(t)

	w := performRequest(t, r, "POST", "/api/users/register", "", map[string]interface{}{
		"fullName": "Alice Tan",
		"email":    "alice@example.com",
		"password": "password123",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 from register, got %d: %s", w.Code, w.Body.String())
	}

	// No user yet: registration is pending until the OTP is verified.
	var userCount int64
	db.DB.Model(&models.User{}).Count(&userCount)
	if userCount != 0 {
		t.Fatalf("Expected no users before verification, got %d", userCount)
	}

	var emailOTP models.EmailOTP
	if err := db.DB.Where("email = ?", "alice@example.com").Order("created_at DESC").First(&emailOTP).Error; err != nil {
		t.Fatalf("Expected an OTP row: %v", err)
	}

	w = performRequest(t, r, "POST", "/api/users/verify", "", map[string]interface{}{
		"email": "alice@example.com",
		"otp":   emailOTP.OTP,
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201 from verify, got %d: %s", w.Code, w.Body.String())
	}

	var user models.User
	if err := db.DB.Where("email = ?", "alice@example.com").First(&user).Error; err != nil {
		t.Fatalf("Expected user to exist after verification: %v", err)
	}

	if user.Role != models.RoleUser {
		t.Errorf("Expected role %q, got %q", models.RoleUser, user.Role)
	}

	// OTP rows are consumed on success.
	var otpCount int64
	db.DB.Model(&models.EmailOTP{}).Where("email = ?", "alice@example.com").Count(&otpCount)
	if otpCount != 0 {
		t.Errorf("Expected OTP rows to be consumed, found %d", otpCount)
	}

	if got := countHistory(t, models.HistoryModelUser, models.HistoryActionCreate); got != 1 {
		t.Errorf("Expected 1 user create history record, got %d", got)
	}

	// The pending registration is gone as well; a replayed verify fails.
	db.DB.Create(&models.EmailOTP{Email: "alice2@example.com", OTP: emailOTP.OTP})
	w = performRequest(t, r, "POST", "/api/users/verify", "", map[string]interface{}{
		"email": "alice2@example.com",
		"otp":   emailOTP.OTP,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for verify without pending registration, got %d", w.Code)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	r := setupTest(t)
	createTestUser(t, "Bob Lim", "bob@example.com", models.RoleUser)

	w := performRequest(t, r, "POST", "/api/users/register", "", map[string]interface{}{
		"fullName": "Bob Again",
		"email":    "bob@example.com",
		"password": "password123",
	})

	if w.Code != http.StatusConflict {
		t.Fatalf("Expected 409 for duplicate email, got %d", w.Code)
	}
}

func TestVerifyWrongOTP(t *testing.T) {
	r := setupTest(t)

	w := performRequest(t, r, "POST", "/api/users/register", "", map[string]interface{}{
		"fullName": "Carol Ng",
		"email":    "carol@example.com",
		"password": "password123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 from register, got %d", w.Code)
	}

	var emailOTP models.EmailOTP
	if err := db.DB.Where("email = ?", "carol@example.com").First(&emailOTP).Error; err != nil {
		t.Fatalf("Expected an OTP row: %v", err)
	}

	w = performRequest(t, r, "POST", "/api/users/verify", "", map[string]interface{}{
		"email": "carol@example.com",
		"otp":   emailOTP.OTP + "x",
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for wrong OTP, got %d", w.Code)
	}

	var userCount int64
	db.DB.Model(&models.User{}).Count(&userCount)
	if userCount != 0 {
		t.Errorf("Expected no user after failed verification, got %d", userCount)
	}
}

func TestLogin(t *testing.T) {
	r := setupTest(t)
	createTestUser(t, "Dave Ong", "dave@example.com", models.RoleUser)

	w := performRequest(t, r, "POST", "/api/users/login", "", map[string]interface{}{
		"email":    "dave@example.com",
		"password": testPassword,
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 from login, got %d: %s", w.Code, w.Body.String())
	}

	var response struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to decode login response: %v", err)
	}
	if response.Token == "" {
		t.Error("Expected a token in the login response")
	}

	w = performRequest(t, r, "POST", "/api/users/login", "", map[string]interface{}{
		"email":    "dave@example.com",
		"password": "wrong-password",
	})

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 for bad credentials, got %d", w.Code)
	}
}

func TestMissingTokenRejected(t *testing.T) {
	r := setupTest(t)
	user := createTestUser(t, "Eve Koh", "eve@example.com", models.RoleUser)

	w := performRequest(t, r, "GET", "/api/projects", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", w.Code)
	}

	w = performRequest(t, r, "GET", "/api/projects", "not-a-token", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 with malformed token, got %d", w.Code)
	}

	// A valid token for a deleted subject is rejected too.
	token := tokenFor(t, user)
	db.DB.Unscoped().Delete(&user)

	w = performRequest(t, r, "GET", "/api/projects", token, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for vanished subject, got %d", w.Code)
	}
}
