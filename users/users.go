package users

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/jrsteele09/mitti-dashboard/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

// Username and password bounds enforced by the backend on registration.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 50
	MinPasswordLength = 6
	MaxPasswordLength = 50
)

// User is the identity record returned by the backend auth endpoints.
// Login and register return the short form (id, username, email, full_name);
// /api/auth/me also fills the account flags and creation time.
type User struct {
	ID           int        `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email,omitempty"`
	FullName     *string    `json:"full_name"`
	IsActive     bool       `json:"is_active,omitempty"`
	IsAdmin      bool       `json:"is_admin,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	PasswordHash string     `json:"-"` // only populated by the fake backend - never serialize
}

// DisplayName prefers the full name and falls back to the username.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if name := strings.TrimSpace(utils.Value(u.FullName)); name != "" {
		return name
	}
	return u.Username
}

// Clone returns a deep copy so session snapshots never share pointers with callers.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.FullName != nil {
		name := *u.FullName
		c.FullName = &name
	}
	if u.CreatedAt != nil {
		created := *u.CreatedAt
		c.CreatedAt = &created
	}
	return &c
}

// ValidateRegistration mirrors the backend's registration constraints so the
// form can reject obviously bad input before a round-trip.
func ValidateRegistration(email, username, password string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("a valid email address is required")
	}
	if l := len(username); l < MinUsernameLength || l > MaxUsernameLength {
		return fmt.Errorf("username must be between %d and %d characters", MinUsernameLength, MaxUsernameLength)
	}
	if l := len(password); l < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	} else if l > MaxPasswordLength {
		return fmt.Errorf("password too long (max %d characters)", MaxPasswordLength)
	}
	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
