package db

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User is a customer or staff account identified by email.
type User struct {
	ID            uint   `gorm:"primaryKey"`
	Email         string `gorm:"size:254;uniqueIndex;not null"`
	Password      string `gorm:"not null"`
	FirstName     string `gorm:"size:150"`
	LastName      string `gorm:"size:150"`
	IsStaff       bool
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// FullName joins first and last name.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// EnsureStaff creates a verified staff account when both credentials are
// provided and no account with that email exists yet.
func EnsureStaff(gdb *gorm.DB, email, password string) error {
	trimmedEmail := strings.ToLower(strings.TrimSpace(email))
	trimmedPassword := strings.TrimSpace(password)
	if trimmedEmail == "" || trimmedPassword == "" {
		return nil
	}

	if gdb == nil {
		return errors.New("database not initialized")
	}

	var existing User
	if err := gdb.Where("email = ?", trimmedEmail).First(&existing).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(trimmedPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		return gdb.Create(&User{
			Email:         trimmedEmail,
			Password:      string(hashed),
			IsStaff:       true,
			EmailVerified: true,
		}).Error
	}

	return nil
}
