package service

import (
	"errors"
	"net/mail"
	"strings"

	"github.com/ebuilder/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailInvalid       = errors.New("email address is invalid")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrUserExists         = errors.New("an account with this email already exists")
)

// MinPasswordLength is enforced when accounts are created.
const MinPasswordLength = 8

// AccountService authenticates and creates user accounts.
type AccountService struct {
	db *gorm.DB
}

// NewAccountService creates an AccountService instance.
func NewAccountService(gdb *gorm.DB) *AccountService {
	return &AccountService{db: gdb}
}

// Authenticate returns the user matching email and password.
func (s *AccountService) Authenticate(email, password string) (*db.User, error) {
	var user db.User
	if err := s.db.Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// Get fetches a user by id.
func (s *AccountService) Get(id uint) (*db.User, error) {
	var user db.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateSuperuser creates a verified staff account.
func (s *AccountService) CreateSuperuser(email, password string) (*db.User, error) {
	address := normalizeEmail(email)
	if _, err := mail.ParseAddress(address); err != nil || address == "" {
		return nil, ErrEmailInvalid
	}
	if len(password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := db.User{
		Email:         address,
		Password:      string(hashed),
		IsStaff:       true,
		EmailVerified: true,
	}
	if err := s.db.Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return &user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
