package domain

import (
	"context"
	"time"

	"github.com/fariyalkhan17/Quizzmaster/internal/dto"
)

// Role labels for users. Admins are seeded, never self-registered.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a domain user object
type User struct {
	ID            string
	Email         string
	PasswordHash  string
	FullName      string
	Qualification string
	DateOfBirth   *time.Time
	Role          string
	// GoogleID and the encrypted provider tokens are set only for accounts
	// provisioned through the Google login flow.
	GoogleID     string
	AccessToken  string
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// NewUser creates a password-authenticated user with the default role.
func NewUser(email, passwordHash, fullName string) *User {
	now := time.Now()
	return &User{
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     fullName,
		Role:         RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewGoogleUser creates a user provisioned from a Google profile.
func NewGoogleUser(googleID, email, fullName string) *User {
	now := time.Now()
	return &User{
		GoogleID:  googleID,
		Email:     email,
		FullName:  fullName,
		Role:      RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate validates the user
func (u *User) Validate() error {
	if u.Email == "" {
		return NewValidationError("email is required")
	}
	if u.PasswordHash == "" && u.GoogleID == "" {
		return NewValidationError("either a password or a google identity is required")
	}
	if u.Role != RoleUser && u.Role != RoleAdmin {
		return NewValidationError("role must be user or admin")
	}
	return nil
}

// IsAdmin reports whether the user holds the administrative role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserRepository defines the interface for user data persistence.
type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, userID string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*User, error)
	UpdateUser(ctx context.Context, user *User) error
	ListUsers(ctx context.Context, pagination dto.Pagination) ([]User, int, error)
	SearchUsers(ctx context.Context, query string, pagination dto.Pagination) ([]User, int, error)
	CountUsers(ctx context.Context) (int, error)
}
