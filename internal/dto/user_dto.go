package dto

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GoogleUserInfo holds user information obtained from Google.
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
	Locale        string `json:"locale"`
}

// AuthClaims defines the custom claims for JWT.
type AuthClaims struct {
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"` // "access" or "refresh"
	jwt.RegisteredClaims
}

// RegisterRequest is the payload for creating a password account.
// @Description Request body for user registration
type RegisterRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	FullName      string `json:"full_name"`
	Qualification string `json:"qualification,omitempty"`
	DateOfBirth   string `json:"date_of_birth,omitempty"` // Format: YYYY-MM-DD
}

// LoginRequest is the payload for password login.
// @Description Request body for user login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshTokenRequest carries the refresh token being exchanged.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse represents the response containing access and refresh tokens.
// @Description Response body for authentication tokens
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// UserProfileResponse defines the structure for a user's profile information.
type UserProfileResponse struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	FullName      string `json:"full_name,omitempty"`
	Qualification string `json:"qualification,omitempty"`
	DateOfBirth   string `json:"date_of_birth,omitempty"`
	Role          string `json:"role"`
	CreatedAt     string `json:"created_at,omitempty"`
}

// UpdateProfileRequest carries the fields a user may change on their own
// profile.
type UpdateProfileRequest struct {
	FullName      *string `json:"full_name,omitempty"`
	Qualification *string `json:"qualification,omitempty"`
	DateOfBirth   *string `json:"date_of_birth,omitempty"` // Format: YYYY-MM-DD
}

// Pagination defines parameters for paginated list requests.
type Pagination struct {
	Limit  int `query:"limit"`  // Number of items per page
	Offset int `query:"offset"` // Number of items to skip
	Page   int `query:"page"`   // Page number (alternative to offset)
}

// PaginationInfo defines pagination details for responses.
type PaginationInfo struct {
	TotalItems  int64 `json:"total_items"`
	Limit       int   `json:"limit"`
	Offset      int   `json:"offset"`
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
}

// NewPaginationInfo derives response pagination from the request and total.
func NewPaginationInfo(p Pagination, totalItems int) PaginationInfo {
	info := PaginationInfo{
		TotalItems: int64(totalItems),
		Limit:      p.Limit,
		Offset:     p.Offset,
	}
	if p.Limit > 0 {
		info.CurrentPage = (p.Offset / p.Limit) + 1
		info.TotalPages = (totalItems + p.Limit - 1) / p.Limit
	}
	return info
}

// ScoreFilters defines parameters for filtering score listings.
// These are typically query parameters.
type ScoreFilters struct {
	QuizID    string `query:"quiz_id"`
	SubjectID string `query:"subject_id"`
	StartDate string `query:"start_date"` // Format: YYYY-MM-DD
	EndDate   string `query:"end_date"`   // Format: YYYY-MM-DD
	Passed    *bool  `query:"passed"`     // Pointer for tri-state: true, false, or omit for no filter
}

// UserListItem is one row of the admin user listing.
type UserListItem struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name,omitempty"`
	Qualification string    `json:"qualification,omitempty"`
	Role          string    `json:"role"`
	CreatedAt     time.Time `json:"created_at"`
}

// UserListResponse is the paginated admin user listing.
type UserListResponse struct {
	Users          []UserListItem `json:"users"`
	PaginationInfo PaginationInfo `json:"pagination_info"`
}

// SubjectBreakdownDTO aggregates a user's attempts within one subject.
type SubjectBreakdownDTO struct {
	SubjectID   string  `json:"subject_id"`
	SubjectName string  `json:"subject_name"`
	Attempts    int     `json:"attempts"`
	AvgPercent  float64 `json:"avg_percent"`
}

// UserSummaryResponse summarizes the authenticated user's quiz history.
type UserSummaryResponse struct {
	TotalAttempts int                   `json:"total_attempts"`
	Passed        int                   `json:"passed"`
	AvgPercent    float64               `json:"avg_percent"`
	BestPercent   float64               `json:"best_percent"`
	LastAttemptAt *time.Time            `json:"last_attempt_at,omitempty"`
	BySubject     []SubjectBreakdownDTO `json:"by_subject"`
}
