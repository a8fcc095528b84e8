package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fariyalkhan17/Quizzmaster/internal/domain"
	"github.com/fariyalkhan17/Quizzmaster/internal/dto"
	"github.com/fariyalkhan17/Quizzmaster/internal/repository/models"
	"github.com/fariyalkhan17/Quizzmaster/internal/util"

	"github.com/jmoiron/sqlx"
)

const userColumns = `ID, EMAIL, PASSWORD_HASH, FULL_NAME, QUALIFICATION, DATE_OF_BIRTH, ROLE, GOOGLE_ID, ENCRYPTED_ACCESS_TOKEN, ENCRYPTED_REFRESH_TOKEN, CREATED_AT, UPDATED_AT, DELETED_AT`

// UserDatabaseAdapter implements domain.UserRepository using sqlx.
type UserDatabaseAdapter struct {
	db *sqlx.DB
}

// NewUserDatabaseAdapter creates a new instance of UserDatabaseAdapter.
func NewUserDatabaseAdapter(db *sqlx.DB) domain.UserRepository {
	return &UserDatabaseAdapter{db: db}
}

func toDomainUser(m *models.User) *domain.User {
	if m == nil {
		return nil
	}
	var deletedAt *time.Time
	if m.DeletedAt.Valid {
		deletedAt = &m.DeletedAt.Time
	}
	var dob *time.Time
	if m.DateOfBirth.Valid {
		dob = &m.DateOfBirth.Time
	}
	return &domain.User{
		ID:            m.ID,
		Email:         m.Email,
		PasswordHash:  util.NullStringToString(m.PasswordHash),
		FullName:      util.NullStringToString(m.FullName),
		Qualification: util.NullStringToString(m.Qualification),
		DateOfBirth:   dob,
		Role:          m.Role,
		GoogleID:      util.NullStringToString(m.GoogleID),
		AccessToken:   util.NullStringToString(m.EncryptedAccessToken),
		RefreshToken:  util.NullStringToString(m.EncryptedRefreshToken),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
		DeletedAt:     deletedAt,
	}
}

func fromDomainUser(d *domain.User) *models.User {
	if d == nil {
		return nil
	}
	var deletedAt sql.NullTime
	if d.DeletedAt != nil {
		deletedAt = util.TimeToNullTime(*d.DeletedAt)
	}
	var dob sql.NullTime
	if d.DateOfBirth != nil {
		dob = util.TimeToNullTime(*d.DateOfBirth)
	}
	return &models.User{
		ID:                    d.ID,
		Email:                 d.Email,
		PasswordHash:          util.StringToNullString(d.PasswordHash),
		FullName:              util.StringToNullString(d.FullName),
		Qualification:         util.StringToNullString(d.Qualification),
		DateOfBirth:           dob,
		Role:                  d.Role,
		GoogleID:              util.StringToNullString(d.GoogleID),
		EncryptedAccessToken:  util.StringToNullString(d.AccessToken),
		EncryptedRefreshToken: util.StringToNullString(d.RefreshToken),
		CreatedAt:             d.CreatedAt,
		UpdatedAt:             d.UpdatedAt,
		DeletedAt:             deletedAt,
	}
}

// CreateUser inserts a new user. The caller's User gets the generated ID.
func (a *UserDatabaseAdapter) CreateUser(ctx context.Context, user *domain.User) error {
	m := fromDomainUser(user)
	if m.ID == "" {
		m.ID = util.NewULID()
	}
	now := time.Now()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now

	query := `INSERT INTO users (ID, EMAIL, PASSWORD_HASH, FULL_NAME, QUALIFICATION, DATE_OF_BIRTH, ROLE, GOOGLE_ID, ENCRYPTED_ACCESS_TOKEN, ENCRYPTED_REFRESH_TOKEN, CREATED_AT, UPDATED_AT)
	          VALUES (:1, :2, :3, :4, :5, :6, :7, :8, :9, :10, :11, :12)`

	executor := GetExecutor(ctx, a.db)
	_, err := executor.ExecContext(ctx, query,
		m.ID,
		m.Email,
		m.PasswordHash,
		m.FullName,
		m.Qualification,
		m.DateOfBirth,
		m.Role,
		m.GoogleID,
		m.EncryptedAccessToken,
		m.EncryptedRefreshToken,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.ID = m.ID
	user.CreatedAt = m.CreatedAt
	user.UpdatedAt = m.UpdatedAt
	return nil
}

// GetUserByID retrieves a user by their internal ID.
func (a *UserDatabaseAdapter) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return a.getUserWhere(ctx, "ID = :1", userID)
}

// GetUserByEmail retrieves a user by email.
func (a *UserDatabaseAdapter) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return a.getUserWhere(ctx, "EMAIL = :1", email)
}

// GetUserByGoogleID retrieves a user by their Google ID.
func (a *UserDatabaseAdapter) GetUserByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	return a.getUserWhere(ctx, "GOOGLE_ID = :1", googleID)
}

func (a *UserDatabaseAdapter) getUserWhere(ctx context.Context, cond string, arg interface{}) (*domain.User, error) {
	var m models.User
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s AND DELETED_AT IS NULL`, userColumns, cond)

	executor := GetExecutor(ctx, a.db)
	err := executor.GetContext(ctx, &m, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return toDomainUser(&m), nil
}

// UpdateUser writes the mutable profile and token fields of a user.
func (a *UserDatabaseAdapter) UpdateUser(ctx context.Context, user *domain.User) error {
	m := fromDomainUser(user)
	m.UpdatedAt = time.Now()

	query := `UPDATE users SET
		EMAIL = :1,
		PASSWORD_HASH = :2,
		FULL_NAME = :3,
		QUALIFICATION = :4,
		DATE_OF_BIRTH = :5,
		ROLE = :6,
		GOOGLE_ID = :7,
		ENCRYPTED_ACCESS_TOKEN = :8,
		ENCRYPTED_REFRESH_TOKEN = :9,
		UPDATED_AT = :10
	WHERE ID = :11
	AND DELETED_AT IS NULL`

	executor := GetExecutor(ctx, a.db)
	result, err := executor.ExecContext(ctx, query,
		m.Email,
		m.PasswordHash,
		m.FullName,
		m.Qualification,
		m.DateOfBirth,
		m.Role,
		m.GoogleID,
		m.EncryptedAccessToken,
		m.EncryptedRefreshToken,
		m.UpdatedAt,
		m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user with ID %s not found or not updated", user.ID)
	}
	user.UpdatedAt = m.UpdatedAt
	return nil
}

// ListUsers returns a page of live users, newest first.
func (a *UserDatabaseAdapter) ListUsers(ctx context.Context, pagination dto.Pagination) ([]domain.User, int, error) {
	return a.listUsersWhere(ctx, "DELETED_AT IS NULL", nil, pagination)
}

// SearchUsers matches the query against email and full name.
func (a *UserDatabaseAdapter) SearchUsers(ctx context.Context, query string, pagination dto.Pagination) ([]domain.User, int, error) {
	pattern := "%" + strings.ToUpper(query) + "%"
	cond := "DELETED_AT IS NULL AND (UPPER(EMAIL) LIKE :1 OR UPPER(FULL_NAME) LIKE :2)"
	return a.listUsersWhere(ctx, cond, []interface{}{pattern, pattern}, pagination)
}

func (a *UserDatabaseAdapter) listUsersWhere(ctx context.Context, cond string, args []interface{}, pagination dto.Pagination) ([]domain.User, int, error) {
	limit, offset := normalizePagination(pagination)

	inner := fmt.Sprintf(`SELECT %s, ROW_NUMBER() OVER (ORDER BY CREATED_AT DESC) AS RN FROM users WHERE %s`, userColumns, cond)
	resultsQuery := fmt.Sprintf(`SELECT %s FROM (%s) WHERE RN > %d AND RN <= %d`, userColumns, inner, offset, offset+limit)
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM users WHERE %s`, cond)

	executor := GetExecutor(ctx, a.db)

	var modelUsers []models.User
	if err := executor.SelectContext(ctx, &modelUsers, resultsQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	var total int
	if err := executor.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	users := make([]domain.User, 0, len(modelUsers))
	for i := range modelUsers {
		users = append(users, *toDomainUser(&modelUsers[i]))
	}
	return users, total, nil
}

// CountUsers counts live users.
func (a *UserDatabaseAdapter) CountUsers(ctx context.Context) (int, error) {
	var total int
	executor := GetExecutor(ctx, a.db)
	if err := executor.GetContext(ctx, &total, `SELECT COUNT(*) FROM users WHERE DELETED_AT IS NULL`); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return total, nil
}

// normalizePagination applies the listing defaults shared by all adapters.
func normalizePagination(p dto.Pagination) (limit, offset int) {
	limit = p.Limit
	if limit <= 0 {
		limit = 10
	}
	offset = p.Offset
	if offset < 0 {
		offset = 0
	}
	if p.Page > 0 && p.Offset == 0 {
		offset = (p.Page - 1) * limit
	}
	return limit, offset
}
