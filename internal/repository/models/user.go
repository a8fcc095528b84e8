package models

import (
	"database/sql"
	"time"
)

// User represents a user row.
type User struct {
	ID                    string         `db:"ID"` // ULID
	Email                 string         `db:"EMAIL"`
	PasswordHash          sql.NullString `db:"PASSWORD_HASH"` // NULL for Google-only accounts
	FullName              sql.NullString `db:"FULL_NAME"`
	Qualification         sql.NullString `db:"QUALIFICATION"`
	DateOfBirth           sql.NullTime   `db:"DATE_OF_BIRTH"`
	Role                  string         `db:"ROLE"`
	GoogleID              sql.NullString `db:"GOOGLE_ID"`
	EncryptedAccessToken  sql.NullString `db:"ENCRYPTED_ACCESS_TOKEN"`
	EncryptedRefreshToken sql.NullString `db:"ENCRYPTED_REFRESH_TOKEN"`
	CreatedAt             time.Time      `db:"CREATED_AT"`
	UpdatedAt             time.Time      `db:"UPDATED_AT"`
	DeletedAt             sql.NullTime   `db:"DELETED_AT"`
}

func (User) TableName() string {
	return "users"
}
