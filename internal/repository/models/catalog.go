package models

import (
	"database/sql"
	"time"
)

// Subject represents a subject row.
type Subject struct {
	ID          string         `db:"ID"` // ULID
	Name        string         `db:"NAME"`
	Description sql.NullString `db:"DESCRIPTION"`
	CreatedAt   time.Time      `db:"CREATED_AT"`
	UpdatedAt   time.Time      `db:"UPDATED_AT"`
	DeletedAt   sql.NullTime   `db:"DELETED_AT"`
}

func (Subject) TableName() string {
	return "subjects"
}

// Chapter represents a chapter row.
type Chapter struct {
	ID          string         `db:"ID"` // ULID
	SubjectID   string         `db:"SUBJECT_ID"`
	Name        string         `db:"NAME"`
	Description sql.NullString `db:"DESCRIPTION"`
	CreatedAt   time.Time      `db:"CREATED_AT"`
	UpdatedAt   time.Time      `db:"UPDATED_AT"`
	DeletedAt   sql.NullTime   `db:"DELETED_AT"`
}

func (Chapter) TableName() string {
	return "chapters"
}
