package models

import (
	"database/sql"
	"time"
)

// Quiz represents a quiz row.
type Quiz struct {
	ID              string         `db:"ID"` // ULID
	ChapterID       string         `db:"CHAPTER_ID"`
	Title           string         `db:"TITLE"`
	Remarks         sql.NullString `db:"REMARKS"`
	DateOfQuiz      time.Time      `db:"DATE_OF_QUIZ"`
	DurationMinutes int            `db:"DURATION_MINUTES"`
	PassPercentage  float64        `db:"PASS_PERCENTAGE"`
	Published       int            `db:"PUBLISHED"` // NUMBER(1)
	CreatedAt       time.Time      `db:"CREATED_AT"`
	UpdatedAt       time.Time      `db:"UPDATED_AT"`
	DeletedAt       sql.NullTime   `db:"DELETED_AT"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// Question represents a question row. The statement lives in a CLOB.
type Question struct {
	ID        string       `db:"ID"` // ULID
	QuizID    string       `db:"QUIZ_ID"`
	Statement string       `db:"STATEMENT"`
	Position  int          `db:"POSITION"`
	Draft     int          `db:"DRAFT"` // NUMBER(1)
	CreatedAt time.Time    `db:"CREATED_AT"`
	UpdatedAt time.Time    `db:"UPDATED_AT"`
	DeletedAt sql.NullTime `db:"DELETED_AT"`
}

func (Question) TableName() string {
	return "questions"
}

// Option represents an option row. Options are replaced wholesale with
// their question, so they carry no soft-delete column.
type Option struct {
	ID         string    `db:"ID"` // ULID
	QuestionID string    `db:"QUESTION_ID"`
	Text       string    `db:"TEXT"`
	IsCorrect  int       `db:"IS_CORRECT"` // NUMBER(1)
	Position   int       `db:"POSITION"`
	CreatedAt  time.Time `db:"CREATED_AT"`
	UpdatedAt  time.Time `db:"UPDATED_AT"`
}

func (Option) TableName() string {
	return "options"
}
