package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// AnswerRecord is one selected option inside an attempt's ANSWERS payload.
type AnswerRecord struct {
	QuestionID string `json:"question_id"`
	OptionID   string `json:"option_id"`
}

// AnswerList stores the submitted answers as a JSON array in a CLOB.
type AnswerList []AnswerRecord

// Value implements the driver.Valuer interface
func (a AnswerList) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	jsonData, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil
}

// Scan implements the sql.Scanner interface
func (a *AnswerList) Scan(value interface{}) error {
	if value == nil {
		*a = AnswerList{}
		return nil
	}

	var bytesToParse []byte
	switch v := value.(type) {
	case []byte:
		bytesToParse = v
	case string:
		bytesToParse = []byte(v)
	default:
		return errors.New("AnswerList Scan: unsupported type " + fmt.Sprintf("%T", value))
	}

	if len(bytesToParse) == 0 || string(bytesToParse) == "null" {
		*a = AnswerList{}
		return nil
	}
	return json.Unmarshal(bytesToParse, a)
}

// Attempt represents a score row: one user's run at one quiz.
type Attempt struct {
	ID               string       `db:"ID"` // ULID
	UserID           string       `db:"USER_ID"`
	QuizID           string       `db:"QUIZ_ID"`
	Status           string       `db:"STATUS"`
	StartedAt        time.Time    `db:"STARTED_AT"`
	DeadlineAt       time.Time    `db:"DEADLINE_AT"`
	SubmittedAt      sql.NullTime `db:"SUBMITTED_AT"`
	TimeTakenSeconds int          `db:"TIME_TAKEN_SECONDS"`
	TotalQuestions   int          `db:"TOTAL_QUESTIONS"`
	CorrectCount     int          `db:"CORRECT_COUNT"`
	ScorePercent     float64      `db:"SCORE_PERCENT"`
	Passed           int          `db:"PASSED"` // NUMBER(1)
	Answers          AnswerList   `db:"ANSWERS"`
	CreatedAt        time.Time    `db:"CREATED_AT"`
	UpdatedAt        time.Time    `db:"UPDATED_AT"`
}

func (Attempt) TableName() string {
	return "scores"
}

// AttemptWithUser joins an attempt row with its owner's display identity.
type AttemptWithUser struct {
	Attempt
	UserEmail    string         `db:"USER_EMAIL"`
	UserFullName sql.NullString `db:"USER_FULL_NAME"`
}
