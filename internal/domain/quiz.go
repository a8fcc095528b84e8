package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/fariyalkhan17/Quizzmaster/internal/dto"
)

// Option counts a question must stay within.
const (
	MinOptionsPerQuestion = 2
	MaxOptionsPerQuestion = 6
)

// Quiz represents a named, timed collection of questions under a chapter.
type Quiz struct {
	ID              string
	ChapterID       string
	Title           string
	Remarks         string
	DateOfQuiz      time.Time
	DurationMinutes int
	PassPercentage  float64
	Published       bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       *time.Time
	// QuestionCount is the number of live non-draft questions, populated by
	// listing and lookup queries.
	QuestionCount int
	Questions     []*Question
}

// NewQuiz creates a new Quiz instance
func NewQuiz(chapterID, title, remarks string, dateOfQuiz time.Time, durationMinutes int, passPercentage float64) *Quiz {
	now := time.Now()
	return &Quiz{
		ChapterID:       chapterID,
		Title:           title,
		Remarks:         remarks,
		DateOfQuiz:      dateOfQuiz,
		DurationMinutes: durationMinutes,
		PassPercentage:  passPercentage,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Validate validates the quiz
func (q *Quiz) Validate() error {
	if q.ChapterID == "" {
		return NewValidationError("chapter ID is required")
	}
	if q.Title == "" {
		return NewValidationError("title is required")
	}
	if q.DateOfQuiz.IsZero() {
		return NewValidationError("date of quiz is required")
	}
	if q.DurationMinutes <= 0 {
		return NewValidationError("duration must be positive")
	}
	if q.PassPercentage < 0 || q.PassPercentage > 100 {
		return NewValidationError("pass percentage must be between 0 and 100")
	}
	return nil
}

// Duration returns the quiz time limit.
func (q *Quiz) Duration() time.Duration {
	return time.Duration(q.DurationMinutes) * time.Minute
}

// IsOpen reports whether attempts may be started at the given instant.
// A quiz opens at midnight of its scheduled date.
func (q *Quiz) IsOpen(now time.Time) bool {
	return q.Published && !now.Before(q.DateOfQuiz)
}

// IsUpcoming reports whether the quiz is published but not yet open.
func (q *Quiz) IsUpcoming(now time.Time) bool {
	return q.Published && now.Before(q.DateOfQuiz)
}

// Question represents a single multiple-choice question of a quiz.
type Question struct {
	ID        string
	QuizID    string
	Statement string
	Position  int
	// Draft questions come from the batch generator and stay invisible to
	// users until an admin reviews them and clears the flag.
	Draft     bool
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
	Options   []*Option
}

// NewQuestion creates a new Question instance
func NewQuestion(quizID, statement string, position int) *Question {
	now := time.Now()
	return &Question{
		QuizID:    quizID,
		Statement: statement,
		Position:  position,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate validates the question together with its option set.
func (q *Question) Validate() error {
	if q.QuizID == "" {
		return NewValidationError("quiz ID is required")
	}
	if q.Statement == "" {
		return NewValidationError("statement is required")
	}
	return ValidateOptionSet(q.Options)
}

// CorrectOption returns the option marked correct, or nil for a malformed set.
func (q *Question) CorrectOption() *Option {
	for _, o := range q.Options {
		if o.IsCorrect {
			return o
		}
	}
	return nil
}

// Option represents one selectable answer of a question.
type Option struct {
	ID         string
	QuestionID string
	Text       string
	IsCorrect  bool
	Position   int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewOption creates a new Option instance
func NewOption(questionID, text string, isCorrect bool, position int) *Option {
	now := time.Now()
	return &Option{
		QuestionID: questionID,
		Text:       text,
		IsCorrect:  isCorrect,
		Position:   position,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// ValidateOptionSet enforces the shape every stored option set must have:
// between MinOptionsPerQuestion and MaxOptionsPerQuestion entries, each with
// text, exactly one of them marked correct.
func ValidateOptionSet(options []*Option) error {
	if len(options) < MinOptionsPerQuestion || len(options) > MaxOptionsPerQuestion {
		return NewValidationError(fmt.Sprintf("a question needs between %d and %d options", MinOptionsPerQuestion, MaxOptionsPerQuestion))
	}
	correct := 0
	for _, o := range options {
		if o.Text == "" {
			return NewValidationError("option text is required")
		}
		if o.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		return NewValidationError("exactly one option must be marked correct")
	}
	return nil
}

// QuizFilters narrows quiz listings.
type QuizFilters struct {
	ChapterID     string
	SubjectID     string
	OnlyOpen      bool
	OnlyPublished bool
}

// QuizRepository defines the interface for quiz, question and option persistence.
type QuizRepository interface {
	CreateQuiz(ctx context.Context, quiz *Quiz) error
	GetQuizByID(ctx context.Context, id string) (*Quiz, error)
	UpdateQuiz(ctx context.Context, quiz *Quiz) error
	DeleteQuiz(ctx context.Context, id string) error
	ListQuizzes(ctx context.Context, filters QuizFilters, pagination dto.Pagination) ([]Quiz, int, error)

	// CreateQuestion persists the question and its options in one transaction.
	CreateQuestion(ctx context.Context, question *Question) error
	GetQuestionByID(ctx context.Context, id string) (*Question, error)
	// UpdateQuestion replaces the stored option set with question.Options.
	UpdateQuestion(ctx context.Context, question *Question) error
	DeleteQuestion(ctx context.Context, id string) error
	// GetQuestionsByQuiz returns live questions ordered by position,
	// options attached. Draft questions are included only when asked for.
	GetQuestionsByQuiz(ctx context.Context, quizID string, includeDrafts bool) ([]*Question, error)
	CountQuestionsByQuiz(ctx context.Context, quizID string, includeDrafts bool) (int, error)

	// ListQuizzesNeedingQuestions returns live published quizzes whose
	// non-draft question count is below min.
	ListQuizzesNeedingQuestions(ctx context.Context, min int) ([]*Quiz, error)

	SearchQuizzes(ctx context.Context, query string, limit int) ([]*Quiz, error)
	SearchQuestions(ctx context.Context, query string, limit int) ([]*Question, error)
	CountQuizzes(ctx context.Context) (int, error)
	CountQuestions(ctx context.Context) (int, error)
}
