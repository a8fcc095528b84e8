package domain

import (
	"context"
	"time"

	"github.com/fariyalkhan17/Quizzmaster/internal/dto"
)

// AttemptStatus tracks an attempt through its lifecycle. Transitions are
// one-way: IN_PROGRESS to exactly one of SUBMITTED or EXPIRED.
type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "IN_PROGRESS"
	AttemptSubmitted  AttemptStatus = "SUBMITTED"
	AttemptExpired    AttemptStatus = "EXPIRED"
)

// Answer is a single selected option within an attempt submission.
type Answer struct {
	QuestionID string `json:"question_id"`
	OptionID   string `json:"option_id"`
}

// Attempt is the score record of one user taking one quiz: the answers
// given, the time taken and the resulting percentage.
type Attempt struct {
	ID               string
	UserID           string
	QuizID           string
	Status           AttemptStatus
	StartedAt        time.Time
	DeadlineAt       time.Time
	SubmittedAt      *time.Time
	TimeTakenSeconds int
	TotalQuestions   int
	CorrectCount     int
	ScorePercent     float64
	Passed           bool
	Answers          []Answer
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewAttempt opens an attempt whose deadline is the start plus the quiz
// duration.
func NewAttempt(userID, quizID string, startedAt time.Time, duration time.Duration) *Attempt {
	return &Attempt{
		UserID:     userID,
		QuizID:     quizID,
		Status:     AttemptInProgress,
		StartedAt:  startedAt,
		DeadlineAt: startedAt.Add(duration),
		CreatedAt:  startedAt,
		UpdatedAt:  startedAt,
	}
}

// IsTerminal reports whether the attempt has been finalized.
func (a *Attempt) IsTerminal() bool {
	return a.Status != AttemptInProgress
}

// RemainingSeconds returns the whole seconds left until the deadline, never
// negative.
func (a *Attempt) RemainingSeconds(now time.Time) int {
	remaining := a.DeadlineAt.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(remaining / time.Second)
}

// PastGrace reports whether now is beyond the deadline plus the submit
// grace window.
func (a *Attempt) PastGrace(now time.Time, grace time.Duration) bool {
	return now.After(a.DeadlineAt.Add(grace))
}

// AttemptWithUser pairs an attempt with the display identity of its owner,
// for admin listings and exports.
type AttemptWithUser struct {
	Attempt
	UserEmail    string
	UserFullName string
}

// AttemptWithQuiz pairs an attempt with the catalog names of its quiz, for
// score history listings and exports.
type AttemptWithQuiz struct {
	Attempt
	QuizTitle   string
	ChapterName string
	SubjectName string
}

// SubjectBreakdown aggregates a user's attempts within one subject.
type SubjectBreakdown struct {
	SubjectID   string
	SubjectName string
	Attempts    int
	AvgPercent  float64
}

// UserStats summarizes a user's quiz history.
type UserStats struct {
	TotalAttempts int
	Passed        int
	AvgPercent    float64
	BestPercent   float64
	LastAttemptAt *time.Time
	BySubject     []SubjectBreakdown
}

// QuizAggregate summarizes all terminal attempts of one quiz.
type QuizAggregate struct {
	QuizID     string
	QuizTitle  string
	Attempts   int
	AvgPercent float64
	PassRate   float64
}

// AttemptRepository defines the interface for attempt persistence.
type AttemptRepository interface {
	CreateAttempt(ctx context.Context, attempt *Attempt) error
	GetAttemptByID(ctx context.Context, id string) (*Attempt, error)
	// GetActiveAttempt returns the user's IN_PROGRESS attempt on the quiz,
	// or nil when there is none.
	GetActiveAttempt(ctx context.Context, userID, quizID string) (*Attempt, error)
	// FinalizeAttempt writes the terminal state and score fields. It only
	// touches rows still IN_PROGRESS and reports whether one was updated,
	// so concurrent finalizations cannot double-write.
	FinalizeAttempt(ctx context.Context, attempt *Attempt) (bool, error)
	// ListOverdueAttempts returns IN_PROGRESS attempts whose deadline lies
	// before the cutoff, oldest first.
	ListOverdueAttempts(ctx context.Context, cutoff time.Time, limit int) ([]*Attempt, error)

	ListUserAttempts(ctx context.Context, userID string, filters dto.ScoreFilters, pagination dto.Pagination) ([]AttemptWithQuiz, int, error)
	ListQuizAttempts(ctx context.Context, quizID string, pagination dto.Pagination) ([]AttemptWithUser, int, error)

	GetUserStats(ctx context.Context, userID string) (*UserStats, error)
	CountAttempts(ctx context.Context) (int, error)
	// OverallPassRate is the percentage of terminal attempts that passed.
	OverallPassRate(ctx context.Context) (float64, error)
	// TopQuizAggregates returns per-quiz aggregates for the most-attempted
	// quizzes.
	TopQuizAggregates(ctx context.Context, limit int) ([]QuizAggregate, error)
}
