package dto

import "time"

// --- Catalog DTOs ---

// SubjectRequest is the admin payload for creating or updating a subject.
type SubjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// SubjectResponse represents a subject in the API response
// @Description Subject with its chapters
type SubjectResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Chapters    []ChapterResponse `json:"chapters,omitempty"`
}

// ChapterRequest is the admin payload for creating or updating a chapter.
type ChapterRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ChapterResponse represents a chapter in the API response
type ChapterResponse struct {
	ID          string `json:"id"`
	SubjectID   string `json:"subject_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// --- Quiz DTOs ---

// QuizRequest is the admin payload for creating or updating a quiz.
// @Description Request body for quiz creation
type QuizRequest struct {
	Title           string  `json:"title"`
	Remarks         string  `json:"remarks,omitempty"`
	DateOfQuiz      string  `json:"date_of_quiz"` // Format: YYYY-MM-DD
	DurationMinutes int     `json:"duration_minutes"`
	PassPercentage  float64 `json:"pass_percentage"`
	Published       *bool   `json:"published,omitempty"`
}

// QuizResponse represents quiz metadata in the API response.
// Questions are never part of this shape; they are reachable only through
// an attempt (users) or the admin question listing.
// @Description Quiz metadata
type QuizResponse struct {
	ID              string  `json:"id"`
	ChapterID       string  `json:"chapter_id"`
	Title           string  `json:"title"`
	Remarks         string  `json:"remarks,omitempty"`
	DateOfQuiz      string  `json:"date_of_quiz"`
	DurationMinutes int     `json:"duration_minutes"`
	PassPercentage  float64 `json:"pass_percentage"`
	Published       bool    `json:"published"`
	Open            bool    `json:"open"`
	QuestionCount   int     `json:"question_count"`
}

// AdminQuizDetailResponse is the admin view of one quiz: metadata plus every
// question (drafts included) with answer keys.
type AdminQuizDetailResponse struct {
	Quiz      QuizResponse       `json:"quiz"`
	Questions []QuestionResponse `json:"questions"`
}

// QuizListResponse is a paginated quiz listing.
type QuizListResponse struct {
	Quizzes        []QuizResponse `json:"quizzes"`
	PaginationInfo PaginationInfo `json:"pagination_info"`
}

// OptionRequest is one option within a question write.
type OptionRequest struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// QuestionRequest is the admin payload for creating or updating a question
// together with its full option set.
// @Description Request body for question creation
type QuestionRequest struct {
	Statement string          `json:"statement"`
	Position  int             `json:"position,omitempty"`
	Draft     *bool           `json:"draft,omitempty"`
	Options   []OptionRequest `json:"options"`
}

// OptionResponse is one option in a response. IsCorrect is only populated
// on admin responses and post-completion reviews.
type OptionResponse struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect *bool  `json:"is_correct,omitempty"`
	Position  int    `json:"position"`
}

// QuestionResponse is one question with its options.
type QuestionResponse struct {
	ID        string           `json:"id"`
	QuizID    string           `json:"quiz_id"`
	Statement string           `json:"statement"`
	Position  int              `json:"position"`
	Draft     bool             `json:"draft,omitempty"`
	Options   []OptionResponse `json:"options"`
}

// --- Attempt DTOs ---

// AttemptStartResponse is returned when an attempt is opened (or resumed).
// @Description Attempt state handed to the quiz-taking client
type AttemptStartResponse struct {
	AttemptID        string             `json:"attempt_id"`
	QuizID           string             `json:"quiz_id"`
	QuizTitle        string             `json:"quiz_title"`
	StartedAt        time.Time          `json:"started_at"`
	DeadlineAt       time.Time          `json:"deadline_at"`
	RemainingSeconds int                `json:"remaining_seconds"`
	Questions        []QuestionResponse `json:"questions"`
}

// AnswerSubmission is one selected option in a submit payload.
type AnswerSubmission struct {
	QuestionID string `json:"question_id"`
	OptionID   string `json:"option_id"`
}

// SubmitAttemptRequest is the answer array posted when a quiz is finished.
// @Description Request body for attempt submission
type SubmitAttemptRequest struct {
	Answers []AnswerSubmission `json:"answers"`
}

// AnswerReview shows, after completion, what was chosen and what was right.
type AnswerReview struct {
	QuestionID      string `json:"question_id"`
	Statement       string `json:"statement"`
	ChosenOptionID  string `json:"chosen_option_id,omitempty"`
	CorrectOptionID string `json:"correct_option_id"`
	Correct         bool   `json:"correct"`
}

// AttemptResultResponse is the scored outcome of a terminal attempt.
// @Description Scored attempt result
type AttemptResultResponse struct {
	AttemptID        string         `json:"attempt_id"`
	QuizID           string         `json:"quiz_id"`
	QuizTitle        string         `json:"quiz_title,omitempty"`
	Status           string         `json:"status"`
	StartedAt        time.Time      `json:"started_at"`
	SubmittedAt      *time.Time     `json:"submitted_at,omitempty"`
	TimeTakenSeconds int            `json:"time_taken_seconds"`
	TotalQuestions   int            `json:"total_questions"`
	CorrectCount     int            `json:"correct_count"`
	ScorePercent     float64        `json:"score_percent"`
	PassPercentage   float64        `json:"pass_percentage"`
	Passed           bool           `json:"passed"`
	Review           []AnswerReview `json:"review,omitempty"`
}

// AttemptStateResponse is the polymorphic GET /attempts/:id shape: exactly
// one of InProgress or Result is set, matching Status.
type AttemptStateResponse struct {
	Status     string                 `json:"status"`
	InProgress *AttemptStartResponse  `json:"in_progress,omitempty"`
	Result     *AttemptResultResponse `json:"result,omitempty"`
}

// ScoreListItem is one row of a score history listing.
type ScoreListItem struct {
	AttemptID        string     `json:"attempt_id"`
	QuizID           string     `json:"quiz_id"`
	QuizTitle        string     `json:"quiz_title"`
	SubjectName      string     `json:"subject_name,omitempty"`
	ChapterName      string     `json:"chapter_name,omitempty"`
	Status           string     `json:"status"`
	SubmittedAt      *time.Time `json:"submitted_at,omitempty"`
	TimeTakenSeconds int        `json:"time_taken_seconds"`
	ScorePercent     float64    `json:"score_percent"`
	Passed           bool       `json:"passed"`
}

// ScoreListResponse is a paginated score history.
type ScoreListResponse struct {
	Scores         []ScoreListItem `json:"scores"`
	PaginationInfo PaginationInfo  `json:"pagination_info"`
}

// QuizAttemptItem is one row of the admin per-quiz attempt listing.
type QuizAttemptItem struct {
	AttemptID        string     `json:"attempt_id"`
	UserID           string     `json:"user_id"`
	UserEmail        string     `json:"user_email"`
	UserFullName     string     `json:"user_full_name,omitempty"`
	Status           string     `json:"status"`
	SubmittedAt      *time.Time `json:"submitted_at,omitempty"`
	TimeTakenSeconds int        `json:"time_taken_seconds"`
	ScorePercent     float64    `json:"score_percent"`
	Passed           bool       `json:"passed"`
}

// QuizAttemptListResponse is the paginated admin attempt listing of a quiz.
type QuizAttemptListResponse struct {
	QuizID         string            `json:"quiz_id"`
	QuizTitle      string            `json:"quiz_title"`
	Attempts       []QuizAttemptItem `json:"attempts"`
	PaginationInfo PaginationInfo    `json:"pagination_info"`
}

// --- Admin summary and search DTOs ---

// QuizAggregateDTO summarizes all terminal attempts of one quiz.
type QuizAggregateDTO struct {
	QuizID     string  `json:"quiz_id"`
	QuizTitle  string  `json:"quiz_title"`
	Attempts   int     `json:"attempts"`
	AvgPercent float64 `json:"avg_percent"`
	PassRate   float64 `json:"pass_rate"`
}

// AdminSummaryResponse is the admin dashboard payload.
// @Description Platform-wide counts and attempt aggregates
type AdminSummaryResponse struct {
	Users         int                `json:"users"`
	Subjects      int                `json:"subjects"`
	Chapters      int                `json:"chapters"`
	Quizzes       int                `json:"quizzes"`
	Questions     int                `json:"questions"`
	TotalAttempts int                `json:"total_attempts"`
	PassRate      float64            `json:"pass_rate"`
	TopQuizzes    []QuizAggregateDTO `json:"top_quizzes"`
}

// SearchRequest is the admin search query.
type SearchRequest struct {
	Query string `query:"q"`
	Type  string `query:"type"` // users|subjects|quizzes|questions|all
	Limit int    `query:"limit"`
}

// QuestionSearchItem is a question hit with just enough context to open it.
type QuestionSearchItem struct {
	ID        string `json:"id"`
	QuizID    string `json:"quiz_id"`
	Statement string `json:"statement"`
}

// SearchResponse groups admin search hits per entity.
type SearchResponse struct {
	Query     string               `json:"query"`
	Users     []UserListItem       `json:"users,omitempty"`
	Subjects  []SubjectResponse    `json:"subjects,omitempty"`
	Quizzes   []QuizResponse       `json:"quizzes,omitempty"`
	Questions []QuestionSearchItem `json:"questions,omitempty"`
}
