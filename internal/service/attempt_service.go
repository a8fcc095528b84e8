package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/fariyalkhan17/Quizzmaster/internal/domain"
	"github.com/fariyalkhan17/Quizzmaster/internal/dto"
	"github.com/fariyalkhan17/Quizzmaster/internal/logger"
	"github.com/fariyalkhan17/Quizzmaster/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// AttemptService runs the quiz-taking flow: opening attempts, handing out
// questions without answer keys, scoring submissions and expiring attempts
// whose deadline passed.
type AttemptService interface {
	// StartAttempt opens an attempt on an open quiz. Starting again while an
	// attempt is still running resumes it instead of opening a second one.
	StartAttempt(ctx context.Context, userID, quizID string) (*dto.AttemptStartResponse, error)
	// GetAttempt returns the attempt in its current shape: the running state
	// with questions while in progress, the scored result once terminal.
	GetAttempt(ctx context.Context, userID, attemptID string, isAdmin bool) (*dto.AttemptStateResponse, error)
	SubmitAttempt(ctx context.Context, userID, attemptID string, req dto.SubmitAttemptRequest) (*dto.AttemptResultResponse, error)

	// FinalizeOverdue expires in-progress attempts whose deadline plus grace
	// has passed, returning how many were closed.
	FinalizeOverdue(ctx context.Context) (int, error)

	ListQuizAttempts(ctx context.Context, quizID string, pagination dto.Pagination) (*dto.QuizAttemptListResponse, error)
	ExportQuizAttemptsCSV(ctx context.Context, quizID string) ([]byte, error)
}

type attemptServiceImpl struct {
	attemptRepo domain.AttemptRepository
	quizRepo    domain.QuizRepository
	txManager   domain.TransactionManager
	grace       time.Duration
}

// NewAttemptService creates a new instance of AttemptService.
func NewAttemptService(attemptRepo domain.AttemptRepository, quizRepo domain.QuizRepository, txManager domain.TransactionManager, grace time.Duration) AttemptService {
	return &attemptServiceImpl{
		attemptRepo: attemptRepo,
		quizRepo:    quizRepo,
		txManager:   txManager,
		grace:       grace,
	}
}

func (s *attemptServiceImpl) StartAttempt(ctx context.Context, userID, quizID string) (*dto.AttemptStartResponse, error) {
	now := time.Now()

	quiz, err := s.quizRepo.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, domain.NewInternalError("failed to get quiz", err)
	}
	if quiz == nil || !quiz.Published {
		return nil, domain.NewQuizNotFoundError(quizID)
	}
	if !quiz.IsOpen(now) {
		return nil, domain.NewQuizNotOpenError(quizID)
	}

	questions, err := s.quizRepo.GetQuestionsByQuiz(ctx, quizID, false)
	if err != nil {
		return nil, domain.NewInternalError("failed to load questions", err)
	}
	if len(questions) == 0 {
		return nil, domain.NewQuizNotOpenError(quizID)
	}

	var attempt *domain.Attempt
	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		active, err := s.attemptRepo.GetActiveAttempt(ctx, userID, quizID)
		if err != nil {
			return domain.NewInternalError("failed to check active attempt", err)
		}
		if active != nil && !active.PastGrace(now, s.grace) {
			attempt = active
			return nil
		}
		if active != nil {
			// The previous run was abandoned; close it before opening a new
			// one.
			s.markExpired(active, quiz)
			if _, err := s.attemptRepo.FinalizeAttempt(ctx, active); err != nil {
				return domain.NewInternalError("failed to expire stale attempt", err)
			}
		}

		attempt = domain.NewAttempt(userID, quizID, now, quiz.Duration())
		attempt.TotalQuestions = len(questions)
		if err := s.attemptRepo.CreateAttempt(ctx, attempt); err != nil {
			return domain.NewInternalError("failed to create attempt", err)
		}
		logger.Get().Info("Attempt started",
			zap.String("attemptID", attempt.ID),
			zap.String("userID", userID),
			zap.String("quizID", quizID))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.buildStartResponse(attempt, quiz, questions, now), nil
}

func (s *attemptServiceImpl) buildStartResponse(attempt *domain.Attempt, quiz *domain.Quiz, questions []*domain.Question, now time.Time) *dto.AttemptStartResponse {
	resp := &dto.AttemptStartResponse{
		AttemptID:        attempt.ID,
		QuizID:           quiz.ID,
		QuizTitle:        quiz.Title,
		StartedAt:        attempt.StartedAt,
		DeadlineAt:       attempt.DeadlineAt,
		RemainingSeconds: attempt.RemainingSeconds(now),
	}
	for _, q := range questions {
		resp.Questions = append(resp.Questions, toQuestionResponse(q, false))
	}
	return resp
}

func (s *attemptServiceImpl) GetAttempt(ctx context.Context, userID, attemptID string, isAdmin bool) (*dto.AttemptStateResponse, error) {
	attempt, err := s.attemptRepo.GetAttemptByID(ctx, attemptID)
	if err != nil {
		return nil, domain.NewInternalError("failed to get attempt", err)
	}
	// Hide other users' attempts entirely rather than acknowledging them.
	if attempt == nil || (!isAdmin && attempt.UserID != userID) {
		return nil, domain.NewNotFoundError("attempt not found")
	}

	quiz, err := s.quizRepo.GetQuizByID(ctx, attempt.QuizID)
	if err != nil {
		return nil, domain.NewInternalError("failed to get quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewNotFoundError("attempt not found")
	}

	now := time.Now()
	if !attempt.IsTerminal() && attempt.PastGrace(now, s.grace) {
		// Lazily expire rather than waiting for the sweeper.
		s.markExpired(attempt, quiz)
		if _, err := s.attemptRepo.FinalizeAttempt(ctx, attempt); err != nil {
			return nil, domain.NewInternalError("failed to expire attempt", err)
		}
	}

	if !attempt.IsTerminal() {
		questions, err := s.quizRepo.GetQuestionsByQuiz(ctx, attempt.QuizID, false)
		if err != nil {
			return nil, domain.NewInternalError("failed to load questions", err)
		}
		return &dto.AttemptStateResponse{
			Status:     string(attempt.Status),
			InProgress: s.buildStartResponse(attempt, quiz, questions, now),
		}, nil
	}

	result, err := s.buildResult(ctx, attempt, quiz, true)
	if err != nil {
		return nil, err
	}
	return &dto.AttemptStateResponse{
		Status: string(attempt.Status),
		Result: result,
	}, nil
}

func (s *attemptServiceImpl) SubmitAttempt(ctx context.Context, userID, attemptID string, req dto.SubmitAttemptRequest) (*dto.AttemptResultResponse, error) {
	attempt, err := s.attemptRepo.GetAttemptByID(ctx, attemptID)
	if err != nil {
		return nil, domain.NewInternalError("failed to get attempt", err)
	}
	if attempt == nil || attempt.UserID != userID {
		return nil, domain.NewNotFoundError("attempt not found")
	}
	switch attempt.Status {
	case domain.AttemptSubmitted:
		return nil, domain.NewAttemptSubmittedError(attemptID)
	case domain.AttemptExpired:
		return nil, domain.NewAttemptExpiredError(attemptID)
	}

	quiz, err := s.quizRepo.GetQuizByID(ctx, attempt.QuizID)
	if err != nil {
		return nil, domain.NewInternalError("failed to get quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewNotFoundError("attempt not found")
	}

	now := time.Now()
	if attempt.PastGrace(now, s.grace) {
		s.markExpired(attempt, quiz)
		if _, err := s.attemptRepo.FinalizeAttempt(ctx, attempt); err != nil {
			return nil, domain.NewInternalError("failed to expire attempt", err)
		}
		return nil, domain.NewAttemptExpiredError(attemptID)
	}

	// Score against the reviewed question set as it stands at submission.
	questions, err := s.quizRepo.GetQuestionsByQuiz(ctx, attempt.QuizID, false)
	if err != nil {
		return nil, domain.NewInternalError("failed to load questions", err)
	}
	byID := make(map[string]*domain.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	seen := make(map[string]bool, len(req.Answers))
	correct := 0
	answers := make([]domain.Answer, 0, len(req.Answers))
	for _, a := range req.Answers {
		if seen[a.QuestionID] {
			return nil, domain.NewValidationError("duplicate answer for question " + a.QuestionID)
		}
		seen[a.QuestionID] = true

		question, ok := byID[a.QuestionID]
		if !ok {
			return nil, domain.NewValidationError("question " + a.QuestionID + " does not belong to this quiz")
		}
		var chosen *domain.Option
		for _, o := range question.Options {
			if o.ID == a.OptionID {
				chosen = o
				break
			}
		}
		if chosen == nil {
			return nil, domain.NewValidationError("option " + a.OptionID + " does not belong to question " + a.QuestionID)
		}
		if chosen.IsCorrect {
			correct++
		}
		answers = append(answers, domain.Answer{QuestionID: a.QuestionID, OptionID: a.OptionID})
	}

	attempt.Status = domain.AttemptSubmitted
	attempt.SubmittedAt = &now
	attempt.TimeTakenSeconds = clampTimeTaken(attempt.StartedAt, now, quiz.Duration())
	attempt.TotalQuestions = len(questions)
	attempt.CorrectCount = correct
	attempt.ScorePercent = util.ScorePercent(correct, len(questions))
	attempt.Passed = attempt.ScorePercent >= quiz.PassPercentage
	attempt.Answers = answers

	updated, err := s.attemptRepo.FinalizeAttempt(ctx, attempt)
	if err != nil {
		return nil, domain.NewInternalError("failed to finalize attempt", err)
	}
	if !updated {
		// A concurrent submit or the sweeper won the race.
		return nil, domain.NewAttemptSubmittedError(attemptID)
	}

	logger.Get().Info("Attempt submitted",
		zap.String("attemptID", attempt.ID),
		zap.String("userID", userID),
		zap.Float64("scorePercent", attempt.ScorePercent),
		zap.Bool("passed", attempt.Passed))

	return s.buildResult(ctx, attempt, quiz, true)
}

// markExpired fills the terminal fields of an attempt that ran out of time.
func (s *attemptServiceImpl) markExpired(attempt *domain.Attempt, quiz *domain.Quiz) {
	attempt.Status = domain.AttemptExpired
	attempt.TimeTakenSeconds = int(quiz.Duration() / time.Second)
	attempt.CorrectCount = 0
	attempt.ScorePercent = 0
	attempt.Passed = false
}

func clampTimeTaken(started, now time.Time, duration time.Duration) int {
	taken := now.Sub(started)
	if taken < 0 {
		taken = 0
	}
	if taken > duration {
		taken = duration
	}
	return int(taken / time.Second)
}

// buildResult assembles the scored shape of a terminal attempt, with a
// per-question review when asked for.
func (s *attemptServiceImpl) buildResult(ctx context.Context, attempt *domain.Attempt, quiz *domain.Quiz, withReview bool) (*dto.AttemptResultResponse, error) {
	result := &dto.AttemptResultResponse{
		AttemptID:        attempt.ID,
		QuizID:           attempt.QuizID,
		QuizTitle:        quiz.Title,
		Status:           string(attempt.Status),
		StartedAt:        attempt.StartedAt,
		SubmittedAt:      attempt.SubmittedAt,
		TimeTakenSeconds: attempt.TimeTakenSeconds,
		TotalQuestions:   attempt.TotalQuestions,
		CorrectCount:     attempt.CorrectCount,
		ScorePercent:     attempt.ScorePercent,
		PassPercentage:   quiz.PassPercentage,
		Passed:           attempt.Passed,
	}
	if !withReview {
		return result, nil
	}

	// Soft-deleted questions keep their options, so reviews stay complete
	// even after the quiz is edited.
	questions, err := s.quizRepo.GetQuestionsByQuiz(ctx, attempt.QuizID, true)
	if err != nil {
		return nil, domain.NewInternalError("failed to load questions for review", err)
	}
	byID := make(map[string]*domain.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	chosenByQuestion := make(map[string]string, len(attempt.Answers))
	for _, a := range attempt.Answers {
		chosenByQuestion[a.QuestionID] = a.OptionID
	}

	for _, q := range questions {
		if q.Draft {
			continue
		}
		correctOption := q.CorrectOption()
		if correctOption == nil {
			continue
		}
		chosen := chosenByQuestion[q.ID]
		result.Review = append(result.Review, dto.AnswerReview{
			QuestionID:      q.ID,
			Statement:       q.Statement,
			ChosenOptionID:  chosen,
			CorrectOptionID: correctOption.ID,
			Correct:         chosen == correctOption.ID,
		})
	}
	return result, nil
}

func (s *attemptServiceImpl) FinalizeOverdue(ctx context.Context) (int, error) {
	now := time.Now()
	overdue, err := s.attemptRepo.ListOverdueAttempts(ctx, now.Add(-s.grace), 100)
	if err != nil {
		return 0, domain.NewInternalError("failed to list overdue attempts", err)
	}

	expired := 0
	for _, attempt := range overdue {
		quiz, err := s.quizRepo.GetQuizByID(ctx, attempt.QuizID)
		if err != nil {
			logger.Get().Warn("Sweeper failed to load quiz",
				zap.String("attemptID", attempt.ID), zap.Error(err))
			continue
		}
		if quiz == nil {
			// Quiz was deleted from under the attempt; close it with the
			// elapsed time.
			quiz = &domain.Quiz{DurationMinutes: int(attempt.DeadlineAt.Sub(attempt.StartedAt) / time.Minute)}
		}
		s.markExpired(attempt, quiz)
		updated, err := s.attemptRepo.FinalizeAttempt(ctx, attempt)
		if err != nil {
			logger.Get().Warn("Sweeper failed to expire attempt",
				zap.String("attemptID", attempt.ID), zap.Error(err))
			continue
		}
		if updated {
			expired++
		}
	}
	if expired > 0 {
		logger.Get().Info("Expired overdue attempts", zap.Int("count", expired))
	}
	return expired, nil
}

func (s *attemptServiceImpl) ListQuizAttempts(ctx context.Context, quizID string, pagination dto.Pagination) (*dto.QuizAttemptListResponse, error) {
	quiz, err := s.quizRepo.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, domain.NewInternalError("failed to get quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(quizID)
	}

	attempts, total, err := s.attemptRepo.ListQuizAttempts(ctx, quizID, pagination)
	if err != nil {
		return nil, domain.NewInternalError("failed to list attempts", err)
	}

	resp := &dto.QuizAttemptListResponse{
		QuizID:         quiz.ID,
		QuizTitle:      quiz.Title,
		Attempts:       make([]dto.QuizAttemptItem, 0, len(attempts)),
		PaginationInfo: dto.NewPaginationInfo(pagination, total),
	}
	for _, a := range attempts {
		resp.Attempts = append(resp.Attempts, dto.QuizAttemptItem{
			AttemptID:        a.ID,
			UserID:           a.UserID,
			UserEmail:        a.UserEmail,
			UserFullName:     a.UserFullName,
			Status:           string(a.Status),
			SubmittedAt:      a.SubmittedAt,
			TimeTakenSeconds: a.TimeTakenSeconds,
			ScorePercent:     a.ScorePercent,
			Passed:           a.Passed,
		})
	}
	return resp, nil
}

// ExportQuizAttemptsCSV renders every terminal attempt of a quiz as CSV. The
// quiz lookup and the attempt pages are fetched concurrently.
func (s *attemptServiceImpl) ExportQuizAttemptsCSV(ctx context.Context, quizID string) ([]byte, error) {
	var (
		quiz     *domain.Quiz
		attempts []domain.AttemptWithUser
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		q, err := s.quizRepo.GetQuizByID(gctx, quizID)
		if err != nil {
			return domain.NewInternalError("failed to get quiz", err)
		}
		if q == nil {
			return domain.NewQuizNotFoundError(quizID)
		}
		quiz = q
		return nil
	})
	g.Go(func() error {
		const pageSize = 500
		for offset := 0; ; offset += pageSize {
			page, total, err := s.attemptRepo.ListQuizAttempts(gctx, quizID, dto.Pagination{Limit: pageSize, Offset: offset})
			if err != nil {
				return domain.NewInternalError("failed to list attempts", err)
			}
			attempts = append(attempts, page...)
			if offset+pageSize >= total || len(page) == 0 {
				return nil
			}
		}
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"attempt_id", "user_email", "user_full_name", "status", "started_at", "submitted_at", "time_taken_seconds", "total_questions", "correct_count", "score_percent", "passed"}
	if err := w.Write(header); err != nil {
		return nil, domain.NewInternalError("failed to write csv", err)
	}
	for _, a := range attempts {
		submittedAt := ""
		if a.SubmittedAt != nil {
			submittedAt = a.SubmittedAt.Format(time.RFC3339)
		}
		record := []string{
			a.ID,
			a.UserEmail,
			a.UserFullName,
			string(a.Status),
			a.StartedAt.Format(time.RFC3339),
			submittedAt,
			strconv.Itoa(a.TimeTakenSeconds),
			strconv.Itoa(a.TotalQuestions),
			strconv.Itoa(a.CorrectCount),
			fmt.Sprintf("%.1f", a.ScorePercent),
			strconv.FormatBool(a.Passed),
		}
		if err := w.Write(record); err != nil {
			return nil, domain.NewInternalError("failed to write csv", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, domain.NewInternalError("failed to flush csv", err)
	}

	logger.Get().Info("Exported quiz attempts",
		zap.String("quizID", quiz.ID),
		zap.Int("rows", len(attempts)))
	return buf.Bytes(), nil
}
