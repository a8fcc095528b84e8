package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/fariyalkhan17/Quizzmaster/internal/cache"
	"github.com/fariyalkhan17/Quizzmaster/internal/domain"
	"github.com/fariyalkhan17/Quizzmaster/internal/dto"
	"github.com/fariyalkhan17/Quizzmaster/internal/logger"

	"go.uber.org/zap"
)

// QuizService manages quizzes and their questions. Write operations are
// admin-only; reads come in an admin flavor (answer keys, drafts) and a
// public flavor (metadata only).
type QuizService interface {
	CreateQuiz(ctx context.Context, chapterID string, req dto.QuizRequest) (*dto.QuizResponse, error)
	UpdateQuiz(ctx context.Context, id string, req dto.QuizRequest) (*dto.QuizResponse, error)
	DeleteQuiz(ctx context.Context, id string) error
	// GetQuizAdmin returns the quiz with every question, drafts and answer
	// keys included.
	GetQuizAdmin(ctx context.Context, id string) (*dto.AdminQuizDetailResponse, error)

	// GetQuiz is the public lookup: published quizzes only, metadata only.
	GetQuiz(ctx context.Context, id string) (*dto.QuizResponse, error)
	ListQuizzes(ctx context.Context, filters domain.QuizFilters, pagination dto.Pagination) (*dto.QuizListResponse, error)

	CreateQuestion(ctx context.Context, quizID string, req dto.QuestionRequest) (*dto.QuestionResponse, error)
	UpdateQuestion(ctx context.Context, id string, req dto.QuestionRequest) (*dto.QuestionResponse, error)
	DeleteQuestion(ctx context.Context, id string) error
}

type quizServiceImpl struct {
	quizRepo  domain.QuizRepository
	txManager domain.TransactionManager
	cache     domain.Cache
	metaTTL   time.Duration
}

// NewQuizService creates a new instance of QuizService.
func NewQuizService(quizRepo domain.QuizRepository, txManager domain.TransactionManager, cacheClient domain.Cache, metaTTL time.Duration) QuizService {
	return &quizServiceImpl{
		quizRepo:  quizRepo,
		txManager: txManager,
		cache:     cacheClient,
		metaTTL:   metaTTL,
	}
}

func quizMetaCacheKey(id string) string {
	return cache.GenerateCacheKey("quiz", "meta", id)
}

// invalidateMeta drops the cached metadata of one quiz. Cache failures only
// degrade freshness, so they are logged and swallowed.
func (s *quizServiceImpl) invalidateMeta(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, quizMetaCacheKey(id)); err != nil {
		logger.Get().Warn("Failed to invalidate quiz metadata cache",
			zap.String("quizID", id), zap.Error(err))
	}
}

func toQuizResponse(q *domain.Quiz, now time.Time) dto.QuizResponse {
	return dto.QuizResponse{
		ID:              q.ID,
		ChapterID:       q.ChapterID,
		Title:           q.Title,
		Remarks:         q.Remarks,
		DateOfQuiz:      q.DateOfQuiz.Format("2006-01-02"),
		DurationMinutes: q.DurationMinutes,
		PassPercentage:  q.PassPercentage,
		Published:       q.Published,
		Open:            q.IsOpen(now),
		QuestionCount:   q.QuestionCount,
	}
}

// toQuestionResponse converts a question. The answer key is attached only
// when withKey is set; public shapes never carry it.
func toQuestionResponse(q *domain.Question, withKey bool) dto.QuestionResponse {
	resp := dto.QuestionResponse{
		ID:        q.ID,
		QuizID:    q.QuizID,
		Statement: q.Statement,
		Position:  q.Position,
		Draft:     q.Draft,
	}
	for _, o := range q.Options {
		opt := dto.OptionResponse{
			ID:       o.ID,
			Text:     o.Text,
			Position: o.Position,
		}
		if withKey {
			isCorrect := o.IsCorrect
			opt.IsCorrect = &isCorrect
		}
		resp.Options = append(resp.Options, opt)
	}
	return resp
}

func parseQuizDate(value string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, domain.NewValidationError("date_of_quiz must be a YYYY-MM-DD date")
	}
	return date, nil
}

func (s *quizServiceImpl) CreateQuiz(ctx context.Context, chapterID string, req dto.QuizRequest) (*dto.QuizResponse, error) {
	date, err := parseQuizDate(req.DateOfQuiz)
	if err != nil {
		return nil, err
	}

	quiz := domain.NewQuiz(chapterID, strings.TrimSpace(req.Title), req.Remarks, date, req.DurationMinutes, req.PassPercentage)
	if err := quiz.Validate(); err != nil {
		return nil, err
	}
	// New quizzes always start unpublished; publication is a separate update
	// once questions exist.
	if err := s.quizRepo.CreateQuiz(ctx, quiz); err != nil {
		return nil, domain.NewInternalError("failed to create quiz", err)
	}

	resp := toQuizResponse(quiz, time.Now())
	return &resp, nil
}

func (s *quizServiceImpl) UpdateQuiz(ctx context.Context, id string, req dto.QuizRequest) (*dto.QuizResponse, error) {
	quiz, err := s.quizRepo.GetQuizByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("failed to get quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(id)
	}

	date, err := parseQuizDate(req.DateOfQuiz)
	if err != nil {
		return nil, err
	}
	quiz.Title = strings.TrimSpace(req.Title)
	quiz.Remarks = req.Remarks
	quiz.DateOfQuiz = date
	quiz.DurationMinutes = req.DurationMinutes
	quiz.PassPercentage = req.PassPercentage
	if err := quiz.Validate(); err != nil {
		return nil, err
	}

	if req.Published != nil && *req.Published != quiz.Published {
		if *req.Published {
			if err := s.checkPublishable(ctx, quiz); err != nil {
				return nil, err
			}
		}
		quiz.Published = *req.Published
	}

	if err := s.quizRepo.UpdateQuiz(ctx, quiz); err != nil {
		return nil, domain.NewInternalError("failed to update quiz", err)
	}
	s.invalidateMeta(ctx, quiz.ID)

	resp := toQuizResponse(quiz, time.Now())
	return &resp, nil
}

// checkPublishable enforces the publication rule: at least one live
// non-draft question, each carrying a well-formed option set.
func (s *quizServiceImpl) checkPublishable(ctx context.Context, quiz *domain.Quiz) error {
	questions, err := s.quizRepo.GetQuestionsByQuiz(ctx, quiz.ID, false)
	if err != nil {
		return domain.NewInternalError("failed to load questions", err)
	}
	if len(questions) == 0 {
		return domain.NewQuizUnpublishableError("a quiz needs at least one reviewed question before publishing")
	}
	for _, q := range questions {
		if err := domain.ValidateOptionSet(q.Options); err != nil {
			return domain.NewQuizUnpublishableError("question " + q.ID + " has a malformed option set")
		}
	}
	return nil
}

func (s *quizServiceImpl) DeleteQuiz(ctx context.Context, id string) error {
	quiz, err := s.quizRepo.GetQuizByID(ctx, id)
	if err != nil {
		return domain.NewInternalError("failed to get quiz", err)
	}
	if quiz == nil {
		return domain.NewQuizNotFoundError(id)
	}
	if err := s.quizRepo.DeleteQuiz(ctx, id); err != nil {
		return domain.NewInternalError("failed to delete quiz", err)
	}
	s.invalidateMeta(ctx, id)
	return nil
}

func (s *quizServiceImpl) GetQuizAdmin(ctx context.Context, id string) (*dto.AdminQuizDetailResponse, error) {
	quiz, err := s.quizRepo.GetQuizByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("failed to get quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(id)
	}

	questions, err := s.quizRepo.GetQuestionsByQuiz(ctx, id, true)
	if err != nil {
		return nil, domain.NewInternalError("failed to load questions", err)
	}

	resp := &dto.AdminQuizDetailResponse{Quiz: toQuizResponse(quiz, time.Now())}
	for _, q := range questions {
		resp.Questions = append(resp.Questions, toQuestionResponse(q, true))
	}
	return resp, nil
}

func (s *quizServiceImpl) GetQuiz(ctx context.Context, id string) (*dto.QuizResponse, error) {
	key := quizMetaCacheKey(id)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		if err == nil {
			var resp dto.QuizResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				return &resp, nil
			}
			logger.Get().Warn("Failed to decode cached quiz metadata, refetching", zap.Error(err))
		} else if err != domain.ErrCacheMiss {
			logger.Get().Warn("Quiz metadata cache read failed", zap.Error(err))
		}
	}

	quiz, err := s.quizRepo.GetQuizByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("failed to get quiz", err)
	}
	if quiz == nil || !quiz.Published {
		return nil, domain.NewQuizNotFoundError(id)
	}
	resp := toQuizResponse(quiz, time.Now())

	// The open flag flips only at a date boundary, so a short TTL keeps the
	// cached copy honest.
	if s.cache != nil {
		if payload, err := json.Marshal(resp); err == nil {
			if err := s.cache.Set(ctx, key, string(payload), s.metaTTL); err != nil {
				logger.Get().Warn("Quiz metadata cache write failed", zap.Error(err))
			}
		}
	}
	return &resp, nil
}

func (s *quizServiceImpl) ListQuizzes(ctx context.Context, filters domain.QuizFilters, pagination dto.Pagination) (*dto.QuizListResponse, error) {
	quizzes, total, err := s.quizRepo.ListQuizzes(ctx, filters, pagination)
	if err != nil {
		return nil, domain.NewInternalError("failed to list quizzes", err)
	}

	now := time.Now()
	resp := &dto.QuizListResponse{
		Quizzes:        make([]dto.QuizResponse, 0, len(quizzes)),
		PaginationInfo: dto.NewPaginationInfo(pagination, total),
	}
	for i := range quizzes {
		resp.Quizzes = append(resp.Quizzes, toQuizResponse(&quizzes[i], now))
	}
	return resp, nil
}

func questionFromRequest(quizID string, req dto.QuestionRequest) *domain.Question {
	question := domain.NewQuestion(quizID, strings.TrimSpace(req.Statement), req.Position)
	if req.Draft != nil {
		question.Draft = *req.Draft
	}
	for i, o := range req.Options {
		question.Options = append(question.Options, domain.NewOption("", strings.TrimSpace(o.Text), o.IsCorrect, i+1))
	}
	return question
}

func (s *quizServiceImpl) CreateQuestion(ctx context.Context, quizID string, req dto.QuestionRequest) (*dto.QuestionResponse, error) {
	quiz, err := s.quizRepo.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, domain.NewInternalError("failed to get quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(quizID)
	}

	question := questionFromRequest(quizID, req)
	if question.Position == 0 {
		question.Position = quiz.QuestionCount + 1
	}
	if err := question.Validate(); err != nil {
		return nil, err
	}

	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		return s.quizRepo.CreateQuestion(ctx, question)
	})
	if err != nil {
		return nil, domain.NewInternalError("failed to create question", err)
	}
	s.invalidateMeta(ctx, quizID)

	resp := toQuestionResponse(question, true)
	return &resp, nil
}

func (s *quizServiceImpl) UpdateQuestion(ctx context.Context, id string, req dto.QuestionRequest) (*dto.QuestionResponse, error) {
	question, err := s.quizRepo.GetQuestionByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("failed to get question", err)
	}
	if question == nil {
		return nil, domain.NewNotFoundError("question not found")
	}

	updated := questionFromRequest(question.QuizID, req)
	updated.ID = question.ID
	if updated.Position == 0 {
		updated.Position = question.Position
	}
	if req.Draft == nil {
		updated.Draft = question.Draft
	}
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		return s.quizRepo.UpdateQuestion(ctx, updated)
	})
	if err != nil {
		return nil, domain.NewInternalError("failed to update question", err)
	}
	s.invalidateMeta(ctx, updated.QuizID)

	resp := toQuestionResponse(updated, true)
	return &resp, nil
}

// DeleteQuestion soft-deletes a question. Removing the last reviewed question
// of a published quiz unpublishes it so users never see an empty quiz.
func (s *quizServiceImpl) DeleteQuestion(ctx context.Context, id string) error {
	question, err := s.quizRepo.GetQuestionByID(ctx, id)
	if err != nil {
		return domain.NewInternalError("failed to get question", err)
	}
	if question == nil {
		return domain.NewNotFoundError("question not found")
	}

	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.quizRepo.DeleteQuestion(ctx, id); err != nil {
			return domain.NewInternalError("failed to delete question", err)
		}

		remaining, err := s.quizRepo.CountQuestionsByQuiz(ctx, question.QuizID, false)
		if err != nil {
			return domain.NewInternalError("failed to count remaining questions", err)
		}
		if remaining > 0 {
			return nil
		}

		quiz, err := s.quizRepo.GetQuizByID(ctx, question.QuizID)
		if err != nil {
			return domain.NewInternalError("failed to get quiz", err)
		}
		if quiz != nil && quiz.Published {
			quiz.Published = false
			if err := s.quizRepo.UpdateQuiz(ctx, quiz); err != nil {
				return domain.NewInternalError("failed to unpublish empty quiz", err)
			}
			logger.Get().Info("Quiz unpublished after its last question was removed",
				zap.String("quizID", quiz.ID))
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidateMeta(ctx, question.QuizID)
	return nil
}
