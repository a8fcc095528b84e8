package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/fariyalkhan17/Quizzmaster/internal/domain"
	"github.com/fariyalkhan17/Quizzmaster/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func validQuestion(id, quizID string) *domain.Question {
	return &domain.Question{
		ID:     id,
		QuizID: quizID,
		Options: []*domain.Option{
			{ID: id + "-o1", Text: "Right", IsCorrect: true, Position: 1},
			{ID: id + "-o2", Text: "Wrong", Position: 2},
		},
	}
}

func TestQuizService_CreateQuiz(t *testing.T) {
	ctx := context.Background()

	t.Run("StartsUnpublished", func(t *testing.T) {
		quizRepo := new(MockQuizRepository)
		quizRepo.On("CreateQuiz", ctx, mock.AnythingOfType("*domain.Quiz")).Return(nil)
		svc := NewQuizService(quizRepo, new(MockTransactionManager), nil, time.Minute)

		published := true
		resp, err := svc.CreateQuiz(ctx, "ch1", dto.QuizRequest{
			Title:           "Kinematics Basics",
			DateOfQuiz:      "2026-09-01",
			DurationMinutes: 30,
			PassPercentage:  60,
			Published:       &published,
		})

		require.NoError(t, err)
		assert.False(t, resp.Published)
		created := quizRepo.Calls[0].Arguments.Get(1).(*domain.Quiz)
		assert.False(t, created.Published)
	})

	t.Run("BadDate", func(t *testing.T) {
		svc := NewQuizService(new(MockQuizRepository), new(MockTransactionManager), nil, time.Minute)

		_, err := svc.CreateQuiz(ctx, "ch1", dto.QuizRequest{Title: "Q", DateOfQuiz: "01/09/2026", DurationMinutes: 30})

		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.ErrValidation, domainErr.Code)
	})
}

func TestQuizService_UpdateQuiz_Publish(t *testing.T) {
	ctx := context.Background()
	published := true

	baseQuiz := func() *domain.Quiz {
		return &domain.Quiz{
			ID:              "q1",
			ChapterID:       "ch1",
			Title:           "Kinematics Basics",
			DateOfQuiz:      time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			DurationMinutes: 30,
			PassPercentage:  60,
		}
	}
	req := dto.QuizRequest{
		Title:           "Kinematics Basics",
		DateOfQuiz:      "2026-09-01",
		DurationMinutes: 30,
		PassPercentage:  60,
		Published:       &published,
	}

	t.Run("WithReviewedQuestions", func(t *testing.T) {
		quizRepo := new(MockQuizRepository)
		quizRepo.On("GetQuizByID", ctx, "q1").Return(baseQuiz(), nil)
		quizRepo.On("GetQuestionsByQuiz", ctx, "q1", false).Return([]*domain.Question{validQuestion("qq1", "q1")}, nil)
		quizRepo.On("UpdateQuiz", ctx, mock.AnythingOfType("*domain.Quiz")).Return(nil)
		svc := NewQuizService(quizRepo, new(MockTransactionManager), nil, time.Minute)

		resp, err := svc.UpdateQuiz(ctx, "q1", req)

		require.NoError(t, err)
		assert.True(t, resp.Published)
	})

	t.Run("NoQuestions", func(t *testing.T) {
		quizRepo := new(MockQuizRepository)
		quizRepo.On("GetQuizByID", ctx, "q1").Return(baseQuiz(), nil)
		quizRepo.On("GetQuestionsByQuiz", ctx, "q1", false).Return([]*domain.Question{}, nil)
		svc := NewQuizService(quizRepo, new(MockTransactionManager), nil, time.Minute)

		_, err := svc.UpdateQuiz(ctx, "q1", req)

		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.ErrQuizUnpublishable, domainErr.Code)
		quizRepo.AssertNotCalled(t, "UpdateQuiz", ctx, mock.Anything)
	})

	t.Run("MalformedOptionSet", func(t *testing.T) {
		broken := validQuestion("qq1", "q1")
		broken.Options[0].IsCorrect = false

		quizRepo := new(MockQuizRepository)
		quizRepo.On("GetQuizByID", ctx, "q1").Return(baseQuiz(), nil)
		quizRepo.On("GetQuestionsByQuiz", ctx, "q1", false).Return([]*domain.Question{broken}, nil)
		svc := NewQuizService(quizRepo, new(MockTransactionManager), nil, time.Minute)

		_, err := svc.UpdateQuiz(ctx, "q1", req)

		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.ErrQuizUnpublishable, domainErr.Code)
	})
}

func TestQuizService_GetQuiz(t *testing.T) {
	ctx := context.Background()

	t.Run("UnpublishedHidden", func(t *testing.T) {
		quizRepo := new(MockQuizRepository)
		quizRepo.On("GetQuizByID", ctx, "q1").Return(&domain.Quiz{ID: "q1", Published: false}, nil)
		svc := NewQuizService(quizRepo, new(MockTransactionManager), nil, time.Minute)

		_, err := svc.GetQuiz(ctx, "q1")

		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.ErrQuizNotFound, domainErr.Code)
	})

	t.Run("OpenFlag", func(t *testing.T) {
		quizRepo := new(MockQuizRepository)
		quizRepo.On("GetQuizByID", ctx, "q1").Return(&domain.Quiz{
			ID:         "q1",
			Published:  true,
			DateOfQuiz: time.Now().Add(48 * time.Hour),
		}, nil)
		svc := NewQuizService(quizRepo, new(MockTransactionManager), nil, time.Minute)

		resp, err := svc.GetQuiz(ctx, "q1")

		require.NoError(t, err)
		assert.True(t, resp.Published)
		assert.False(t, resp.Open)
	})

	t.Run("CacheHit", func(t *testing.T) {
		cached, err := json.Marshal(dto.QuizResponse{ID: "q1", Title: "Cached quiz", Published: true})
		require.NoError(t, err)

		quizRepo := new(MockQuizRepository)
		cacheMock := new(MockCache)
		cacheMock.On("Get", ctx, quizMetaCacheKey("q1")).Return(string(cached), nil)
		svc := NewQuizService(quizRepo, new(MockTransactionManager), cacheMock, time.Minute)

		resp, err := svc.GetQuiz(ctx, "q1")

		require.NoError(t, err)
		assert.Equal(t, "Cached quiz", resp.Title)
		quizRepo.AssertNotCalled(t, "GetQuizByID", ctx, "q1")
	})

	t.Run("CacheMissFillsCache", func(t *testing.T) {
		quizRepo := new(MockQuizRepository)
		cacheMock := new(MockCache)
		cacheMock.On("Get", ctx, quizMetaCacheKey("q1")).Return("", domain.ErrCacheMiss)
		quizRepo.On("GetQuizByID", ctx, "q1").Return(&domain.Quiz{ID: "q1", Published: true}, nil)
		cacheMock.On("Set", ctx, quizMetaCacheKey("q1"), mock.AnythingOfType("string"), time.Minute).Return(nil)
		svc := NewQuizService(quizRepo, new(MockTransactionManager), cacheMock, time.Minute)

		resp, err := svc.GetQuiz(ctx, "q1")

		require.NoError(t, err)
		assert.Equal(t, "q1", resp.ID)
		cacheMock.AssertExpectations(t)
	})
}

func TestQuizService_CreateQuestion(t *testing.T) {
	ctx := context.Background()
	quiz := &domain.Quiz{ID: "q1", QuestionCount: 3}
	req := dto.QuestionRequest{
		Statement: "What is velocity?",
		Options: []dto.OptionRequest{
			{Text: "Speed with direction", IsCorrect: true},
			{Text: "Distance"},
		},
	}

	t.Run("PositionDefaultsToEnd", func(t *testing.T) {
		quizRepo := new(MockQuizRepository)
		txManager := new(MockTransactionManager)
		quizRepo.On("GetQuizByID", ctx, "q1").Return(quiz, nil)
		quizRepo.On("CreateQuestion", ctx, mock.AnythingOfType("*domain.Question")).Return(nil)
		txManager.On("WithTransaction", ctx, mock.Anything).Return(nil)
		svc := NewQuizService(quizRepo, txManager, nil, time.Minute)

		resp, err := svc.CreateQuestion(ctx, "q1", req)

		require.NoError(t, err)
		assert.Equal(t, 4, resp.Position)
		require.Len(t, resp.Options, 2)
		require.NotNil(t, resp.Options[0].IsCorrect)
		assert.True(t, *resp.Options[0].IsCorrect)
	})

	t.Run("TooFewOptions", func(t *testing.T) {
		quizRepo := new(MockQuizRepository)
		quizRepo.On("GetQuizByID", ctx, "q1").Return(quiz, nil)
		svc := NewQuizService(quizRepo, new(MockTransactionManager), nil, time.Minute)

		_, err := svc.CreateQuestion(ctx, "q1", dto.QuestionRequest{
			Statement: "Lonely",
			Options:   []dto.OptionRequest{{Text: "Only one", IsCorrect: true}},
		})

		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.ErrValidation, domainErr.Code)
	})

	t.Run("QuizMissing", func(t *testing.T) {
		quizRepo := new(MockQuizRepository)
		quizRepo.On("GetQuizByID", ctx, "missing").Return(nil, nil)
		svc := NewQuizService(quizRepo, new(MockTransactionManager), nil, time.Minute)

		_, err := svc.CreateQuestion(ctx, "missing", req)

		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.ErrQuizNotFound, domainErr.Code)
	})
}

func TestQuizService_DeleteQuestion(t *testing.T) {
	ctx := context.Background()
	question := &domain.Question{ID: "qq1", QuizID: "q1"}

	t.Run("UnpublishesEmptyQuiz", func(t *testing.T) {
		quizRepo := new(MockQuizRepository)
		txManager := new(MockTransactionManager)
		quizRepo.On("GetQuestionByID", ctx, "qq1").Return(question, nil)
		txManager.On("WithTransaction", ctx, mock.Anything).Return(nil)
		quizRepo.On("DeleteQuestion", ctx, "qq1").Return(nil)
		quizRepo.On("CountQuestionsByQuiz", ctx, "q1", false).Return(0, nil)
		quizRepo.On("GetQuizByID", ctx, "q1").Return(&domain.Quiz{ID: "q1", Published: true}, nil)
		quizRepo.On("UpdateQuiz", ctx, mock.MatchedBy(func(q *domain.Quiz) bool {
			return q.ID == "q1" && !q.Published
		})).Return(nil)
		svc := NewQuizService(quizRepo, txManager, nil, time.Minute)

		require.NoError(t, svc.DeleteQuestion(ctx, "qq1"))
		quizRepo.AssertExpectations(t)
	})

	t.Run("KeepsPublishedWhenQuestionsRemain", func(t *testing.T) {
		quizRepo := new(MockQuizRepository)
		txManager := new(MockTransactionManager)
		quizRepo.On("GetQuestionByID", ctx, "qq1").Return(question, nil)
		txManager.On("WithTransaction", ctx, mock.Anything).Return(nil)
		quizRepo.On("DeleteQuestion", ctx, "qq1").Return(nil)
		quizRepo.On("CountQuestionsByQuiz", ctx, "q1", false).Return(2, nil)
		svc := NewQuizService(quizRepo, txManager, nil, time.Minute)

		require.NoError(t, svc.DeleteQuestion(ctx, "qq1"))
		quizRepo.AssertNotCalled(t, "UpdateQuiz", ctx, mock.Anything)
	})
}
