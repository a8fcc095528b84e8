package service

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/fariyalkhan17/Quizzmaster/internal/config"
	"github.com/fariyalkhan17/Quizzmaster/internal/domain"
	"github.com/fariyalkhan17/Quizzmaster/internal/logger"
	"github.com/fariyalkhan17/Quizzmaster/internal/port"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type batchServiceImpl struct {
	quizRepo    domain.QuizRepository
	subjectRepo domain.SubjectRepository
	generator   port.QuestionGenerator
	txManager   domain.TransactionManager
	cfg         config.BatchConfig
}

// NewBatchService creates a new instance of BatchService.
func NewBatchService(quizRepo domain.QuizRepository, subjectRepo domain.SubjectRepository, generator port.QuestionGenerator, txManager domain.TransactionManager, cfg config.BatchConfig) domain.BatchService {
	if cfg.MinQuestionsPerQuiz <= 0 {
		cfg.MinQuestionsPerQuiz = 5
	}
	if cfg.QuestionsPerCall <= 0 {
		cfg.QuestionsPerCall = 5
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 3
	}
	return &batchServiceImpl{
		quizRepo:    quizRepo,
		subjectRepo: subjectRepo,
		generator:   generator,
		txManager:   txManager,
		cfg:         cfg,
	}
}

// GenerateDraftQuestions finds published quizzes short on questions and tops
// each one up with LLM-drafted questions, persisted with the draft flag so an
// admin reviews them before they reach users. Quizzes are processed
// concurrently up to the configured limit and a failure on one quiz does not
// stop the others.
func (s *batchServiceImpl) GenerateDraftQuestions(ctx context.Context) error {
	log := logger.Get()

	quizzes, err := s.quizRepo.ListQuizzesNeedingQuestions(ctx, s.cfg.MinQuestionsPerQuiz)
	if err != nil {
		return domain.NewInternalError("failed to list underfilled quizzes", err)
	}
	if len(quizzes) == 0 {
		log.Info("No quizzes need generated questions")
		return nil
	}
	log.Info("Generating draft questions",
		zap.Int("quizzes", len(quizzes)),
		zap.Int("minQuestionsPerQuiz", s.cfg.MinQuestionsPerQuiz))

	var generated atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrency)
	for _, quiz := range quizzes {
		quiz := quiz
		g.Go(func() error {
			count, err := s.topUpQuiz(gctx, quiz)
			if err != nil {
				log.Warn("Failed to generate questions for quiz",
					zap.String("quizID", quiz.ID),
					zap.String("title", quiz.Title),
					zap.Error(err))
				return nil
			}
			generated.Add(int64(count))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.NewInternalError("question generation aborted", err)
	}

	log.Info("Draft question generation finished", zap.Int64("questionsCreated", generated.Load()))
	return nil
}

// topUpQuiz generates and persists drafts for one quiz. It returns the number
// of questions created.
func (s *batchServiceImpl) topUpQuiz(ctx context.Context, quiz *domain.Quiz) (int, error) {
	chapter, err := s.subjectRepo.GetChapterByID(ctx, quiz.ChapterID)
	if err != nil {
		return 0, err
	}
	if chapter == nil {
		return 0, domain.NewNotFoundError("chapter not found")
	}
	subject, err := s.subjectRepo.GetSubjectByID(ctx, chapter.SubjectID)
	if err != nil {
		return 0, err
	}
	if subject == nil {
		return 0, domain.NewNotFoundError("subject not found")
	}

	// Existing statements, drafts included, both seed the prompt and guard
	// against duplicates.
	existing, err := s.quizRepo.GetQuestionsByQuiz(ctx, quiz.ID, true)
	if err != nil {
		return 0, err
	}
	statements := make([]string, 0, len(existing))
	seen := make(map[string]bool, len(existing))
	for _, q := range existing {
		statements = append(statements, q.Statement)
		seen[normalizeStatement(q.Statement)] = true
	}

	missing := s.cfg.MinQuestionsPerQuiz - quiz.QuestionCount
	if missing <= 0 {
		return 0, nil
	}

	created := 0
	position := len(existing)
	for created < missing {
		batch := s.cfg.QuestionsPerCall
		if remaining := missing - created; remaining < batch {
			batch = remaining
		}

		drafts, err := s.generator.GenerateQuestions(ctx, subject.Name, chapter.Name, quiz.Title, statements, batch)
		if err != nil {
			return created, err
		}
		if len(drafts) == 0 {
			break
		}

		progressed := false
		for i := range drafts {
			draft := drafts[i]
			if err := draft.Validate(); err != nil {
				logger.Get().Debug("Skipping malformed draft",
					zap.String("quizID", quiz.ID), zap.Error(err))
				continue
			}
			key := normalizeStatement(draft.Statement)
			if seen[key] {
				continue
			}

			position++
			question := domain.NewQuestion(quiz.ID, draft.Statement, position)
			question.Draft = true
			for j, text := range draft.Options {
				question.Options = append(question.Options, domain.NewOption("", text, j == draft.CorrectIndex, j+1))
			}

			err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
				return s.quizRepo.CreateQuestion(txCtx, question)
			})
			if err != nil {
				return created, err
			}

			seen[key] = true
			statements = append(statements, draft.Statement)
			created++
			progressed = true
			if created >= missing {
				break
			}
		}
		// A call that yields only duplicates or rejects would loop forever.
		if !progressed {
			break
		}
	}
	return created, nil
}

// normalizeStatement collapses a statement for duplicate detection.
func normalizeStatement(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
