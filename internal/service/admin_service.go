package service

import (
	"context"
	"strings"
	"time"

	"github.com/fariyalkhan17/Quizzmaster/internal/domain"
	"github.com/fariyalkhan17/Quizzmaster/internal/dto"

	"golang.org/x/sync/errgroup"
)

// AdminService serves the dashboard summary and cross-entity search.
type AdminService interface {
	GetSummary(ctx context.Context) (*dto.AdminSummaryResponse, error)
	Search(ctx context.Context, req dto.SearchRequest) (*dto.SearchResponse, error)
}

type adminServiceImpl struct {
	userRepo    domain.UserRepository
	subjectRepo domain.SubjectRepository
	quizRepo    domain.QuizRepository
	attemptRepo domain.AttemptRepository
}

// NewAdminService creates a new instance of AdminService.
func NewAdminService(userRepo domain.UserRepository, subjectRepo domain.SubjectRepository, quizRepo domain.QuizRepository, attemptRepo domain.AttemptRepository) AdminService {
	return &adminServiceImpl{
		userRepo:    userRepo,
		subjectRepo: subjectRepo,
		quizRepo:    quizRepo,
		attemptRepo: attemptRepo,
	}
}

// GetSummary gathers the platform-wide counts and attempt aggregates. The
// independent queries run concurrently.
func (s *adminServiceImpl) GetSummary(ctx context.Context) (*dto.AdminSummaryResponse, error) {
	var summary dto.AdminSummaryResponse

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		summary.Users, err = s.userRepo.CountUsers(gctx)
		return err
	})
	g.Go(func() (err error) {
		summary.Subjects, err = s.subjectRepo.CountSubjects(gctx)
		return err
	})
	g.Go(func() (err error) {
		summary.Chapters, err = s.subjectRepo.CountChapters(gctx)
		return err
	})
	g.Go(func() (err error) {
		summary.Quizzes, err = s.quizRepo.CountQuizzes(gctx)
		return err
	})
	g.Go(func() (err error) {
		summary.Questions, err = s.quizRepo.CountQuestions(gctx)
		return err
	})
	g.Go(func() (err error) {
		summary.TotalAttempts, err = s.attemptRepo.CountAttempts(gctx)
		return err
	})
	g.Go(func() (err error) {
		summary.PassRate, err = s.attemptRepo.OverallPassRate(gctx)
		return err
	})
	g.Go(func() error {
		aggregates, err := s.attemptRepo.TopQuizAggregates(gctx, 5)
		if err != nil {
			return err
		}
		for _, a := range aggregates {
			summary.TopQuizzes = append(summary.TopQuizzes, dto.QuizAggregateDTO{
				QuizID:     a.QuizID,
				QuizTitle:  a.QuizTitle,
				Attempts:   a.Attempts,
				AvgPercent: a.AvgPercent,
				PassRate:   a.PassRate,
			})
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, domain.NewInternalError("failed to build summary", err)
	}
	return &summary, nil
}

// Search runs the admin search across the requested entity types.
func (s *adminServiceImpl) Search(ctx context.Context, req dto.SearchRequest) (*dto.SearchResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, domain.NewValidationError("search query must not be empty")
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	searchType := req.Type
	if searchType == "" {
		searchType = "all"
	}
	wants := func(t string) bool { return searchType == "all" || searchType == t }
	if !wants("users") && !wants("subjects") && !wants("quizzes") && !wants("questions") {
		return nil, domain.NewValidationError("type must be one of users, subjects, quizzes, questions or all")
	}

	resp := &dto.SearchResponse{Query: query}
	now := time.Now()

	if wants("users") {
		users, _, err := s.userRepo.SearchUsers(ctx, query, dto.Pagination{Limit: limit})
		if err != nil {
			return nil, domain.NewInternalError("failed to search users", err)
		}
		for _, u := range users {
			resp.Users = append(resp.Users, dto.UserListItem{
				ID:        u.ID,
				Email:     u.Email,
				FullName:  u.FullName,
				Role:      u.Role,
				CreatedAt: u.CreatedAt,
			})
		}
	}

	if wants("subjects") {
		subjects, err := s.subjectRepo.SearchSubjects(ctx, query, limit)
		if err != nil {
			return nil, domain.NewInternalError("failed to search subjects", err)
		}
		for _, sub := range subjects {
			resp.Subjects = append(resp.Subjects, dto.SubjectResponse{
				ID:          sub.ID,
				Name:        sub.Name,
				Description: sub.Description,
			})
		}
	}

	if wants("quizzes") {
		quizzes, err := s.quizRepo.SearchQuizzes(ctx, query, limit)
		if err != nil {
			return nil, domain.NewInternalError("failed to search quizzes", err)
		}
		for _, q := range quizzes {
			resp.Quizzes = append(resp.Quizzes, toQuizResponse(q, now))
		}
	}

	if wants("questions") {
		questions, err := s.quizRepo.SearchQuestions(ctx, query, limit)
		if err != nil {
			return nil, domain.NewInternalError("failed to search questions", err)
		}
		for _, q := range questions {
			resp.Questions = append(resp.Questions, dto.QuestionSearchItem{
				ID:        q.ID,
				QuizID:    q.QuizID,
				Statement: q.Statement,
			})
		}
	}

	return resp, nil
}
