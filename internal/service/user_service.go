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
)

// UserService serves profile, score history and the admin user listing.
type UserService interface {
	GetProfile(ctx context.Context, userID string) (*dto.UserProfileResponse, error)
	UpdateProfile(ctx context.Context, userID string, req dto.UpdateProfileRequest) (*dto.UserProfileResponse, error)

	GetMyScores(ctx context.Context, userID string, filters dto.ScoreFilters, pagination dto.Pagination) (*dto.ScoreListResponse, error)
	GetMySummary(ctx context.Context, userID string) (*dto.UserSummaryResponse, error)
	ExportMyScoresCSV(ctx context.Context, userID string) ([]byte, error)

	ListUsers(ctx context.Context, pagination dto.Pagination) (*dto.UserListResponse, error)
}

type userServiceImpl struct {
	userRepo    domain.UserRepository
	attemptRepo domain.AttemptRepository
}

// NewUserService creates a new instance of UserService.
func NewUserService(userRepo domain.UserRepository, attemptRepo domain.AttemptRepository) UserService {
	return &userServiceImpl{userRepo: userRepo, attemptRepo: attemptRepo}
}

func toProfileResponse(user *domain.User) *dto.UserProfileResponse {
	resp := &dto.UserProfileResponse{
		ID:            user.ID,
		Email:         user.Email,
		FullName:      user.FullName,
		Qualification: user.Qualification,
		Role:          user.Role,
		CreatedAt:     user.CreatedAt.Format(time.RFC3339),
	}
	if user.DateOfBirth != nil {
		resp.DateOfBirth = user.DateOfBirth.Format("2006-01-02")
	}
	return resp
}

func (s *userServiceImpl) GetProfile(ctx context.Context, userID string) (*dto.UserProfileResponse, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("failed to get user", err)
	}
	if user == nil {
		return nil, domain.NewNotFoundError("user not found")
	}
	return toProfileResponse(user), nil
}

func (s *userServiceImpl) UpdateProfile(ctx context.Context, userID string, req dto.UpdateProfileRequest) (*dto.UserProfileResponse, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("failed to get user", err)
	}
	if user == nil {
		return nil, domain.NewNotFoundError("user not found")
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Qualification != nil {
		user.Qualification = *req.Qualification
	}
	if req.DateOfBirth != nil {
		if *req.DateOfBirth == "" {
			user.DateOfBirth = nil
		} else {
			dob, err := time.Parse("2006-01-02", *req.DateOfBirth)
			if err != nil {
				return nil, domain.NewValidationError("date_of_birth must be a YYYY-MM-DD date")
			}
			user.DateOfBirth = &dob
		}
	}

	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		return nil, domain.NewInternalError("failed to update user", err)
	}
	return toProfileResponse(user), nil
}

func toScoreListItem(a domain.AttemptWithQuiz) dto.ScoreListItem {
	return dto.ScoreListItem{
		AttemptID:        a.ID,
		QuizID:           a.QuizID,
		QuizTitle:        a.QuizTitle,
		SubjectName:      a.SubjectName,
		ChapterName:      a.ChapterName,
		Status:           string(a.Status),
		SubmittedAt:      a.SubmittedAt,
		TimeTakenSeconds: a.TimeTakenSeconds,
		ScorePercent:     a.ScorePercent,
		Passed:           a.Passed,
	}
}

func (s *userServiceImpl) GetMyScores(ctx context.Context, userID string, filters dto.ScoreFilters, pagination dto.Pagination) (*dto.ScoreListResponse, error) {
	attempts, total, err := s.attemptRepo.ListUserAttempts(ctx, userID, filters, pagination)
	if err != nil {
		return nil, domain.NewInternalError("failed to list scores", err)
	}

	resp := &dto.ScoreListResponse{
		Scores:         make([]dto.ScoreListItem, 0, len(attempts)),
		PaginationInfo: dto.NewPaginationInfo(pagination, total),
	}
	for _, a := range attempts {
		resp.Scores = append(resp.Scores, toScoreListItem(a))
	}
	return resp, nil
}

func (s *userServiceImpl) GetMySummary(ctx context.Context, userID string) (*dto.UserSummaryResponse, error) {
	stats, err := s.attemptRepo.GetUserStats(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("failed to aggregate stats", err)
	}

	resp := &dto.UserSummaryResponse{
		TotalAttempts: stats.TotalAttempts,
		Passed:        stats.Passed,
		AvgPercent:    stats.AvgPercent,
		BestPercent:   stats.BestPercent,
		LastAttemptAt: stats.LastAttemptAt,
		BySubject:     make([]dto.SubjectBreakdownDTO, 0, len(stats.BySubject)),
	}
	for _, b := range stats.BySubject {
		resp.BySubject = append(resp.BySubject, dto.SubjectBreakdownDTO{
			SubjectID:   b.SubjectID,
			SubjectName: b.SubjectName,
			Attempts:    b.Attempts,
			AvgPercent:  b.AvgPercent,
		})
	}
	return resp, nil
}

// ExportMyScoresCSV renders the user's full score history as CSV.
func (s *userServiceImpl) ExportMyScoresCSV(ctx context.Context, userID string) ([]byte, error) {
	const pageSize = 500
	var all []domain.AttemptWithQuiz
	for offset := 0; ; offset += pageSize {
		page, total, err := s.attemptRepo.ListUserAttempts(ctx, userID, dto.ScoreFilters{}, dto.Pagination{Limit: pageSize, Offset: offset})
		if err != nil {
			return nil, domain.NewInternalError("failed to list scores", err)
		}
		all = append(all, page...)
		if offset+pageSize >= total || len(page) == 0 {
			break
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"attempt_id", "subject", "chapter", "quiz", "status", "started_at", "submitted_at", "time_taken_seconds", "score_percent", "passed"}
	if err := w.Write(header); err != nil {
		return nil, domain.NewInternalError("failed to write csv", err)
	}
	for _, a := range all {
		submittedAt := ""
		if a.SubmittedAt != nil {
			submittedAt = a.SubmittedAt.Format(time.RFC3339)
		}
		record := []string{
			a.ID,
			a.SubjectName,
			a.ChapterName,
			a.QuizTitle,
			string(a.Status),
			a.StartedAt.Format(time.RFC3339),
			submittedAt,
			strconv.Itoa(a.TimeTakenSeconds),
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
	return buf.Bytes(), nil
}

func (s *userServiceImpl) ListUsers(ctx context.Context, pagination dto.Pagination) (*dto.UserListResponse, error) {
	users, total, err := s.userRepo.ListUsers(ctx, pagination)
	if err != nil {
		return nil, domain.NewInternalError("failed to list users", err)
	}

	resp := &dto.UserListResponse{
		Users:          make([]dto.UserListItem, 0, len(users)),
		PaginationInfo: dto.NewPaginationInfo(pagination, total),
	}
	for _, u := range users {
		resp.Users = append(resp.Users, dto.UserListItem{
			ID:            u.ID,
			Email:         u.Email,
			FullName:      u.FullName,
			Qualification: u.Qualification,
			Role:          u.Role,
			CreatedAt:     u.CreatedAt,
		})
	}
	return resp, nil
}
