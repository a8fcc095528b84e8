package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/fariyalkhan17/Quizzmaster/internal/domain"
	"github.com/fariyalkhan17/Quizzmaster/internal/dto"
	"github.com/fariyalkhan17/Quizzmaster/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// Handler tests run against a fiber app with the production error handler so
// the domain-error to status-code mapping is exercised end to end. Services
// are stubbed with function fields; a nil field means the route under test
// should never reach it.

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
}

// asUser injects the locals the auth middleware would set.
func asUser(userID, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(middleware.UserIDKey, userID)
		c.Locals(middleware.UserRoleKey, role)
		return c.Next()
	}
}

func readBody(resp *http.Response) string {
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return string(b)
}

func jsonRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	return req
}

type stubAuthService struct {
	registerFn    func(ctx context.Context, req dto.RegisterRequest) (*dto.TokenResponse, error)
	loginFn       func(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error)
	refreshFn     func(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	googleEnabled bool
}

func (s *stubAuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.TokenResponse, error) {
	return s.registerFn(ctx, req)
}

func (s *stubAuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error) {
	return s.loginFn(ctx, req)
}

func (s *stubAuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	return s.refreshFn(ctx, refreshToken)
}

func (s *stubAuthService) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	return nil, domain.NewInvalidTokenError("not stubbed")
}

func (s *stubAuthService) CreateJWT(user *domain.User, ttl time.Duration, tokenType string) (string, error) {
	return "", nil
}

func (s *stubAuthService) GoogleEnabled() bool { return s.googleEnabled }

func (s *stubAuthService) GetGoogleLoginURL(state string) string {
	return "https://accounts.google.com/o/oauth2/auth?state=" + state
}

func (s *stubAuthService) HandleGoogleCallback(ctx context.Context, code, receivedState, expectedState string) (*dto.TokenResponse, error) {
	return nil, domain.NewInvalidTokenError("not stubbed")
}

func (s *stubAuthService) EncryptToken(token string) (string, error) { return token, nil }

func (s *stubAuthService) DecryptToken(encryptedToken string) (string, error) {
	return encryptedToken, nil
}

type stubCatalogService struct {
	createSubjectFn  func(ctx context.Context, req dto.SubjectRequest) (*dto.SubjectResponse, error)
	updateSubjectFn  func(ctx context.Context, id string, req dto.SubjectRequest) (*dto.SubjectResponse, error)
	deleteSubjectFn  func(ctx context.Context, id string) error
	createChapterFn  func(ctx context.Context, subjectID string, req dto.ChapterRequest) (*dto.ChapterResponse, error)
	updateChapterFn  func(ctx context.Context, id string, req dto.ChapterRequest) (*dto.ChapterResponse, error)
	deleteChapterFn  func(ctx context.Context, id string) error
	getSubjectTreeFn func(ctx context.Context) ([]dto.SubjectResponse, error)
	getSubjectFn     func(ctx context.Context, id string) (*dto.SubjectResponse, error)
}

func (s *stubCatalogService) CreateSubject(ctx context.Context, req dto.SubjectRequest) (*dto.SubjectResponse, error) {
	return s.createSubjectFn(ctx, req)
}

func (s *stubCatalogService) UpdateSubject(ctx context.Context, id string, req dto.SubjectRequest) (*dto.SubjectResponse, error) {
	return s.updateSubjectFn(ctx, id, req)
}

func (s *stubCatalogService) DeleteSubject(ctx context.Context, id string) error {
	return s.deleteSubjectFn(ctx, id)
}

func (s *stubCatalogService) CreateChapter(ctx context.Context, subjectID string, req dto.ChapterRequest) (*dto.ChapterResponse, error) {
	return s.createChapterFn(ctx, subjectID, req)
}

func (s *stubCatalogService) UpdateChapter(ctx context.Context, id string, req dto.ChapterRequest) (*dto.ChapterResponse, error) {
	return s.updateChapterFn(ctx, id, req)
}

func (s *stubCatalogService) DeleteChapter(ctx context.Context, id string) error {
	return s.deleteChapterFn(ctx, id)
}

func (s *stubCatalogService) GetSubjectTree(ctx context.Context) ([]dto.SubjectResponse, error) {
	return s.getSubjectTreeFn(ctx)
}

func (s *stubCatalogService) GetSubject(ctx context.Context, id string) (*dto.SubjectResponse, error) {
	return s.getSubjectFn(ctx, id)
}

type stubQuizService struct {
	createQuizFn     func(ctx context.Context, chapterID string, req dto.QuizRequest) (*dto.QuizResponse, error)
	updateQuizFn     func(ctx context.Context, id string, req dto.QuizRequest) (*dto.QuizResponse, error)
	deleteQuizFn     func(ctx context.Context, id string) error
	getQuizAdminFn   func(ctx context.Context, id string) (*dto.AdminQuizDetailResponse, error)
	getQuizFn        func(ctx context.Context, id string) (*dto.QuizResponse, error)
	listQuizzesFn    func(ctx context.Context, filters domain.QuizFilters, pagination dto.Pagination) (*dto.QuizListResponse, error)
	createQuestionFn func(ctx context.Context, quizID string, req dto.QuestionRequest) (*dto.QuestionResponse, error)
	updateQuestionFn func(ctx context.Context, id string, req dto.QuestionRequest) (*dto.QuestionResponse, error)
	deleteQuestionFn func(ctx context.Context, id string) error
}

func (s *stubQuizService) CreateQuiz(ctx context.Context, chapterID string, req dto.QuizRequest) (*dto.QuizResponse, error) {
	return s.createQuizFn(ctx, chapterID, req)
}

func (s *stubQuizService) UpdateQuiz(ctx context.Context, id string, req dto.QuizRequest) (*dto.QuizResponse, error) {
	return s.updateQuizFn(ctx, id, req)
}

func (s *stubQuizService) DeleteQuiz(ctx context.Context, id string) error {
	return s.deleteQuizFn(ctx, id)
}

func (s *stubQuizService) GetQuizAdmin(ctx context.Context, id string) (*dto.AdminQuizDetailResponse, error) {
	return s.getQuizAdminFn(ctx, id)
}

func (s *stubQuizService) GetQuiz(ctx context.Context, id string) (*dto.QuizResponse, error) {
	return s.getQuizFn(ctx, id)
}

func (s *stubQuizService) ListQuizzes(ctx context.Context, filters domain.QuizFilters, pagination dto.Pagination) (*dto.QuizListResponse, error) {
	return s.listQuizzesFn(ctx, filters, pagination)
}

func (s *stubQuizService) CreateQuestion(ctx context.Context, quizID string, req dto.QuestionRequest) (*dto.QuestionResponse, error) {
	return s.createQuestionFn(ctx, quizID, req)
}

func (s *stubQuizService) UpdateQuestion(ctx context.Context, id string, req dto.QuestionRequest) (*dto.QuestionResponse, error) {
	return s.updateQuestionFn(ctx, id, req)
}

func (s *stubQuizService) DeleteQuestion(ctx context.Context, id string) error {
	return s.deleteQuestionFn(ctx, id)
}

type stubAttemptService struct {
	startAttemptFn     func(ctx context.Context, userID, quizID string) (*dto.AttemptStartResponse, error)
	getAttemptFn       func(ctx context.Context, userID, attemptID string, isAdmin bool) (*dto.AttemptStateResponse, error)
	submitAttemptFn    func(ctx context.Context, userID, attemptID string, req dto.SubmitAttemptRequest) (*dto.AttemptResultResponse, error)
	finalizeOverdueFn  func(ctx context.Context) (int, error)
	listQuizAttemptsFn func(ctx context.Context, quizID string, pagination dto.Pagination) (*dto.QuizAttemptListResponse, error)
	exportAttemptsFn   func(ctx context.Context, quizID string) ([]byte, error)
}

func (s *stubAttemptService) StartAttempt(ctx context.Context, userID, quizID string) (*dto.AttemptStartResponse, error) {
	return s.startAttemptFn(ctx, userID, quizID)
}

func (s *stubAttemptService) GetAttempt(ctx context.Context, userID, attemptID string, isAdmin bool) (*dto.AttemptStateResponse, error) {
	return s.getAttemptFn(ctx, userID, attemptID, isAdmin)
}

func (s *stubAttemptService) SubmitAttempt(ctx context.Context, userID, attemptID string, req dto.SubmitAttemptRequest) (*dto.AttemptResultResponse, error) {
	return s.submitAttemptFn(ctx, userID, attemptID, req)
}

func (s *stubAttemptService) FinalizeOverdue(ctx context.Context) (int, error) {
	return s.finalizeOverdueFn(ctx)
}

func (s *stubAttemptService) ListQuizAttempts(ctx context.Context, quizID string, pagination dto.Pagination) (*dto.QuizAttemptListResponse, error) {
	return s.listQuizAttemptsFn(ctx, quizID, pagination)
}

func (s *stubAttemptService) ExportQuizAttemptsCSV(ctx context.Context, quizID string) ([]byte, error) {
	return s.exportAttemptsFn(ctx, quizID)
}

type stubUserService struct {
	getProfileFn    func(ctx context.Context, userID string) (*dto.UserProfileResponse, error)
	updateProfileFn func(ctx context.Context, userID string, req dto.UpdateProfileRequest) (*dto.UserProfileResponse, error)
	getMyScoresFn   func(ctx context.Context, userID string, filters dto.ScoreFilters, pagination dto.Pagination) (*dto.ScoreListResponse, error)
	getMySummaryFn  func(ctx context.Context, userID string) (*dto.UserSummaryResponse, error)
	exportScoresFn  func(ctx context.Context, userID string) ([]byte, error)
	listUsersFn     func(ctx context.Context, pagination dto.Pagination) (*dto.UserListResponse, error)
}

func (s *stubUserService) GetProfile(ctx context.Context, userID string) (*dto.UserProfileResponse, error) {
	return s.getProfileFn(ctx, userID)
}

func (s *stubUserService) UpdateProfile(ctx context.Context, userID string, req dto.UpdateProfileRequest) (*dto.UserProfileResponse, error) {
	return s.updateProfileFn(ctx, userID, req)
}

func (s *stubUserService) GetMyScores(ctx context.Context, userID string, filters dto.ScoreFilters, pagination dto.Pagination) (*dto.ScoreListResponse, error) {
	return s.getMyScoresFn(ctx, userID, filters, pagination)
}

func (s *stubUserService) GetMySummary(ctx context.Context, userID string) (*dto.UserSummaryResponse, error) {
	return s.getMySummaryFn(ctx, userID)
}

func (s *stubUserService) ExportMyScoresCSV(ctx context.Context, userID string) ([]byte, error) {
	return s.exportScoresFn(ctx, userID)
}

func (s *stubUserService) ListUsers(ctx context.Context, pagination dto.Pagination) (*dto.UserListResponse, error) {
	return s.listUsersFn(ctx, pagination)
}

type stubAdminService struct {
	getSummaryFn func(ctx context.Context) (*dto.AdminSummaryResponse, error)
	searchFn     func(ctx context.Context, req dto.SearchRequest) (*dto.SearchResponse, error)
}

func (s *stubAdminService) GetSummary(ctx context.Context) (*dto.AdminSummaryResponse, error) {
	return s.getSummaryFn(ctx)
}

func (s *stubAdminService) Search(ctx context.Context, req dto.SearchRequest) (*dto.SearchResponse, error) {
	return s.searchFn(ctx, req)
}
