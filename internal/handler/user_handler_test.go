package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/fariyalkhan17/Quizzmaster/internal/domain"
	"github.com/fariyalkhan17/Quizzmaster/internal/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userApp(svc *stubUserService, userID string) *fiber.App {
	app := newTestApp()
	app.Use(asUser(userID, domain.RoleUser))
	h := NewUserHandler(svc)
	app.Get("/users/me", h.GetProfile)
	app.Put("/users/me", h.UpdateProfile)
	app.Get("/users/me/scores", h.GetMyScores)
	app.Get("/users/me/scores/export", h.ExportMyScoresCSV)
	app.Get("/users/me/summary", h.GetMySummary)
	app.Get("/admin/users", h.ListUsers)
	return app
}

func TestUserHandler_GetProfile(t *testing.T) {
	var gotUserID string
	app := userApp(&stubUserService{
		getProfileFn: func(ctx context.Context, userID string) (*dto.UserProfileResponse, error) {
			gotUserID = userID
			return &dto.UserProfileResponse{ID: userID, Email: "user@example.com", Role: domain.RoleUser}, nil
		},
	}, "u1")

	resp, err := app.Test(jsonRequest(http.MethodGet, "/users/me", ""))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "u1", gotUserID)
	assert.Contains(t, readBody(resp), "user@example.com")
}

func TestUserHandler_UpdateProfile(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		var gotReq dto.UpdateProfileRequest
		app := userApp(&stubUserService{
			updateProfileFn: func(ctx context.Context, userID string, req dto.UpdateProfileRequest) (*dto.UserProfileResponse, error) {
				gotReq = req
				return &dto.UserProfileResponse{ID: userID, FullName: *req.FullName}, nil
			},
		}, "u1")

		resp, err := app.Test(jsonRequest(http.MethodPut, "/users/me",
			`{"full_name":"Renamed User"}`))
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		require.NotNil(t, gotReq.FullName)
		assert.Equal(t, "Renamed User", *gotReq.FullName)
		assert.Nil(t, gotReq.Qualification)
	})

	t.Run("BadDateOfBirth", func(t *testing.T) {
		app := userApp(&stubUserService{
			updateProfileFn: func(ctx context.Context, userID string, req dto.UpdateProfileRequest) (*dto.UserProfileResponse, error) {
				return nil, domain.NewValidationError("date_of_birth must be YYYY-MM-DD")
			},
		}, "u1")

		resp, err := app.Test(jsonRequest(http.MethodPut, "/users/me",
			`{"date_of_birth":"not-a-date"}`))
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	})
}

func TestUserHandler_GetMyScores(t *testing.T) {
	var gotFilters dto.ScoreFilters
	var gotPagination dto.Pagination
	app := userApp(&stubUserService{
		getMyScoresFn: func(ctx context.Context, userID string, filters dto.ScoreFilters, pagination dto.Pagination) (*dto.ScoreListResponse, error) {
			gotFilters = filters
			gotPagination = pagination
			return &dto.ScoreListResponse{Scores: []dto.ScoreListItem{}}, nil
		},
	}, "u1")

	resp, err := app.Test(jsonRequest(http.MethodGet,
		"/users/me/scores?quiz_id=qz1&passed=true&limit=20", ""))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "qz1", gotFilters.QuizID)
	require.NotNil(t, gotFilters.Passed)
	assert.True(t, *gotFilters.Passed)
	assert.Equal(t, 20, gotPagination.Limit)
}

func TestUserHandler_ExportMyScoresCSV(t *testing.T) {
	app := userApp(&stubUserService{
		exportScoresFn: func(ctx context.Context, userID string) ([]byte, error) {
			return []byte("quiz_title,score_percent\nKinematics Basics,80.0\n"), nil
		},
	}, "u1")

	resp, err := app.Test(jsonRequest(http.MethodGet, "/users/me/scores/export", ""))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "my-scores.csv")
	assert.Contains(t, readBody(resp), "80.0")
}

func TestUserHandler_GetMySummary(t *testing.T) {
	app := userApp(&stubUserService{
		getMySummaryFn: func(ctx context.Context, userID string) (*dto.UserSummaryResponse, error) {
			return &dto.UserSummaryResponse{TotalAttempts: 4, Passed: 3, AvgPercent: 72.5}, nil
		},
	}, "u1")

	resp, err := app.Test(jsonRequest(http.MethodGet, "/users/me/summary", ""))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(resp), `"total_attempts":4`)
}

func TestUserHandler_ListUsers(t *testing.T) {
	app := userApp(&stubUserService{
		listUsersFn: func(ctx context.Context, pagination dto.Pagination) (*dto.UserListResponse, error) {
			return &dto.UserListResponse{
				Users:          []dto.UserListItem{{ID: "u1", Email: "user@example.com", Role: domain.RoleUser}},
				PaginationInfo: dto.NewPaginationInfo(pagination, 1),
			}, nil
		},
	}, "admin1")

	resp, err := app.Test(jsonRequest(http.MethodGet, "/admin/users?limit=10", ""))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(resp), `"total_items":1`)
}
