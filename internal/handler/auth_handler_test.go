package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/fariyalkhan17/Quizzmaster/internal/config"
	"github.com/fariyalkhan17/Quizzmaster/internal/domain"
	"github.com/fariyalkhan17/Quizzmaster/internal/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authApp(svc *stubAuthService) *fiber.App {
	app := newTestApp()
	h := NewAuthHandler(svc, &config.Config{})
	app.Post("/auth/register", h.Register)
	app.Post("/auth/login", h.Login)
	app.Post("/auth/refresh", h.RefreshToken)
	app.Get("/auth/google/login", h.GoogleLogin)
	return app
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		var got dto.RegisterRequest
		app := authApp(&stubAuthService{
			registerFn: func(ctx context.Context, req dto.RegisterRequest) (*dto.TokenResponse, error) {
				got = req
				return &dto.TokenResponse{AccessToken: "at", RefreshToken: "rt"}, nil
			},
		})

		resp, err := app.Test(jsonRequest(http.MethodPost, "/auth/register",
			`{"email":"new@example.com","password":"password123","full_name":"New User"}`))
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
		assert.Equal(t, "new@example.com", got.Email)
		assert.Contains(t, readBody(resp), `"access_token":"at"`)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		app := authApp(&stubAuthService{})

		resp, err := app.Test(jsonRequest(http.MethodPost, "/auth/register", `{not json`))
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		app := authApp(&stubAuthService{
			registerFn: func(ctx context.Context, req dto.RegisterRequest) (*dto.TokenResponse, error) {
				return nil, domain.NewConflictError("email already registered")
			},
		})

		resp, err := app.Test(jsonRequest(http.MethodPost, "/auth/register",
			`{"email":"dup@example.com","password":"password123"}`))
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
		assert.Contains(t, readBody(resp), `"CONFLICT"`)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		app := authApp(&stubAuthService{
			loginFn: func(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error) {
				return &dto.TokenResponse{AccessToken: "at", RefreshToken: "rt"}, nil
			},
		})

		resp, err := app.Test(jsonRequest(http.MethodPost, "/auth/login",
			`{"email":"user@example.com","password":"password123"}`))
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("InvalidCredentials", func(t *testing.T) {
		app := authApp(&stubAuthService{
			loginFn: func(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error) {
				return nil, domain.NewInvalidCredentialsError()
			},
		})

		resp, err := app.Test(jsonRequest(http.MethodPost, "/auth/login",
			`{"email":"user@example.com","password":"wrong"}`))
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestAuthHandler_RefreshToken(t *testing.T) {
	t.Run("MissingToken", func(t *testing.T) {
		app := authApp(&stubAuthService{})

		resp, err := app.Test(jsonRequest(http.MethodPost, "/auth/refresh", `{}`))
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		app := authApp(&stubAuthService{
			refreshFn: func(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
				return nil, domain.NewExpiredTokenError()
			},
		})

		resp, err := app.Test(jsonRequest(http.MethodPost, "/auth/refresh",
			`{"refresh_token":"stale"}`))
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestAuthHandler_GoogleLogin(t *testing.T) {
	t.Run("RedirectsWhenConfigured", func(t *testing.T) {
		app := authApp(&stubAuthService{googleEnabled: true})

		resp, err := app.Test(jsonRequest(http.MethodGet, "/auth/google/login", ""))
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusTemporaryRedirect, resp.StatusCode)
		assert.Contains(t, resp.Header.Get(fiber.HeaderLocation), "accounts.google.com")

		var stateCookie string
		for _, c := range resp.Cookies() {
			if c.Name == oauthStateCookieName {
				stateCookie = c.Value
			}
		}
		require.NotEmpty(t, stateCookie)
		assert.Contains(t, resp.Header.Get(fiber.HeaderLocation), "state="+stateCookie)
	})

	t.Run("UnavailableWhenUnconfigured", func(t *testing.T) {
		app := authApp(&stubAuthService{})

		resp, err := app.Test(jsonRequest(http.MethodGet, "/auth/google/login", ""))
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
		assert.Contains(t, readBody(resp), `"code":"SERVICE_UNAVAILABLE"`)
	})
}
