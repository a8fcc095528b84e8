package handler

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/fariyalkhan17/Quizzmaster/internal/config"
	"github.com/fariyalkhan17/Quizzmaster/internal/domain"
	"github.com/fariyalkhan17/Quizzmaster/internal/dto"
	"github.com/fariyalkhan17/Quizzmaster/internal/logger"
	"github.com/fariyalkhan17/Quizzmaster/internal/middleware"
	"github.com/fariyalkhan17/Quizzmaster/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const oauthStateCookieName = "oauthstate"

type AuthHandler struct {
	authService service.AuthService
	appConfig   *config.Config
}

func NewAuthHandler(authService service.AuthService, appConfig *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		appConfig:   appConfig,
	}
}

// Register creates a new password account.
// @Summary Register a new user
// @Description Creates a password account and returns a token pair.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.RegisterRequest true "Registration payload"
// @Success 201 {object} dto.TokenResponse
// @Failure 409 {object} middleware.ErrorResponse "Email already registered"
// @Failure 422 {object} middleware.ErrorResponse "Invalid payload"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	tokens, err := h.authService.Register(c.Context(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(tokens)
}

// Login verifies a password credential.
// @Summary Login
// @Description Verifies the credential and returns a token pair.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Login payload"
// @Success 200 {object} dto.TokenResponse
// @Failure 401 {object} middleware.ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	tokens, err := h.authService.Login(c.Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(tokens)
}

// RefreshToken exchanges a refresh token for a new token pair.
// @Summary Refresh JWT tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.TokenResponse
// @Failure 401 {object} middleware.ErrorResponse "Refresh token invalid or expired"
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var req dto.RefreshTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if req.RefreshToken == "" {
		return domain.NewInvalidInputError("refresh_token is required")
	}

	tokens, err := h.authService.RefreshToken(c.Context(), req.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(tokens)
}

// Logout acknowledges a logout. Tokens are stateless, so the client discards
// them.
// @Summary Logout
// @Tags auth
// @Security ApiKeyAuth
// @Success 200 {object} map[string]string
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if userID, ok := c.Locals(middleware.UserIDKey).(string); ok && userID != "" {
		logger.Get().Info("User logout request", zap.String("userID", userID))
	}
	return c.JSON(fiber.Map{"message": "Logout successful. Please discard your tokens."})
}

// GoogleLogin initiates the Google OAuth2 login flow.
// @Summary Initiate Google Login
// @Description Redirects the user to Google's OAuth2 consent page.
// @Tags auth
// @Success 307 {string} string "Redirects to Google"
// @Failure 503 {object} middleware.ErrorResponse "Google OAuth not configured"
// @Router /auth/google/login [get]
func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	if !h.authService.GoogleEnabled() {
		return domain.NewServiceUnavailableError("google login is not configured")
	}

	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return domain.NewInternalError("failed to generate oauth state", err)
	}
	state := base64.URLEncoding.EncodeToString(b)

	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookieName,
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		Secure:   c.Secure(),
		SameSite: "Lax",
		Path:     "/",
	})

	return c.Redirect(h.authService.GetGoogleLoginURL(state), fiber.StatusTemporaryRedirect)
}

// GoogleCallback finishes the Google OAuth2 flow and issues JWTs.
// @Summary Google OAuth2 Callback
// @Tags auth
// @Param code query string true "Authorization code from Google"
// @Param state query string true "State string for CSRF protection"
// @Success 200 {object} dto.TokenResponse
// @Failure 401 {object} middleware.ErrorResponse "Invalid state or code"
// @Failure 503 {object} middleware.ErrorResponse "Google OAuth not configured"
// @Router /auth/google/callback [get]
func (h *AuthHandler) GoogleCallback(c *fiber.Ctx) error {
	if !h.authService.GoogleEnabled() {
		return domain.NewServiceUnavailableError("google login is not configured")
	}

	code := c.Query("code")
	receivedState := c.Query("state")
	expectedState := c.Cookies(oauthStateCookieName)

	// The state cookie is single-use.
	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   c.Secure(),
		SameSite: "Lax",
		Path:     "/",
	})

	if code == "" {
		return domain.NewInvalidInputError("authorization code is missing")
	}

	tokens, err := h.authService.HandleGoogleCallback(c.Context(), code, receivedState, expectedState)
	if err != nil {
		return err
	}
	return c.JSON(tokens)
}
