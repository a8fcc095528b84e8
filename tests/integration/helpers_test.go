package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fariyalkhan17/Quizzmaster/internal/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func doJSON(t *testing.T, method, target, token, body string) *http.Response {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req, 30*1000)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// loginAs returns an access token for the given credential.
func loginAs(t *testing.T, email, password string) string {
	t.Helper()
	resp := doJSON(t, http.MethodPost, "/api/v1/auth/login", "",
		fmt.Sprintf(`{"email":%q,"password":%q}`, email, password))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var tokens dto.TokenResponse
	decodeBody(t, resp, &tokens)
	require.NotEmpty(t, tokens.AccessToken)
	return tokens.AccessToken
}

// registerUser creates a fresh user account and returns its token pair.
func registerUser(t *testing.T, email, password string) dto.TokenResponse {
	t.Helper()
	resp := doJSON(t, http.MethodPost, "/api/v1/auth/register", "",
		fmt.Sprintf(`{"email":%q,"password":%q,"full_name":"Test User"}`, email, password))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var tokens dto.TokenResponse
	decodeBody(t, resp, &tokens)
	return tokens
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}
