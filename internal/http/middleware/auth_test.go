package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"podapi/internal/model"
	"podapi/internal/service"
	"podapi/internal/service/mocks"
)

func newAuthApp(svc service.AuthService) *fiber.App {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/me", Auth(svc), func(c *fiber.Ctx) error {
		u, ok := CurrentUser(c)
		if !ok {
			return c.SendStatus(fiber.StatusTeapot)
		}
		return c.SendString(u.Email)
	})
	return app
}

func TestAuth_ValidToken(t *testing.T) {
	svc := new(mocks.MockAuthService)
	svc.On("Authenticate", mock.Anything, "tok-123").Return(&model.User{ID: 7, Email: "a@example.com", IsActive: true}, nil).Once()
	app := newAuthApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer tok-123")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	svc.AssertExpectations(t)
}

func TestAuth_SchemeIsCaseInsensitive(t *testing.T) {
	svc := new(mocks.MockAuthService)
	svc.On("Authenticate", mock.Anything, "tok").Return(&model.User{ID: 1}, nil).Once()
	app := newAuthApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "bearer tok")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuth_Rejects(t *testing.T) {
	cases := map[string]string{
		"missing header": "",
		"basic scheme":   "Basic dXNlcjpwYXNz",
		"empty token":    "Bearer   ",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			svc := new(mocks.MockAuthService)
			app := newAuthApp(svc)

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
			svc.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
		})
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	svc := new(mocks.MockAuthService)
	svc.On("Authenticate", mock.Anything, "expired").Return(nil, service.ErrUnauthorized).Once()
	app := newAuthApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer expired")
	req.Header.Set(RequestIDHeader, "rid-1")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))

	var body struct {
		RequestID string `json:"request_id"`
		Error     struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "rid-1", body.RequestID)
	assert.Equal(t, "UNAUTHORIZED", body.Error.Code)
	assert.Equal(t, "could not validate credentials", body.Error.Message)
}

func TestAuth_InactiveUserIsUnauthorized(t *testing.T) {
	svc := new(mocks.MockAuthService)
	svc.On("Authenticate", mock.Anything, "tok").Return(nil, service.ErrInactiveUser).Once()
	app := newAuthApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer tok")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuth_LookupFailureIsServerError(t *testing.T) {
	svc := new(mocks.MockAuthService)
	svc.On("Authenticate", mock.Anything, "tok").Return(nil, errors.New("connection refused")).Once()

	var logs bytes.Buffer
	app := fiber.New()
	app.Use(RequestID())
	app.Use(LoggerWithWriter(&logs, time.UTC))
	app.Get("/me", Auth(svc), func(c *fiber.Ctx) error {
		t.Error("handler reached")
		return nil
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer tok")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("WWW-Authenticate"))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"code":"INTERNAL_ERROR"`)
	assert.NotContains(t, string(raw), "connection refused")
	assert.Contains(t, logs.String(), "connection refused")
}
