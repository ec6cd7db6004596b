package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"podapi/internal/model"
	"podapi/internal/service"
	serviceMocks "podapi/internal/service/mocks"
)

func validSignup() map[string]string {
	return map[string]string{
		"email":            "new@example.com",
		"first_name":       "Ana",
		"last_name":        "Diaz",
		"phone_number":     "+12025550123",
		"password":         "secret1",
		"confirm_password": "secret1",
	}
}

func TestSignupLogin(t *testing.T) {
	svc := new(serviceMocks.MockAuthService)
	app := newTestApp()
	app.Post("/auth/signup-login", SignupLogin(svc))

	t.Run("success", func(t *testing.T) {
		svc.On("SignupLogin", mock.Anything, service.SignupInput{
			Email:           "new@example.com",
			FirstName:       "Ana",
			LastName:        "Diaz",
			PhoneNumber:     "+12025550123",
			Password:        "secret1",
			ConfirmPassword: "secret1",
		}).Return(&service.TokenResult{AccessToken: "jwt", TokenType: "bearer"}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/auth/signup-login", validSignup()))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var tok service.TokenResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&tok))
		assert.Equal(t, "jwt", tok.AccessToken)
		assert.Equal(t, "bearer", tok.TokenType)
		svc.AssertExpectations(t)
	})

	t.Run("duplicate", func(t *testing.T) {
		svc.On("SignupLogin", mock.Anything, mock.Anything).Return(nil, service.ErrUserExists).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/auth/signup-login", validSignup()))

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "CONFLICT", decodeError(t, resp).Error.Code)
	})
}

func TestSignup_Validation(t *testing.T) {
	cases := map[string]struct {
		field, value, message string
	}{
		"bad email":      {"email", "not-an-email", "email must be a valid email address"},
		"short name":     {"first_name", "A", "first_name must be at least 2 characters"},
		"short phone":    {"phone_number", "+1202555", "phone_number must be a valid phone number"},
		"leading zero":   {"phone_number", "02025550123", "phone_number must be a valid phone number"},
		"short password": {"password", "abc", "password must be at least 6 characters"},
		"long password":  {"password", strings.Repeat("p", 80), "password must be at most 72 bytes"},
		"wide password":  {"password", strings.Repeat("é", 40), "password must be at most 72 bytes"},
		"missing last":   {"last_name", "", "last_name is required"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			svc := new(serviceMocks.MockAuthService)
			app := newTestApp()
			app.Post("/auth/signup", Signup(svc))

			body := validSignup()
			body[tc.field] = tc.value
			resp, _ := app.Test(jsonRequest(http.MethodPost, "/auth/signup", body))

			assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
			res := decodeError(t, resp)
			assert.Equal(t, "VALIDATION_ERROR", res.Error.Code)
			assert.Equal(t, tc.message, res.Error.Message)
			svc.AssertNotCalled(t, "Signup", mock.Anything, mock.Anything)
		})
	}
}

func TestResetPassword_LongPasswordRejected(t *testing.T) {
	svc := new(serviceMocks.MockAuthService)
	app := newTestApp()
	app.Post("/auth/reset-password", ResetPassword(svc))

	resp, _ := app.Test(jsonRequest(http.MethodPost, "/auth/reset-password?token=t",
		map[string]string{"new_password": strings.Repeat("n", 73)}))

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "new_password must be at most 72 bytes", decodeError(t, resp).Error.Message)
	svc.AssertNotCalled(t, "ResetPassword", mock.Anything, mock.Anything)
}

func TestSignup_PasswordMismatch(t *testing.T) {
	svc := new(serviceMocks.MockAuthService)
	app := newTestApp()
	app.Post("/auth/signup", Signup(svc))
	svc.On("Signup", mock.Anything, mock.Anything).Return(nil, service.ErrPasswordMismatch).Once()

	body := validSignup()
	body["confirm_password"] = "secret2"
	resp, _ := app.Test(jsonRequest(http.MethodPost, "/auth/signup", body))

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "PASSWORD_MISMATCH", decodeError(t, resp).Error.Code)
}

func TestSignup_ReturnsUserWithoutSecrets(t *testing.T) {
	svc := new(serviceMocks.MockAuthService)
	app := newTestApp()
	app.Post("/auth/signup", Signup(svc))
	svc.On("Signup", mock.Anything, mock.Anything).
		Return(&model.User{ID: 3, Email: "new@example.com", HashedPassword: "$2a$hash", IsActive: true}, nil).Once()

	resp, _ := app.Test(jsonRequest(http.MethodPost, "/auth/signup", validSignup()))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var raw map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	assert.Equal(t, "new@example.com", raw["email"])
	assert.NotContains(t, raw, "hashed_password")
	assert.NotContains(t, raw, "HashedPassword")
}

func TestLogin(t *testing.T) {
	svc := new(serviceMocks.MockAuthService)
	app := newTestApp()
	app.Post("/auth/login", Login(svc))

	t.Run("form body", func(t *testing.T) {
		svc.On("Login", mock.Anything, "owner@example.com", "secret1").
			Return(&service.TokenResult{AccessToken: "jwt", TokenType: "bearer"}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("username=owner%40example.com&password=secret1"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		svc.AssertExpectations(t)
	})

	t.Run("json body", func(t *testing.T) {
		svc.On("Login", mock.Anything, "owner@example.com", "secret1").
			Return(&service.TokenResult{AccessToken: "jwt", TokenType: "bearer"}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/auth/login", map[string]string{
			"username": "owner@example.com",
			"password": "secret1",
		}))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc.On("Login", mock.Anything, "owner@example.com", "nope").Return(nil, service.ErrInvalidCredentials).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/auth/login", map[string]string{
			"username": "owner@example.com",
			"password": "nope",
		}))

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
		assert.Equal(t, "incorrect email or password", decodeError(t, resp).Error.Message)
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_BODY", decodeError(t, resp).Error.Code)
	})
}

func TestForgotPassword(t *testing.T) {
	svc := new(serviceMocks.MockAuthService)
	app := newTestApp()
	app.Post("/auth/forgot-password", ForgotPassword(svc))

	t.Run("sent", func(t *testing.T) {
		svc.On("ForgotPassword", mock.Anything, "owner@example.com").Return(nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/auth/forgot-password", map[string]string{"email": "owner@example.com"}))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body messagePayload
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "If the email exists, a password reset link has been sent.", body.Message)
	})

	t.Run("mail failure", func(t *testing.T) {
		svc.On("ForgotPassword", mock.Anything, "owner@example.com").Return(service.ErrMailDelivery).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/auth/forgot-password", map[string]string{"email": "owner@example.com"}))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "MAIL_DELIVERY_FAILED", decodeError(t, resp).Error.Code)
	})
}

func TestVerifyOTP(t *testing.T) {
	svc := new(serviceMocks.MockAuthService)
	app := newTestApp()
	app.Post("/auth/verify-otp", VerifyOTP(svc))

	t.Run("ok", func(t *testing.T) {
		svc.On("VerifyOTP", mock.Anything, "owner@example.com", "123456").Return(nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/auth/verify-otp", map[string]string{"email": "owner@example.com", "otp": "123456"}))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("expired", func(t *testing.T) {
		svc.On("VerifyOTP", mock.Anything, "owner@example.com", "123456").Return(service.ErrOTPExpired).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/auth/verify-otp", map[string]string{"email": "owner@example.com", "otp": "123456"}))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "otp has expired", decodeError(t, resp).Error.Message)
	})
}

func TestResetPassword(t *testing.T) {
	svc := new(serviceMocks.MockAuthService)
	app := newTestApp()
	app.Post("/auth/reset-password", ResetPassword(svc))

	t.Run("by token", func(t *testing.T) {
		svc.On("ResetPassword", mock.Anything, service.ResetPasswordInput{Token: "reset-jwt", NewPassword: "newsecret"}).Return(nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/auth/reset-password?token=reset-jwt", map[string]string{"new_password": "newsecret"}))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		svc.AssertExpectations(t)
	})

	t.Run("by otp", func(t *testing.T) {
		in := service.ResetPasswordInput{Email: "owner@example.com", OTP: "654321", NewPassword: "newsecret"}
		svc.On("ResetPassword", mock.Anything, in).Return(nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/auth/reset-password", map[string]string{
			"email":        "owner@example.com",
			"otp":          "654321",
			"new_password": "newsecret",
		}))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("bad token", func(t *testing.T) {
		svc.On("ResetPassword", mock.Anything, mock.Anything).Return(service.ErrInvalidResetToken).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/auth/reset-password?token=x", map[string]string{"new_password": "newsecret"}))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_TOKEN", decodeError(t, resp).Error.Code)
	})
}

func TestUpdateTimezone(t *testing.T) {
	svc := new(serviceMocks.MockAuthService)
	app := newTestApp()
	app.Put("/auth/user/timezone", UpdateTimezone(svc))

	t.Run("ok", func(t *testing.T) {
		svc.On("UpdateTimezone", mock.Anything, testUser.ID, "Asia/Jakarta").
			Return(&model.User{ID: testUser.ID, Timezone: "Asia/Jakarta"}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPut, "/auth/user/timezone?timezone=Asia/Jakarta", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var u model.User
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&u))
		assert.Equal(t, "Asia/Jakarta", u.Timezone)
	})

	t.Run("missing", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodPut, "/auth/user/timezone", nil))

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("unknown zone", func(t *testing.T) {
		svc.On("UpdateTimezone", mock.Anything, testUser.ID, "Mars/Base").Return(nil, service.ErrInvalidTimezone).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPut, "/auth/user/timezone?timezone=Mars/Base", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_TIMEZONE", decodeError(t, resp).Error.Code)
	})
}
