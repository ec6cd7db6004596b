package handler

import (
	"github.com/gofiber/fiber/v2"

	"podapi/internal/http/middleware"
	"podapi/internal/service"
)

type signupRequest struct {
	Email           string `json:"email" validate:"required,email"`
	FirstName       string `json:"first_name" validate:"required,min=2,max=50"`
	LastName        string `json:"last_name" validate:"required,min=2,max=50"`
	PhoneNumber     string `json:"phone_number" validate:"required,phone"`
	Password        string `json:"password" validate:"required,min=6,bcrypt"`
	ConfirmPassword string `json:"confirm_password" validate:"required,min=6,bcrypt"`
}

func (r signupRequest) input() service.SignupInput {
	return service.SignupInput{
		Email:           r.Email,
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		PhoneNumber:     r.PhoneNumber,
		Password:        r.Password,
		ConfirmPassword: r.ConfirmPassword,
	}
}

// loginRequest accepts the OAuth2 password form as well as JSON.
type loginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type verifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required"`
}

type resetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=6,bcrypt"`
	Email       string `json:"email" validate:"omitempty,email"`
	OTP         string `json:"otp"`
}

// SignupLogin godoc
// @Summary Create an account and return an access token
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} service.TokenResult
// @Failure 409 {object} errorPayload
// @Failure 422 {object} errorPayload
// @Router /auth/signup-login [post]
func SignupLogin(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req signupRequest
		if ok, err := bindBody(c, &req); !ok {
			return err
		}
		tok, err := svc.SignupLogin(c.UserContext(), req.input())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(tok)
	}
}

// Signup godoc
// @Summary Create an account
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} model.User
// @Failure 409 {object} errorPayload
// @Router /auth/signup [post]
func Signup(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req signupRequest
		if ok, err := bindBody(c, &req); !ok {
			return err
		}
		u, err := svc.Signup(c.UserContext(), req.input())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(u)
	}
}

// Login godoc
// @Summary Exchange email and password for an access token
// @Tags auth
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Success 200 {object} service.TokenResult
// @Failure 401 {object} errorPayload
// @Router /auth/login [post]
func Login(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if ok, err := bindBody(c, &req); !ok {
			return err
		}
		tok, err := svc.Login(c.UserContext(), req.Username, req.Password)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(tok)
	}
}

// ForgotPassword godoc
// @Summary Email a password reset link and OTP
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} messagePayload
// @Router /auth/forgot-password [post]
func ForgotPassword(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req emailRequest
		if ok, err := bindBody(c, &req); !ok {
			return err
		}
		if err := svc.ForgotPassword(c.UserContext(), req.Email); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(messagePayload{Message: "If the email exists, a password reset link has been sent."})
	}
}

// VerifyOTP godoc
// @Summary Check a password reset OTP
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} messagePayload
// @Failure 400 {object} errorPayload
// @Router /auth/verify-otp [post]
func VerifyOTP(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req verifyOTPRequest
		if ok, err := bindBody(c, &req); !ok {
			return err
		}
		if err := svc.VerifyOTP(c.UserContext(), req.Email, req.OTP); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(messagePayload{Message: "OTP verified successfully"})
	}
}

// ResetPassword godoc
// @Summary Set a new password using the emailed token, or email plus OTP
// @Tags auth
// @Accept json
// @Produce json
// @Param token query string false "reset token from the email link"
// @Success 200 {object} messagePayload
// @Failure 400 {object} errorPayload
// @Failure 422 {object} errorPayload
// @Router /auth/reset-password [post]
func ResetPassword(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req resetPasswordRequest
		if ok, err := bindBody(c, &req); !ok {
			return err
		}
		err := svc.ResetPassword(c.UserContext(), service.ResetPasswordInput{
			Token:       c.Query("token"),
			Email:       req.Email,
			OTP:         req.OTP,
			NewPassword: req.NewPassword,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(messagePayload{Message: "Password reset successful"})
	}
}

// UpdateTimezone godoc
// @Summary Change the caller's timezone
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Param timezone query string true "IANA zone name"
// @Success 200 {object} model.User
// @Failure 400 {object} errorPayload
// @Router /auth/user/timezone [put]
func UpdateTimezone(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		}
		tz := c.Query("timezone")
		if tz == "" {
			return writeError(c, fiber.StatusUnprocessableEntity, "VALIDATION_ERROR", "timezone is required")
		}
		u, err := svc.UpdateTimezone(c.UserContext(), user.ID, tz)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(u)
	}
}
