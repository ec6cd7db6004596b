package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"podapi/internal/auth"
	"podapi/internal/mail"
	"podapi/internal/model"
	"podapi/internal/repository"
)

const tokenTypeBearer = "bearer"

// SignupInput carries a new account. Field format checks happen at the edge;
// the service enforces password confirmation and uniqueness.
type SignupInput struct {
	Email           string
	FirstName       string
	LastName        string
	PhoneNumber     string
	Password        string
	ConfirmPassword string
}

// TokenResult is returned by login style operations.
type TokenResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// ResetPasswordInput resets by reset token, or by email plus OTP when Token is empty.
type ResetPasswordInput struct {
	Token       string
	Email       string
	OTP         string
	NewPassword string
}

// AuthService covers account creation, login, password reset and token checks.
type AuthService interface {
	SignupLogin(ctx context.Context, in SignupInput) (*TokenResult, error)
	Signup(ctx context.Context, in SignupInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (*TokenResult, error)
	// ForgotPassword succeeds silently for unknown emails.
	ForgotPassword(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, otp string) error
	ResetPassword(ctx context.Context, in ResetPasswordInput) error
	UpdateTimezone(ctx context.Context, userID int64, timezone string) (*model.User, error)
	// Authenticate resolves a bearer access token to an active user.
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// AuthOptions tune the reset flow and hashing.
type AuthOptions struct {
	PublicURL  string
	OTPTTL     time.Duration
	BcryptCost int
}

type authService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
	mailer mail.Mailer
	opts   AuthOptions
	now    func() time.Time
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager, mailer mail.Mailer, opts AuthOptions) AuthService {
	if opts.OTPTTL <= 0 {
		opts.OTPTTL = 15 * time.Minute
	}
	opts.PublicURL = strings.TrimRight(opts.PublicURL, "/")
	return &authService{users: users, tokens: tokens, mailer: mailer, opts: opts, now: time.Now}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) SignupLogin(ctx context.Context, in SignupInput) (*TokenResult, error) {
	u, err := s.Signup(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.issue(u.Email)
}

func (s *authService) Signup(ctx context.Context, in SignupInput) (*model.User, error) {
	in.Email = normalizeEmail(in.Email)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	if len(in.Password) > auth.MaxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	exists, err := s.users.ExistsByEmailOrPhone(ctx, in.Email, in.PhoneNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}
	if in.Password != in.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	hash, err := auth.HashPassword(in.Password, s.opts.BcryptCost)
	if err != nil {
		return nil, err
	}

	u, err := s.users.Create(ctx, &model.User{
		Email:          in.Email,
		HashedPassword: hash,
		IsActive:       true,
		FirstName:      strings.TrimSpace(in.FirstName),
		LastName:       strings.TrimSpace(in.LastName),
		PhoneNumber:    in.PhoneNumber,
		Timezone:       model.DefaultTimezone,
		CreatedAt:      s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return u, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*TokenResult, error) {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(u.HashedPassword, password) {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrInactiveUser
	}
	return s.issue(u.Email)
}

func (s *authService) issue(email string) (*TokenResult, error) {
	tok, err := s.tokens.IssueAccessToken(email)
	if err != nil {
		return nil, err
	}
	return &TokenResult{AccessToken: tok, TokenType: tokenTypeBearer}, nil
}

func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}

	otp, err := auth.GenerateOTP()
	if err != nil {
		return err
	}
	otpHash, err := auth.HashPassword(otp, s.opts.BcryptCost)
	if err != nil {
		return err
	}
	createdAt := s.now().UTC()
	if err := s.users.SetOTP(ctx, u.ID, &otpHash, &createdAt); err != nil {
		return err
	}

	token, err := s.tokens.IssueResetToken(u.Email)
	if err != nil {
		return err
	}
	link := s.opts.PublicURL + "/auth/reset-password?token=" + url.QueryEscape(token)

	body, err := mail.ResetPasswordBody(link, otp, int(s.opts.OTPTTL/time.Minute))
	if err != nil {
		return err
	}
	if err := s.mailer.Send(ctx, u.Email, mail.ResetPasswordSubject, body); err != nil {
		return fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}
	return nil
}

func (s *authService) VerifyOTP(ctx context.Context, email, otp string) error {
	_, err := s.checkOTP(ctx, email, otp)
	return err
}

// checkOTP validates otp against the stored hash. An expired OTP is cleared.
func (s *authService) checkOTP(ctx context.Context, email, otp string) (*model.User, error) {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidOTP
		}
		return nil, err
	}
	if u.OTP == nil || u.OTPCreatedAt == nil {
		return nil, ErrInvalidOTP
	}

	if s.now().After(u.OTPCreatedAt.Add(s.opts.OTPTTL)) {
		if err := s.users.SetOTP(ctx, u.ID, nil, nil); err != nil {
			return nil, err
		}
		return nil, ErrOTPExpired
	}
	if !auth.CheckPassword(*u.OTP, otp) {
		return nil, ErrInvalidOTP
	}
	return u, nil
}

func (s *authService) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	if len(in.NewPassword) > auth.MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	var u *model.User
	switch {
	case in.Token != "":
		email, err := s.tokens.ParseResetToken(in.Token)
		if err != nil {
			return ErrInvalidResetToken
		}
		u, err = s.users.FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrInvalidResetRequest
			}
			return err
		}
	case in.Email != "" && in.OTP != "":
		var err error
		if u, err = s.checkOTP(ctx, in.Email, in.OTP); err != nil {
			return err
		}
	default:
		return ErrInvalidResetToken
	}

	hash, err := auth.HashPassword(in.NewPassword, s.opts.BcryptCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidResetRequest
		}
		return err
	}
	return nil
}

func (s *authService) UpdateTimezone(ctx context.Context, userID int64, timezone string) (*model.User, error) {
	timezone = strings.TrimSpace(timezone)
	if timezone == "" || timezone == "Local" {
		return nil, ErrInvalidTimezone
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return nil, ErrInvalidTimezone
	}

	u, err := s.users.UpdateTimezone(ctx, userID, timezone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return u, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	email, err := s.tokens.ParseAccessToken(token)
	if err != nil {
		return nil, ErrUnauthorized
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrInactiveUser
	}
	return u, nil
}
