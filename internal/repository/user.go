package repository

import (
	"context"
	"time"

	"podapi/internal/model"
)

// UserRepository persists user accounts.
type UserRepository interface {
	// Create inserts a user and returns the stored row. Duplicate email or phone yields ErrConflict.
	Create(ctx context.Context, u *model.User) (*model.User, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// ExistsByEmailOrPhone reports whether either identifier is taken.
	ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error)
	UpdatePassword(ctx context.Context, id int64, hashedPassword string) error
	// SetOTP stores an OTP hash with its creation time; a nil otp clears both.
	SetOTP(ctx context.Context, id int64, otp *string, createdAt *time.Time) error
	UpdateTimezone(ctx context.Context, id int64, timezone string) (*model.User, error)
}
