package postgres

import (
	"context"
	"database/sql"
	"time"

	"podapi/internal/model"
	"podapi/internal/repository"
)

const userColumns = `id, email, hashed_password, is_active, otp, otp_created_at,
	first_name, last_name, phone_number, timezone, created_at, updated_at`

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

func scanUser(s scanner) (*model.User, error) {
	var u model.User
	if err := s.Scan(
		&u.ID,
		&u.Email,
		&u.HashedPassword,
		&u.IsActive,
		&u.OTP,
		&u.OTPCreatedAt,
		&u.FirstName,
		&u.LastName,
		&u.PhoneNumber,
		&u.Timezone,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a user row and returns the stored record.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		INSERT INTO users (email, hashed_password, is_active, first_name, last_name, phone_number, timezone)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + userColumns
	row := r.db.QueryRowContext(ctx, q,
		u.Email,
		u.HashedPassword,
		u.IsActive,
		u.FirstName,
		u.LastName,
		u.PhoneNumber,
		u.Timezone,
	)
	out, err := scanUser(row)
	if err != nil {
		return nil, translateError(err)
	}
	return out, nil
}

// FindByID fetches a user by primary key.
func (r *UserPostgres) FindByID(ctx context.Context, id int64) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

// FindByEmail fetches a user by email.
func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, email))
}

func (r *UserPostgres) ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 OR phone_number = $2)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, email, phone).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *UserPostgres) UpdatePassword(ctx context.Context, id int64, hashedPassword string) error {
	const q = `UPDATE users SET hashed_password = $1, otp = NULL, otp_created_at = NULL, updated_at = now() WHERE id = $2`
	res, err := r.db.ExecContext(ctx, q, hashedPassword, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *UserPostgres) SetOTP(ctx context.Context, id int64, otp *string, createdAt *time.Time) error {
	const q = `UPDATE users SET otp = $1, otp_created_at = $2, updated_at = now() WHERE id = $3`
	res, err := r.db.ExecContext(ctx, q, otp, createdAt, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// UpdateTimezone stores the zone name and returns the refreshed user.
func (r *UserPostgres) UpdateTimezone(ctx context.Context, id int64, timezone string) (*model.User, error) {
	q := `UPDATE users SET timezone = $1, updated_at = now() WHERE id = $2 RETURNING ` + userColumns
	return scanUser(r.db.QueryRowContext(ctx, q, timezone, id))
}
