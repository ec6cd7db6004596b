package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podapi/internal/model"
	"podapi/internal/repository"
)

var userRowColumns = []string{"id", "email", "hashed_password", "is_active", "otp", "otp_created_at",
	"first_name", "last_name", "phone_number", "timezone", "created_at", "updated_at"}

func userRow(id int64, email string) *sqlmock.Rows {
	return sqlmock.NewRows(userRowColumns).
		AddRow(id, email, "$2a$hash", true, nil, nil, "Ada", "Lovelace", "+12345678901", "UTC", time.Now(), nil)
}

func TestUserPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserPostgres(db)
	u := &model.User{
		Email:          "ada@example.com",
		HashedPassword: "$2a$hash",
		IsActive:       true,
		FirstName:      "Ada",
		LastName:       "Lovelace",
		PhoneNumber:    "+12345678901",
		Timezone:       "UTC",
	}

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO users").
			WithArgs(u.Email, u.HashedPassword, true, u.FirstName, u.LastName, u.PhoneNumber, u.Timezone).
			WillReturnRows(userRow(7, u.Email))

		got, err := repo.Create(context.Background(), u)

		require.NoError(t, err)
		assert.Equal(t, int64(7), got.ID)
		assert.Nil(t, got.OTP)
		assert.Nil(t, got.UpdatedAt)
	})

	t.Run("duplicate email", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO users").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

		got, err := repo.Create(context.Background(), u)

		assert.Nil(t, got)
		assert.ErrorIs(t, err, repository.ErrConflict)
		assert.Contains(t, err.Error(), "users_email_key")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_FindByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserPostgres(db)

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users WHERE email = ?").
			WithArgs("ada@example.com").
			WillReturnRows(userRow(1, "ada@example.com"))

		u, err := repo.FindByEmail(context.Background(), "ada@example.com")

		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", u.Email)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users WHERE email = ?").
			WithArgs("ghost@example.com").
			WillReturnError(sql.ErrNoRows)

		u, err := repo.FindByEmail(context.Background(), "ghost@example.com")

		assert.Nil(t, u)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestUserPostgres_ExistsByEmailOrPhone(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("ada@example.com", "+12345678901").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := NewUserPostgres(db).ExistsByEmailOrPhone(context.Background(), "ada@example.com", "+12345678901")

	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_UpdatePassword(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserPostgres(db)

	mock.ExpectExec("UPDATE users SET hashed_password").
		WithArgs("new-hash", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.UpdatePassword(context.Background(), 3, "new-hash"))

	mock.ExpectExec("UPDATE users SET hashed_password").
		WithArgs("new-hash", int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.UpdatePassword(context.Background(), 4, "new-hash"), sql.ErrNoRows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_SetOTP(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE users SET otp").
		WithArgs(nil, nil, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewUserPostgres(db).SetOTP(context.Background(), 3, nil, nil)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_UpdateTimezone(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows(userRowColumns).
		AddRow(int64(2), "ada@example.com", "h", true, nil, nil, "Ada", "Lovelace", "+12345678901", "Asia/Jakarta", time.Now(), time.Now())
	mock.ExpectQuery("UPDATE users SET timezone").
		WithArgs("Asia/Jakarta", int64(2)).
		WillReturnRows(rows)

	u, err := NewUserPostgres(db).UpdateTimezone(context.Background(), 2, "Asia/Jakarta")

	require.NoError(t, err)
	assert.Equal(t, "Asia/Jakarta", u.Timezone)
	assert.NotNil(t, u.UpdatedAt)
}

func TestTranslateError_PassesThroughOtherErrors(t *testing.T) {
	boom := errors.New("boom")
	assert.Equal(t, boom, translateError(boom))
	assert.NotErrorIs(t, translateError(&pgconn.PgError{Code: "23503"}), repository.ErrConflict)
}
