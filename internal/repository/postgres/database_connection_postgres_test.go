package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podapi/internal/model"
	"podapi/internal/repository"
)

func TestDatabaseConnectionPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDatabaseConnectionPostgres(db)
	conn := &model.DatabaseConnection{
		SystemID:    "sys_001",
		Username:    "admin",
		Password:    "your_password",
		IPAddress:   "192.168.1.1",
		Port:        1521,
		ServiceName: "ORCL",
	}
	cols := []string{"id", "system_id", "username", "password", "ip_address", "port", "service_name"}

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO database_connections").
			WithArgs("sys_001", "admin", "your_password", "192.168.1.1", 1521, "ORCL").
			WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(9), "sys_001", "admin", "your_password", "192.168.1.1", int64(1521), "ORCL"))

		got, err := repo.Create(context.Background(), conn)

		require.NoError(t, err)
		assert.Equal(t, int64(9), got.ID)
		assert.Equal(t, 1521, got.Port)
	})

	t.Run("duplicate system id", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO database_connections").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "database_connections_system_id_key"})

		_, err := repo.Create(context.Background(), conn)

		assert.ErrorIs(t, err, repository.ErrConflict)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabaseConnectionPostgres_ExistsBySystemID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("sys_001").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := NewDatabaseConnectionPostgres(db).ExistsBySystemID(context.Background(), "sys_001")

	require.NoError(t, err)
	assert.False(t, exists)
}
