package postgres

import (
	"context"
	"database/sql"

	"podapi/internal/model"
	"podapi/internal/repository"
)

// DatabaseConnectionPostgres is a PostgreSQL implementation of repository.DatabaseConnectionRepository.
type DatabaseConnectionPostgres struct {
	db *sql.DB
}

// NewDatabaseConnectionPostgres creates a new DatabaseConnectionPostgres repository.
func NewDatabaseConnectionPostgres(db *sql.DB) *DatabaseConnectionPostgres {
	return &DatabaseConnectionPostgres{db: db}
}

var _ repository.DatabaseConnectionRepository = (*DatabaseConnectionPostgres)(nil)

func (r *DatabaseConnectionPostgres) Create(ctx context.Context, c *model.DatabaseConnection) (*model.DatabaseConnection, error) {
	const q = `
		INSERT INTO database_connections (system_id, username, password, ip_address, port, service_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, system_id, username, password, ip_address, port, service_name
	`
	var out model.DatabaseConnection
	if err := r.db.QueryRowContext(ctx, q,
		c.SystemID, c.Username, c.Password, c.IPAddress, c.Port, c.ServiceName,
	).Scan(
		&out.ID,
		&out.SystemID,
		&out.Username,
		&out.Password,
		&out.IPAddress,
		&out.Port,
		&out.ServiceName,
	); err != nil {
		return nil, translateError(err)
	}
	return &out, nil
}

func (r *DatabaseConnectionPostgres) ExistsBySystemID(ctx context.Context, systemID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM database_connections WHERE system_id = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, systemID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
