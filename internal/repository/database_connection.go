package repository

import (
	"context"

	"podapi/internal/model"
)

// DatabaseConnectionRepository persists external database credentials.
type DatabaseConnectionRepository interface {
	// Create inserts the record; a duplicate system id yields ErrConflict.
	Create(ctx context.Context, c *model.DatabaseConnection) (*model.DatabaseConnection, error)
	ExistsBySystemID(ctx context.Context, systemID string) (bool, error)
}
