package repository

import (
	"context"

	"podapi/internal/model"
)

// JobRepository persists recognition schedules.
type JobRepository interface {
	Create(ctx context.Context, j *model.Job) (*model.Job, error)
	FindByID(ctx context.Context, userID, id int64) (*model.Job, error)
	// List returns the user's jobs, filtered by status when it is non-empty.
	List(ctx context.Context, userID int64, status string) ([]model.Job, error)
	SearchByTitle(ctx context.Context, userID int64, title string) ([]model.Job, error)
	Update(ctx context.Context, j *model.Job) (*model.Job, error)
	Delete(ctx context.Context, userID, id int64) error
	// ListActiveOn returns jobs of every user whose active_days[day] is true.
	ListActiveOn(ctx context.Context, day string) ([]model.Job, error)
}
