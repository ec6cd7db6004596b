package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"podapi/internal/model"
	"podapi/internal/repository"
)

const jobColumns = `id, title, active_days, at_from, "to", every, status, created_at, updated_at, user_id`

// JobPostgres is a PostgreSQL implementation of repository.JobRepository.
// active_days is stored as a JSONB object keyed MON..SUN.
type JobPostgres struct {
	db *sql.DB
}

// NewJobPostgres creates a new JobPostgres repository.
func NewJobPostgres(db *sql.DB) *JobPostgres {
	return &JobPostgres{db: db}
}

var _ repository.JobRepository = (*JobPostgres)(nil)

func scanJob(s scanner) (*model.Job, error) {
	var (
		j    model.Job
		days []byte
	)
	if err := s.Scan(
		&j.ID,
		&j.Title,
		&days,
		&j.AtFrom,
		&j.To,
		&j.Every,
		&j.Status,
		&j.CreatedAt,
		&j.UpdatedAt,
		&j.UserID,
	); err != nil {
		return nil, err
	}
	if len(days) > 0 {
		if err := json.Unmarshal(days, &j.ActiveDays); err != nil {
			return nil, fmt.Errorf("decode active_days: %w", err)
		}
	}
	j.ActiveDays = model.NormalizeActiveDays(j.ActiveDays)
	return &j, nil
}

func scanJobs(rows *sql.Rows) ([]model.Job, error) {
	defer rows.Close()
	items := make([]model.Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func encodeActiveDays(days map[string]bool) (string, error) {
	b, err := json.Marshal(model.NormalizeActiveDays(days))
	if err != nil {
		return "", fmt.Errorf("encode active_days: %w", err)
	}
	return string(b), nil
}

// Create inserts a job and returns the stored record.
func (r *JobPostgres) Create(ctx context.Context, j *model.Job) (*model.Job, error) {
	days, err := encodeActiveDays(j.ActiveDays)
	if err != nil {
		return nil, err
	}
	const q = `
		INSERT INTO jobs (title, active_days, at_from, "to", every, status, user_id)
		VALUES ($1, $2::jsonb, $3, $4, $5, $6, $7)
		RETURNING ` + jobColumns
	return scanJob(r.db.QueryRowContext(ctx, q, j.Title, days, j.AtFrom, j.To, j.Every, j.Status, j.UserID))
}

// FindByID fetches a job owned by userID.
func (r *JobPostgres) FindByID(ctx context.Context, userID, id int64) (*model.Job, error) {
	const q = `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1 AND user_id = $2`
	return scanJob(r.db.QueryRowContext(ctx, q, id, userID))
}

// List returns the user's jobs, optionally restricted to one status.
func (r *JobPostgres) List(ctx context.Context, userID int64, status string) ([]model.Job, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if status == "" {
		const q = `SELECT ` + jobColumns + ` FROM jobs WHERE user_id = $1 ORDER BY id`
		rows, err = r.db.QueryContext(ctx, q, userID)
	} else {
		const q = `SELECT ` + jobColumns + ` FROM jobs WHERE user_id = $1 AND status = $2 ORDER BY id`
		rows, err = r.db.QueryContext(ctx, q, userID, status)
	}
	if err != nil {
		return nil, err
	}
	return scanJobs(rows)
}

// SearchByTitle matches titles case-insensitively as substrings.
func (r *JobPostgres) SearchByTitle(ctx context.Context, userID int64, title string) ([]model.Job, error) {
	const q = `SELECT ` + jobColumns + ` FROM jobs WHERE user_id = $1 AND title ILIKE '%' || $2 || '%' ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, userID, title)
	if err != nil {
		return nil, err
	}
	return scanJobs(rows)
}

// Update overwrites the editable columns of a job owned by j.UserID.
func (r *JobPostgres) Update(ctx context.Context, j *model.Job) (*model.Job, error) {
	days, err := encodeActiveDays(j.ActiveDays)
	if err != nil {
		return nil, err
	}
	const q = `
		UPDATE jobs SET title = $1, active_days = $2::jsonb, at_from = $3, "to" = $4, every = $5,
			status = $6, updated_at = now()
		WHERE id = $7 AND user_id = $8
		RETURNING ` + jobColumns
	return scanJob(r.db.QueryRowContext(ctx, q, j.Title, days, j.AtFrom, j.To, j.Every, j.Status, j.ID, j.UserID))
}

// Delete removes a job owned by userID.
func (r *JobPostgres) Delete(ctx context.Context, userID, id int64) error {
	const q = `DELETE FROM jobs WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// ListActiveOn returns every job whose active_days entry for day is true.
func (r *JobPostgres) ListActiveOn(ctx context.Context, day string) ([]model.Job, error) {
	const q = `SELECT ` + jobColumns + ` FROM jobs WHERE (active_days ->> $1)::boolean IS TRUE ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, day)
	if err != nil {
		return nil, err
	}
	return scanJobs(rows)
}
