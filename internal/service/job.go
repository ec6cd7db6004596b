package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"podapi/internal/model"
	"podapi/internal/repository"
)

// JobInput is the client supplied part of a job.
type JobInput struct {
	Title      string
	Status     string
	ActiveDays map[string]bool
	AtFrom     string
	To         string
	Every      *string
}

// JobService manages a user's recognition schedules.
type JobService interface {
	Create(ctx context.Context, userID int64, in JobInput) (*model.Job, error)
	Get(ctx context.Context, userID, id int64) (*model.Job, error)
	// List returns all jobs of the user, or only those with status when it is set.
	List(ctx context.Context, userID int64, status string) ([]model.Job, error)
	Search(ctx context.Context, userID int64, title string) ([]model.Job, error)
	Update(ctx context.Context, userID, id int64, in JobInput) (*model.Job, error)
	Delete(ctx context.Context, userID, id int64) error
}

type jobService struct {
	repo repository.JobRepository
	now  func() time.Time
}

func NewJobService(repo repository.JobRepository) JobService {
	return &jobService{repo: repo, now: time.Now}
}

func (s *jobService) Create(ctx context.Context, userID int64, in JobInput) (*model.Job, error) {
	j := &model.Job{UserID: userID, CreatedAt: s.now().UTC()}
	fillJob(j, in)
	return s.repo.Create(ctx, j)
}

func fillJob(j *model.Job, in JobInput) {
	j.Title = strings.TrimSpace(in.Title)
	j.Status = strings.TrimSpace(in.Status)
	if j.Status == "" {
		j.Status = model.DefaultJobStatus
	}
	j.ActiveDays = model.NormalizeActiveDays(in.ActiveDays)
	j.AtFrom = in.AtFrom
	j.To = in.To
	j.Every = in.Every
}

func (s *jobService) Get(ctx context.Context, userID, id int64) (*model.Job, error) {
	j, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return j, nil
}

func (s *jobService) List(ctx context.Context, userID int64, status string) ([]model.Job, error) {
	return s.repo.List(ctx, userID, strings.TrimSpace(status))
}

func (s *jobService) Search(ctx context.Context, userID int64, title string) ([]model.Job, error) {
	return s.repo.SearchByTitle(ctx, userID, strings.TrimSpace(title))
}

func (s *jobService) Update(ctx context.Context, userID, id int64, in JobInput) (*model.Job, error) {
	j, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	fillJob(j, in)
	now := s.now().UTC()
	j.UpdatedAt = &now

	stored, err := s.repo.Update(ctx, j)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return stored, nil
}

func (s *jobService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrJobNotFound
		}
		return err
	}
	return nil
}
