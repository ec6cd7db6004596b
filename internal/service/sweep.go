package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"podapi/internal/logging"
	"podapi/internal/model"
	"podapi/internal/repository"
)

const recognitionDetails = "Recognition fields populated by " + model.ReviewerOCRSystem

// SweepResult counts what one recognition sweep touched.
type SweepResult struct {
	Day    string
	Jobs   int
	Users  int
	Files  int
	Failed int
}

// RecognitionService runs the recognition sweep over jobs active on a given day.
type RecognitionService interface {
	Sweep(ctx context.Context, now time.Time) (SweepResult, error)
}

type recognitionService struct {
	jobs       repository.JobRepository
	files      repository.FileRepository
	notifier   NotificationService
	recognizer Recognizer
	log        *slog.Logger
}

func NewRecognitionService(jobs repository.JobRepository, files repository.FileRepository, notifier NotificationService, recognizer Recognizer, logger *slog.Logger) RecognitionService {
	return &recognitionService{
		jobs:       jobs,
		files:      files,
		notifier:   notifier,
		recognizer: recognizer,
		log:        logging.Component(logger, "recognition"),
	}
}

// Sweep processes every file of every user owning a job active on now's UTC
// weekday. Each user is processed once per sweep however many jobs they have.
// A failing file is logged and skipped.
func (s *recognitionService) Sweep(ctx context.Context, now time.Time) (SweepResult, error) {
	res := SweepResult{Day: model.DayKey(now.UTC())}

	jobs, err := s.jobs.ListActiveOn(ctx, res.Day)
	if err != nil {
		return res, fmt.Errorf("list active jobs: %w", err)
	}
	res.Jobs = len(jobs)

	seen := make(map[int64]struct{}, len(jobs))
	for _, job := range jobs {
		if _, ok := seen[job.UserID]; ok {
			continue
		}
		seen[job.UserID] = struct{}{}
		if err := ctx.Err(); err != nil {
			return res, err
		}

		res.Users++
		processed, failed := s.processUser(ctx, job.UserID)
		res.Files += processed
		res.Failed += failed

		if processed > 0 {
			text := fmt.Sprintf("Recognition finished for %d file(s)", processed)
			if err := s.notifier.Notify(ctx, job.UserID, text, strPtr("/files/")); err != nil {
				s.log.Error("recognition_notify_failed", slog.Int64("user_id", job.UserID), logging.Err(err))
			}
		}
	}
	return res, nil
}

func (s *recognitionService) processUser(ctx context.Context, userID int64) (processed, failed int) {
	files, err := s.files.ListByUser(ctx, userID)
	if err != nil {
		s.log.Error("recognition_list_files_failed", slog.Int64("user_id", userID), logging.Err(err))
		return 0, 1
	}

	for i := range files {
		f := &files[i]
		s.recognizer.Recognize(f)
		_, err := s.files.UpdateRecognition(ctx, f, model.FileHistory{
			Action:    model.ActionRecognition,
			Details:   strPtr(recognitionDetails),
			Timestamp: time.Now().UTC(),
		})
		if err != nil {
			failed++
			s.log.Error("recognition_file_failed",
				slog.Int64("user_id", userID),
				slog.Int64("file_id", f.ID),
				logging.Err(err),
			)
			continue
		}
		processed++
	}
	return processed, failed
}
