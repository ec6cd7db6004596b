package service

import (
	"context"
	"strings"
	"time"

	"podapi/internal/model"
	"podapi/internal/repository"
)

// NotificationService stores and lists user notifications. Timestamps are
// returned in the reading user's timezone.
type NotificationService interface {
	List(ctx context.Context, user *model.User) ([]model.Notification, error)
	Create(ctx context.Context, user *model.User, text string, relatedURL *string) (*model.Notification, error)
	// Notify creates a notification on behalf of the system.
	Notify(ctx context.Context, userID int64, text string, relatedURL *string) error
}

type notificationService struct {
	repo repository.NotificationRepository
	now  func() time.Time
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo, now: time.Now}
}

// userLocation resolves the user's IANA zone, defaulting to UTC.
func userLocation(u *model.User) *time.Location {
	if u == nil || u.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (s *notificationService) List(ctx context.Context, user *model.User) ([]model.Notification, error) {
	items, err := s.repo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	loc := userLocation(user)
	for i := range items {
		items[i].Timestamp = items[i].Timestamp.In(loc)
	}
	return items, nil
}

func (s *notificationService) Create(ctx context.Context, user *model.User, text string, relatedURL *string) (*model.Notification, error) {
	n, err := s.create(ctx, user.ID, text, relatedURL)
	if err != nil {
		return nil, err
	}
	n.Timestamp = n.Timestamp.In(userLocation(user))
	return n, nil
}

func (s *notificationService) Notify(ctx context.Context, userID int64, text string, relatedURL *string) error {
	_, err := s.create(ctx, userID, text, relatedURL)
	return err
}

func (s *notificationService) create(ctx context.Context, userID int64, text string, relatedURL *string) (*model.Notification, error) {
	if relatedURL != nil && strings.TrimSpace(*relatedURL) == "" {
		relatedURL = nil
	}
	return s.repo.Create(ctx, &model.Notification{
		Text:       strings.TrimSpace(text),
		RelatedURL: relatedURL,
		Timestamp:  s.now().UTC(),
		UserID:     userID,
	})
}
