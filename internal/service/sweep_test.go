package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"podapi/internal/logging"
	"podapi/internal/model"
	repoMocks "podapi/internal/repository/mocks"
)

type stubRecognizer struct{ calls int }

func (s *stubRecognizer) Recognize(f *model.File) {
	s.calls++
	f.RecognitionStatus = model.RecognitionProcessed
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) List(ctx context.Context, user *model.User) ([]model.Notification, error) {
	args := m.Called(ctx, user)
	return args.Get(0).([]model.Notification), args.Error(1)
}

func (m *mockNotifier) Create(ctx context.Context, user *model.User, text string, relatedURL *string) (*model.Notification, error) {
	args := m.Called(ctx, user, text, relatedURL)
	return args.Get(0).(*model.Notification), args.Error(1)
}

func (m *mockNotifier) Notify(ctx context.Context, userID int64, text string, relatedURL *string) error {
	return m.Called(ctx, userID, text, relatedURL).Error(0)
}

type sweepFixture struct {
	svc      RecognitionService
	jobs     *repoMocks.MockJobRepository
	files    *repoMocks.MockFileRepository
	notifier *mockNotifier
	rec      *stubRecognizer
	logs     *bytes.Buffer
}

func newSweepFixture() sweepFixture {
	f := sweepFixture{
		jobs:     new(repoMocks.MockJobRepository),
		files:    new(repoMocks.MockFileRepository),
		notifier: new(mockNotifier),
		rec:      &stubRecognizer{},
		logs:     &bytes.Buffer{},
	}
	f.svc = NewRecognitionService(f.jobs, f.files, f.notifier, f.rec, logging.New(f.logs, time.UTC))
	return f
}

func TestSweep_ProcessesEachUserOnce(t *testing.T) {
	ctx := context.Background()
	f := newSweepFixture()

	f.jobs.On("ListActiveOn", ctx, "MON").Return([]model.Job{
		{ID: 1, UserID: 10},
		{ID: 2, UserID: 10},
		{ID: 3, UserID: 20},
	}, nil)
	f.files.On("ListByUser", ctx, int64(10)).Return([]model.File{{ID: 100, UserID: 10}, {ID: 101, UserID: 10}}, nil).Once()
	f.files.On("ListByUser", ctx, int64(20)).Return([]model.File{{ID: 200, UserID: 20}}, nil).Once()
	f.files.On("UpdateRecognition", ctx,
		mock.MatchedBy(func(file *model.File) bool { return file.RecognitionStatus == model.RecognitionProcessed }),
		mock.MatchedBy(func(h model.FileHistory) bool { return h.Action == model.ActionRecognition }),
	).Return(&model.File{}, nil).Times(3)
	f.notifier.On("Notify", ctx, int64(10), "Recognition finished for 2 file(s)", mock.Anything).Return(nil).Once()
	f.notifier.On("Notify", ctx, int64(20), "Recognition finished for 1 file(s)", mock.Anything).Return(nil).Once()

	res, err := f.svc.Sweep(ctx, fixedNow)

	require.NoError(t, err)
	assert.Equal(t, SweepResult{Day: "MON", Jobs: 3, Users: 2, Files: 3}, res)
	assert.Equal(t, 3, f.rec.calls)
	f.files.AssertExpectations(t)
	f.files.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	f.notifier.AssertExpectations(t)
}

func TestSweep_UsesUTCWeekday(t *testing.T) {
	ctx := context.Background()
	f := newSweepFixture()
	// Sunday 23:30 in New York is already Monday in UTC.
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	f.jobs.On("ListActiveOn", ctx, "MON").Return([]model.Job{}, nil)

	res, err := f.svc.Sweep(ctx, time.Date(2026, 10, 18, 23, 30, 0, 0, ny))

	require.NoError(t, err)
	assert.Equal(t, "MON", res.Day)
}

func TestSweep_FileFailureContinues(t *testing.T) {
	ctx := context.Background()
	f := newSweepFixture()

	f.jobs.On("ListActiveOn", ctx, "MON").Return([]model.Job{{ID: 1, UserID: 10}}, nil)
	f.files.On("ListByUser", ctx, int64(10)).Return([]model.File{{ID: 100, UserID: 10}, {ID: 101, UserID: 10}}, nil)
	f.files.On("UpdateRecognition", ctx, mock.MatchedBy(func(file *model.File) bool { return file.ID == 100 }), mock.Anything).
		Return(nil, errors.New("deadlock"))
	f.files.On("UpdateRecognition", ctx, mock.MatchedBy(func(file *model.File) bool { return file.ID == 101 }), mock.Anything).
		Return(&model.File{}, nil)
	f.notifier.On("Notify", ctx, int64(10), "Recognition finished for 1 file(s)", mock.Anything).Return(nil)

	res, err := f.svc.Sweep(ctx, fixedNow)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Files)
	assert.Equal(t, 1, res.Failed)
	assert.Contains(t, f.logs.String(), "recognition_file_failed")
}

func TestSweep_NoFilesNoNotification(t *testing.T) {
	ctx := context.Background()
	f := newSweepFixture()

	f.jobs.On("ListActiveOn", ctx, "MON").Return([]model.Job{{ID: 1, UserID: 10}}, nil)
	f.files.On("ListByUser", ctx, int64(10)).Return([]model.File{}, nil)

	res, err := f.svc.Sweep(ctx, fixedNow)

	require.NoError(t, err)
	assert.Equal(t, 0, res.Files)
	f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSweep_ListUserFilesFails(t *testing.T) {
	ctx := context.Background()
	f := newSweepFixture()

	f.jobs.On("ListActiveOn", ctx, "MON").Return([]model.Job{{ID: 1, UserID: 10}}, nil)
	f.files.On("ListByUser", ctx, int64(10)).Return(nil, errors.New("timeout"))

	res, err := f.svc.Sweep(ctx, fixedNow)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Contains(t, f.logs.String(), "recognition_list_files_failed")
}

func TestSweep_NotifyFailureIsLogged(t *testing.T) {
	ctx := context.Background()
	f := newSweepFixture()

	f.jobs.On("ListActiveOn", ctx, "MON").Return([]model.Job{{ID: 1, UserID: 10}}, nil)
	f.files.On("ListByUser", ctx, int64(10)).Return([]model.File{{ID: 100, UserID: 10}}, nil)
	f.files.On("UpdateRecognition", ctx, mock.Anything, mock.Anything).Return(&model.File{}, nil)
	f.notifier.On("Notify", ctx, int64(10), mock.Anything, mock.Anything).Return(errors.New("insert failed"))

	res, err := f.svc.Sweep(ctx, fixedNow)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Files)
	assert.Contains(t, f.logs.String(), "recognition_notify_failed")
}

func TestSweep_ListJobsFails(t *testing.T) {
	ctx := context.Background()
	f := newSweepFixture()
	f.jobs.On("ListActiveOn", ctx, "MON").Return(nil, errors.New("conn refused"))

	_, err := f.svc.Sweep(ctx, fixedNow)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "list active jobs")
}

func TestSweep_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := newSweepFixture()
	f.jobs.On("ListActiveOn", ctx, "MON").Return([]model.Job{{ID: 1, UserID: 10}}, nil)

	_, err := f.svc.Sweep(ctx, fixedNow)

	assert.ErrorIs(t, err, context.Canceled)
	f.files.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything)
}
