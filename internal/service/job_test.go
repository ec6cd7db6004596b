package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"podapi/internal/model"
	repoMocks "podapi/internal/repository/mocks"
)

func newJobFixture() (*jobService, *repoMocks.MockJobRepository) {
	repo := new(repoMocks.MockJobRepository)
	svc := NewJobService(repo).(*jobService)
	svc.now = func() time.Time { return fixedNow }
	return svc, repo
}

func TestJobService_Create(t *testing.T) {
	ctx := context.Background()
	svc, repo := newJobFixture()
	repo.On("Create", ctx, mock.MatchedBy(func(j *model.Job) bool {
		return j.UserID == 1 &&
			j.Title == "Nightly" &&
			j.Status == model.DefaultJobStatus &&
			len(j.ActiveDays) == 7 &&
			j.ActiveDays["MON"] && !j.ActiveDays["TUE"] &&
			j.CreatedAt.Equal(fixedNow)
	})).Return(&model.Job{ID: 4}, nil)

	j, err := svc.Create(ctx, 1, JobInput{
		Title:      " Nightly ",
		ActiveDays: map[string]bool{"mon": true},
		AtFrom:     "08:00",
		To:         "17:00",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(4), j.ID)
	repo.AssertExpectations(t)
}

func TestJobService_Get_NotFound(t *testing.T) {
	ctx := context.Background()
	svc, repo := newJobFixture()
	repo.On("FindByID", ctx, int64(1), int64(4)).Return(nil, sql.ErrNoRows)

	_, err := svc.Get(ctx, 1, 4)

	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestJobService_ListAndSearch(t *testing.T) {
	ctx := context.Background()
	svc, repo := newJobFixture()
	repo.On("List", ctx, int64(1), "done").Return([]model.Job{{ID: 1}}, nil)
	repo.On("SearchByTitle", ctx, int64(1), "night").Return([]model.Job{{ID: 2}, {ID: 3}}, nil)

	listed, err := svc.List(ctx, 1, " done ")
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	found, err := svc.Search(ctx, 1, "night")
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestJobService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces fields and stamps updated_at", func(t *testing.T) {
		svc, repo := newJobFixture()
		repo.On("FindByID", ctx, int64(1), int64(4)).
			Return(&model.Job{ID: 4, UserID: 1, Title: "Old", Status: "pending", CreatedAt: fixedNow.Add(-time.Hour)}, nil)
		repo.On("Update", ctx, mock.MatchedBy(func(j *model.Job) bool {
			return j.Title == "New" && j.Status == "done" && j.UpdatedAt != nil && j.UpdatedAt.Equal(fixedNow) && j.ActiveDays["FRI"]
		})).Return(&model.Job{ID: 4, Title: "New"}, nil)

		j, err := svc.Update(ctx, 1, 4, JobInput{Title: "New", Status: "done", ActiveDays: map[string]bool{"FRI": true}, AtFrom: "1", To: "2"})

		require.NoError(t, err)
		assert.Equal(t, "New", j.Title)
	})

	t.Run("other user's job", func(t *testing.T) {
		svc, repo := newJobFixture()
		repo.On("FindByID", ctx, int64(2), int64(4)).Return(nil, sql.ErrNoRows)

		_, err := svc.Update(ctx, 2, 4, JobInput{Title: "x"})

		assert.ErrorIs(t, err, ErrJobNotFound)
	})
}

func TestJobService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, repo := newJobFixture()
	repo.On("Delete", ctx, int64(1), int64(4)).Return(nil).Once()
	repo.On("Delete", ctx, int64(1), int64(5)).Return(sql.ErrNoRows).Once()

	assert.NoError(t, svc.Delete(ctx, 1, 4))
	assert.ErrorIs(t, svc.Delete(ctx, 1, 5), ErrJobNotFound)
}
