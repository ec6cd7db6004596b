package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podapi/internal/model"
	"podapi/internal/repository"
)

var fileRowColumns = []string{"id", "file_id", "filename", "bl_number", "ship_to", "carrier", "stamp_type",
	"pod_date", "signature", "issued_qty", "received_qty", "none_qty", "dama_qty", "short_qty", "overa_qty",
	"refus_qty", "seal_i", "recognition_status", "review_status", "reviewed_by", "auto_confirm",
	"document_path", "created_on", "changed_on", "user_id"}

func fileRows() *sqlmock.Rows {
	return sqlmock.NewRows(fileRowColumns)
}

func addFileRow(rows *sqlmock.Rows, id int64, fileID string, userID int64) *sqlmock.Rows {
	return rows.AddRow(id, fileID, fileID+".pdf", "BL1234", "Location 3", "Carrier A", nil,
		nil, nil, int64(10), int64(9), int64(0), int64(1), nil, nil,
		nil, nil, "Pending", "Pending Review", nil, false,
		nil, time.Now(), nil, userID)
}

func TestFilePostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFilePostgres(db)
	f := &model.File{FileID: "F-1", Filename: "F-1.pdf", BLNumber: "BL1234", RecognitionStatus: "Pending", ReviewStatus: "Pending Review", UserID: 5, CreatedOn: time.Now()}
	h := model.FileHistory{Action: model.ActionCreate}

	t.Run("commits file and history", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO files").WillReturnRows(addFileRow(fileRows(), 11, "F-1", 5))
		mock.ExpectExec("INSERT INTO file_history").
			WithArgs(int64(11), model.ActionCreate, nil, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		got, err := repo.Create(context.Background(), f, h)

		require.NoError(t, err)
		assert.Equal(t, int64(11), got.ID)
		require.NotNil(t, got.IssuedQty)
		assert.Equal(t, 10, *got.IssuedQty)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("history failure rolls back", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO files").WillReturnRows(addFileRow(fileRows(), 12, "F-1", 5))
		mock.ExpectExec("INSERT INTO file_history").WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		got, err := repo.Create(context.Background(), f, h)

		assert.Nil(t, got)
		assert.ErrorContains(t, err, "insert history: disk full")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFilePostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFilePostgres(db)

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM files WHERE id = (.+) AND user_id = ?").
			WithArgs(int64(11), int64(5)).
			WillReturnRows(addFileRow(fileRows(), 11, "F-1", 5))

		f, err := repo.FindByID(context.Background(), 5, 11)

		require.NoError(t, err)
		assert.Equal(t, "F-1", f.FileID)
		assert.Nil(t, f.PODDate)
	})

	t.Run("owned by someone else", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM files WHERE id = (.+) AND user_id = ?").
			WithArgs(int64(11), int64(6)).
			WillReturnError(sql.ErrNoRows)

		f, err := repo.FindByID(context.Background(), 6, 11)

		assert.Nil(t, f)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestFilePostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM files WHERE user_id = ?").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	rows := addFileRow(addFileRow(fileRows(), 2, "F-2", 5), 1, "F-1", 5)
	mock.ExpectQuery("SELECT (.+) FROM files WHERE user_id = (.+) ORDER BY").
		WithArgs(int64(5), 10, 0).
		WillReturnRows(rows)

	res, err := NewFilePostgres(db).List(context.Background(), 5, repository.PageQuery{Limit: 10, Offset: 0})

	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Len(t, res.Items, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_ListWithoutLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM files WHERE user_id = ?").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM files WHERE user_id = (.+) LIMIT").
		WithArgs(int64(5), nil, 0).
		WillReturnRows(addFileRow(fileRows(), 1, "F-1", 5))

	res, err := NewFilePostgres(db).List(context.Background(), 5, repository.PageQuery{})

	require.NoError(t, err)
	assert.Len(t, res.Items, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_Search(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	changed := time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`WHERE user_id = \$1 AND bl_number ILIKE '%' \|\| \$2 \|\| '%' AND carrier ILIKE '%' \|\| \$3 \|\| '%' AND review_status = \$4 AND changed_on::date = \$5::date ORDER BY id`).
		WithArgs(int64(5), "bl12", "carrier", "Pending Review", changed).
		WillReturnRows(addFileRow(fileRows(), 1, "F-1", 5))

	items, err := NewFilePostgres(db).Search(context.Background(), 5, model.FileFilter{
		BLNumber:     "bl12",
		Carrier:      "carrier",
		ReviewStatus: "Pending Review",
		ChangedOn:    &changed,
	})

	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_SearchWithoutFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM files WHERE user_id = \$1 ORDER BY id`).
		WithArgs(int64(5)).
		WillReturnRows(fileRows())

	items, err := NewFilePostgres(db).Search(context.Background(), 5, model.FileFilter{})

	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestFilePostgres_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFilePostgres(db)
	f := &model.File{ID: 11, UserID: 5, FileID: "F-1", Filename: "F-1.pdf", BLNumber: "BL1", RecognitionStatus: "Pending", ReviewStatus: "Reviewed"}
	details := "review_status=Reviewed"

	t.Run("success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE files SET").WillReturnRows(addFileRow(fileRows(), 11, "F-1", 5))
		mock.ExpectExec("INSERT INTO file_history").
			WithArgs(int64(11), model.ActionModify, details, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		got, err := repo.Update(context.Background(), f, model.FileHistory{Action: model.ActionModify, Details: &details})

		require.NoError(t, err)
		assert.Equal(t, int64(11), got.ID)
	})

	t.Run("missing row rolls back", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE files SET").WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		got, err := repo.Update(context.Background(), f, model.FileHistory{Action: model.ActionModify})

		assert.Nil(t, got)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_UpdateRecognition(t *testing.T) {
	var updateSQL string
	matcher := sqlmock.QueryMatcherFunc(func(expected, actual string) error {
		if strings.HasPrefix(strings.TrimSpace(actual), "UPDATE files") {
			updateSQL = actual
		}
		return sqlmock.QueryMatcherRegexp.Match(expected, actual)
	})
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(matcher))
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)
	f := &model.File{ID: 11, UserID: 5, BLNumber: "BL4242", RecognitionStatus: model.RecognitionProcessed,
		ReviewStatus: model.ReviewPending, ChangedOn: &now}
	details := "Recognition fields populated by OCR System"

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE files SET").
		WithArgs("BL4242", nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil,
			model.RecognitionProcessed, model.ReviewPending, nil, &now, int64(11), int64(5)).
		WillReturnRows(addFileRow(fileRows(), 11, "F-1", 5))
	mock.ExpectExec("INSERT INTO file_history").
		WithArgs(int64(11), model.ActionRecognition, details, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	got, err := NewFilePostgres(db).UpdateRecognition(context.Background(), f,
		model.FileHistory{Action: model.ActionRecognition, Details: &details})

	require.NoError(t, err)
	assert.Equal(t, int64(11), got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())

	set, _, _ := strings.Cut(updateSQL, "WHERE")
	for _, col := range []string{"document_path", "auto_confirm", "file_id", "filename"} {
		assert.NotContains(t, set, col+" =")
	}
	assert.Contains(t, set, "changed_on =")
}

func TestFilePostgres_UpdateRecognitionRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE files SET").WillReturnRows(addFileRow(fileRows(), 11, "F-1", 5))
	mock.ExpectExec("INSERT INTO file_history").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	got, err := NewFilePostgres(db).UpdateRecognition(context.Background(), &model.File{ID: 11, UserID: 5},
		model.FileHistory{Action: model.ActionRecognition})

	assert.Nil(t, got)
	assert.ErrorContains(t, err, "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFilePostgres(db)

	mock.ExpectExec("DELETE FROM files WHERE id = (.+) AND user_id = ?").
		WithArgs(int64(11), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Delete(context.Background(), 5, 11))

	mock.ExpectExec("DELETE FROM files WHERE id = (.+) AND user_id = ?").
		WithArgs(int64(12), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), 5, 12), sql.ErrNoRows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_History(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "file_id", "action", "details", "timestamp"}).
		AddRow(int64(2), int64(11), "modify", "carrier=B", now).
		AddRow(int64(1), int64(11), "create", nil, now.Add(-time.Hour))
	mock.ExpectQuery("SELECT (.+) FROM file_history WHERE file_id = (.+) ORDER BY timestamp DESC").
		WithArgs(int64(11)).
		WillReturnRows(rows)

	items, err := NewFilePostgres(db).History(context.Background(), 11)

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "modify", items[0].Action)
	require.NotNil(t, items[0].Details)
	assert.Equal(t, "carrier=B", *items[0].Details)
	assert.Nil(t, items[1].Details)
}
