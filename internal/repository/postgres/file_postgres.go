package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"podapi/internal/model"
	"podapi/internal/repository"
)

const fileColumns = `id, file_id, filename, bl_number, ship_to, carrier, stamp_type, pod_date, signature,
	issued_qty, received_qty, none_qty, dama_qty, short_qty, overa_qty, refus_qty, seal_i,
	recognition_status, review_status, reviewed_by, auto_confirm, document_path,
	created_on, changed_on, user_id`

// FilePostgres is a PostgreSQL implementation of repository.FileRepository.
type FilePostgres struct {
	db *sql.DB
}

// NewFilePostgres creates a new FilePostgres repository.
func NewFilePostgres(db *sql.DB) *FilePostgres {
	return &FilePostgres{db: db}
}

var _ repository.FileRepository = (*FilePostgres)(nil)

func scanFile(s scanner) (*model.File, error) {
	var f model.File
	if err := s.Scan(
		&f.ID,
		&f.FileID,
		&f.Filename,
		&f.BLNumber,
		&f.ShipTo,
		&f.Carrier,
		&f.StampType,
		&f.PODDate,
		&f.Signature,
		&f.IssuedQty,
		&f.ReceivedQty,
		&f.NoneQty,
		&f.DamaQty,
		&f.ShortQty,
		&f.OveraQty,
		&f.RefusQty,
		&f.SealI,
		&f.RecognitionStatus,
		&f.ReviewStatus,
		&f.ReviewedBy,
		&f.AutoConfirm,
		&f.DocumentPath,
		&f.CreatedOn,
		&f.ChangedOn,
		&f.UserID,
	); err != nil {
		return nil, err
	}
	return &f, nil
}

func scanFiles(rows *sql.Rows) ([]model.File, error) {
	defer rows.Close()
	items := make([]model.File, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func insertHistory(ctx context.Context, tx *sql.Tx, fileID int64, h model.FileHistory) error {
	const q = `INSERT INTO file_history (file_id, action, details, timestamp) VALUES ($1, $2, $3, $4)`
	ts := h.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	if _, err := tx.ExecContext(ctx, q, fileID, h.Action, h.Details, ts); err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

// Create inserts a file together with its creation history entry.
func (r *FilePostgres) Create(ctx context.Context, f *model.File, h model.FileHistory) (*model.File, error) {
	const q = `
		INSERT INTO files (file_id, filename, bl_number, ship_to, carrier, stamp_type, pod_date, signature,
			issued_qty, received_qty, none_qty, dama_qty, short_qty, overa_qty, refus_qty, seal_i,
			recognition_status, review_status, reviewed_by, auto_confirm, document_path,
			created_on, changed_on, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24)
		RETURNING ` + fileColumns

	var out *model.File
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		stored, err := scanFile(tx.QueryRowContext(ctx, q,
			f.FileID, f.Filename, f.BLNumber, f.ShipTo, f.Carrier, f.StampType, f.PODDate, f.Signature,
			f.IssuedQty, f.ReceivedQty, f.NoneQty, f.DamaQty, f.ShortQty, f.OveraQty, f.RefusQty, f.SealI,
			f.RecognitionStatus, f.ReviewStatus, f.ReviewedBy, f.AutoConfirm, f.DocumentPath,
			f.CreatedOn, f.ChangedOn, f.UserID,
		))
		if err != nil {
			return translateError(err)
		}
		out = stored
		return insertHistory(ctx, tx, stored.ID, h)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FindByID fetches a file owned by userID.
func (r *FilePostgres) FindByID(ctx context.Context, userID, id int64) (*model.File, error) {
	q := `SELECT ` + fileColumns + ` FROM files WHERE id = $1 AND user_id = $2`
	return scanFile(r.db.QueryRowContext(ctx, q, id, userID))
}

// List returns a page of the user's files, newest first, with the total count.
// A zero Limit returns every row.
func (r *FilePostgres) List(ctx context.Context, userID int64, pq repository.PageQuery) (*repository.PageResult[model.File], error) {
	const qCount = `SELECT COUNT(*) FROM files WHERE user_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, userID).Scan(&total); err != nil {
		return nil, err
	}

	q := `SELECT ` + fileColumns + ` FROM files WHERE user_id = $1
		ORDER BY created_on DESC, id DESC
		LIMIT $2 OFFSET $3`
	var limit any
	if pq.Limit > 0 {
		limit = pq.Limit
	}
	// LIMIT NULL is no limit in PostgreSQL
	rows, err := r.db.QueryContext(ctx, q, userID, limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	items, err := scanFiles(rows)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.File]{Items: items, Total: total}, nil
}

// ListByUser returns every file owned by userID.
func (r *FilePostgres) ListByUser(ctx context.Context, userID int64) ([]model.File, error) {
	q := `SELECT ` + fileColumns + ` FROM files WHERE user_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	return scanFiles(rows)
}

// Search applies the non-empty filter fields. Text fields match case-insensitively
// as substrings, statuses match exactly, dates match on the calendar day.
func (r *FilePostgres) Search(ctx context.Context, userID int64, filter model.FileFilter) ([]model.File, error) {
	conds := []string{"user_id = $1"}
	args := []any{userID}
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	like := func(column, value string) {
		if value != "" {
			add(column+" ILIKE '%%' || $%d || '%%'", value)
		}
	}
	like("file_id", filter.FileID)
	like("bl_number", filter.BLNumber)
	like("filename", filter.Filename)
	like("ship_to", filter.ShipTo)
	like("carrier", filter.Carrier)

	if filter.RecognitionStatus != "" {
		add("recognition_status = $%d", filter.RecognitionStatus)
	}
	if filter.ReviewStatus != "" {
		add("review_status = $%d", filter.ReviewStatus)
	}
	if filter.ChangedOn != nil {
		add("changed_on::date = $%d::date", *filter.ChangedOn)
	}
	if filter.CreatedOn != nil {
		add("created_on::date = $%d::date", *filter.CreatedOn)
	}

	q := `SELECT ` + fileColumns + ` FROM files WHERE ` + strings.Join(conds, " AND ") + ` ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return scanFiles(rows)
}

// Update overwrites the mutable columns of f and appends h in one transaction.
func (r *FilePostgres) Update(ctx context.Context, f *model.File, h model.FileHistory) (*model.File, error) {
	const q = `
		UPDATE files SET
			file_id = $1, filename = $2, bl_number = $3, ship_to = $4, carrier = $5, stamp_type = $6,
			pod_date = $7, signature = $8, issued_qty = $9, received_qty = $10, none_qty = $11,
			dama_qty = $12, short_qty = $13, overa_qty = $14, refus_qty = $15, seal_i = $16,
			recognition_status = $17, review_status = $18, reviewed_by = $19, auto_confirm = $20,
			document_path = $21, changed_on = $22
		WHERE id = $23 AND user_id = $24
		RETURNING ` + fileColumns

	var out *model.File
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		stored, err := scanFile(tx.QueryRowContext(ctx, q,
			f.FileID, f.Filename, f.BLNumber, f.ShipTo, f.Carrier, f.StampType,
			f.PODDate, f.Signature, f.IssuedQty, f.ReceivedQty, f.NoneQty,
			f.DamaQty, f.ShortQty, f.OveraQty, f.RefusQty, f.SealI,
			f.RecognitionStatus, f.ReviewStatus, f.ReviewedBy, f.AutoConfirm,
			f.DocumentPath, f.ChangedOn,
			f.ID, f.UserID,
		))
		if err != nil {
			return translateError(err)
		}
		out = stored
		return insertHistory(ctx, tx, stored.ID, h)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateRecognition stores the recognizer's output for f and appends h in one
// transaction. Columns outside the recognition set are left untouched.
func (r *FilePostgres) UpdateRecognition(ctx context.Context, f *model.File, h model.FileHistory) (*model.File, error) {
	const q = `
		UPDATE files SET
			bl_number = $1, ship_to = $2, carrier = $3, stamp_type = $4, pod_date = $5, signature = $6,
			issued_qty = $7, received_qty = $8, none_qty = $9, dama_qty = $10, short_qty = $11,
			overa_qty = $12, refus_qty = $13, seal_i = $14,
			recognition_status = $15, review_status = $16, reviewed_by = $17, changed_on = $18
		WHERE id = $19 AND user_id = $20
		RETURNING ` + fileColumns

	var out *model.File
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		stored, err := scanFile(tx.QueryRowContext(ctx, q,
			f.BLNumber, f.ShipTo, f.Carrier, f.StampType, f.PODDate, f.Signature,
			f.IssuedQty, f.ReceivedQty, f.NoneQty, f.DamaQty, f.ShortQty,
			f.OveraQty, f.RefusQty, f.SealI,
			f.RecognitionStatus, f.ReviewStatus, f.ReviewedBy, f.ChangedOn,
			f.ID, f.UserID,
		))
		if err != nil {
			return err
		}
		out = stored
		return insertHistory(ctx, tx, stored.ID, h)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a file owned by userID; its history goes with it.
func (r *FilePostgres) Delete(ctx context.Context, userID, id int64) error {
	const q = `DELETE FROM files WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// History returns a file's entries newest first.
func (r *FilePostgres) History(ctx context.Context, fileID int64) ([]model.FileHistory, error) {
	const q = `
		SELECT id, file_id, action, details, timestamp
		FROM file_history
		WHERE file_id = $1
		ORDER BY timestamp DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.FileHistory, 0)
	for rows.Next() {
		var h model.FileHistory
		if err := rows.Scan(&h.ID, &h.FileID, &h.Action, &h.Details, &h.Timestamp); err != nil {
			return nil, err
		}
		items = append(items, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
