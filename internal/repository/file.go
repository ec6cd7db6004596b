package repository

import (
	"context"

	"podapi/internal/model"
)

// FileRepository persists files and their history. Every method that changes a
// file writes the accompanying history entry in the same transaction.
// Lookups are scoped to the owning user; another user's file is sql.ErrNoRows.
type FileRepository interface {
	Create(ctx context.Context, f *model.File, h model.FileHistory) (*model.File, error)
	FindByID(ctx context.Context, userID, id int64) (*model.File, error)
	List(ctx context.Context, userID int64, pq PageQuery) (*PageResult[model.File], error)
	ListByUser(ctx context.Context, userID int64) ([]model.File, error)
	Search(ctx context.Context, userID int64, filter model.FileFilter) ([]model.File, error)
	// Update overwrites all mutable columns of f.
	Update(ctx context.Context, f *model.File, h model.FileHistory) (*model.File, error)
	// UpdateRecognition writes only the recognition columns and changed_on, so
	// identity, auto_confirm and document_path edited meanwhile are kept.
	UpdateRecognition(ctx context.Context, f *model.File, h model.FileHistory) (*model.File, error)
	Delete(ctx context.Context, userID, id int64) error
	// History returns entries newest first.
	History(ctx context.Context, fileID int64) ([]model.FileHistory, error)
}
