package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"podapi/internal/logging"
	"podapi/internal/model"
	"podapi/internal/repository"
	"podapi/internal/storage"
)

// maxPageLimit caps an explicit page size; no limit at all lists every file.
const maxPageLimit = 100

// FileListResult is one page of the caller's files and the unpaged count.
type FileListResult struct {
	Items []model.File
	Total int
}

// CreateFileInput holds a new file record as sent by the client.
type CreateFileInput struct {
	FileID            string
	Filename          string
	BLNumber          string
	ShipTo            *string
	Carrier           *string
	StampType         *string
	PODDate           *time.Time
	Signature         *string
	IssuedQty         *int
	ReceivedQty       *int
	NoneQty           *int
	DamaQty           *int
	ShortQty          *int
	OveraQty          *int
	RefusQty          *int
	SealI             *string
	RecognitionStatus string
	ReviewStatus      string
	ReviewedBy        *string
	CreatedOn         *time.Time
	ChangedOn         *time.Time
}

// FileUpdate is a partial update; nil fields are left untouched.
type FileUpdate struct {
	FileID            *string
	Filename          *string
	BLNumber          *string
	ShipTo            *string
	Carrier           *string
	StampType         *string
	PODDate           *time.Time
	Signature         *string
	IssuedQty         *int
	ReceivedQty       *int
	NoneQty           *int
	DamaQty           *int
	ShortQty          *int
	OveraQty          *int
	RefusQty          *int
	SealI             *string
	RecognitionStatus *string
	ReviewStatus      *string
	ReviewedBy        *string
	ChangedOn         *time.Time
}

// UploadInput describes a POD scan stream.
type UploadInput struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// FileService defines the owner-scoped use cases for file records.
// A file owned by another user is reported as ErrFileNotFound.
type FileService interface {
	Create(ctx context.Context, userID int64, in CreateFileInput) (*model.File, error)
	Get(ctx context.Context, userID, id int64) (*model.File, error)
	List(ctx context.Context, userID int64, limit, offset int) (*FileListResult, error)
	// Update applies the non-nil fields and records them in a modify history entry.
	Update(ctx context.Context, userID, id int64, upd FileUpdate) (*model.File, error)
	EnableAutoConfirm(ctx context.Context, userID, id int64) error
	Delete(ctx context.Context, userID, id int64) error
	Search(ctx context.Context, userID int64, filter model.FileFilter) ([]model.File, error)
	History(ctx context.Context, userID, id int64) ([]model.FileHistory, error)

	// UploadDocument stores the scan and links it to the file. The object is
	// removed again if the database update fails.
	UploadDocument(ctx context.Context, userID, id int64, in UploadInput) (*model.File, error)
	DocumentURL(ctx context.Context, userID, id int64, expiry time.Duration) (string, error)
	OpenDocument(ctx context.Context, userID, id int64) (io.ReadCloser, storage.ObjectInfo, error)
}

type fileService struct {
	repo  repository.FileRepository
	store storage.Storage
	log   *slog.Logger
	now   func() time.Time
}

// NewFileService constructs a new FileService. A nil store disables documents.
func NewFileService(repo repository.FileRepository, store storage.Storage, logger *slog.Logger) FileService {
	if store == nil {
		store = storage.Disabled{}
	}
	return &fileService{repo: repo, store: store, log: logging.Component(logger, "files"), now: time.Now}
}

func strPtr(s string) *string { return &s }

func (s *fileService) Create(ctx context.Context, userID int64, in CreateFileInput) (*model.File, error) {
	now := s.now().UTC()
	f := &model.File{
		FileID:            strings.TrimSpace(in.FileID),
		Filename:          in.Filename,
		BLNumber:          in.BLNumber,
		ShipTo:            in.ShipTo,
		Carrier:           in.Carrier,
		StampType:         in.StampType,
		PODDate:           in.PODDate,
		Signature:         in.Signature,
		IssuedQty:         in.IssuedQty,
		ReceivedQty:       in.ReceivedQty,
		NoneQty:           in.NoneQty,
		DamaQty:           in.DamaQty,
		ShortQty:          in.ShortQty,
		OveraQty:          in.OveraQty,
		RefusQty:          in.RefusQty,
		SealI:             in.SealI,
		RecognitionStatus: in.RecognitionStatus,
		ReviewStatus:      in.ReviewStatus,
		ReviewedBy:        in.ReviewedBy,
		CreatedOn:         now,
		ChangedOn:         in.ChangedOn,
		UserID:            userID,
	}
	if in.CreatedOn != nil {
		f.CreatedOn = in.CreatedOn.UTC()
	}

	stored, err := s.repo.Create(ctx, f, model.FileHistory{
		Action:    model.ActionCreate,
		Details:   strPtr("File created: " + f.Filename),
		Timestamp: now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrFileIDExists
		}
		return nil, err
	}
	return stored, nil
}

func (s *fileService) Get(ctx context.Context, userID, id int64) (*model.File, error) {
	f, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return f, nil
}

// List returns the caller's files. limit <= 0 means all of them.
func (s *fileService) List(ctx context.Context, userID int64, limit, offset int) (*FileListResult, error) {
	if limit < 0 {
		limit = 0
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, userID, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &FileListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *fileService) Update(ctx context.Context, userID, id int64, upd FileUpdate) (*model.File, error) {
	f, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	changes := applyUpdate(f, upd)
	if upd.ChangedOn == nil {
		now := s.now().UTC()
		f.ChangedOn = &now
	}

	stored, err := s.repo.Update(ctx, f, model.FileHistory{
		Action:    model.ActionModify,
		Details:   strPtr("File details updated: " + strings.Join(changes, ", ")),
		Timestamp: s.now().UTC(),
	})
	return s.translateWrite(stored, err)
}

// applyUpdate copies the set fields of upd onto f and returns them as k=v pairs
// in declaration order.
func applyUpdate(f *model.File, upd FileUpdate) []string {
	var changes []string
	setStr := func(key string, dst **string, v *string) {
		if v != nil {
			*dst = v
			changes = append(changes, key+"="+*v)
		}
	}
	setReq := func(key string, dst *string, v *string) {
		if v != nil {
			*dst = *v
			changes = append(changes, key+"="+*v)
		}
	}
	setInt := func(key string, dst **int, v *int) {
		if v != nil {
			*dst = v
			changes = append(changes, fmt.Sprintf("%s=%d", key, *v))
		}
	}
	setTime := func(key string, dst **time.Time, v *time.Time) {
		if v != nil {
			t := v.UTC()
			*dst = &t
			changes = append(changes, key+"="+t.Format(time.RFC3339))
		}
	}

	setReq("file_id", &f.FileID, upd.FileID)
	setReq("filename", &f.Filename, upd.Filename)
	setReq("bl_number", &f.BLNumber, upd.BLNumber)
	setStr("ship_to", &f.ShipTo, upd.ShipTo)
	setStr("carrier", &f.Carrier, upd.Carrier)
	setStr("stamp_type", &f.StampType, upd.StampType)
	setTime("pod_date", &f.PODDate, upd.PODDate)
	setStr("signature", &f.Signature, upd.Signature)
	setInt("issued_qty", &f.IssuedQty, upd.IssuedQty)
	setInt("received_qty", &f.ReceivedQty, upd.ReceivedQty)
	setInt("none_qty", &f.NoneQty, upd.NoneQty)
	setInt("dama_qty", &f.DamaQty, upd.DamaQty)
	setInt("short_qty", &f.ShortQty, upd.ShortQty)
	setInt("overa_qty", &f.OveraQty, upd.OveraQty)
	setInt("refus_qty", &f.RefusQty, upd.RefusQty)
	setStr("seal_i", &f.SealI, upd.SealI)
	setReq("recognition_status", &f.RecognitionStatus, upd.RecognitionStatus)
	setReq("review_status", &f.ReviewStatus, upd.ReviewStatus)
	setStr("reviewed_by", &f.ReviewedBy, upd.ReviewedBy)
	setTime("changed_on", &f.ChangedOn, upd.ChangedOn)
	return changes
}

func (s *fileService) translateWrite(f *model.File, err error) (*model.File, error) {
	switch {
	case err == nil:
		return f, nil
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrFileNotFound
	case errors.Is(err, repository.ErrConflict):
		return nil, ErrFileIDExists
	default:
		return nil, err
	}
}

func (s *fileService) EnableAutoConfirm(ctx context.Context, userID, id int64) error {
	f, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	f.AutoConfirm = true

	_, err = s.translateWrite(s.repo.Update(ctx, f, model.FileHistory{
		Action:    model.ActionAutoConfirm,
		Details:   strPtr("Auto-confirm feature was enabled"),
		Timestamp: s.now().UTC(),
	}))
	return err
}

// Delete removes the stored scan first, then the record and its history.
func (s *fileService) Delete(ctx context.Context, userID, id int64) error {
	f, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if f.DocumentPath != nil {
		if err := s.store.Delete(ctx, *f.DocumentPath); err != nil && !errors.Is(err, storage.ErrNotConfigured) {
			return fmt.Errorf("delete storage: %w", err)
		}
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrFileNotFound
		}
		return err
	}
	return nil
}

func (s *fileService) Search(ctx context.Context, userID int64, filter model.FileFilter) ([]model.File, error) {
	return s.repo.Search(ctx, userID, filter)
}

func (s *fileService) History(ctx context.Context, userID, id int64) ([]model.FileHistory, error) {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.repo.History(ctx, id)
}

func documentKey(userID, fileID int64, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join("files", fmt.Sprint(userID), fmt.Sprint(fileID), uuid.New().String()+ext)
}

func (s *fileService) UploadDocument(ctx context.Context, userID, id int64, in UploadInput) (*model.File, error) {
	if in.Reader == nil {
		return nil, ErrReaderNil
	}
	f, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	previous := f.DocumentPath

	key := documentKey(userID, id, in.Filename)
	info, err := s.store.Put(ctx, key, in.Reader, storage.PutObjectOptions{
		Size:        in.Size,
		ContentType: in.ContentType,
		Metadata: map[string]string{
			"original-filename": in.Filename,
			"file-id":           f.FileID,
		},
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotConfigured) {
			return nil, ErrStorageAbsent
		}
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	now := s.now().UTC()
	f.DocumentPath = &info.Key
	f.ChangedOn = &now
	stored, err := s.repo.Update(ctx, f, model.FileHistory{
		Action:    model.ActionDocumentUpload,
		Details:   strPtr("Document uploaded: " + in.Filename),
		Timestamp: now,
	})
	if err != nil {
		if delErr := s.store.Delete(ctx, info.Key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return s.translateWrite(nil, fmt.Errorf("db save failed: %w", err))
	}

	if previous != nil && *previous != info.Key {
		if err := s.store.Delete(ctx, *previous); err != nil {
			s.log.Warn("document_orphaned",
				slog.Int64("file_id", id),
				slog.String("object_key", *previous),
				logging.Err(err),
			)
		}
	}
	return stored, nil
}

func (s *fileService) documentPath(ctx context.Context, userID, id int64) (string, error) {
	f, err := s.Get(ctx, userID, id)
	if err != nil {
		return "", err
	}
	if f.DocumentPath == nil || *f.DocumentPath == "" {
		return "", ErrNoDocument
	}
	return *f.DocumentPath, nil
}

func (s *fileService) DocumentURL(ctx context.Context, userID, id int64, expiry time.Duration) (string, error) {
	key, err := s.documentPath(ctx, userID, id)
	if err != nil {
		return "", err
	}
	u, err := s.store.PresignGet(ctx, key, expiry)
	if err != nil {
		if errors.Is(err, storage.ErrNotConfigured) {
			return "", ErrStorageAbsent
		}
		return "", err
	}
	return u, nil
}

func (s *fileService) OpenDocument(ctx context.Context, userID, id int64) (io.ReadCloser, storage.ObjectInfo, error) {
	key, err := s.documentPath(ctx, userID, id)
	if err != nil {
		return nil, storage.ObjectInfo{}, err
	}
	rc, info, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotConfigured) {
			return nil, storage.ObjectInfo{}, ErrStorageAbsent
		}
		return nil, storage.ObjectInfo{}, err
	}
	return rc, info, nil
}
