package mocks

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"podapi/internal/model"
	"podapi/internal/service"
	"podapi/internal/storage"
)

type MockFileService struct {
	mock.Mock
}

func (m *MockFileService) Create(ctx context.Context, userID int64, in service.CreateFileInput) (*model.File, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileService) Get(ctx context.Context, userID, id int64) (*model.File, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileService) List(ctx context.Context, userID int64, limit, offset int) (*service.FileListResult, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FileListResult), args.Error(1)
}

func (m *MockFileService) Update(ctx context.Context, userID, id int64, upd service.FileUpdate) (*model.File, error) {
	args := m.Called(ctx, userID, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileService) EnableAutoConfirm(ctx context.Context, userID, id int64) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockFileService) Delete(ctx context.Context, userID, id int64) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockFileService) Search(ctx context.Context, userID int64, filter model.FileFilter) ([]model.File, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.File), args.Error(1)
}

func (m *MockFileService) History(ctx context.Context, userID, id int64) ([]model.FileHistory, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FileHistory), args.Error(1)
}

func (m *MockFileService) UploadDocument(ctx context.Context, userID, id int64, in service.UploadInput) (*model.File, error) {
	args := m.Called(ctx, userID, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileService) DocumentURL(ctx context.Context, userID, id int64, expiry time.Duration) (string, error) {
	args := m.Called(ctx, userID, id, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockFileService) OpenDocument(ctx context.Context, userID, id int64) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, userID, id)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Get(1).(storage.ObjectInfo), args.Error(2)
}
