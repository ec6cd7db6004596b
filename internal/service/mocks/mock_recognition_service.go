package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"podapi/internal/service"
)

type MockRecognitionService struct {
	mock.Mock
}

func (m *MockRecognitionService) Sweep(ctx context.Context, now time.Time) (service.SweepResult, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(service.SweepResult), args.Error(1)
}
