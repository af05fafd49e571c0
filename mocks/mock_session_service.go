package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"propcheck/internal/service"
)

// MockSessionService is a mock implementation of service.SessionService.
type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) SelectFile(ctx context.Context, in service.FileInput) (service.Snapshot, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(service.Snapshot), args.Error(1)
}

func (m *MockSessionService) Import(ctx context.Context, bucket, key string) (service.Snapshot, error) {
	args := m.Called(ctx, bucket, key)
	return args.Get(0).(service.Snapshot), args.Error(1)
}

func (m *MockSessionService) Reset() service.Snapshot {
	args := m.Called()
	return args.Get(0).(service.Snapshot)
}

func (m *MockSessionService) Snapshot() service.Snapshot {
	args := m.Called()
	return args.Get(0).(service.Snapshot)
}

func (m *MockSessionService) Wait(ctx context.Context) (service.Snapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(service.Snapshot), args.Error(1)
}
