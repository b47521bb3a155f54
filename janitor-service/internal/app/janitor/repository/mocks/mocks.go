package mocks

import (
	"context"
	"time"

	"storefront/janitor-service/internal/app/janitor/entity"

	"github.com/stretchr/testify/mock"
)

// MockImageKeyRepository мок для ImageKeyRepository
type MockImageKeyRepository struct {
	mock.Mock
}

func (m *MockImageKeyRepository) ReferencedKeys(ctx context.Context, keys []string) (map[string]struct{}, error) {
	args := m.Called(ctx, keys)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]struct{}), args.Error(1)
}

func (m *MockImageKeyRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockSweepStateRepository мок для SweepStateRepository
type MockSweepStateRepository struct {
	mock.Mock
}

func (m *MockSweepStateRepository) AcquireLock(ctx context.Context, ttl time.Duration) (func(context.Context) error, error) {
	args := m.Called(ctx, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func(context.Context) error), args.Error(1)
}

func (m *MockSweepStateRepository) SaveReport(ctx context.Context, report *entity.SweepReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockSweepStateRepository) LastReport(ctx context.Context) (*entity.SweepReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.SweepReport), args.Error(1)
}

func (m *MockSweepStateRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
