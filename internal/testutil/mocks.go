package testutil

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"shellos-packages/internal/core/domain"
	ports "shellos-packages/internal/core/ports/output"
)

// MockIdentityProvider is a mock of IdentityProvider.
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) SignInAnonymous(ctx context.Context) (domain.Identity, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Identity), args.Error(1)
}

func (m *MockIdentityProvider) SignInWithToken(ctx context.Context, token string) (domain.Identity, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(domain.Identity), args.Error(1)
}

// MockPackageRepo is a mock of PackageRepository.
type MockPackageRepo struct {
	mock.Mock
}

func (m *MockPackageRepo) Create(ctx context.Context, record *domain.PackageRecord) (uuid.UUID, error) {
	args := m.Called(ctx, record)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockPackageRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PackageRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PackageRecord), args.Error(1)
}

func (m *MockPackageRepo) ListAll(ctx context.Context) ([]*domain.PackageRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PackageRecord), args.Error(1)
}

// MockSubscription is a mock of Subscription.
type MockSubscription struct {
	mock.Mock
}

func (m *MockSubscription) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockCatalogBus is a mock of CatalogBus. The registered onChange/onError
// callbacks are captured so tests can drive push deliveries by hand.
type MockCatalogBus struct {
	mock.Mock

	OnChange func()
	OnError  func(error)
}

func (m *MockCatalogBus) NotifyChanged(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCatalogBus) SubscribeChanges(ctx context.Context, onChange func(), onError func(error)) (ports.Subscription, error) {
	m.OnChange = onChange
	m.OnError = onError
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ports.Subscription), args.Error(1)
}

// MockArtifactStore is a mock of ArtifactStore. Progress deliveries are
// scripted per test via ProgressSteps before the terminal result.
type MockArtifactStore struct {
	mock.Mock

	ProgressSteps []int64
}

func (m *MockArtifactStore) Put(ctx context.Context, key string, body io.Reader, size int64, progress ports.ProgressFunc) (string, error) {
	if progress != nil {
		for _, step := range m.ProgressSteps {
			progress(step, size)
		}
	}
	args := m.Called(ctx, key, size)
	return args.String(0), args.Error(1)
}
