package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shellos-packages/internal/core/domain"
	ports "shellos-packages/internal/core/ports/output"
	"shellos-packages/internal/testutil"
)

func readyIdentity(t *testing.T, id string) *IdentityService {
	t.Helper()
	provider := new(testutil.MockIdentityProvider)
	provider.On("SignInAnonymous", mock.Anything).Return(domain.Identity(id), nil)
	svc := NewIdentityService(provider, "")
	svc.Start(context.Background())
	return svc
}

func validInput() PublishInput {
	return PublishInput{
		Name:        "Foo",
		Description: "d",
		Version:     "2.0",
		FileName:    "upload.py",
		File:        bytes.NewReader(make([]byte, 512)),
		Size:        512,
	}
}

func TestPublishRejectedBeforeReadiness(t *testing.T) {
	provider := new(testutil.MockIdentityProvider)
	identity := NewIdentityService(provider, "")
	store := &testutil.MockArtifactStore{}
	repo := new(testutil.MockPackageRepo)
	bus := new(testutil.MockCatalogBus)
	svc := NewPublishService(identity, NewUploaderService(store), repo, bus)

	_, err := svc.Publish(context.Background(), validInput())
	assert.ErrorIs(t, err, domain.ErrNotReady)
	assert.Equal(t, StateRejected, svc.State())

	// Readiness gating: no store operation was issued.
	store.AssertNotCalled(t, "Put")
	repo.AssertNotCalled(t, "Create")
}

func TestPublishValidationRejectsBeforeAnyIO(t *testing.T) {
	store := &testutil.MockArtifactStore{}
	repo := new(testutil.MockPackageRepo)
	bus := new(testutil.MockCatalogBus)
	svc := NewPublishService(readyIdentity(t, "user-1"), NewUploaderService(store), repo, bus)

	input := validInput()
	input.Description = ""

	_, err := svc.Publish(context.Background(), input)
	assert.ErrorIs(t, err, domain.ErrDescriptionRequired)
	assert.Equal(t, StateRejected, svc.State())
	store.AssertNotCalled(t, "Put")
	repo.AssertNotCalled(t, "Create")
}

func TestPublishUploadFailureWritesNoMetadata(t *testing.T) {
	store := &testutil.MockArtifactStore{}
	store.On("Put", mock.Anything, "foo_v2.0.py", int64(512)).Return("", errors.New("connection reset"))
	repo := new(testutil.MockPackageRepo)
	bus := new(testutil.MockCatalogBus)
	svc := NewPublishService(readyIdentity(t, "user-1"), NewUploaderService(store), repo, bus)

	input := validInput()
	_, err := svc.Publish(context.Background(), input)
	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	assert.NotErrorIs(t, err, domain.ErrMetadataCommit)
	assert.Equal(t, StateFailed, svc.State())
	repo.AssertNotCalled(t, "Create")
	bus.AssertNotCalled(t, "NotifyChanged")

	// The submitted field values are untouched and valid for resubmission.
	assert.Equal(t, "Foo", input.Name)
	assert.Equal(t, "d", input.Description)
	assert.Equal(t, "2.0", input.Version)
	assert.Equal(t, "upload.py", input.FileName)
}

func TestPublishSuccess(t *testing.T) {
	store := &testutil.MockArtifactStore{ProgressSteps: []int64{256, 512}}
	store.On("Put", mock.Anything, "foo_v2.0.py", int64(512)).Return("http://store/foo_v2.0.py", nil)
	repo := new(testutil.MockPackageRepo)
	id := uuid.New()
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.PackageRecord")).Return(id, nil)
	bus := new(testutil.MockCatalogBus)
	bus.On("NotifyChanged", mock.Anything).Return(nil)
	svc := NewPublishService(readyIdentity(t, "user-1"), NewUploaderService(store), repo, bus)

	record, err := svc.Publish(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, id, record.ID)
	assert.Equal(t, "foo", record.Name)
	assert.Equal(t, "Foo", record.DisplayName)
	assert.Equal(t, "2.0", record.Version)
	assert.Equal(t, "foo_v2.0.py", record.FileName)
	assert.Equal(t, "http://store/foo_v2.0.py", record.FileURL)
	assert.Equal(t, domain.Identity("user-1"), record.UploaderID)
	assert.Equal(t, StatePublished, svc.State())
	bus.AssertCalled(t, "NotifyChanged", mock.Anything)
}

func TestPublishMetadataCommitFailureIsDistinct(t *testing.T) {
	store := &testutil.MockArtifactStore{}
	store.On("Put", mock.Anything, "foo_v2.0.py", int64(512)).Return("http://store/foo_v2.0.py", nil)
	repo := new(testutil.MockPackageRepo)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.PackageRecord")).Return(uuid.Nil, errors.New("store unreachable"))
	bus := new(testutil.MockCatalogBus)
	svc := NewPublishService(readyIdentity(t, "user-1"), NewUploaderService(store), repo, bus)

	_, err := svc.Publish(context.Background(), validInput())
	assert.ErrorIs(t, err, domain.ErrMetadataCommit)
	assert.NotErrorIs(t, err, domain.ErrUploadFailed)
	assert.Equal(t, StateFailed, svc.State())
	bus.AssertNotCalled(t, "NotifyChanged")
}

func TestPublishNotificationFailureDoesNotFailPublish(t *testing.T) {
	store := &testutil.MockArtifactStore{}
	store.On("Put", mock.Anything, "foo_v2.0.py", int64(512)).Return("http://store/foo_v2.0.py", nil)
	repo := new(testutil.MockPackageRepo)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.PackageRecord")).Return(uuid.New(), nil)
	bus := new(testutil.MockCatalogBus)
	bus.On("NotifyChanged", mock.Anything).Return(errors.New("bus down"))
	svc := NewPublishService(readyIdentity(t, "user-1"), NewUploaderService(store), repo, bus)

	_, err := svc.Publish(context.Background(), validInput())
	assert.NoError(t, err)
	assert.Equal(t, StatePublished, svc.State())
}

// blockingStore holds an upload in flight until released so tests can probe
// the single-transaction gate.
type blockingStore struct {
	release chan struct{}
}

func (s *blockingStore) Put(ctx context.Context, key string, body io.Reader, size int64, progress ports.ProgressFunc) (string, error) {
	<-s.release
	return "http://store/" + key, nil
}

func TestPublishExclusivity(t *testing.T) {
	store := &blockingStore{release: make(chan struct{})}
	repo := new(testutil.MockPackageRepo)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.PackageRecord")).Return(uuid.New(), nil)
	bus := new(testutil.MockCatalogBus)
	bus.On("NotifyChanged", mock.Anything).Return(nil)
	svc := NewPublishService(readyIdentity(t, "user-1"), NewUploaderService(store), repo, bus)

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = svc.Publish(context.Background(), validInput())
	}()

	require.Eventually(t, func() bool {
		return svc.State() == StateUploading
	}, time.Second, time.Millisecond)

	// A second request while one is in flight is rejected, not queued.
	_, err := svc.Publish(context.Background(), validInput())
	assert.ErrorIs(t, err, domain.ErrPublishInFlight)

	close(store.release)
	wg.Wait()

	// The in-flight transaction was unaffected by the rejected one.
	assert.NoError(t, firstErr)
	assert.Equal(t, StatePublished, svc.State())
	repo.AssertNumberOfCalls(t, "Create", 1)
}

// End to end through the in-process services: publish, then observe the new
// record in the catalog snapshot delivered by the next push notification.
func TestPublishThenCatalogObservesRecord(t *testing.T) {
	id := uuid.New()
	published := &domain.PackageRecord{
		ID: id, Name: "foo", DisplayName: "Foo", Version: "2.0",
		FileName: "foo_v2.0.py", FileURL: "http://store/foo_v2.0.py",
		UploaderID: "user-1", UploadTime: time.Now(),
	}

	repo := new(testutil.MockPackageRepo)
	repo.On("ListAll", mock.Anything).Return([]*domain.PackageRecord{}, nil).Once()
	repo.On("ListAll", mock.Anything).Return([]*domain.PackageRecord{published}, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.PackageRecord")).Return(id, nil)

	sub := new(testutil.MockSubscription)
	bus := new(testutil.MockCatalogBus)
	bus.On("SubscribeChanges", mock.Anything).Return(sub, nil)
	// The bus relays the publisher's notification to the subscriber, as the
	// real push transport would.
	bus.On("NotifyChanged", mock.Anything).Run(func(mock.Arguments) {
		bus.OnChange()
	}).Return(nil)

	catalog := NewCatalogService(repo, bus)
	require.NoError(t, catalog.Start(context.Background()))
	assert.Empty(t, catalog.Snapshot())

	size := int64(512 * 1024)
	store := &testutil.MockArtifactStore{ProgressSteps: []int64{size / 2, size}}
	store.On("Put", mock.Anything, "foo_v2.0.py", size).Return("http://store/foo_v2.0.py", nil)
	uploader := NewUploaderService(store)
	publish := NewPublishService(readyIdentity(t, "user-1"), uploader, repo, bus)

	record, err := publish.Publish(context.Background(), PublishInput{
		Name: "Foo", Description: "d", Version: "2.0",
		FileName: "upload.py", File: bytes.NewReader(make([]byte, size)), Size: size,
	})
	require.NoError(t, err)
	assert.Equal(t, float64(100), uploader.Session().Percent())

	snapshot := catalog.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, record.ID, snapshot[0].ID)
	assert.Equal(t, "foo", snapshot[0].Name)
	assert.Equal(t, "Foo", snapshot[0].DisplayName)
	assert.Equal(t, "http://store/foo_v2.0.py", snapshot[0].FileURL)
}
