package services

import (
	"context"
	"fmt"
	"io"
	"sync"

	log "github.com/sirupsen/logrus"

	"shellos-packages/internal/core/domain"
	ports "shellos-packages/internal/core/ports/output"
	"shellos-packages/internal/metrics"
)

// PublishState is the publish transaction's current position.
type PublishState string

const (
	StateIdle       PublishState = "IDLE"
	StateValidating PublishState = "VALIDATING"
	StateUploading  PublishState = "UPLOADING"
	StateCommitting PublishState = "COMMITTING_METADATA"
	StatePublished  PublishState = "PUBLISHED"
	StateRejected   PublishState = "REJECTED"
	StateFailed     PublishState = "FAILED"
)

// PublishInput carries the validated primitive fields of one publish
// request. The caller retains ownership of the values; on failure they are
// untouched and can be resubmitted as-is.
type PublishInput struct {
	Name        string
	Description string
	Version     string
	FileName    string
	File        io.Reader
	Size        int64
}

// IdentitySource yields the resolved session identity, or ErrNotReady
// before the readiness signal has fired.
type IdentitySource interface {
	Identity() (domain.Identity, error)
}

// ArtifactUploader is the upload stage of the transaction.
type ArtifactUploader interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64) <-chan UploadEvent
}

// PublishService sequences identity, upload and metadata commit into one
// logical publish. At most one transaction is in flight per session;
// concurrent requests are rejected at the gate, never queued. The metadata
// record is written only after the artifact is durably stored, and the new
// record reaches the catalog subscriber through the next push notification,
// never synchronously.
type PublishService struct {
	identity IdentitySource
	uploader ArtifactUploader
	repo     ports.PackageRepository
	bus      ports.CatalogBus

	mu       sync.Mutex
	inFlight bool
	state    PublishState
}

func NewPublishService(identity IdentitySource, uploader ArtifactUploader, repo ports.PackageRepository, bus ports.CatalogBus) *PublishService {
	return &PublishService{
		identity: identity,
		uploader: uploader,
		repo:     repo,
		bus:      bus,
		state:    StateIdle,
	}
}

// Publish runs one transaction to a terminal state and returns the created
// record on success. Validation failures reject before any I/O; an upload
// failure writes no metadata; a commit failure after upload success is
// reported as ErrMetadataCommit so the operator knows the artifact may
// already exist remotely without a catalog entry.
func (s *PublishService) Publish(ctx context.Context, input PublishInput) (*domain.PackageRecord, error) {
	identity, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer s.end()

	if err := domain.ValidatePublishInput(input.Name, input.Description, input.Version, input.FileName); err != nil {
		s.setState(StateRejected)
		metrics.Publishes.WithLabelValues("rejected").Inc()
		return nil, err
	}

	key := domain.ArtifactFileName(input.Name, input.Version, input.FileName)

	s.setState(StateUploading)
	var url string
	for ev := range s.uploader.Upload(ctx, key, input.File, input.Size) {
		if !ev.Session.Terminal() {
			continue
		}
		if ev.Err != nil {
			s.setState(StateFailed)
			metrics.Publishes.WithLabelValues("upload_failed").Inc()
			return nil, fmt.Errorf("%w: %v", domain.ErrUploadFailed, ev.Err)
		}
		url = ev.URL
	}

	s.setState(StateCommitting)
	record := &domain.PackageRecord{
		Name:        domain.NormalizeName(input.Name),
		DisplayName: input.Name,
		Description: input.Description,
		Version:     input.Version,
		FileName:    key,
		FileURL:     url,
		UploaderID:  identity,
	}

	id, err := s.repo.Create(ctx, record)
	if err != nil {
		s.setState(StateFailed)
		metrics.Publishes.WithLabelValues("commit_failed").Inc()
		log.WithFields(log.Fields{
			"file_name": key,
			"file_url":  url,
		}).Error("metadata commit failed after upload, artifact is orphaned")
		return nil, fmt.Errorf("%w: %v", domain.ErrMetadataCommit, err)
	}
	record.ID = id

	// Best effort: subscribers observe the new record on their next push.
	if err := s.bus.NotifyChanged(ctx); err != nil {
		log.WithError(err).Warn("catalog change notification failed")
	}

	s.setState(StatePublished)
	metrics.Publishes.WithLabelValues("published").Inc()
	log.WithFields(log.Fields{
		"name":    record.Name,
		"version": record.Version,
		"id":      id,
	}).Info("package published")
	return record, nil
}

// begin is the Idle gate: it rejects when another transaction is in flight
// or when readiness has not fired, and claims the single slot otherwise.
func (s *PublishService) begin() (domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight {
		return "", domain.ErrPublishInFlight
	}

	identity, err := s.identity.Identity()
	if err != nil {
		s.state = StateRejected
		return "", err
	}

	s.inFlight = true
	s.state = StateValidating
	return identity, nil
}

func (s *PublishService) end() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}

func (s *PublishService) setState(state PublishState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// State returns the most recent transaction state. After a terminal state
// the next accepted request starts from Validating again.
func (s *PublishService) State() PublishState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
