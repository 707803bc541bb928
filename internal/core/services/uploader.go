package services

import (
	"context"
	"io"
	"sync"

	"shellos-packages/internal/core/domain"
	ports "shellos-packages/internal/core/ports/output"
	"shellos-packages/internal/metrics"
)

// UploadEvent is one delivery from an upload attempt: either a progress
// snapshot or the single terminal result. Exactly one terminal event is
// emitted per attempt, after which the channel is closed.
type UploadEvent struct {
	Session domain.UploadSession
	URL     string // set when Session.Status is SUCCEEDED
	Err     error  // set when Session.Status is FAILED
}

// UploaderService streams one artifact at a time to durable storage. It is
// not reentrant; the publish coordinator serializes attempts. Progress is
// strictly non-decreasing and bounded by the declared size. A failed upload
// may leave partial bytes at the destination; they are never referenced.
type UploaderService struct {
	store ports.ArtifactStore

	mu      sync.RWMutex
	session domain.UploadSession
}

func NewUploaderService(store ports.ArtifactStore) *UploaderService {
	return &UploaderService{store: store}
}

// Upload starts one attempt and returns its event stream. Progress events
// may be dropped under backpressure; the terminal event never is.
func (s *UploaderService) Upload(ctx context.Context, key string, body io.Reader, size int64) <-chan UploadEvent {
	events := make(chan UploadEvent, 16)

	s.setSession(domain.UploadSession{
		Key:        key,
		TotalBytes: size,
		Status:     domain.UploadStatusPending,
	})

	go func() {
		defer close(events)

		var lastBytes int64
		url, err := s.store.Put(ctx, key, body, size, func(transferred, total int64) {
			if transferred < lastBytes {
				return
			}
			if transferred > total {
				transferred = total
			}
			lastBytes = transferred

			sess := domain.UploadSession{
				Key:              key,
				BytesTransferred: transferred,
				TotalBytes:       total,
				Status:           domain.UploadStatusInProgress,
			}
			s.setSession(sess)

			select {
			case events <- UploadEvent{Session: sess}:
			default:
			}
		})

		if err != nil {
			sess := domain.UploadSession{
				Key:              key,
				BytesTransferred: lastBytes,
				TotalBytes:       size,
				Status:           domain.UploadStatusFailed,
			}
			s.setSession(sess)
			events <- UploadEvent{Session: sess, Err: err}
			return
		}

		sess := domain.UploadSession{
			Key:              key,
			BytesTransferred: size,
			TotalBytes:       size,
			Status:           domain.UploadStatusSucceeded,
		}
		s.setSession(sess)
		metrics.UploadedBytes.Add(float64(size))
		events <- UploadEvent{Session: sess, URL: url}
	}()

	return events
}

func (s *UploaderService) setSession(sess domain.UploadSession) {
	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()
}

// Session returns the most recent upload session snapshot, for status
// reporting. Zero value when no upload has started this session.
func (s *UploaderService) Session() domain.UploadSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}
