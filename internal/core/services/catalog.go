package services

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"shellos-packages/internal/core/domain"
	ports "shellos-packages/internal/core/ports/output"
	"shellos-packages/internal/metrics"
)

// CatalogService maintains the live local view of the package catalog. On
// every push notification it reloads the full record set and replaces the
// snapshot wholesale; it never applies diffs and never reorders. The
// snapshot is owned by this service; consumers get copies and must treat
// them as read-only.
type CatalogService struct {
	repo ports.PackageRepository
	bus  ports.CatalogBus

	mu       sync.RWMutex
	snapshot []*domain.PackageRecord
	err      error
	sub      ports.Subscription
}

func NewCatalogService(repo ports.PackageRepository, bus ports.CatalogBus) *CatalogService {
	return &CatalogService{repo: repo, bus: bus}
}

// Start seeds the snapshot and opens the push subscription. Must not be
// called before identity readiness has fired.
func (s *CatalogService) Start(ctx context.Context) error {
	s.refresh(ctx)

	sub, err := s.bus.SubscribeChanges(ctx,
		func() { s.refresh(ctx) },
		func(err error) {
			log.WithError(err).Error("catalog subscription failed")
			s.mu.Lock()
			s.err = err
			s.mu.Unlock()
		},
	)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.sub = sub
	s.mu.Unlock()
	return nil
}

// refresh replaces the snapshot with the full current record set. A failed
// reload keeps the previous snapshot so consumers always see a complete,
// previously valid catalog.
func (s *CatalogService) refresh(ctx context.Context) {
	records, err := s.repo.ListAll(ctx)
	if err != nil {
		log.WithError(err).Warn("catalog reload failed, keeping previous snapshot")
		return
	}

	s.mu.Lock()
	s.snapshot = records
	s.mu.Unlock()

	metrics.CatalogRefreshes.Inc()
	log.WithField("records", len(records)).Debug("catalog snapshot replaced")
}

// Snapshot returns a copy of the current catalog. No ordering is guaranteed.
func (s *CatalogService) Snapshot() []*domain.PackageRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.PackageRecord, len(s.snapshot))
	copy(out, s.snapshot)
	return out
}

// Err returns the terminal subscription error, if any. The subscription is
// not retried by this service; lifecycle retries belong to the owner.
func (s *CatalogService) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Close tears down the push subscription.
func (s *CatalogService) Close() error {
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.mu.Unlock()
	if sub == nil {
		return nil
	}
	return sub.Close()
}
