package services

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"shellos-packages/internal/core/domain"
	ports "shellos-packages/internal/core/ports/output"
)

// IdentityService resolves the session identity before any write path is
// usable. Readiness fires exactly once per session; authentication failure
// is non-fatal and degrades to a locally generated fallback identity.
type IdentityService struct {
	provider   ports.IdentityProvider
	credential string

	ready chan struct{}
	once  sync.Once

	mu       sync.RWMutex
	identity domain.Identity
	degraded bool
}

func NewIdentityService(provider ports.IdentityProvider, credential string) *IdentityService {
	return &IdentityService{
		provider:   provider,
		credential: credential,
		ready:      make(chan struct{}),
	}
}

// Start performs the sign-in and fires readiness. Safe to call more than
// once; only the first call resolves the identity.
func (s *IdentityService) Start(ctx context.Context) {
	s.once.Do(func() {
		identity, err := s.signIn(ctx)
		degraded := false
		if err != nil {
			identity = domain.NewFallbackIdentity()
			degraded = true
			log.WithError(err).Warn("authentication failed, using fallback identity")
		}

		s.mu.Lock()
		s.identity = identity
		s.degraded = degraded
		s.mu.Unlock()

		log.WithFields(log.Fields{
			"uploader_id": string(identity),
			"degraded":    degraded,
		}).Info("identity ready")

		close(s.ready)
	})
}

func (s *IdentityService) signIn(ctx context.Context) (domain.Identity, error) {
	if s.credential != "" {
		return s.provider.SignInWithToken(ctx, s.credential)
	}
	return s.provider.SignInAnonymous(ctx)
}

// Ready is closed once the identity has been resolved (or the fallback
// generated). No store operation may be issued before it fires.
func (s *IdentityService) Ready() <-chan struct{} {
	return s.ready
}

// Identity returns the session identity, or ErrNotReady before readiness.
func (s *IdentityService) Identity() (domain.Identity, error) {
	select {
	case <-s.ready:
	default:
		return "", domain.ErrNotReady
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity, nil
}

// Degraded reports whether the session is running on the fallback identity.
func (s *IdentityService) Degraded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.degraded
}
