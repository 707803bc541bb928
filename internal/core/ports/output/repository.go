package ports

import (
	"context"

	"github.com/google/uuid"

	"shellos-packages/internal/core/domain"
)

// PackageRepository is the catalog store. Create assigns the record's ID and
// UploadTime server-side and writes every field in one atomic insert; no
// reader ever observes a partially populated record. ListAll returns the
// full current record set with no ordering guarantee.
type PackageRepository interface {
	Create(ctx context.Context, record *domain.PackageRecord) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PackageRecord, error)
	ListAll(ctx context.Context) ([]*domain.PackageRecord, error)
}
