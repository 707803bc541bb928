package ports

import (
	"context"
	"io"
)

// ProgressFunc receives upload progress snapshots. bytesTransferred is
// non-decreasing across calls for one upload and never exceeds totalBytes.
type ProgressFunc func(bytesTransferred, totalBytes int64)

// ArtifactStore is the durable storage collaborator. Put streams body to the
// given key, reporting progress, and returns a resolvable download URL on
// success. A failed Put may leave partial bytes at the destination; callers
// treat the artifact as absent-or-partial and never reference it.
type ArtifactStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, progress ProgressFunc) (string, error)
}
