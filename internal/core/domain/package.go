package domain

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Identity is the opaque per-session user token. It is created once at
// startup and never persisted; when remote authentication fails a locally
// generated fallback identity is used instead, so an Identity is best-effort
// and not a trust boundary.
type Identity string

// NewFallbackIdentity generates a local anonymous identity for sessions
// where the remote auth collaborator is unreachable.
func NewFallbackIdentity() Identity {
	return Identity("anon-" + uuid.NewString())
}

// PackageRecord is one published package version. Records are created fully
// populated in a single write and are immutable afterwards; there is no
// update or delete path in this core.
type PackageRecord struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	Description string    `json:"description"`
	Version     string    `json:"version"`
	FileName    string    `json:"file_name"`
	FileURL     string    `json:"file_url"`
	UploaderID  Identity  `json:"uploader_id"`
	UploadTime  time.Time `json:"upload_time"`
}

// NormalizeName lowercases a package name and strips every character that is
// not alphanumeric or one of -_. Non-conforming characters are removed, not
// escaped, so "My Cool App!" and "mycoolapp" collide on purpose.
func NormalizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ArtifactFileName derives the destination object name for a package
// artifact: {normalized name}_v{version}{original extension}. The mapping is
// deterministic so re-publishing the same name+version overwrites the stored
// object instead of accumulating orphans.
func ArtifactFileName(name, version, originalFileName string) string {
	return NormalizeName(name) + "_v" + version + filepath.Ext(originalFileName)
}

// ValidatePublishInput checks the user-supplied publish fields before any
// I/O is issued. Returns the first failing field's sentinel error.
func ValidatePublishInput(name, description, version, fileName string) error {
	if strings.TrimSpace(name) == "" || NormalizeName(name) == "" {
		return ErrNameRequired
	}
	if strings.TrimSpace(description) == "" {
		return ErrDescriptionRequired
	}
	if strings.TrimSpace(version) == "" {
		return ErrVersionRequired
	}
	if strings.TrimSpace(fileName) == "" {
		return ErrFileRequired
	}
	return nil
}
