package domain

import "errors"

// ============================================================================
// Identity Errors
// ============================================================================

var (
	ErrAuthFailed = errors.New("authentication failed, continuing with fallback identity")
	ErrNotReady   = errors.New("identity not yet resolved, publishing unavailable")
)

// ============================================================================
// Catalog Errors
// ============================================================================

var (
	ErrSubscriptionClosed = errors.New("catalog subscription closed")
	ErrRecordNotFound     = errors.New("package record not found")
	ErrRecordConflict     = errors.New("package with this name and version already exists")
)

// ============================================================================
// Validation Errors
// ============================================================================

var (
	ErrNameRequired        = errors.New("package name is required")
	ErrDescriptionRequired = errors.New("package description is required")
	ErrVersionRequired     = errors.New("package version is required")
	ErrFileRequired        = errors.New("package file is required")
)

// ============================================================================
// Publish Errors
// ============================================================================

var (
	ErrPublishInFlight = errors.New("another publish is already in progress")
	ErrUploadFailed    = errors.New("artifact upload failed, no package was published")
	ErrMetadataCommit  = errors.New("package metadata commit failed: the artifact may already be stored remotely without a catalog entry")
)
