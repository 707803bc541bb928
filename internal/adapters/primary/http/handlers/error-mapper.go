package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shellos-packages/internal/core/domain"
)

func mapDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNameRequired),
		errors.Is(err, domain.ErrDescriptionRequired),
		errors.Is(err, domain.ErrVersionRequired),
		errors.Is(err, domain.ErrFileRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrPublishInFlight),
		errors.Is(err, domain.ErrRecordConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrNotReady):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrUploadFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrMetadataCommit):
		// Distinct from a plain upload failure: the artifact may already be
		// stored remotely without a catalog entry.
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
