package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shellos-packages/internal/adapters/primary/http/dto"
	"shellos-packages/internal/core/domain"
)

// ListPackages serves the subscriber's current catalog snapshot. The
// snapshot is eventually consistent and unordered; a publish becomes
// visible here only after the next push notification. When the push
// subscription has failed terminally the stale snapshot is withheld and the
// failure surfaced instead.
func (h *Handler) ListPackages(c *gin.Context) {
	if err := h.catalogSvc.Err(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": domain.ErrSubscriptionClosed.Error()})
		return
	}

	records := h.catalogSvc.Snapshot()
	items := make([]dto.PackageResponse, 0, len(records))
	for _, record := range records {
		items = append(items, dto.ToPackageResponse(record))
	}

	c.JSON(http.StatusOK, dto.ListPackagesResponse{Items: items, Total: len(items)})
}
