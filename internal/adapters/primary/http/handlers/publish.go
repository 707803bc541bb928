package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"shellos-packages/internal/adapters/primary/http/dto"
	"shellos-packages/internal/core/domain"
	"shellos-packages/internal/core/services"
)

// PublishPackage accepts a multipart publish request and runs the full
// transaction. The submitted field values are not consumed on failure; the
// client can resubmit the same form.
func (h *Handler) PublishPackage(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrFileRequired.Error()})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read uploaded file"})
		return
	}
	defer file.Close()

	input := services.PublishInput{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Version:     c.PostForm("version"),
		FileName:    fileHeader.Filename,
		File:        file,
		Size:        fileHeader.Size,
	}

	record, err := h.publishSvc.Publish(c.Request.Context(), input)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"name":    input.Name,
			"version": input.Version,
		}).Warn("publish failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToPackageResponse(record))
}

// PublishStatus reports the transaction state and upload progress for the
// presentation layer to render.
func (h *Handler) PublishStatus(c *gin.Context) {
	session := h.uploaderSvc.Session()
	c.JSON(http.StatusOK, dto.PublishStatusResponse{
		State: h.publishSvc.State(),
		Upload: dto.UploadProgressResponse{
			BytesTransferred: session.BytesTransferred,
			TotalBytes:       session.TotalBytes,
			Percent:          session.Percent(),
			Status:           string(session.Status),
		},
		Degraded:       h.identitySvc.Degraded(),
		CatalogHealthy: h.catalogSvc.Err() == nil,
	})
}
