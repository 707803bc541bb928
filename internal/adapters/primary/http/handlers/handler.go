package handlers

import (
	"github.com/gin-gonic/gin"

	"shellos-packages/internal/core/services"
)

type Handler struct {
	publishSvc  *services.PublishService
	catalogSvc  *services.CatalogService
	uploaderSvc *services.UploaderService
	identitySvc *services.IdentityService
}

func New(publishSvc *services.PublishService, catalogSvc *services.CatalogService, uploaderSvc *services.UploaderService, identitySvc *services.IdentityService) *Handler {
	return &Handler{
		publishSvc:  publishSvc,
		catalogSvc:  catalogSvc,
		uploaderSvc: uploaderSvc,
		identitySvc: identitySvc,
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/packages", h.PublishPackage)
	rg.GET("/packages", h.ListPackages)
	rg.GET("/packages/status", h.PublishStatus)
}
