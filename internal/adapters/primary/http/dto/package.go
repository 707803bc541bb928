package dto

import (
	"time"

	"shellos-packages/internal/core/domain"
	"shellos-packages/internal/core/services"
)

type PackageResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	Description string    `json:"description"`
	Version     string    `json:"version"`
	FileName    string    `json:"file_name"`
	FileURL     string    `json:"file_url"`
	UploaderID  string    `json:"uploader_id"`
	UploadTime  time.Time `json:"upload_time"`
}

func ToPackageResponse(record *domain.PackageRecord) PackageResponse {
	return PackageResponse{
		ID:          record.ID.String(),
		Name:        record.Name,
		DisplayName: record.DisplayName,
		Description: record.Description,
		Version:     record.Version,
		FileName:    record.FileName,
		FileURL:     record.FileURL,
		UploaderID:  string(record.UploaderID),
		UploadTime:  record.UploadTime,
	}
}

type ListPackagesResponse struct {
	Items []PackageResponse `json:"items"`
	Total int               `json:"total"`
}

type UploadProgressResponse struct {
	BytesTransferred int64   `json:"bytes_transferred"`
	TotalBytes       int64   `json:"total_bytes"`
	Percent          float64 `json:"percent"`
	Status           string  `json:"status"`
}

type PublishStatusResponse struct {
	State          services.PublishState  `json:"state"`
	Upload         UploadProgressResponse `json:"upload"`
	Degraded       bool                   `json:"degraded"`
	CatalogHealthy bool                   `json:"catalog_healthy"`
}
