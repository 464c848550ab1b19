package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors shared across repositories and clients.
var (
	ErrNotFound            = errors.New("not found")
	ErrProxyUnavailable    = errors.New("ai proxy unavailable")
	ErrAnalyzerUnavailable = errors.New("analyzer unavailable")
)

// PhotoStatus is the backend processing state of a photo.
type PhotoStatus string

const (
	PhotoStatusUploading  PhotoStatus = "UPLOADING"
	PhotoStatusProcessing PhotoStatus = "PROCESSING"
	// PhotoStatusProcessed means backend processing finished and the photo
	// is ready for AI tagging.
	PhotoStatusProcessed PhotoStatus = "PROCESSED"
	PhotoStatusFailed    PhotoStatus = "FAILED"
)

// Photo represents a photo record as exposed by the photo backend.
// swagger:model Photo
type Photo struct {
	ID         string      `json:"id"`
	Filename   string      `json:"filename"`
	Status     PhotoStatus `json:"status"`
	Tags       []string    `json:"tags"`
	FolderID   string      `json:"folder_id,omitempty"`
	UploadedAt time.Time   `json:"uploaded_at"`
}

// NeedsTagging reports whether backend processing finished and the photo
// has no tags yet. This is the auto-queue trigger condition; claim state
// is checked separately by the coordinator.
func (p *Photo) NeedsTagging() bool {
	return p.Status == PhotoStatusProcessed && len(p.Tags) == 0
}

// PhotoBackend is the client interface for the external photo REST service.
type PhotoBackend interface {
	// ListPhotos returns the full photo collection.
	ListPhotos(ctx context.Context) ([]*Photo, error)
	// FetchImage returns the image bytes and MIME type for a photo.
	FetchImage(ctx context.Context, photoID string) (data []byte, mimeType string, err error)
	// ApplyTags replaces the photo's tags server-side.
	ApplyTags(ctx context.Context, photoID string, tags []string) error
}
