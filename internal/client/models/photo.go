package models

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// MaxPhotos is the maximum number of photos attached to one report.
const MaxPhotos = 6

// TripPhotoAttachment is a photo carried inline as base64.
type TripPhotoAttachment struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
	Base64   string `json:"base64"`
}

// NewAttachment encodes data as an attachment named name.
func NewAttachment(name string, data []byte) TripPhotoAttachment {
	return TripPhotoAttachment{
		ID:       uuid.NewString(),
		Name:     name,
		MimeType: http.DetectContentType(data),
		Size:     int64(len(data)),
		Base64:   base64.StdEncoding.EncodeToString(data),
	}
}

// AttachmentFromFile reads the file at path into an attachment.
func AttachmentFromFile(path string) (TripPhotoAttachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return TripPhotoAttachment{}, fmt.Errorf("read photo %s: %w", path, err)
	}
	return NewAttachment(filepath.Base(path), data), nil
}
