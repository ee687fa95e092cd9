package storage

import (
	"context"
	"fmt"

	"snapfm/config"
)

// UploadStore persists an uploaded image for the lifetime of one request.
// Save at request start, Remove unconditionally at request end.
type UploadStore interface {
	Save(ctx context.Context, name string, data []byte, contentType string) error
	Remove(ctx context.Context, name string) error
}

// New builds the upload store selected by UPLOAD_STORE.
func New(cfg *config.Config) (UploadStore, error) {
	switch cfg.UploadStore {
	case "minio":
		return NewMinioStore(cfg)
	case "", "local":
		return NewLocalStore(cfg.UploadDir)
	default:
		return nil, fmt.Errorf("unknown upload store %q", cfg.UploadStore)
	}
}
