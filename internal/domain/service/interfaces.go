package service

import (
	"context"
	"io"
)

// ImageStore uploads product images to durable blob storage. Upload reports
// progress zero or more times through onProgress before returning the final
// URL or error; a failed upload leaves no object behind.
type ImageStore interface {
	Upload(ctx context.Context, file io.Reader, size int64, contentType string, onProgress func(float64)) (string, error)
	Delete(ctx context.Context, fileURL string) error
	Close() error
}

// Captioner turns an image into free-form descriptive text. Implementations
// must fail fast on unsupported mime types and must not retry internally.
type Captioner interface {
	Caption(ctx context.Context, image []byte, mimeType string) (string, error)
}
