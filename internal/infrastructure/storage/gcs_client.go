package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	apperrors "snapstock/pkg/errors"
)

const maxImageSize = 5 * 1024 * 1024

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type CloudStorageClient struct {
	client     *storage.Client
	bucketName string
	projectID  string
}

func NewCloudStorageClient(ctx context.Context, bucketName, projectID string, credentialsPath string) (*CloudStorageClient, error) {
	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %v", err)
	}

	return &CloudStorageClient{
		client:     client,
		bucketName: bucketName,
		projectID:  projectID,
	}, nil
}

// ValidateImage checks the accepted type set and the size bound. Item image
// callers run this before Upload; Upload itself does not re-validate.
func ValidateImage(contentType string, size int64) error {
	if _, ok := allowedImageTypes[contentType]; !ok {
		return apperrors.UnsupportedMediaType(fmt.Sprintf("File type %s is not an accepted image type", contentType))
	}
	if size > maxImageSize {
		return apperrors.BadRequest(fmt.Sprintf("File size exceeds maximum allowed (%dMB)", maxImageSize/(1024*1024)), nil)
	}
	return nil
}

// progressReader counts bytes as the upload drains the source and reports the
// completed fraction. size <= 0 disables reporting.
type progressReader struct {
	r          io.Reader
	size       int64
	read       int64
	onProgress func(float64)
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 && p.size > 0 && p.onProgress != nil {
		p.read += int64(n)
		fraction := float64(p.read) / float64(p.size)
		if fraction > 1 {
			fraction = 1
		}
		p.onProgress(fraction)
	}
	return n, err
}

// Upload streams the file into the bucket and returns the public URL. A failed
// upload aborts the object writer, so nothing durable is left behind. Errors
// are classified: quota problems are non-retryable, everything else at the
// transport layer is transient.
func (c *CloudStorageClient) Upload(ctx context.Context, file io.Reader, size int64, contentType string, onProgress func(float64)) (string, error) {
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		ext = ".bin"
	}
	filename := fmt.Sprintf("items/%s-%s%s", uuid.New().String(), time.Now().Format("20060102150405"), ext)

	obj := c.client.Bucket(c.bucketName).Object(filename)

	// Cancelling the writer's context aborts the upload, so a mid-stream
	// failure never commits a partial object.
	writeCtx, cancelWrite := context.WithCancel(ctx)
	defer cancelWrite()

	wc := obj.NewWriter(writeCtx)
	wc.ContentType = contentType
	wc.CacheControl = "public, max-age=86400" // 1 day caching

	src := &progressReader{r: file, size: size, onProgress: onProgress}

	if _, err := io.Copy(wc, src); err != nil {
		cancelWrite()
		wc.Close()
		return "", classifyStorageError(err)
	}

	if err := wc.Close(); err != nil {
		return "", classifyStorageError(err)
	}

	if err := obj.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		return "", classifyStorageError(err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", c.bucketName, filename), nil
}

func classifyStorageError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusForbidden || apiErr.Code == http.StatusTooManyRequests {
			for _, e := range apiErr.Errors {
				if strings.Contains(e.Reason, "quota") || e.Reason == "rateLimitExceeded" {
					return apperrors.QuotaExceeded("Storage quota exceeded", err)
				}
			}
			return apperrors.PermissionDenied("Storage access denied", err)
		}
	}
	return apperrors.ServiceUnavailable("Upload failed", err)
}

func (c *CloudStorageClient) Delete(ctx context.Context, fileURL string) error {
	// Expected URL format: https://storage.googleapis.com/bucket-name/file-path
	const prefix = "https://storage.googleapis.com/"
	if !strings.HasPrefix(fileURL, prefix) {
		return fmt.Errorf("invalid GCS URL format")
	}

	path := fileURL[len(prefix):]
	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 || parts[0] != c.bucketName {
		return fmt.Errorf("invalid GCS URL format or bucket mismatch")
	}

	if err := c.client.Bucket(c.bucketName).Object(parts[1]).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete file: %v", err)
	}

	return nil
}

func (c *CloudStorageClient) Close() error {
	return c.client.Close()
}
