// AngelaMos | 2026
// store.go

package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ristan-marine/catalog-api/internal/config"
	"github.com/ristan-marine/catalog-api/internal/core"
)

const ProductPrefix = "products/"

// Store writes product images to the S3-compatible bucket.
type Store struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

func NewStore(cfg config.StorageConfig) (*Store, error) {
	endpoint := cfg.Endpoint
	secure := cfg.UseSSL

	// Accept a full URL as R2 dashboards hand it out.
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &Store{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
	}, nil
}

// Put overwrites key with the payload. Re-uploading to the same key replaces
// the previous image.
func (s *Store) Put(
	ctx context.Context,
	key string,
	body io.Reader,
	size int64,
	contentType string,
) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "public, max-age=31536000",
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w: %w", key, core.ErrUpstream, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	ok, err := s.client.BucketExists(pingCtx, s.bucket)
	if err != nil {
		return fmt.Errorf("storage ping failed: %w", err)
	}
	if !ok {
		return fmt.Errorf("bucket %q does not exist", s.bucket)
	}
	return nil
}

func (s *Store) PublicBase() string {
	return s.publicURL
}

var allowedExtensions = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
	"gif":  "image/gif",
}

// ImageExtension normalises the extension of an uploaded filename. A name
// without one is treated as jpg.
func ImageExtension(filename string) (ext, contentType string, err error) {
	ext = "jpg"
	if i := strings.LastIndex(filename, "."); i >= 0 && i < len(filename)-1 {
		ext = strings.ToLower(filename[i+1:])
	}

	contentType, ok := allowedExtensions[ext]
	if !ok {
		return "", "", fmt.Errorf("unsupported image type %q: %w", ext, core.ErrInvalidInput)
	}
	return ext, contentType, nil
}

// ImageFilename is the value stored on the product row: "{id}.{ext}".
func ImageFilename(productID int64, ext string) string {
	return fmt.Sprintf("%d.%s", productID, ext)
}

func ProductImageKey(filename string) string {
	return ProductPrefix + filename
}

// ResolveImageURL turns a stored image value into a browser URL. Absolute
// URLs pass through; bare filenames resolve under the products prefix.
func ResolveImageURL(publicBase, image string) string {
	if image == "" {
		return ""
	}
	if strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") {
		return image
	}
	image = strings.TrimPrefix(image, "/")
	image = strings.TrimPrefix(image, ProductPrefix)
	return strings.TrimRight(publicBase, "/") + "/" + ProductImageKey(image)
}
