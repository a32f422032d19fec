// AngelaMos | 2026
// service.go

package product

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/ristan-marine/catalog-api/internal/core"
	"github.com/ristan-marine/catalog-api/internal/identity"
	"github.com/ristan-marine/catalog-api/internal/metrics"
	"github.com/ristan-marine/catalog-api/internal/storage"
)

const uploadLockTTL = 30 * time.Second

// ImageStore is where uploaded product images land.
type ImageStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PublicBase() string
}

// Locker grants short exclusive leases. ok is false when the key is held.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

type Service struct {
	repo   Repository
	images ImageStore
	locks  Locker
}

func NewService(repo Repository, images ImageStore, locks Locker) *Service {
	return &Service{
		repo:   repo,
		images: images,
		locks:  locks,
	}
}

func requireAdmin(actor *identity.Identity) error {
	if actor == nil {
		return core.UnauthorizedError("")
	}
	if !actor.IsAdmin() {
		return core.ForbiddenError("")
	}
	return nil
}

// List serves one grid window to any signed-in caller.
func (s *Service) List(
	ctx context.Context,
	actor *identity.Identity,
	q ListQuery,
) (*ListResponse, error) {
	if actor == nil {
		return nil, core.UnauthorizedError("")
	}

	rows, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	base := s.images.PublicBase()
	for i := range rows {
		if rows[i].Image != nil {
			rows[i].ImageURL = storage.ResolveImageURL(base, *rows[i].Image)
		}
	}

	return &ListResponse{Rows: rows, TotalCount: total}, nil
}

func (s *Service) Get(
	ctx context.Context,
	actor *identity.Identity,
	id int64,
) (*Product, error) {
	if actor == nil {
		return nil, core.UnauthorizedError("")
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	s.resolveImage(p)
	return p, nil
}

func (s *Service) Categories() []string {
	out := make([]string, len(Categories))
	copy(out, Categories)
	return out
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *Service) Create(
	ctx context.Context,
	actor *identity.Identity,
	m *Mutation,
) (*Product, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	if !m.Has("item_name_kr") && !m.Has("item_name_en") {
		return nil, core.ValidationError("item_name_kr or item_name_en is required")
	}

	p, err := s.repo.Create(ctx, m.Assignments())
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	slog.InfoContext(ctx, "product created", "product_id", p.ID, "actor", actor.ID)
	s.resolveImage(p)
	return p, nil
}

// Update applies a partial write. Concurrent updates to the same row are
// last-writer-wins.
func (s *Service) Update(
	ctx context.Context,
	actor *identity.Identity,
	m *Mutation,
) (*Product, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	p, err := s.repo.Update(ctx, m.ID, m.Assignments())
	if err != nil {
		return nil, fmt.Errorf("update product %d: %w", m.ID, err)
	}

	slog.InfoContext(ctx, "product updated", "product_id", p.ID, "actor", actor.ID)
	s.resolveImage(p)
	return p, nil
}

func (s *Service) Delete(
	ctx context.Context,
	actor *identity.Identity,
	rawID string,
) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	if rawID == "" {
		return core.ValidationError("ID required")
	}
	id, err := ParseID(rawID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}

	slog.InfoContext(ctx, "product deleted", "product_id", id, "actor", actor.ID)
	return nil
}

// UploadImage stores the binary under products/{id}.{ext}, overwriting any
// previous upload, and returns the filename to attach with Update. Uploads for
// one product are serialised; a second concurrent upload gets ErrConflict.
func (s *Service) UploadImage(
	ctx context.Context,
	actor *identity.Identity,
	productID int64,
	filename string,
	body io.Reader,
	size int64,
) (name string, err error) {
	if err = requireAdmin(actor); err != nil {
		return "", err
	}

	ctx, span := core.StartSpan(ctx, "product.upload_image",
		attribute.Int64("product.id", productID),
		attribute.Int64("upload.size", size),
	)
	defer func() {
		core.EndSpan(span, err)
		metrics.ImageUploads.WithLabelValues(uploadResult(err)).Inc()
	}()

	ext, contentType, err := storage.ImageExtension(filename)
	if err != nil {
		return "", err
	}

	exists, err := s.repo.Exists(ctx, productID)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	if !exists {
		return "", core.NotFoundError("product")
	}

	release, ok, err := s.locks.TryLock(ctx, "upload:product:"+strconv.FormatInt(productID, 10), uploadLockTTL)
	if err != nil {
		return "", fmt.Errorf("upload image: %w: %w", core.ErrUpstream, err)
	}
	if !ok {
		return "", core.ConflictError("another upload for this product is in progress")
	}
	defer release()

	name = storage.ImageFilename(productID, ext)
	if err = s.images.Put(ctx, storage.ProductImageKey(name), body, size, contentType); err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}

	slog.InfoContext(ctx, "product image uploaded",
		"product_id", productID,
		"key", storage.ProductImageKey(name),
		"size", size,
	)
	return name, nil
}

func uploadResult(err error) string {
	if err == nil {
		return "ok"
	}
	switch status := core.StatusFor(err); {
	case status == http.StatusConflict:
		return "conflict"
	case status >= http.StatusInternalServerError:
		return "error"
	default:
		return "rejected"
	}
}

func (s *Service) resolveImage(p *Product) {
	if p != nil && p.Image != nil {
		p.ImageURL = storage.ResolveImageURL(s.images.PublicBase(), *p.Image)
	}
}
