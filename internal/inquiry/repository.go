// AngelaMos | 2026
// repository.go

package inquiry

import (
	"context"

	"github.com/ristan-marine/catalog-api/internal/core"
)

type Repository interface {
	Create(ctx context.Context, inq *Inquiry) error
	Count(ctx context.Context) (int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, inq *Inquiry) error {
	query := `
		INSERT INTO inquiries (company, name, phone, email, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		inq.Company,
		inq.Name,
		inq.Phone,
		inq.Email,
		inq.Message,
	).Scan(&inq.ID, &inq.CreatedAt)
	if err != nil {
		return core.MapStoreError("create inquiry", err)
	}

	return nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM inquiries`); err != nil {
		return 0, core.MapStoreError("count inquiries", err)
	}
	return n, nil
}
