// AngelaMos | 2026
// repository.go

package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/ristan-marine/catalog-api/internal/core"
)

type Repository interface {
	List(ctx context.Context, q ListQuery) ([]Summary, int, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, set []Assignment) (*Product, error)
	Update(ctx context.Context, id int64, set []Assignment) (*Product, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// List returns one window of the filtered catalog and the size of the whole
// filtered set.
func (r *repository) List(ctx context.Context, q ListQuery) ([]Summary, int, error) {
	page, pageArgs, count, countArgs := q.SQL()

	var total int
	if err := r.db.GetContext(ctx, &total, count, countArgs...); err != nil {
		return nil, 0, core.MapStoreError("count products", err)
	}

	rows := []Summary{}
	if q.Limit() == 0 || q.StartRow >= total {
		return rows, total, nil
	}

	if err := r.db.SelectContext(ctx, &rows, page, pageArgs...); err != nil {
		return nil, 0, core.MapStoreError("list products", err)
	}

	return rows, total, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	var p Product
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		return nil, core.MapStoreError("get product", err)
	}

	return &p, nil
}

func (r *repository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, id)
	if err != nil {
		return false, core.MapStoreError("check product", err)
	}
	return exists, nil
}

func (r *repository) Create(ctx context.Context, set []Assignment) (*Product, error) {
	cols := make([]string, 0, len(set))
	marks := make([]string, 0, len(set))
	args := make([]any, 0, len(set))

	for i, a := range set {
		cols = append(cols, a.Column)
		marks = append(marks, fmt.Sprintf("$%d", i+1))
		args = append(args, a.Value)
	}

	query := `INSERT INTO products (` + strings.Join(cols, ", ") + `)
		VALUES (` + strings.Join(marks, ", ") + `)
		RETURNING ` + productColumns

	var p Product
	if err := r.db.GetContext(ctx, &p, query, args...); err != nil {
		return nil, core.MapStoreError("create product", err)
	}

	return &p, nil
}

// Update writes only the given columns and stamps updated_at. An empty set
// still touches the row so a missing id is reported.
func (r *repository) Update(ctx context.Context, id int64, set []Assignment) (*Product, error) {
	parts := make([]string, 0, len(set)+1)
	args := make([]any, 0, len(set)+1)

	for _, a := range set {
		args = append(args, a.Value)
		parts = append(parts, fmt.Sprintf("%s = $%d", a.Column, len(args)))
	}
	parts = append(parts, "updated_at = now()")
	args = append(args, id)

	query := `UPDATE products SET ` + strings.Join(parts, ", ") +
		fmt.Sprintf(` WHERE id = $%d RETURNING `, len(args)) + productColumns

	var p Product
	if err := r.db.GetContext(ctx, &p, query, args...); err != nil {
		return nil, core.MapStoreError("update product", err)
	}

	return &p, nil
}

// Delete removes the row if present. A missing row is not an error.
func (r *repository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		return core.MapStoreError("delete product", err)
	}
	return nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM products`); err != nil {
		return 0, core.MapStoreError("count products", err)
	}
	return n, nil
}
