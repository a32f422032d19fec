// AngelaMos | 2026
// repository_test.go

package product

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/ristan-marine/catalog-api/internal/core"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		_ = db.Close() //nolint:errcheck // test cleanup
	})

	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

var summaryHeader = []string{
	"id", "item_name_kr", "item_name_en", "impa_code", "issa_code",
	"category", "unit", "price_krw", "brand", "image",
}

var productHeader = []string{
	"id", "item_name_kr", "item_name_en", "item_name_cn", "item_name_ru",
	"impa_code", "issa_code", "category", "brand", "unit", "price_krw",
	"country_of_origin", "remark", "image", "created_at", "updated_at",
}

func productRow(id int64, nameKR string, updated any) *sqlmock.Rows {
	return sqlmock.NewRows(productHeader).AddRow(
		id, nameKR, nil, nil, nil,
		"123", nil, "Ropes", nil, "EA", int64(12000),
		nil, nil, nil, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), updated,
	)
}

func TestRepositoryListSearch(t *testing.T) {
	repo, mock := newMockRepo(t)

	q := ListQuery{StartRow: 0, EndRow: 30, Search: "123", SortField: "id", SortDir: SortAsc}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM products WHERE (item_name_kr ILIKE $1`)).
		WithArgs("%123%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY id ASC LIMIT $2 OFFSET $3`)).
		WithArgs("%123%", 30, 0).
		WillReturnRows(sqlmock.NewRows(summaryHeader).
			AddRow(1, "로프", nil, "123", nil, "Ropes", "EA", int64(12000), nil, "1.jpg"))

	rows, total, err := repo.List(context.Background(), q)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("List() = %d rows, total %d", len(rows), total)
	}
	if rows[0].ItemNameKR == nil || *rows[0].ItemNameKR != "로프" {
		t.Errorf("row = %+v", rows[0])
	}
	if rows[0].ItemNameEN != nil {
		t.Errorf("ItemNameEN = %v, want nil", *rows[0].ItemNameEN)
	}
}

func TestRepositoryListPastEndSkipsPageQuery(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM products`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	rows, total, err := repo.List(context.Background(),
		ListQuery{StartRow: 100, EndRow: 200, SortField: "id"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 12 || rows == nil || len(rows) != 0 {
		t.Errorf("List() = %v, %d", rows, total)
	}
}

func TestRepositoryCreateWritesPresentColumns(t *testing.T) {
	repo, mock := newMockRepo(t)

	name := "로프"
	code := "123"
	set := []Assignment{
		{Column: "item_name_kr", Value: &name},
		{Column: "impa_code", Value: &code},
	}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO products (item_name_kr, impa_code)`) +
		`\s+` + regexp.QuoteMeta(`VALUES ($1, $2)`)).
		WithArgs(name, code).
		WillReturnRows(productRow(7, name, nil))

	p, err := repo.Create(context.Background(), set)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if p.ID != 7 || p.UpdatedAt != nil {
		t.Errorf("Create() = %+v", p)
	}
}

func TestRepositoryUpdateStampsUpdatedAt(t *testing.T) {
	repo, mock := newMockRepo(t)

	price := int64(15000)
	stamp := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(
		`UPDATE products SET price_krw = $1, updated_at = now() WHERE id = $2 RETURNING`)).
		WithArgs(price, int64(7)).
		WillReturnRows(productRow(7, "로프", stamp))

	p, err := repo.Update(context.Background(), 7, []Assignment{{Column: "price_krw", Value: &price}})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if p.UpdatedAt == nil || !p.UpdatedAt.Equal(stamp) {
		t.Errorf("UpdatedAt = %v", p.UpdatedAt)
	}
}

func TestRepositoryUpdateMissing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`UPDATE products SET updated_at = now\(\) WHERE id = \$1`).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows(productHeader))

	_, err := repo.Update(context.Background(), 404, nil)
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestRepositoryDelete(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`DELETE FROM products WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM products WHERE id = \$1`).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), 3); err != nil {
		t.Fatalf("Delete(3) error = %v", err)
	}
	if err := repo.Delete(context.Background(), 4); err != nil {
		t.Fatalf("Delete(4) of a missing row error = %v, want nil", err)
	}
}

func TestRepositoryExists(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.Exists(context.Background(), 9)
	if err != nil || !ok {
		t.Fatalf("Exists() = %v, %v", ok, err)
	}
}
