// AngelaMos | 2026
// repository_test.go

package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
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

func TestRepositoryUpdateExtendsUnderLock(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	stale := now.AddDate(0, 0, -5)
	days := 30

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT expires_at, is_active\s+FROM user_profiles\s+WHERE id = \$1\s+FOR UPDATE`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"expires_at", "is_active"}).AddRow(stale, true))
	mock.ExpectExec(`UPDATE user_profiles\s+SET expires_at = \$2, is_active = \$3\s+WHERE id = \$1`).
		WithArgs("p1", now.AddDate(0, 0, days), true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.Update(context.Background(), "p1", Patch{ExtendDays: &days}, now); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
}

func TestRepositoryUpdateMissingRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)

	active := false

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"expires_at", "is_active"}))
	mock.ExpectRollback()

	err := repo.Update(context.Background(), "nope", Patch{IsActive: &active}, time.Now())
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestRepositoryCreateDuplicate(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO user_profiles`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value"})

	err := repo.Create(context.Background(), &Profile{ID: "p1", ExpiresAt: time.Now(), IsActive: true})
	if !errors.Is(err, core.ErrDuplicateKey) {
		t.Fatalf("Create() error = %v, want ErrDuplicateKey", err)
	}
}

func TestRepositoryDelete(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`DELETE FROM user_profiles WHERE id = \$1`).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM user_profiles WHERE id = \$1`).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "p1"); err != nil {
		t.Fatalf("first Delete() error = %v", err)
	}
	if err := repo.Delete(context.Background(), "p1"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestRepositoryListNewestFirst(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "full_name", "company", "expires_at", "is_active", "created_at", "created_by",
	}).
		AddRow("b", "B", "Co", now, true, now, nil).
		AddRow("a", "A", "Co", now, false, now.Add(-time.Hour), "admin-1")

	mock.ExpectQuery(`FROM user_profiles\s+ORDER BY created_at DESC`).WillReturnRows(rows)

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "a" {
		t.Fatalf("List() = %+v", got)
	}
	if got[0].CreatedBy != nil || got[1].CreatedBy == nil || *got[1].CreatedBy != "admin-1" {
		t.Errorf("created_by = %v / %v", got[0].CreatedBy, got[1].CreatedBy)
	}
}
