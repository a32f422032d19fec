// AngelaMos | 2026
// repository.go

package account

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ristan-marine/catalog-api/internal/core"
)

type Repository interface {
	List(ctx context.Context) ([]Profile, error)
	GetByID(ctx context.Context, id string) (*Profile, error)
	Create(ctx context.Context, p *Profile) error
	Update(ctx context.Context, id string, patch Patch, now time.Time) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, now time.Time) (Counts, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const profileColumns = `id, COALESCE(full_name, '') AS full_name,
		       COALESCE(company, '') AS company, expires_at, is_active,
		       created_at, created_by`

func (r *repository) List(ctx context.Context) ([]Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM user_profiles
		ORDER BY created_at DESC`

	profiles := []Profile{}
	if err := r.db.SelectContext(ctx, &profiles, query); err != nil {
		return nil, core.MapStoreError("list profiles", err)
	}

	return profiles, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM user_profiles
		WHERE id = $1`

	var p Profile
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		return nil, core.MapStoreError("get profile", err)
	}

	return &p, nil
}

func (r *repository) Create(ctx context.Context, p *Profile) error {
	query := `
		INSERT INTO user_profiles (id, full_name, company, expires_at, is_active, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &p.CreatedAt, query,
		p.ID,
		p.FullName,
		p.Company,
		p.ExpiresAt,
		p.IsActive,
		p.CreatedBy,
	)
	if err != nil {
		return core.MapStoreError("create profile", err)
	}

	return nil
}

// Update applies patch under a row lock so an extension reads the expiry it
// is extending.
func (r *repository) Update(
	ctx context.Context,
	id string,
	patch Patch,
	now time.Time,
) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var current struct {
			ExpiresAt time.Time `db:"expires_at"`
			IsActive  bool      `db:"is_active"`
		}

		err := tx.GetContext(ctx, &current, `
			SELECT expires_at, is_active
			FROM user_profiles
			WHERE id = $1
			FOR UPDATE`, id)
		if err != nil {
			return core.MapStoreError("update profile", err)
		}

		expiresAt := current.ExpiresAt
		switch {
		case patch.ExtendDays != nil:
			expiresAt = Extend(current.ExpiresAt, now, *patch.ExtendDays)
		case patch.ExpiresAt != nil:
			expiresAt = *patch.ExpiresAt
		}

		isActive := current.IsActive
		if patch.IsActive != nil {
			isActive = *patch.IsActive
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE user_profiles
			SET expires_at = $2, is_active = $3
			WHERE id = $1`, id, expiresAt, isActive)
		if err != nil {
			return core.MapStoreError("update profile", err)
		}

		return nil
	})
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM user_profiles WHERE id = $1`, id)
	if err != nil {
		return core.MapStoreError("delete profile", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return core.MapStoreError("delete profile", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete profile: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) Count(ctx context.Context, now time.Time) (Counts, error) {
	query := `
		SELECT COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE is_active AND expires_at > $1) AS usable
		FROM user_profiles`

	var c Counts
	if err := r.db.GetContext(ctx, &c, query, now); err != nil {
		return Counts{}, core.MapStoreError("count profiles", err)
	}

	return c, nil
}
