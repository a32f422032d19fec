// AngelaMos | 2026
// entity.go

package account

import (
	"time"
)

// Profile is the catalog subscription paired 1:1 with an auth-service user.
type Profile struct {
	ID        string    `db:"id"`
	FullName  string    `db:"full_name"`
	Company   string    `db:"company"`
	ExpiresAt time.Time `db:"expires_at"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
	CreatedBy *string   `db:"created_by"`
}

// Patch carries the optional fields of an account update. At most one of
// ExpiresAt and ExtendDays is set.
type Patch struct {
	IsActive   *bool
	ExpiresAt  *time.Time
	ExtendDays *int
}

func (p Patch) IsEmpty() bool {
	return p.IsActive == nil && p.ExpiresAt == nil && p.ExtendDays == nil
}

type Counts struct {
	Total  int `db:"total"  json:"total"`
	Usable int `db:"usable" json:"usable"`
}
