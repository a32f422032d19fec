// AngelaMos | 2026
// entity.go

package inquiry

import (
	"time"
)

type Inquiry struct {
	ID        int64     `db:"id"`
	Company   string    `db:"company"`
	Name      string    `db:"name"`
	Phone     *string   `db:"phone"`
	Email     string    `db:"email"`
	Message   string    `db:"message"`
	CreatedAt time.Time `db:"created_at"`
}
