// AngelaMos | 2026
// entity.go

package finereason

import (
	"time"
)

// FineReason is a catalog entry pairing a rule violation with the
// amount it costs by default. Fines keep referencing soft-deleted
// reasons.
type FineReason struct {
	ID            int64      `db:"id"`
	Description   string     `db:"description"`
	DefaultAmount float64    `db:"default_amount"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
	DeletedAt     *time.Time `db:"deleted_at"`
}

func (f *FineReason) IsDeleted() bool {
	return f.DeletedAt != nil
}
