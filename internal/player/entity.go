// AngelaMos | 2026
// entity.go

package player

import (
	"time"
)

// Player is one roster entry. Soft deleted players stay referenced by
// historical fines.
type Player struct {
	ID           int64      `db:"id"`
	Name         string     `db:"name"`
	JerseyNumber *int       `db:"jersey_number"`
	AvatarURL    *string    `db:"avatar_url"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at"`
}

func (p *Player) IsDeleted() bool {
	return p.DeletedAt != nil
}
