// AngelaMos | 2026
// entity.go

package setting

import (
	"time"
)

// Setting is one key/value pair of club-wide configuration. No soft
// delete; writes upsert.
type Setting struct {
	Key       string    `db:"key"`
	Value     string    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}
