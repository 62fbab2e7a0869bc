// AngelaMos | 2026
// entity.go

package fine

import (
	"time"
)

// Fine is one recorded violation. AddedByUserID keeps pointing at the
// authoring legacy user even after that user is soft deleted.
type Fine struct {
	ID            int64      `db:"id"`
	PlayerID      int64      `db:"player_id"`
	FineReasonID  int64      `db:"fine_reason_id"`
	AddedByUserID int64      `db:"added_by_user_id"`
	Amount        float64    `db:"amount"`
	FineDate      time.Time  `db:"fine_date"`
	Note          *string    `db:"note"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
	DeletedAt     *time.Time `db:"deleted_at"`
}

// FineWithNames is the joined read shape: the fine plus the display
// names from the player, reason and author rows.
type FineWithNames struct {
	Fine
	PlayerName        string `db:"player_name"`
	ReasonDescription string `db:"reason_description"`
	AddedByName       string `db:"added_by_name"`
}

// PlayerTotal is one row of the per-player aggregate report.
type PlayerTotal struct {
	PlayerID    int64   `db:"player_id"   json:"playerId"`
	PlayerName  string  `db:"player_name" json:"playerName"`
	FineCount   int     `db:"fine_count"  json:"fineCount"`
	TotalAmount float64 `db:"total_amount" json:"totalAmount"`
}
