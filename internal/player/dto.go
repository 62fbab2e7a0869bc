// AngelaMos | 2026
// dto.go

package player

import (
	"time"
)

type CreatePlayerRequest struct {
	Name         string  `json:"name"         validate:"required,min=2,max=100"`
	JerseyNumber *int    `json:"jerseyNumber" validate:"omitempty,min=0,max=999"`
	AvatarURL    *string `json:"avatarUrl"    validate:"omitempty,url,max=500"`
}

type UpdatePlayerRequest struct {
	Name         *string `json:"name"         validate:"omitempty,min=2,max=100"`
	JerseyNumber *int    `json:"jerseyNumber" validate:"omitempty,min=0,max=999"`
	AvatarURL    *string `json:"avatarUrl"    validate:"omitempty,url,max=500"`
}

type PlayerResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	JerseyNumber *int      `json:"jerseyNumber,omitempty"`
	AvatarURL    *string   `json:"avatarUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func ToPlayerResponse(p *Player) PlayerResponse {
	return PlayerResponse{
		ID:           p.ID,
		Name:         p.Name,
		JerseyNumber: p.JerseyNumber,
		AvatarURL:    p.AvatarURL,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func ToPlayerResponseList(players []Player) []PlayerResponse {
	out := make([]PlayerResponse, 0, len(players))
	for i := range players {
		out = append(out, ToPlayerResponse(&players[i]))
	}
	return out
}
