// AngelaMos | 2026
// dto.go

package finereason

import (
	"time"
)

type CreateFineReasonRequest struct {
	Description   string  `json:"description"   validate:"required,min=2,max=200"`
	DefaultAmount float64 `json:"defaultAmount" validate:"required,gt=0"`
}

type UpdateFineReasonRequest struct {
	Description   *string  `json:"description"   validate:"omitempty,min=2,max=200"`
	DefaultAmount *float64 `json:"defaultAmount" validate:"omitempty,gt=0"`
}

type FineReasonResponse struct {
	ID            int64     `json:"id"`
	Description   string    `json:"description"`
	DefaultAmount float64   `json:"defaultAmount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func ToFineReasonResponse(f *FineReason) FineReasonResponse {
	return FineReasonResponse{
		ID:            f.ID,
		Description:   f.Description,
		DefaultAmount: f.DefaultAmount,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

func ToFineReasonResponseList(reasons []FineReason) []FineReasonResponse {
	out := make([]FineReasonResponse, 0, len(reasons))
	for i := range reasons {
		out = append(out, ToFineReasonResponse(&reasons[i]))
	}
	return out
}
