// AngelaMos | 2026
// dto.go

package fine

import (
	"time"
)

type CreateFineRequest struct {
	PlayerID     int64    `json:"playerId"     validate:"required,gt=0"`
	FineReasonID int64    `json:"fineReasonId" validate:"required,gt=0"`
	Amount       *float64 `json:"amount"       validate:"omitempty,gt=0"`
	FineDate     string   `json:"fineDate"     validate:"required"`
	Note         *string  `json:"note"         validate:"omitempty,max=500"`
}

// ListFinesParams are the optional query filters on GET /fines.
type ListFinesParams struct {
	PlayerID *int64
	ReasonID *int64
	From     *time.Time
	To       *time.Time
}

type FineResponse struct {
	ID            int64     `json:"id"`
	PlayerID      int64     `json:"playerId"`
	PlayerName    string    `json:"playerName"`
	FineReasonID  int64     `json:"fineReasonId"`
	Reason        string    `json:"reason"`
	AddedByUserID int64     `json:"addedByUserId"`
	AddedByName   string    `json:"addedByName"`
	Amount        float64   `json:"amount"`
	FineDate      string    `json:"fineDate"`
	Note          *string   `json:"note,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

type ReportResponse struct {
	Totals      []PlayerTotal `json:"totals"`
	GrandTotal  float64       `json:"grandTotal"`
	FineCount   int           `json:"fineCount"`
	GeneratedAt time.Time     `json:"generatedAt"`
}

const fineDateLayout = "2006-01-02"

func ToFineResponse(f *FineWithNames) FineResponse {
	return FineResponse{
		ID:            f.ID,
		PlayerID:      f.PlayerID,
		PlayerName:    f.PlayerName,
		FineReasonID:  f.FineReasonID,
		Reason:        f.ReasonDescription,
		AddedByUserID: f.AddedByUserID,
		AddedByName:   f.AddedByName,
		Amount:        f.Amount,
		FineDate:      f.FineDate.Format(fineDateLayout),
		Note:          f.Note,
		CreatedAt:     f.CreatedAt,
	}
}

func ToFineResponseList(fines []FineWithNames) []FineResponse {
	out := make([]FineResponse, 0, len(fines))
	for i := range fines {
		out = append(out, ToFineResponse(&fines[i]))
	}
	return out
}
