// AngelaMos | 2026
// service.go

package fine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clubfines/backend/internal/core"
	"github.com/clubfines/backend/internal/finereason"
	"github.com/clubfines/backend/internal/player"
)

// PlayerDirectory and ReasonCatalog are the lookups the service needs
// from the sibling domains. Their repositories satisfy them.
type PlayerDirectory interface {
	GetByID(ctx context.Context, id int64) (*player.Player, error)
}

type ReasonCatalog interface {
	GetByID(ctx context.Context, id int64) (*finereason.FineReason, error)
}

type Service struct {
	repo    Repository
	players PlayerDirectory
	reasons ReasonCatalog
}

func NewService(
	repo Repository,
	players PlayerDirectory,
	reasons ReasonCatalog,
) *Service {
	return &Service{repo: repo, players: players, reasons: reasons}
}

// CreateFine records a fine authored by addedByUserID. When the
// request carries no amount, the reason's default amount applies.
func (s *Service) CreateFine(
	ctx context.Context,
	addedByUserID int64,
	req CreateFineRequest,
) (*FineWithNames, error) {
	fineDate, err := time.Parse(fineDateLayout, req.FineDate)
	if err != nil {
		return nil, core.ValidationError(
			"INVALID_FINE_DATE",
			"fineDate must be formatted as YYYY-MM-DD",
		)
	}

	if _, err := s.players.GetByID(ctx, req.PlayerID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.ValidationError(
				"PLAYER_NOT_FOUND",
				"player does not exist",
			)
		}
		return nil, fmt.Errorf("check player: %w", err)
	}

	reason, err := s.reasons.GetByID(ctx, req.FineReasonID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.ValidationError(
				"FINE_REASON_NOT_FOUND",
				"fine reason does not exist",
			)
		}
		return nil, fmt.Errorf("check fine reason: %w", err)
	}

	amount := reason.DefaultAmount
	if req.Amount != nil {
		amount = *req.Amount
	}

	f := &Fine{
		PlayerID:      req.PlayerID,
		FineReasonID:  req.FineReasonID,
		AddedByUserID: addedByUserID,
		Amount:        amount,
		FineDate:      fineDate,
		Note:          req.Note,
	}

	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, f.ID)
}

func (s *Service) GetFine(
	ctx context.Context,
	id int64,
) (*FineWithNames, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListFines(
	ctx context.Context,
	params ListFinesParams,
) ([]FineWithNames, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) DeleteFine(ctx context.Context, id int64) error {
	return s.repo.SoftDelete(ctx, id)
}

// Report aggregates all active fines per player.
func (s *Service) Report(ctx context.Context) (*ReportResponse, error) {
	totals, err := s.repo.PlayerTotals(ctx)
	if err != nil {
		return nil, err
	}

	report := &ReportResponse{
		Totals:      totals,
		GeneratedAt: time.Now().UTC(),
	}

	for _, t := range totals {
		report.GrandTotal += t.TotalAmount
		report.FineCount += t.FineCount
	}

	return report, nil
}
