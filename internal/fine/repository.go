// AngelaMos | 2026
// repository.go

package fine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/clubfines/backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, f *Fine) error
	GetByID(ctx context.Context, id int64) (*FineWithNames, error)
	List(ctx context.Context, params ListFinesParams) ([]FineWithNames, error)
	SoftDelete(ctx context.Context, id int64) error
	PlayerTotals(ctx context.Context) ([]PlayerTotal, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// joinedSelect pulls the display names alongside the fine. The users
// join ignores deleted_at: the author's name must survive the
// author's soft delete.
const joinedSelect = `
	SELECT f.id, f.player_id, f.fine_reason_id, f.added_by_user_id,
	       f.amount, f.fine_date, f.note,
	       f.created_at, f.updated_at, f.deleted_at,
	       p.name AS player_name,
	       fr.description AS reason_description,
	       u.name AS added_by_name
	FROM fines f
	JOIN players p ON p.id = f.player_id
	JOIN fine_reasons fr ON fr.id = f.fine_reason_id
	JOIN users u ON u.id = f.added_by_user_id`

func (r *repository) Create(ctx context.Context, f *Fine) error {
	query := `
		INSERT INTO fines
			(player_id, fine_reason_id, added_by_user_id, amount, fine_date, note)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.db.GetContext(ctx, f, query,
		f.PlayerID,
		f.FineReasonID,
		f.AddedByUserID,
		f.Amount,
		f.FineDate,
		f.Note,
	)
	if err != nil {
		return fmt.Errorf("create fine: %w", err)
	}

	return nil
}

func (r *repository) GetByID(
	ctx context.Context,
	id int64,
) (*FineWithNames, error) {
	query := joinedSelect + `
	WHERE f.id = $1 AND f.deleted_at IS NULL`

	var f FineWithNames
	if err := r.db.GetContext(ctx, &f, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("get fine: %w", core.ErrNotFound)
		}
		return nil, fmt.Errorf("get fine: %w", err)
	}

	return &f, nil
}

func (r *repository) List(
	ctx context.Context,
	params ListFinesParams,
) ([]FineWithNames, error) {
	conditions := []string{"f.deleted_at IS NULL"}
	args := []any{}

	if params.PlayerID != nil {
		args = append(args, *params.PlayerID)
		conditions = append(conditions,
			fmt.Sprintf("f.player_id = $%d", len(args)))
	}
	if params.ReasonID != nil {
		args = append(args, *params.ReasonID)
		conditions = append(conditions,
			fmt.Sprintf("f.fine_reason_id = $%d", len(args)))
	}
	if params.From != nil {
		args = append(args, *params.From)
		conditions = append(conditions,
			fmt.Sprintf("f.fine_date >= $%d", len(args)))
	}
	if params.To != nil {
		args = append(args, *params.To)
		conditions = append(conditions,
			fmt.Sprintf("f.fine_date <= $%d", len(args)))
	}

	query := joinedSelect + `
	WHERE ` + strings.Join(conditions, " AND ") + `
	ORDER BY f.fine_date DESC, f.id DESC`

	fines := []FineWithNames{}
	if err := r.db.SelectContext(ctx, &fines, query, args...); err != nil {
		return nil, fmt.Errorf("list fines: %w", err)
	}

	return fines, nil
}

func (r *repository) SoftDelete(ctx context.Context, id int64) error {
	query := `
		UPDATE fines
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete fine: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete fine: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete fine: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) PlayerTotals(
	ctx context.Context,
) ([]PlayerTotal, error) {
	query := `
		SELECT p.id AS player_id,
		       p.name AS player_name,
		       COUNT(f.id) AS fine_count,
		       COALESCE(SUM(f.amount), 0) AS total_amount
		FROM fines f
		JOIN players p ON p.id = f.player_id
		WHERE f.deleted_at IS NULL
		GROUP BY p.id, p.name
		ORDER BY total_amount DESC, p.name`

	totals := []PlayerTotal{}
	if err := r.db.SelectContext(ctx, &totals, query); err != nil {
		return nil, fmt.Errorf("player totals: %w", err)
	}

	return totals, nil
}
