// AngelaMos | 2026
// repository.go

package finereason

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clubfines/backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, f *FineReason) error
	GetByID(ctx context.Context, id int64) (*FineReason, error)
	List(ctx context.Context) ([]FineReason, error)
	Update(ctx context.Context, f *FineReason) error
	SoftDelete(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) (*FineReason, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const fineReasonColumns = `id, description, default_amount,
	       created_at, updated_at, deleted_at`

func (r *repository) Create(ctx context.Context, f *FineReason) error {
	query := `
		INSERT INTO fine_reasons (description, default_amount)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at`

	err := r.db.GetContext(ctx, f, query, f.Description, f.DefaultAmount)
	if err != nil {
		return fmt.Errorf("create fine reason: %w", err)
	}

	return nil
}

func (r *repository) GetByID(
	ctx context.Context,
	id int64,
) (*FineReason, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM fine_reasons
		WHERE id = $1 AND deleted_at IS NULL`, fineReasonColumns)

	var f FineReason
	if err := r.db.GetContext(ctx, &f, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("get fine reason: %w", core.ErrNotFound)
		}
		return nil, fmt.Errorf("get fine reason: %w", err)
	}

	return &f, nil
}

func (r *repository) List(ctx context.Context) ([]FineReason, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM fine_reasons
		WHERE deleted_at IS NULL
		ORDER BY description, id`, fineReasonColumns)

	reasons := []FineReason{}
	if err := r.db.SelectContext(ctx, &reasons, query); err != nil {
		return nil, fmt.Errorf("list fine reasons: %w", err)
	}

	return reasons, nil
}

func (r *repository) Update(ctx context.Context, f *FineReason) error {
	query := `
		UPDATE fine_reasons
		SET description = $2, default_amount = $3, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.GetContext(ctx, f, query, f.ID, f.Description, f.DefaultAmount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("update fine reason: %w", core.ErrNotFound)
		}
		return fmt.Errorf("update fine reason: %w", err)
	}

	return nil
}

func (r *repository) SoftDelete(ctx context.Context, id int64) error {
	query := `
		UPDATE fine_reasons
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete fine reason: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete fine reason: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete fine reason: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) Restore(
	ctx context.Context,
	id int64,
) (*FineReason, error) {
	query := fmt.Sprintf(`
		UPDATE fine_reasons
		SET deleted_at = NULL, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NOT NULL
		RETURNING %s`, fineReasonColumns)

	var f FineReason
	if err := r.db.GetContext(ctx, &f, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("restore fine reason: %w", core.ErrNotFound)
		}
		return nil, fmt.Errorf("restore fine reason: %w", err)
	}

	return &f, nil
}
