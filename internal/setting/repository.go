// AngelaMos | 2026
// repository.go

package setting

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/clubfines/backend/internal/core"
)

type Repository interface {
	GetAll(ctx context.Context) ([]Setting, error)
	UpsertAll(ctx context.Context, values map[string]string) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetAll(ctx context.Context) ([]Setting, error) {
	query := `
		SELECT key, value, updated_at
		FROM settings
		ORDER BY key`

	settings := []Setting{}
	if err := r.db.SelectContext(ctx, &settings, query); err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}

	return settings, nil
}

// UpsertAll writes a batch of settings in one transaction, so a
// mid-batch failure leaves no key applied.
func (r *repository) UpsertAll(
	ctx context.Context,
	values map[string]string,
) error {
	query := `
		INSERT INTO settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = NOW()`

	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for key, value := range values {
			if _, err := tx.ExecContext(ctx, query, key, value); err != nil {
				return fmt.Errorf("upsert setting %q: %w", key, err)
			}
		}
		return nil
	})
}
