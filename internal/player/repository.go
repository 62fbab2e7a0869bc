// AngelaMos | 2026
// repository.go

package player

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clubfines/backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, p *Player) error
	GetByID(ctx context.Context, id int64) (*Player, error)
	List(ctx context.Context) ([]Player, error)
	Update(ctx context.Context, p *Player) error
	SoftDelete(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) (*Player, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const playerColumns = `id, name, jersey_number, avatar_url,
	       created_at, updated_at, deleted_at`

func (r *repository) Create(ctx context.Context, p *Player) error {
	query := `
		INSERT INTO players (name, jersey_number, avatar_url)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := r.db.GetContext(ctx, p, query,
		p.Name,
		p.JerseyNumber,
		p.AvatarURL,
	)
	if err != nil {
		return fmt.Errorf("create player: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Player, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM players
		WHERE id = $1 AND deleted_at IS NULL`, playerColumns)

	var p Player
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("get player: %w", core.ErrNotFound)
		}
		return nil, fmt.Errorf("get player: %w", err)
	}

	return &p, nil
}

func (r *repository) List(ctx context.Context) ([]Player, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM players
		WHERE deleted_at IS NULL
		ORDER BY name, id`, playerColumns)

	players := []Player{}
	if err := r.db.SelectContext(ctx, &players, query); err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}

	return players, nil
}

func (r *repository) Update(ctx context.Context, p *Player) error {
	query := `
		UPDATE players
		SET name = $2, jersey_number = $3, avatar_url = $4, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.GetContext(ctx, p, query,
		p.ID,
		p.Name,
		p.JerseyNumber,
		p.AvatarURL,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("update player: %w", core.ErrNotFound)
		}
		return fmt.Errorf("update player: %w", err)
	}

	return nil
}

func (r *repository) SoftDelete(ctx context.Context, id int64) error {
	query := `
		UPDATE players
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete player: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete player: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete player: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) Restore(ctx context.Context, id int64) (*Player, error) {
	query := fmt.Sprintf(`
		UPDATE players
		SET deleted_at = NULL, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NOT NULL
		RETURNING %s`, playerColumns)

	var p Player
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("restore player: %w", core.ErrNotFound)
		}
		return nil, fmt.Errorf("restore player: %w", err)
	}

	return &p, nil
}
