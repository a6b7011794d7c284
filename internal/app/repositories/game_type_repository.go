package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kickabout/kickabout/internal/app/models"
	"github.com/kickabout/kickabout/internal/pkg/apperrors"
)

// GameTypeRepository handles database operations for game types
type GameTypeRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewGameTypeRepository creates a new GameTypeRepository
func NewGameTypeRepository(db *pgxpool.Pool) *GameTypeRepository {
	return &GameTypeRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetAll retrieves all game types ordered by name
func (r *GameTypeRepository) GetAll(ctx context.Context) ([]models.GameType, error) {
	sql, args, err := r.sb.Select("id", "name", "slug", "description", "default_max_players", "created_at").
		From("game_types").
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list game types query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing game types: %w", err)
	}
	defer rows.Close()

	gameTypes := make([]models.GameType, 0)
	for rows.Next() {
		var gt models.GameType
		if err := rows.Scan(&gt.ID, &gt.Name, &gt.Slug, &gt.Description, &gt.DefaultMaxPlayers, &gt.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning game type row: %w", err)
		}
		gameTypes = append(gameTypes, gt)
	}
	return gameTypes, rows.Err()
}

// GetByID retrieves a game type by ID
func (r *GameTypeRepository) GetByID(ctx context.Context, id int64) (*models.GameType, error) {
	sql, args, err := r.sb.Select("id", "name", "slug", "description", "default_max_players", "created_at").
		From("game_types").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get game type query: %w", err)
	}

	var gt models.GameType
	err = r.db.QueryRow(ctx, sql, args...).Scan(&gt.ID, &gt.Name, &gt.Slug, &gt.Description, &gt.DefaultMaxPlayers, &gt.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrGameTypeNotFound
		}
		return nil, fmt.Errorf("error retrieving game type: %w", err)
	}
	return &gt, nil
}

// GetBySlug retrieves a game type by slug
func (r *GameTypeRepository) GetBySlug(ctx context.Context, slug string) (*models.GameType, error) {
	sql, args, err := r.sb.Select("id", "name", "slug", "description", "default_max_players", "created_at").
		From("game_types").
		Where(squirrel.Eq{"slug": slug}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get game type by slug query: %w", err)
	}

	var gt models.GameType
	err = r.db.QueryRow(ctx, sql, args...).Scan(&gt.ID, &gt.Name, &gt.Slug, &gt.Description, &gt.DefaultMaxPlayers, &gt.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrGameTypeNotFound
		}
		return nil, fmt.Errorf("error retrieving game type: %w", err)
	}
	return &gt, nil
}
