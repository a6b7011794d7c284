package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kickabout/kickabout/internal/app/models"
	"github.com/kickabout/kickabout/internal/pkg/apperrors"
	"github.com/kickabout/kickabout/internal/pkg/dberrors"
	"github.com/kickabout/kickabout/internal/pkg/logger"
)

// TokenRepository handles refresh and verification token database operations
type TokenRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(db *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateRefreshToken stores a new refresh token
func (r *TokenRepository) CreateRefreshToken(ctx context.Context, token string, userID int64, expiresAt time.Time) error {
	sql, args, err := r.sb.Insert("refresh_tokens").
		Columns("token", "user_id", "expires_at", "created_at").
		Values(token, userID, expiresAt, time.Now()).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create refresh token query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "refresh_tokens_token_key") {
			logger.Warn().Int64("userID", userID).Msg("Attempted to create duplicate refresh token")
			return apperrors.ErrTokenInvalid
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error executing create refresh token query")
		return fmt.Errorf("error creating refresh token: %w", err)
	}
	return nil
}

// GetRefreshToken retrieves a refresh token by value, rejecting expired ones
func (r *TokenRepository) GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	sql, args, err := r.sb.Select("id", "user_id", "token", "expires_at", "created_at").
		From("refresh_tokens").
		Where(squirrel.Eq{"token": token}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get refresh token query: %w", err)
	}

	var stored models.RefreshToken
	err = r.db.QueryRow(ctx, sql, args...).Scan(&stored.ID, &stored.UserID, &stored.Token, &stored.ExpiresAt, &stored.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTokenNotFound
		}
		logger.Error().Err(err).Msg("Error scanning refresh token row")
		return nil, fmt.Errorf("error retrieving refresh token: %w", err)
	}

	if stored.IsExpired() {
		return nil, apperrors.ErrTokenExpired
	}
	return &stored, nil
}

// DeleteRefreshToken removes a refresh token
func (r *TokenRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	sql, args, err := r.sb.Delete("refresh_tokens").
		Where(squirrel.Eq{"token": token}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete refresh token query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting refresh token: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrTokenNotFound
	}
	return nil
}

// DeleteUserRefreshTokens removes all refresh tokens for a user
func (r *TokenRepository) DeleteUserRefreshTokens(ctx context.Context, userID int64) error {
	sql, args, err := r.sb.Delete("refresh_tokens").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete user refresh tokens query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error deleting user refresh tokens: %w", err)
	}
	return nil
}

// CreateVerificationToken stores a new verification token within the
// caller's transaction, so the token commits or rolls back together
// with the account change it belongs to.
func (r *TokenRepository) CreateVerificationToken(ctx context.Context, tx pgx.Tx, userID int64, token, tokenType string, expiresAt time.Time) error {
	sql, args, err := r.sb.Insert("verification_tokens").
		Columns("user_id", "token", "type", "expires_at", "used", "created_at").
		Values(userID, token, tokenType, expiresAt, false, time.Now()).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create verification token query: %w", err)
	}

	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int64("userID", userID).Str("type", tokenType).Msg("Error executing create verification token query")
		return fmt.Errorf("error creating verification token: %w", err)
	}
	return nil
}

// GetVerificationToken retrieves an unused verification token by value and type
func (r *TokenRepository) GetVerificationToken(ctx context.Context, token, tokenType string) (*models.VerificationToken, error) {
	sql, args, err := r.sb.Select("id", "user_id", "token", "type", "expires_at", "used", "created_at").
		From("verification_tokens").
		Where(squirrel.Eq{"token": token, "type": tokenType}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get verification token query: %w", err)
	}

	var stored models.VerificationToken
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&stored.ID, &stored.UserID, &stored.Token, &stored.Type,
		&stored.ExpiresAt, &stored.Used, &stored.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrInvalidEmailToken
		}
		logger.Error().Err(err).Msg("Error scanning verification token row")
		return nil, fmt.Errorf("error retrieving verification token: %w", err)
	}

	if stored.Used || stored.IsExpired() {
		return nil, apperrors.ErrInvalidEmailToken
	}
	return &stored, nil
}

// MarkVerificationTokenUsed flags a verification token as consumed
func (r *TokenRepository) MarkVerificationTokenUsed(ctx context.Context, tokenID int64) error {
	sql, args, err := r.sb.Update("verification_tokens").
		Set("used", true).
		Where(squirrel.Eq{"id": tokenID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build mark verification token used query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error marking verification token used: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrInvalidEmailToken
	}
	return nil
}
