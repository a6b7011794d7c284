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

const userColumns = `id, email, password, first_name, last_name, phone, bio, profile_photo_url,
	skill_level, address, city, state, postal_code, country, community_name, borough,
	latitude, longitude, location_verified,
	community_id, is_active, email_verified, last_login_at, created_at, updated_at`

// userHaversineExpr is the great-circle distance in kilometers between
// the bound point and the user's coordinates.
const userHaversineExpr = `(6371 * acos(least(1.0,
	cos(radians(?)) * cos(radians(latitude)) * cos(radians(longitude) - radians(?)) +
	sin(radians(?)) * sin(radians(latitude)))))`

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Email, &user.Password, &user.FirstName, &user.LastName,
		&user.Phone, &user.Bio, &user.ProfilePhotoURL, &user.SkillLevel,
		&user.Address, &user.City, &user.State, &user.PostalCode, &user.Country,
		&user.CommunityName, &user.Borough,
		&user.Latitude, &user.Longitude, &user.LocationVerified, &user.CommunityID,
		&user.IsActive, &user.EmailVerified, &user.LastLoginAt,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a new user within the caller's transaction and returns
// its ID.
func (r *UserRepository) Create(ctx context.Context, tx pgx.Tx, user *models.User) (int64, error) {
	now := time.Now()
	sql, args, err := r.sb.Insert("users").
		Columns("email", "password", "first_name", "last_name", "phone",
			"is_active", "email_verified", "created_at", "updated_at").
		Values(user.Email, user.Password, user.FirstName, user.LastName, user.Phone,
			true, false, now, now).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create user query: %w", err)
	}

	var id int64
	if err := tx.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "users_email_key") {
			return 0, apperrors.ErrEmailAlreadyExists
		}
		logger.Error().Err(err).Str("email", user.Email).Msg("Error executing create user query")
		return 0, fmt.Errorf("error creating user: %w", err)
	}
	return id, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns).
		From("users").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("userID", id).Msg("Error scanning user row")
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns).
		From("users").
		Where(squirrel.Eq{"email": email}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user by email query: %w", err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Str("email", email).Msg("Error scanning user row")
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	return user, nil
}

// EmailExists checks if an email is already registered
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	sql, args, err := r.sb.Select("1").
		From("users").
		Where(squirrel.Eq{"email": email}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build email exists query: %w", err)
	}

	var one int
	err = r.db.QueryRow(ctx, sql, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error checking email existence: %w", err)
	}
	return true, nil
}

// UpdateProfile updates a user's basic profile information
func (r *UserRepository) UpdateProfile(ctx context.Context, userID int64, firstName, lastName string, phone, bio *string, skillLevel *models.SkillLevel) error {
	sql, args, err := r.sb.Update("users").
		Set("first_name", firstName).
		Set("last_name", lastName).
		Set("phone", phone).
		Set("bio", bio).
		Set("skill_level", skillLevel).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update profile query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error executing update profile query")
		return fmt.Errorf("error updating profile: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// UpdateLocation stores the user's resolved location fields and marks
// the location verified.
func (r *UserRepository) UpdateLocation(ctx context.Context, userID int64, address, city, state, postalCode, country, communityName, borough *string, latitude, longitude *float64) error {
	sql, args, err := r.sb.Update("users").
		Set("address", address).
		Set("city", city).
		Set("state", state).
		Set("postal_code", postalCode).
		Set("country", country).
		Set("community_name", communityName).
		Set("borough", borough).
		Set("latitude", latitude).
		Set("longitude", longitude).
		Set("location_verified", true).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update location query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error executing update location query")
		return fmt.Errorf("error updating location: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// SetCommunity points the user at their primary community
func (r *UserRepository) SetCommunity(ctx context.Context, userID int64, communityID *int64) error {
	sql, args, err := r.sb.Update("users").
		Set("community_id", communityID).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build set community query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error executing set community query")
		return fmt.Errorf("error setting user community: %w", err)
	}
	return nil
}

// SetEmailVerified marks the user's email as verified
func (r *UserRepository) SetEmailVerified(ctx context.Context, userID int64) error {
	sql, args, err := r.sb.Update("users").
		Set("email_verified", true).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build set email verified query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error marking email verified: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// UpdateLastLogin updates the last login time
func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID int64) error {
	sql, args, err := r.sb.Update("users").
		Set("last_login_at", time.Now()).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update last login query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to update last login time")
	}
	return nil
}

// ListNearby returns active users with coordinates within radiusKm of
// the point, excluding the given user. The SQL filter narrows the
// candidate set; callers rank and format distances in memory.
func (r *UserRepository) ListNearby(ctx context.Context, latitude, longitude, radiusKm float64, excludeUserID int64, limit int) ([]models.User, error) {
	builder := r.sb.Select(userColumns).
		From("users").
		Where(squirrel.Eq{"is_active": true}).
		Where(squirrel.NotEq{"id": excludeUserID}).
		Where("latitude IS NOT NULL AND longitude IS NOT NULL").
		Where(squirrel.Expr(userHaversineExpr+" <= ?", latitude, longitude, latitude, radiusKm)).
		OrderBy("id").
		Limit(uint64(limit))

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list nearby users query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list nearby users query")
		return nil, fmt.Errorf("error listing nearby users: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// ListByCommunity returns active members of a community, newest joiners
// first.
func (r *UserRepository) ListByCommunity(ctx context.Context, communityID int64, page, pageSize int) ([]models.User, int64, error) {
	offset := uint64((page - 1) * pageSize)

	cols := "u.id, u.email, u.password, u.first_name, u.last_name, u.phone, u.bio, u.profile_photo_url, " +
		"u.skill_level, u.address, u.city, u.state, u.postal_code, u.country, u.community_name, u.borough, " +
		"u.latitude, u.longitude, u.location_verified, " +
		"u.community_id, u.is_active, u.email_verified, u.last_login_at, u.created_at, u.updated_at"
	sql, args, err := r.sb.Select(cols).
		Column("COUNT(*) OVER() AS total").
		From("users u").
		Join("user_communities uc ON uc.user_id = u.id").
		Where(squirrel.Eq{"uc.community_id": communityID, "uc.is_active": true, "u.is_active": true}).
		OrderBy("uc.joined_at DESC").
		Offset(offset).
		Limit(uint64(pageSize)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list community users query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("communityID", communityID).Msg("Error executing list community users query")
		return nil, 0, fmt.Errorf("error listing community users: %w", err)
	}
	defer rows.Close()

	var total int64
	users := make([]models.User, 0)
	for rows.Next() {
		var user models.User
		err := rows.Scan(
			&user.ID, &user.Email, &user.Password, &user.FirstName, &user.LastName,
			&user.Phone, &user.Bio, &user.ProfilePhotoURL, &user.SkillLevel,
			&user.Address, &user.City, &user.State, &user.PostalCode, &user.Country,
			&user.CommunityName, &user.Borough,
			&user.Latitude, &user.Longitude, &user.LocationVerified, &user.CommunityID,
			&user.IsActive, &user.EmailVerified, &user.LastLoginAt,
			&user.CreatedAt, &user.UpdatedAt,
			&total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning community user row: %w", err)
		}
		users = append(users, user)
	}
	return users, total, rows.Err()
}

// UpsertGameInterest records or updates a user's interest in a game type
func (r *UserRepository) UpsertGameInterest(ctx context.Context, userID, gameTypeID int64, skillLevel models.SkillLevel) error {
	sql, args, err := r.sb.Insert("game_user_interests").
		Columns("user_id", "game_type_id", "skill_level", "created_at").
		Values(userID, gameTypeID, skillLevel, time.Now()).
		Suffix("ON CONFLICT (user_id, game_type_id) DO UPDATE SET skill_level = EXCLUDED.skill_level").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert game interest query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrGameTypeNotFound
		}
		logger.Error().Err(err).Int64("userID", userID).Int64("gameTypeID", gameTypeID).Msg("Error executing upsert game interest query")
		return fmt.Errorf("error saving game interest: %w", err)
	}
	return nil
}

// RemoveGameInterest deletes a user's interest in a game type
func (r *UserRepository) RemoveGameInterest(ctx context.Context, userID, gameTypeID int64) error {
	sql, args, err := r.sb.Delete("game_user_interests").
		Where(squirrel.Eq{"user_id": userID, "game_type_id": gameTypeID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build remove game interest query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error removing game interest: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}

// GetGameInterests lists a user's game interests with their game types
func (r *UserRepository) GetGameInterests(ctx context.Context, userID int64) ([]models.GameUserInterest, error) {
	sql, args, err := r.sb.Select(
		"i.id", "i.user_id", "i.game_type_id", "i.skill_level", "i.created_at",
		"t.id", "t.name", "t.slug", "t.description", "t.default_max_players", "t.created_at").
		From("game_user_interests i").
		Join("game_types t ON t.id = i.game_type_id").
		Where(squirrel.Eq{"i.user_id": userID}).
		OrderBy("t.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get game interests query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing game interests: %w", err)
	}
	defer rows.Close()

	interests := make([]models.GameUserInterest, 0)
	for rows.Next() {
		var interest models.GameUserInterest
		var gameType models.GameType
		err := rows.Scan(
			&interest.ID, &interest.UserID, &interest.GameTypeID, &interest.SkillLevel, &interest.CreatedAt,
			&gameType.ID, &gameType.Name, &gameType.Slug, &gameType.Description, &gameType.DefaultMaxPlayers, &gameType.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning game interest row: %w", err)
		}
		interest.GameType = &gameType
		interests = append(interests, interest)
	}
	return interests, rows.Err()
}
