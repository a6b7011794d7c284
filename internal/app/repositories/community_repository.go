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

const communityColumns = `id, name, type, description, city, state, country,
	latitude, longitude, is_active, created_at, updated_at`

// CommunityRepository handles database operations for communities and
// community memberships
type CommunityRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCommunityRepository creates a new CommunityRepository
func NewCommunityRepository(db *pgxpool.Pool) *CommunityRepository {
	return &CommunityRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanCommunity(row pgx.Row) (*models.Community, error) {
	var c models.Community
	err := row.Scan(
		&c.ID, &c.Name, &c.Type, &c.Description, &c.City, &c.State, &c.Country,
		&c.Latitude, &c.Longitude, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindOrCreate returns the community identified by (name, city, state,
// country), creating it as an active borough when absent. The upsert
// keeps concurrent creators from racing to a duplicate.
func (r *CommunityRepository) FindOrCreate(ctx context.Context, name, city, state, country string, latitude, longitude *float64) (*models.Community, error) {
	now := time.Now()
	description := fmt.Sprintf("Community in %s, %s", city, state)

	sql, args, err := r.sb.Insert("communities").
		Columns("name", "type", "description", "city", "state", "country",
			"latitude", "longitude", "is_active", "created_at", "updated_at").
		Values(name, models.CommunityTypeBorough, description, city, state, country,
			latitude, longitude, true, now, now).
		Suffix("ON CONFLICT (name, city, state, country) DO UPDATE SET updated_at = communities.updated_at RETURNING " + communityColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build find or create community query: %w", err)
	}

	community, err := scanCommunity(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		logger.Error().Err(err).Str("name", name).Str("city", city).Msg("Error executing find or create community query")
		return nil, fmt.Errorf("error finding or creating community: %w", err)
	}
	return community, nil
}

// GetByID retrieves a community by ID
func (r *CommunityRepository) GetByID(ctx context.Context, id int64) (*models.Community, error) {
	sql, args, err := r.sb.Select(communityColumns).
		From("communities").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get community query: %w", err)
	}

	community, err := scanCommunity(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCommunityNotFound
		}
		logger.Error().Err(err).Int64("communityID", id).Msg("Error scanning community row")
		return nil, fmt.Errorf("error retrieving community: %w", err)
	}
	return community, nil
}

// GetAll retrieves active communities with optional search and pagination
func (r *CommunityRepository) GetAll(ctx context.Context, search *string, page, pageSize int) ([]models.Community, int64, error) {
	builder := r.sb.Select(
		"c.id", "c.name", "c.type", "c.description", "c.city", "c.state", "c.country",
		"c.latitude", "c.longitude", "c.is_active", "c.created_at", "c.updated_at",
		"COUNT(*) OVER() AS total_count",
		"(SELECT COUNT(*) FROM user_communities uc WHERE uc.community_id = c.id AND uc.is_active) AS member_count").
		From("communities c").
		Where(squirrel.Eq{"c.is_active": true})

	if search != nil && *search != "" {
		pattern := "%" + *search + "%"
		builder = builder.Where(squirrel.Or{
			squirrel.ILike{"c.name": pattern},
			squirrel.ILike{"c.city": pattern},
		})
	}

	offset := uint64((page - 1) * pageSize)
	sql, args, err := builder.
		OrderBy("c.name").
		Limit(uint64(pageSize)).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list communities query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing communities: %w", err)
	}
	defer rows.Close()

	communities := make([]models.Community, 0)
	var total int64
	for rows.Next() {
		var c models.Community
		err := rows.Scan(
			&c.ID, &c.Name, &c.Type, &c.Description, &c.City, &c.State, &c.Country,
			&c.Latitude, &c.Longitude, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
			&total, &c.MemberCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning community row: %w", err)
		}
		communities = append(communities, c)
	}
	return communities, total, rows.Err()
}

// ListPopular retrieves active communities ordered by member count
func (r *CommunityRepository) ListPopular(ctx context.Context, limit int) ([]models.Community, error) {
	sql, args, err := r.sb.Select(
		"c.id", "c.name", "c.type", "c.description", "c.city", "c.state", "c.country",
		"c.latitude", "c.longitude", "c.is_active", "c.created_at", "c.updated_at",
		"(SELECT COUNT(*) FROM user_communities uc WHERE uc.community_id = c.id AND uc.is_active) AS member_count").
		From("communities c").
		Where(squirrel.Eq{"c.is_active": true}).
		OrderBy("member_count DESC", "c.name").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list popular communities query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing popular communities: %w", err)
	}
	defer rows.Close()

	communities := make([]models.Community, 0)
	for rows.Next() {
		var c models.Community
		err := rows.Scan(
			&c.ID, &c.Name, &c.Type, &c.Description, &c.City, &c.State, &c.Country,
			&c.Latitude, &c.Longitude, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
			&c.MemberCount,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning community row: %w", err)
		}
		communities = append(communities, c)
	}
	return communities, rows.Err()
}

// ListActive retrieves every active community, used for proximity ranking
func (r *CommunityRepository) ListActive(ctx context.Context) ([]models.Community, error) {
	sql, args, err := r.sb.Select(
		"c.id", "c.name", "c.type", "c.description", "c.city", "c.state", "c.country",
		"c.latitude", "c.longitude", "c.is_active", "c.created_at", "c.updated_at",
		"(SELECT COUNT(*) FROM user_communities uc WHERE uc.community_id = c.id AND uc.is_active) AS member_count").
		From("communities c").
		Where(squirrel.Eq{"c.is_active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list active communities query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing active communities: %w", err)
	}
	defer rows.Close()

	communities := make([]models.Community, 0)
	for rows.Next() {
		var c models.Community
		err := rows.Scan(
			&c.ID, &c.Name, &c.Type, &c.Description, &c.City, &c.State, &c.Country,
			&c.Latitude, &c.Longitude, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
			&c.MemberCount,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning community row: %w", err)
		}
		communities = append(communities, c)
	}
	return communities, rows.Err()
}

// Attach adds the user to a community. The membership is idempotent;
// rejoining an existing membership reactivates it without touching the
// primary flag. A new membership becomes primary only when the user has
// no primary community yet.
func (r *CommunityRepository) Attach(ctx context.Context, userID, communityID int64) (*models.UserCommunity, error) {
	existing, err := r.getMembership(ctx, userID, communityID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if existing != nil {
		if !existing.IsActive {
			if err := r.setMembershipActive(ctx, existing.ID); err != nil {
				return nil, err
			}
			existing.IsActive = true
		}
		return existing, nil
	}

	hasPrimary, err := r.hasPrimaryMembership(ctx, userID)
	if err != nil {
		return nil, err
	}

	membership := &models.UserCommunity{
		UserID:      userID,
		CommunityID: communityID,
		IsPrimary:   !hasPrimary,
		IsActive:    true,
		JoinedAt:    time.Now(),
	}

	err = r.insertMembership(ctx, membership)
	// A concurrent attach can win the primary slot between the check
	// and the insert; the partial unique index on (user_id) WHERE
	// is_primary reports it and the membership demotes to secondary.
	if err != nil && membership.IsPrimary && dberrors.IsDuplicateConstraintError(err, "user_communities_primary_key") {
		membership.IsPrimary = false
		err = r.insertMembership(ctx, membership)
	}
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Int64("communityID", communityID).Msg("Error executing attach membership query")
		return nil, fmt.Errorf("error attaching community membership: %w", err)
	}
	return membership, nil
}

func (r *CommunityRepository) insertMembership(ctx context.Context, membership *models.UserCommunity) error {
	sql, args, err := r.sb.Insert("user_communities").
		Columns("user_id", "community_id", "is_primary", "is_active", "joined_at").
		Values(membership.UserID, membership.CommunityID, membership.IsPrimary, membership.IsActive, membership.JoinedAt).
		Suffix("ON CONFLICT (user_id, community_id) DO UPDATE SET is_active = true RETURNING id, is_primary").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build attach membership query: %w", err)
	}
	return r.db.QueryRow(ctx, sql, args...).Scan(&membership.ID, &membership.IsPrimary)
}

// Detach deactivates a user's community membership
func (r *CommunityRepository) Detach(ctx context.Context, userID, communityID int64) error {
	sql, args, err := r.sb.Update("user_communities").
		Set("is_active", false).
		Set("is_primary", false).
		Where(squirrel.Eq{"user_id": userID, "community_id": communityID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build detach membership query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error detaching community membership: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}

// SetPrimary makes the given membership the user's only primary one
func (r *CommunityRepository) SetPrimary(ctx context.Context, userID, communityID int64) error {
	clearSQL, clearArgs, err := r.sb.Update("user_communities").
		Set("is_primary", false).
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build clear primary query: %w", err)
	}
	if _, err := r.db.Exec(ctx, clearSQL, clearArgs...); err != nil {
		return fmt.Errorf("error clearing primary membership: %w", err)
	}

	sql, args, err := r.sb.Update("user_communities").
		Set("is_primary", true).
		Where(squirrel.Eq{"user_id": userID, "community_id": communityID, "is_active": true}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build set primary query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error setting primary membership: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}

// GetUserCommunities lists a user's active memberships with their communities
func (r *CommunityRepository) GetUserCommunities(ctx context.Context, userID int64) ([]models.UserCommunity, error) {
	sql, args, err := r.sb.Select(
		"uc.id", "uc.user_id", "uc.community_id", "uc.is_primary", "uc.is_active", "uc.joined_at",
		"c.id", "c.name", "c.type", "c.description", "c.city", "c.state", "c.country",
		"c.latitude", "c.longitude", "c.is_active", "c.created_at", "c.updated_at").
		From("user_communities uc").
		Join("communities c ON c.id = uc.community_id").
		Where(squirrel.Eq{"uc.user_id": userID, "uc.is_active": true}).
		OrderBy("uc.is_primary DESC", "uc.joined_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user communities query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing user communities: %w", err)
	}
	defer rows.Close()

	memberships := make([]models.UserCommunity, 0)
	for rows.Next() {
		var m models.UserCommunity
		var c models.Community
		err := rows.Scan(
			&m.ID, &m.UserID, &m.CommunityID, &m.IsPrimary, &m.IsActive, &m.JoinedAt,
			&c.ID, &c.Name, &c.Type, &c.Description, &c.City, &c.State, &c.Country,
			&c.Latitude, &c.Longitude, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning membership row: %w", err)
		}
		m.Community = &c
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

// GetPrimaryCommunity returns the user's primary community
func (r *CommunityRepository) GetPrimaryCommunity(ctx context.Context, userID int64) (*models.Community, error) {
	sql, args, err := r.sb.Select(
		"c.id", "c.name", "c.type", "c.description", "c.city", "c.state", "c.country",
		"c.latitude", "c.longitude", "c.is_active", "c.created_at", "c.updated_at").
		From("user_communities uc").
		Join("communities c ON c.id = uc.community_id").
		Where(squirrel.Eq{"uc.user_id": userID, "uc.is_primary": true, "uc.is_active": true}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get primary community query: %w", err)
	}

	community, err := scanCommunity(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNoPrimaryCommunity
		}
		return nil, fmt.Errorf("error retrieving primary community: %w", err)
	}
	return community, nil
}

// MemberCount returns the number of active members of a community
func (r *CommunityRepository) MemberCount(ctx context.Context, communityID int64) (int64, error) {
	sql, args, err := r.sb.Select("COUNT(*)").
		From("user_communities").
		Where(squirrel.Eq{"community_id": communityID, "is_active": true}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build member count query: %w", err)
	}

	var count int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting community members: %w", err)
	}
	return count, nil
}

func (r *CommunityRepository) getMembership(ctx context.Context, userID, communityID int64) (*models.UserCommunity, error) {
	sql, args, err := r.sb.Select("id", "user_id", "community_id", "is_primary", "is_active", "joined_at").
		From("user_communities").
		Where(squirrel.Eq{"user_id": userID, "community_id": communityID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get membership query: %w", err)
	}

	var m models.UserCommunity
	err = r.db.QueryRow(ctx, sql, args...).Scan(&m.ID, &m.UserID, &m.CommunityID, &m.IsPrimary, &m.IsActive, &m.JoinedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("error retrieving membership: %w", err)
	}
	return &m, nil
}

func (r *CommunityRepository) hasPrimaryMembership(ctx context.Context, userID int64) (bool, error) {
	sql, args, err := r.sb.Select("1").
		From("user_communities").
		Where(squirrel.Eq{"user_id": userID, "is_primary": true, "is_active": true}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build has primary query: %w", err)
	}

	var one int
	err = r.db.QueryRow(ctx, sql, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error checking primary membership: %w", err)
	}
	return true, nil
}

func (r *CommunityRepository) setMembershipActive(ctx context.Context, membershipID int64) error {
	sql, args, err := r.sb.Update("user_communities").
		Set("is_active", true).
		Where(squirrel.Eq{"id": membershipID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build reactivate membership query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error reactivating membership: %w", err)
	}
	return nil
}
