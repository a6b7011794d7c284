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

// haversineExpr is the great-circle distance in kilometers between the
// bound point and the event's coordinates. least() guards acos against
// floating point drift past 1.
const haversineExpr = `(6371 * acos(least(1.0,
	cos(radians(?)) * cos(radians(e.latitude)) * cos(radians(e.longitude) - radians(?)) +
	sin(radians(?)) * sin(radians(e.latitude)))))`

const eventColumns = `e.id, e.organizer_id, e.game_type_id, e.community_id, e.title, e.description,
	e.location_name, e.address, e.latitude, e.longitude, e.start_time, e.end_time,
	e.max_players, e.cost_per_player, e.skill_level_min, e.skill_level_max,
	e.waitlist_enabled, e.venue_booked, e.notes, e.status, e.created_at, e.updated_at`

// EventFilters narrows an event listing
type EventFilters struct {
	GameTypeID  *int64
	CommunityID *int64
	SkillLevel  *models.SkillLevel
	From        *time.Time
	To          *time.Time
	Status      *string
	OrganizerID *int64
	JoinedBy    *int64

	// Free-text venue search; matches the location name or address.
	Location *string

	// Proximity filter; all three must be set together.
	Latitude  *float64
	Longitude *float64
	RadiusKm  *float64
}

// GameEventRepository handles database operations for game events and
// their participants
type GameEventRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewGameEventRepository creates a new GameEventRepository
func NewGameEventRepository(db *pgxpool.Pool) *GameEventRepository {
	return &GameEventRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanEvent(row pgx.Row) (*models.GameEvent, error) {
	var e models.GameEvent
	err := row.Scan(
		&e.ID, &e.OrganizerID, &e.GameTypeID, &e.CommunityID, &e.Title, &e.Description,
		&e.LocationName, &e.Address, &e.Latitude, &e.Longitude, &e.StartTime, &e.EndTime,
		&e.MaxPlayers, &e.CostPerPlayer, &e.SkillLevelMin, &e.SkillLevelMax,
		&e.WaitlistEnabled, &e.VenueBooked, &e.Notes, &e.Status, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts a game event and attaches the organizer as a confirmed
// participant in the same transaction.
func (r *GameEventRepository) Create(ctx context.Context, tx pgx.Tx, event *models.GameEvent) error {
	now := time.Now()
	sql, args, err := r.sb.Insert("game_events").
		Columns("organizer_id", "game_type_id", "community_id", "title", "description",
			"location_name", "address", "latitude", "longitude", "start_time", "end_time",
			"max_players", "cost_per_player", "skill_level_min", "skill_level_max",
			"waitlist_enabled", "venue_booked", "notes", "status", "created_at", "updated_at").
		Values(event.OrganizerID, event.GameTypeID, event.CommunityID, event.Title, event.Description,
			event.LocationName, event.Address, event.Latitude, event.Longitude, event.StartTime, event.EndTime,
			event.MaxPlayers, event.CostPerPlayer, event.SkillLevelMin, event.SkillLevelMax,
			event.WaitlistEnabled, event.VenueBooked, event.Notes, models.EventStatusScheduled, now, now).
		Suffix("RETURNING id, status, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create event query: %w", err)
	}

	if err := tx.QueryRow(ctx, sql, args...).Scan(&event.ID, &event.Status, &event.CreatedAt, &event.UpdatedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrGameTypeNotFound
		}
		logger.Error().Err(err).Int64("organizerID", event.OrganizerID).Msg("Error executing create event query")
		return fmt.Errorf("error creating game event: %w", err)
	}

	return r.InsertParticipant(ctx, tx, event.ID, event.OrganizerID, false)
}

// GetByID retrieves an event with its game type, organizer and counts
func (r *GameEventRepository) GetByID(ctx context.Context, id int64) (*models.GameEvent, error) {
	sql, args, err := r.sb.Select(eventColumns).
		Column("t.id").Column("t.name").Column("t.slug").Column("t.description").Column("t.default_max_players").Column("t.created_at").
		Column("u.id").Column("u.first_name").Column("u.last_name").Column("u.profile_photo_url").Column("u.skill_level").
		Column("(SELECT COUNT(*) FROM game_event_participants p WHERE p.game_event_id = e.id AND NOT p.is_waiting) AS active_count").
		Column("(SELECT COUNT(*) FROM game_event_participants p WHERE p.game_event_id = e.id) AS participant_count").
		From("game_events e").
		Join("game_types t ON t.id = e.game_type_id").
		Join("users u ON u.id = e.organizer_id").
		Where(squirrel.Eq{"e.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get event query: %w", err)
	}

	var e models.GameEvent
	var gameType models.GameType
	var organizer models.User
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&e.ID, &e.OrganizerID, &e.GameTypeID, &e.CommunityID, &e.Title, &e.Description,
		&e.LocationName, &e.Address, &e.Latitude, &e.Longitude, &e.StartTime, &e.EndTime,
		&e.MaxPlayers, &e.CostPerPlayer, &e.SkillLevelMin, &e.SkillLevelMax,
		&e.WaitlistEnabled, &e.VenueBooked, &e.Notes, &e.Status, &e.CreatedAt, &e.UpdatedAt,
		&gameType.ID, &gameType.Name, &gameType.Slug, &gameType.Description, &gameType.DefaultMaxPlayers, &gameType.CreatedAt,
		&organizer.ID, &organizer.FirstName, &organizer.LastName, &organizer.ProfilePhotoURL, &organizer.SkillLevel,
		&e.ActiveCount, &e.ParticipantCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEventNotFound
		}
		logger.Error().Err(err).Int64("eventID", id).Msg("Error scanning event row")
		return nil, fmt.Errorf("error retrieving game event: %w", err)
	}
	e.GameType = &gameType
	e.Organizer = &organizer
	return &e, nil
}

// List retrieves events matching the filters with pagination. When a
// proximity filter is present, results carry DistanceKm and are ordered
// nearest first; otherwise they are ordered by start time.
func (r *GameEventRepository) List(ctx context.Context, filters EventFilters, page, pageSize int) ([]models.GameEvent, int64, error) {
	withDistance := filters.Latitude != nil && filters.Longitude != nil && filters.RadiusKm != nil

	builder := r.sb.Select(eventColumns).
		Column("t.id").Column("t.name").Column("t.slug").Column("t.description").Column("t.default_max_players").Column("t.created_at").
		Column("(SELECT COUNT(*) FROM game_event_participants p WHERE p.game_event_id = e.id AND NOT p.is_waiting) AS active_count").
		Column("(SELECT COUNT(*) FROM game_event_participants p WHERE p.game_event_id = e.id) AS participant_count").
		Column("COUNT(*) OVER() AS total_count").
		From("game_events e").
		Join("game_types t ON t.id = e.game_type_id")

	if withDistance {
		builder = builder.Column(squirrel.Alias(
			squirrel.Expr(haversineExpr, *filters.Latitude, *filters.Longitude, *filters.Latitude),
			"distance_km"))
	} else {
		builder = builder.Column("NULL::float8 AS distance_km")
	}

	if filters.GameTypeID != nil {
		builder = builder.Where(squirrel.Eq{"e.game_type_id": *filters.GameTypeID})
	}
	if filters.CommunityID != nil {
		builder = builder.Where(squirrel.Eq{"e.community_id": *filters.CommunityID})
	}
	if filters.SkillLevel != nil {
		builder = builder.Where(squirrel.Or{
			squirrel.Eq{"e.skill_level_min": nil},
			squirrel.LtOrEq{"e.skill_level_min": *filters.SkillLevel},
		}).Where(squirrel.Or{
			squirrel.Eq{"e.skill_level_max": nil},
			squirrel.GtOrEq{"e.skill_level_max": *filters.SkillLevel},
		})
	}
	if filters.From != nil {
		builder = builder.Where(squirrel.GtOrEq{"e.start_time": *filters.From})
	}
	if filters.To != nil {
		builder = builder.Where(squirrel.LtOrEq{"e.start_time": *filters.To})
	}
	if filters.Status != nil {
		builder = builder.Where(squirrel.Eq{"e.status": *filters.Status})
	}
	if filters.OrganizerID != nil {
		builder = builder.Where(squirrel.Eq{"e.organizer_id": *filters.OrganizerID})
	}
	if filters.Location != nil && *filters.Location != "" {
		pattern := "%" + *filters.Location + "%"
		builder = builder.Where(squirrel.Or{
			squirrel.ILike{"e.location_name": pattern},
			squirrel.ILike{"e.address": pattern},
		})
	}
	if filters.JoinedBy != nil {
		builder = builder.Where(squirrel.Expr(
			"EXISTS (SELECT 1 FROM game_event_participants p WHERE p.game_event_id = e.id AND p.user_id = ?)",
			*filters.JoinedBy))
	}
	if withDistance {
		builder = builder.
			Where(squirrel.NotEq{"e.latitude": nil}).
			Where(squirrel.Expr(haversineExpr+" <= ?",
				*filters.Latitude, *filters.Longitude, *filters.Latitude, *filters.RadiusKm))
	}

	if withDistance {
		builder = builder.OrderBy("distance_km", "e.start_time")
	} else {
		builder = builder.OrderBy("e.start_time")
	}

	offset := uint64((page - 1) * pageSize)
	sql, args, err := builder.Limit(uint64(pageSize)).Offset(offset).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list events query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list events query")
		return nil, 0, fmt.Errorf("error listing game events: %w", err)
	}
	defer rows.Close()

	events := make([]models.GameEvent, 0)
	var total int64
	for rows.Next() {
		var e models.GameEvent
		var gameType models.GameType
		err := rows.Scan(
			&e.ID, &e.OrganizerID, &e.GameTypeID, &e.CommunityID, &e.Title, &e.Description,
			&e.LocationName, &e.Address, &e.Latitude, &e.Longitude, &e.StartTime, &e.EndTime,
			&e.MaxPlayers, &e.CostPerPlayer, &e.SkillLevelMin, &e.SkillLevelMax,
			&e.WaitlistEnabled, &e.VenueBooked, &e.Notes, &e.Status, &e.CreatedAt, &e.UpdatedAt,
			&gameType.ID, &gameType.Name, &gameType.Slug, &gameType.Description, &gameType.DefaultMaxPlayers, &gameType.CreatedAt,
			&e.ActiveCount, &e.ParticipantCount, &total, &e.DistanceKm,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning event row: %w", err)
		}
		e.GameType = &gameType
		events = append(events, e)
	}
	return events, total, rows.Err()
}

// Update applies non-nil fields to an event
func (r *GameEventRepository) Update(ctx context.Context, event *models.GameEvent) error {
	sql, args, err := r.sb.Update("game_events").
		Set("title", event.Title).
		Set("description", event.Description).
		Set("location_name", event.LocationName).
		Set("address", event.Address).
		Set("latitude", event.Latitude).
		Set("longitude", event.Longitude).
		Set("start_time", event.StartTime).
		Set("end_time", event.EndTime).
		Set("max_players", event.MaxPlayers).
		Set("cost_per_player", event.CostPerPlayer).
		Set("skill_level_min", event.SkillLevelMin).
		Set("skill_level_max", event.SkillLevelMax).
		Set("waitlist_enabled", event.WaitlistEnabled).
		Set("venue_booked", event.VenueBooked).
		Set("notes", event.Notes).
		Set("status", event.Status).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": event.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update event query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("eventID", event.ID).Msg("Error executing update event query")
		return fmt.Errorf("error updating game event: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrEventNotFound
	}
	return nil
}

// Delete removes an event and its participants
func (r *GameEventRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("game_events").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete event query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting game event: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrEventNotFound
	}
	return nil
}

// GetForUpdate reads an event's join-relevant state under a row lock so
// the capacity decision holds until the transaction commits.
func (r *GameEventRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*models.GameEvent, error) {
	sql, args, err := r.sb.Select("id", "organizer_id", "max_players", "waitlist_enabled", "status").
		From("game_events").
		Where(squirrel.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get event for update query: %w", err)
	}

	var e models.GameEvent
	err = tx.QueryRow(ctx, sql, args...).Scan(&e.ID, &e.OrganizerID, &e.MaxPlayers, &e.WaitlistEnabled, &e.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, fmt.Errorf("error locking game event: %w", err)
	}
	return &e, nil
}

// IsParticipant reports whether the user has any participant row for the
// event, waitlisted or confirmed.
func (r *GameEventRepository) IsParticipant(ctx context.Context, tx pgx.Tx, eventID, userID int64) (bool, error) {
	sql, args, err := r.sb.Select("1").
		From("game_event_participants").
		Where(squirrel.Eq{"game_event_id": eventID, "user_id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build is participant query: %w", err)
	}

	var one int
	err = tx.QueryRow(ctx, sql, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error checking participation: %w", err)
	}
	return true, nil
}

// CountActive counts confirmed participants within the transaction
func (r *GameEventRepository) CountActive(ctx context.Context, tx pgx.Tx, eventID int64) (int, error) {
	sql, args, err := r.sb.Select("COUNT(*)").
		From("game_event_participants").
		Where(squirrel.Eq{"game_event_id": eventID, "is_waiting": false}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count active query: %w", err)
	}

	var count int
	if err := tx.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting active participants: %w", err)
	}
	return count, nil
}

// InsertParticipant attaches a user to an event. The unique constraint
// on (game_event_id, user_id) backs up the duplicate check.
func (r *GameEventRepository) InsertParticipant(ctx context.Context, tx pgx.Tx, eventID, userID int64, isWaiting bool) error {
	sql, args, err := r.sb.Insert("game_event_participants").
		Columns("game_event_id", "user_id", "is_waiting", "joined_at").
		Values(eventID, userID, isWaiting, time.Now()).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert participant query: %w", err)
	}

	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "game_event_participants_event_user_key") {
			return apperrors.ErrAlreadyJoined
		}
		logger.Error().Err(err).Int64("eventID", eventID).Int64("userID", userID).Msg("Error executing insert participant query")
		return fmt.Errorf("error inserting participant: %w", err)
	}
	return nil
}

// RemoveParticipant detaches a user from an event regardless of their
// waitlist state.
func (r *GameEventRepository) RemoveParticipant(ctx context.Context, eventID, userID int64) error {
	sql, args, err := r.sb.Delete("game_event_participants").
		Where(squirrel.Eq{"game_event_id": eventID, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build remove participant query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error removing participant: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotParticipating
	}
	return nil
}

// GetParticipation returns the user's participant row for the event
func (r *GameEventRepository) GetParticipation(ctx context.Context, eventID, userID int64) (*models.GameEventParticipant, error) {
	sql, args, err := r.sb.Select("id", "game_event_id", "user_id", "is_waiting", "joined_at").
		From("game_event_participants").
		Where(squirrel.Eq{"game_event_id": eventID, "user_id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get participation query: %w", err)
	}

	var p models.GameEventParticipant
	err = r.db.QueryRow(ctx, sql, args...).Scan(&p.ID, &p.GameEventID, &p.UserID, &p.IsWaiting, &p.JoinedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotParticipating
		}
		return nil, fmt.Errorf("error retrieving participation: %w", err)
	}
	return &p, nil
}

// ListParticipants lists an event's participants with user details,
// confirmed players first.
func (r *GameEventRepository) ListParticipants(ctx context.Context, eventID int64) ([]models.GameEventParticipant, error) {
	sql, args, err := r.sb.Select(
		"p.id", "p.game_event_id", "p.user_id", "p.is_waiting", "p.joined_at",
		"u.id", "u.first_name", "u.last_name", "u.profile_photo_url", "u.skill_level").
		From("game_event_participants p").
		Join("users u ON u.id = p.user_id").
		Where(squirrel.Eq{"p.game_event_id": eventID}).
		OrderBy("p.is_waiting", "p.joined_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list participants query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing participants: %w", err)
	}
	defer rows.Close()

	participants := make([]models.GameEventParticipant, 0)
	for rows.Next() {
		var p models.GameEventParticipant
		var u models.User
		err := rows.Scan(
			&p.ID, &p.GameEventID, &p.UserID, &p.IsWaiting, &p.JoinedAt,
			&u.ID, &u.FirstName, &u.LastName, &u.ProfilePhotoURL, &u.SkillLevel,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning participant row: %w", err)
		}
		p.User = &u
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

// UserStats aggregates a user's event participation
func (r *GameEventRepository) UserStats(ctx context.Context, userID int64) (organized, joined, upcoming int64, err error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM game_events WHERE organizer_id = $1),
			(SELECT COUNT(*) FROM game_event_participants WHERE user_id = $1 AND NOT is_waiting),
			(SELECT COUNT(*) FROM game_event_participants p
				JOIN game_events e ON e.id = p.game_event_id
				WHERE p.user_id = $1 AND NOT p.is_waiting
					AND e.status = 'scheduled' AND e.start_time > NOW())
	`
	if err := r.db.QueryRow(ctx, query, userID).Scan(&organized, &joined, &upcoming); err != nil {
		return 0, 0, 0, fmt.Errorf("error aggregating user event stats: %w", err)
	}
	return organized, joined, upcoming, nil
}

// CountUpcomingByCommunity counts a community's scheduled future events
func (r *GameEventRepository) CountUpcomingByCommunity(ctx context.Context, communityID int64) (int64, error) {
	sql, args, err := r.sb.Select("COUNT(*)").
		From("game_events").
		Where(squirrel.Eq{"community_id": communityID, "status": models.EventStatusScheduled}).
		Where(squirrel.Expr("start_time > NOW()")).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count upcoming events query: %w", err)
	}

	var count int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting upcoming events: %w", err)
	}
	return count, nil
}
