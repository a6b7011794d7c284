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

// DiscussionRepository handles database operations for discussions,
// comments and likes
type DiscussionRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewDiscussionRepository creates a new DiscussionRepository
func NewDiscussionRepository(db *pgxpool.Pool) *DiscussionRepository {
	return &DiscussionRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new discussion
func (r *DiscussionRepository) Create(ctx context.Context, discussion *models.Discussion) error {
	now := time.Now()
	sql, args, err := r.sb.Insert("discussions").
		Columns("community_id", "game_type_id", "author_id", "title", "body", "created_at", "updated_at").
		Values(discussion.CommunityID, discussion.GameTypeID, discussion.AuthorID, discussion.Title, discussion.Body, now, now).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create discussion query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&discussion.ID, &discussion.CreatedAt, &discussion.UpdatedAt); err != nil {
		if dberrors.IsForeignKeyViolationConstraint(err, "discussions_game_type_id_fkey") {
			return apperrors.ErrGameTypeNotFound
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrCommunityNotFound
		}
		logger.Error().Err(err).Int64("communityID", discussion.CommunityID).Msg("Error executing create discussion query")
		return fmt.Errorf("error creating discussion: %w", err)
	}
	return nil
}

// discussionSelect builds the shared discussion projection. viewerID
// drives the liked-by-me column.
func (r *DiscussionRepository) discussionSelect(viewerID int64) squirrel.SelectBuilder {
	return r.sb.Select(
		"d.id", "d.community_id", "d.game_type_id", "d.author_id", "d.title", "d.body", "d.created_at", "d.updated_at",
		"u.id", "u.first_name", "u.last_name", "u.profile_photo_url").
		Column("(SELECT COUNT(*) FROM comments cm WHERE cm.discussion_id = d.id) AS comment_count").
		Column("(SELECT COUNT(*) FROM likes l WHERE l.discussion_id = d.id) AS like_count").
		Column(squirrel.Alias(
			squirrel.Expr("EXISTS (SELECT 1 FROM likes l WHERE l.discussion_id = d.id AND l.user_id = ?)", viewerID),
			"liked_by_me")).
		From("discussions d").
		Join("users u ON u.id = d.author_id")
}

func scanDiscussion(row pgx.Row) (*models.Discussion, error) {
	var d models.Discussion
	var author models.User
	err := row.Scan(
		&d.ID, &d.CommunityID, &d.GameTypeID, &d.AuthorID, &d.Title, &d.Body, &d.CreatedAt, &d.UpdatedAt,
		&author.ID, &author.FirstName, &author.LastName, &author.ProfilePhotoURL,
		&d.CommentCount, &d.LikeCount, &d.LikedByMe,
	)
	if err != nil {
		return nil, err
	}
	d.Author = &author
	return &d, nil
}

// GetByID retrieves a discussion with its author and counts
func (r *DiscussionRepository) GetByID(ctx context.Context, id, viewerID int64) (*models.Discussion, error) {
	sql, args, err := r.discussionSelect(viewerID).
		Where(squirrel.Eq{"d.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get discussion query: %w", err)
	}

	discussion, err := scanDiscussion(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrDiscussionNotFound
		}
		logger.Error().Err(err).Int64("discussionID", id).Msg("Error scanning discussion row")
		return nil, fmt.Errorf("error retrieving discussion: %w", err)
	}
	return discussion, nil
}

// ListByCommunity retrieves a community's discussions newest first,
// optionally narrowed to one game type.
func (r *DiscussionRepository) ListByCommunity(ctx context.Context, communityID, viewerID int64, gameTypeID *int64, page, pageSize int) ([]models.Discussion, int64, error) {
	offset := uint64((page - 1) * pageSize)
	builder := r.discussionSelect(viewerID).
		Column("COUNT(*) OVER() AS total_count").
		Where(squirrel.Eq{"d.community_id": communityID})
	if gameTypeID != nil {
		builder = builder.Where(squirrel.Eq{"d.game_type_id": *gameTypeID})
	}
	sql, args, err := builder.
		OrderBy("d.created_at DESC").
		Limit(uint64(pageSize)).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list discussions query: %w", err)
	}

	return r.queryDiscussionList(ctx, sql, args)
}

// ListTrending ranks recent discussions by engagement. Likes and
// comments from the window weigh a thread up; older activity ages out.
func (r *DiscussionRepository) ListTrending(ctx context.Context, viewerID int64, since time.Time, page, pageSize int) ([]models.Discussion, int64, error) {
	offset := uint64((page - 1) * pageSize)
	sql, args, err := r.discussionSelect(viewerID).
		Column("COUNT(*) OVER() AS total_count").
		Column(squirrel.Alias(squirrel.Expr(
			`((SELECT COUNT(*) FROM likes l WHERE l.discussion_id = d.id AND l.created_at >= ?) * 2 +
			  (SELECT COUNT(*) FROM comments cm WHERE cm.discussion_id = d.id AND cm.created_at >= ?))`,
			since, since), "trend_score")).
		Where(squirrel.GtOrEq{"d.created_at": since}).
		OrderBy("trend_score DESC", "d.created_at DESC").
		Limit(uint64(pageSize)).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build trending discussions query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing trending discussions: %w", err)
	}
	defer rows.Close()

	discussions := make([]models.Discussion, 0)
	var total int64
	for rows.Next() {
		var d models.Discussion
		var author models.User
		var trendScore int64
		err := rows.Scan(
			&d.ID, &d.CommunityID, &d.GameTypeID, &d.AuthorID, &d.Title, &d.Body, &d.CreatedAt, &d.UpdatedAt,
			&author.ID, &author.FirstName, &author.LastName, &author.ProfilePhotoURL,
			&d.CommentCount, &d.LikeCount, &d.LikedByMe, &total, &trendScore,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning discussion row: %w", err)
		}
		d.Author = &author
		discussions = append(discussions, d)
	}
	return discussions, total, rows.Err()
}

func (r *DiscussionRepository) queryDiscussionList(ctx context.Context, sql string, args []interface{}) ([]models.Discussion, int64, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing discussions: %w", err)
	}
	defer rows.Close()

	discussions := make([]models.Discussion, 0)
	var total int64
	for rows.Next() {
		var d models.Discussion
		var author models.User
		err := rows.Scan(
			&d.ID, &d.CommunityID, &d.GameTypeID, &d.AuthorID, &d.Title, &d.Body, &d.CreatedAt, &d.UpdatedAt,
			&author.ID, &author.FirstName, &author.LastName, &author.ProfilePhotoURL,
			&d.CommentCount, &d.LikeCount, &d.LikedByMe, &total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning discussion row: %w", err)
		}
		d.Author = &author
		discussions = append(discussions, d)
	}
	return discussions, total, rows.Err()
}

// Update edits a discussion's title and body
func (r *DiscussionRepository) Update(ctx context.Context, id int64, title, body string) error {
	sql, args, err := r.sb.Update("discussions").
		Set("title", title).
		Set("body", body).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update discussion query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating discussion: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrDiscussionNotFound
	}
	return nil
}

// Delete removes a discussion with its comments and likes
func (r *DiscussionRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("discussions").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete discussion query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting discussion: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrDiscussionNotFound
	}
	return nil
}

// CreateComment inserts a comment on a discussion
func (r *DiscussionRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	sql, args, err := r.sb.Insert("comments").
		Columns("discussion_id", "author_id", "body", "created_at").
		Values(comment.DiscussionID, comment.AuthorID, comment.Body, time.Now()).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create comment query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&comment.ID, &comment.CreatedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrDiscussionNotFound
		}
		logger.Error().Err(err).Int64("discussionID", comment.DiscussionID).Msg("Error executing create comment query")
		return fmt.Errorf("error creating comment: %w", err)
	}
	return nil
}

// ListComments retrieves a discussion's comments oldest first
func (r *DiscussionRepository) ListComments(ctx context.Context, discussionID int64, page, pageSize int) ([]models.Comment, int64, error) {
	offset := uint64((page - 1) * pageSize)
	sql, args, err := r.sb.Select(
		"cm.id", "cm.discussion_id", "cm.author_id", "cm.body", "cm.created_at",
		"u.id", "u.first_name", "u.last_name", "u.profile_photo_url",
		"COUNT(*) OVER() AS total_count").
		From("comments cm").
		Join("users u ON u.id = cm.author_id").
		Where(squirrel.Eq{"cm.discussion_id": discussionID}).
		OrderBy("cm.created_at").
		Limit(uint64(pageSize)).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list comments query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing comments: %w", err)
	}
	defer rows.Close()

	comments := make([]models.Comment, 0)
	var total int64
	for rows.Next() {
		var cm models.Comment
		var author models.User
		err := rows.Scan(
			&cm.ID, &cm.DiscussionID, &cm.AuthorID, &cm.Body, &cm.CreatedAt,
			&author.ID, &author.FirstName, &author.LastName, &author.ProfilePhotoURL,
			&total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning comment row: %w", err)
		}
		cm.Author = &author
		comments = append(comments, cm)
	}
	return comments, total, rows.Err()
}

// DeleteComment removes a comment
func (r *DiscussionRepository) DeleteComment(ctx context.Context, commentID int64) error {
	sql, args, err := r.sb.Delete("comments").
		Where(squirrel.Eq{"id": commentID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete comment query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting comment: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}

// GetComment retrieves a single comment
func (r *DiscussionRepository) GetComment(ctx context.Context, commentID int64) (*models.Comment, error) {
	sql, args, err := r.sb.Select("id", "discussion_id", "author_id", "body", "created_at").
		From("comments").
		Where(squirrel.Eq{"id": commentID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get comment query: %w", err)
	}

	var cm models.Comment
	err = r.db.QueryRow(ctx, sql, args...).Scan(&cm.ID, &cm.DiscussionID, &cm.AuthorID, &cm.Body, &cm.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error retrieving comment: %w", err)
	}
	return &cm, nil
}

// AddLike records a like; duplicate likes surface as ErrAlreadyLiked
func (r *DiscussionRepository) AddLike(ctx context.Context, discussionID, userID int64) error {
	sql, args, err := r.sb.Insert("likes").
		Columns("discussion_id", "user_id", "created_at").
		Values(discussionID, userID, time.Now()).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build add like query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "likes_discussion_user_key") {
			return apperrors.ErrAlreadyLiked
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrDiscussionNotFound
		}
		return fmt.Errorf("error adding like: %w", err)
	}
	return nil
}

// RemoveLike deletes a like; absent likes surface as ErrNotLiked
func (r *DiscussionRepository) RemoveLike(ctx context.Context, discussionID, userID int64) error {
	sql, args, err := r.sb.Delete("likes").
		Where(squirrel.Eq{"discussion_id": discussionID, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build remove like query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error removing like: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotLiked
	}
	return nil
}

// LikeCount counts a discussion's likes
func (r *DiscussionRepository) LikeCount(ctx context.Context, discussionID int64) (int64, error) {
	sql, args, err := r.sb.Select("COUNT(*)").
		From("likes").
		Where(squirrel.Eq{"discussion_id": discussionID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build like count query: %w", err)
	}

	var count int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting likes: %w", err)
	}
	return count, nil
}

// CountByCommunity counts a community's discussions
func (r *DiscussionRepository) CountByCommunity(ctx context.Context, communityID int64) (int64, error) {
	sql, args, err := r.sb.Select("COUNT(*)").
		From("discussions").
		Where(squirrel.Eq{"community_id": communityID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count discussions query: %w", err)
	}

	var count int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting discussions: %w", err)
	}
	return count, nil
}
