package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func pgError(code, constraint string) error {
	return &pgconn.PgError{Code: code, ConstraintName: constraint}
}

func TestIsDuplicateConstraintError(t *testing.T) {
	err := pgError("23505", "user_communities_primary_key")

	assert.True(t, IsDuplicateConstraintError(err, "user_communities_primary_key"))
	assert.False(t, IsDuplicateConstraintError(err, "users_email_key"))
	assert.False(t, IsDuplicateConstraintError(errors.New("boom"), "user_communities_primary_key"))
}

func TestIsDuplicateConstraintErrorUnwraps(t *testing.T) {
	wrapped := fmt.Errorf("insert membership: %w", pgError("23505", "user_communities_primary_key"))
	assert.True(t, IsDuplicateConstraintError(wrapped, "user_communities_primary_key"))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(pgError("23505", "")))
	assert.False(t, IsUniqueViolation(pgError("23503", "")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestIsForeignKeyViolationConstraint(t *testing.T) {
	err := pgError("23503", "discussions_game_type_id_fkey")

	assert.True(t, IsForeignKeyViolation(err))
	assert.True(t, IsForeignKeyViolationConstraint(err, "discussions_game_type_id_fkey"))
	assert.False(t, IsForeignKeyViolationConstraint(err, "discussions_community_id_fkey"))
	assert.False(t, IsForeignKeyViolationConstraint(pgError("23505", "discussions_game_type_id_fkey"), "discussions_game_type_id_fkey"))
}
