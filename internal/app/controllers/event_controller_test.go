package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kickabout/kickabout/internal/app/models"
)

func intPtr(i int) *int { return &i }

func testContextWithQuery(t *testing.T, query string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	ctx.Request = httptest.NewRequest(http.MethodGet, "/events?"+query, nil)
	return ctx
}

func TestParseEventFilters(t *testing.T) {
	ctx := testContextWithQuery(t, "gameTypeId=3&communityId=7&skillLevel=2&status=scheduled&location=Hackney+Marshes&from=2026-09-01T18:00:00Z&to=2026-09-08T18:00:00Z")

	filters := parseEventFilters(ctx)

	require.NotNil(t, filters.GameTypeID)
	assert.Equal(t, int64(3), *filters.GameTypeID)
	require.NotNil(t, filters.CommunityID)
	assert.Equal(t, int64(7), *filters.CommunityID)
	require.NotNil(t, filters.SkillLevel)
	assert.Equal(t, models.SkillLevel(2), *filters.SkillLevel)
	require.NotNil(t, filters.Status)
	assert.Equal(t, "scheduled", *filters.Status)
	require.NotNil(t, filters.Location)
	assert.Equal(t, "Hackney Marshes", *filters.Location)
	require.NotNil(t, filters.From)
	assert.Equal(t, time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC), filters.From.UTC())
	require.NotNil(t, filters.To)
}

func TestParseEventFiltersIgnoresInvalidValues(t *testing.T) {
	ctx := testContextWithQuery(t, "gameTypeId=abc&skillLevel=9&from=yesterday")

	filters := parseEventFilters(ctx)

	assert.Nil(t, filters.GameTypeID)
	assert.Nil(t, filters.SkillLevel)
	assert.Nil(t, filters.From)
	assert.Nil(t, filters.Location)
}

func TestToEventResponseUncappedGame(t *testing.T) {
	event := &models.GameEvent{
		ID:               1,
		Title:            "Sunday kickabout",
		Status:           models.EventStatusScheduled,
		ActiveCount:      23,
		ParticipantCount: 23,
	}

	resp := toEventResponse(event)

	assert.Nil(t, resp.MaxPlayers)
	assert.Nil(t, resp.SpotsLeft)
	assert.False(t, resp.IsFull)
}

func TestToEventResponseSpotsLeft(t *testing.T) {
	event := &models.GameEvent{
		ID:               2,
		Title:            "Fives at the cage",
		Status:           models.EventStatusScheduled,
		MaxPlayers:       intPtr(10),
		ActiveCount:      7,
		ParticipantCount: 7,
	}

	resp := toEventResponse(event)

	require.NotNil(t, resp.SpotsLeft)
	assert.Equal(t, 3, *resp.SpotsLeft)
	assert.False(t, resp.IsFull)

	event.ActiveCount = 12
	event.ParticipantCount = 12
	resp = toEventResponse(event)
	require.NotNil(t, resp.SpotsLeft)
	assert.Equal(t, 0, *resp.SpotsLeft)
	assert.True(t, resp.IsFull)
}
