package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kickabout/kickabout/internal/app/models"
)

func int64Ptr(i int64) *int64 { return &i }

func TestFromDiscussionMapsGameType(t *testing.T) {
	discussion := &models.Discussion{
		ID:          1,
		CommunityID: 4,
		GameTypeID:  int64Ptr(2),
		Title:       "Keeper rotation for Sunday fives",
		Body:        "Who fancies going in goal first half?",
	}

	resp := FromDiscussion(discussion)

	require.NotNil(t, resp.GameTypeID)
	assert.Equal(t, int64(2), *resp.GameTypeID)
}

func TestFromDiscussionWithoutGameType(t *testing.T) {
	resp := FromDiscussion(&models.Discussion{ID: 2, CommunityID: 4, Title: "Pitch fund", Body: "Subs due"})

	assert.Nil(t, resp.GameTypeID)
}
