package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kickabout/kickabout/internal/app/models"
)

func strPtr(s string) *string { return &s }

func TestFromUserMapsLocationFields(t *testing.T) {
	user := &models.User{
		ID:               7,
		Email:            "ari@example.com",
		FirstName:        "Ari",
		LastName:         "Okafor",
		City:             strPtr("London"),
		CommunityName:    strPtr("Soho"),
		Borough:          strPtr("Westminster"),
		LocationVerified: true,
	}

	resp := FromUser(user)

	require.NotNil(t, resp.CommunityName)
	assert.Equal(t, "Soho", *resp.CommunityName)
	require.NotNil(t, resp.Borough)
	assert.Equal(t, "Westminster", *resp.Borough)
	assert.True(t, resp.LocationVerified)
}

func TestFromUserWithoutLocation(t *testing.T) {
	resp := FromUser(&models.User{ID: 8, Email: "no-location@example.com"})

	assert.Nil(t, resp.CommunityName)
	assert.Nil(t, resp.Borough)
	assert.False(t, resp.LocationVerified)
}
