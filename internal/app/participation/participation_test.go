package participation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kickabout/kickabout/internal/pkg/apperrors"
)

func intPtr(n int) *int { return &n }

func TestDecideJoinTakesSpotWhenRoom(t *testing.T) {
	outcome, err := DecideJoin(EventState{
		MaxPlayers:  intPtr(10),
		ActiveCount: 4,
		Status:      "scheduled",
	})
	require.NoError(t, err)
	assert.Equal(t, Joined, outcome)
}

func TestDecideJoinUncappedEventAlwaysHasRoom(t *testing.T) {
	// No player cap set: the capacity check never applies.
	outcome, err := DecideJoin(EventState{
		ActiveCount: 0,
		Status:      "scheduled",
	})
	require.NoError(t, err)
	assert.Equal(t, Joined, outcome)

	outcome, err = DecideJoin(EventState{
		ActiveCount: 200,
		Status:      "scheduled",
	})
	require.NoError(t, err)
	assert.Equal(t, Joined, outcome)
}

func TestDecideJoinRejectsDuplicate(t *testing.T) {
	_, err := DecideJoin(EventState{
		MaxPlayers:    intPtr(10),
		ActiveCount:   4,
		Status:        "scheduled",
		AlreadyJoined: true,
	})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyJoined)
}

func TestDecideJoinDuplicateBeatsCapacity(t *testing.T) {
	// A player already on the waitlist of a full event gets the
	// duplicate error, not the full error.
	_, err := DecideJoin(EventState{
		MaxPlayers:      intPtr(10),
		ActiveCount:     10,
		WaitlistEnabled: true,
		Status:          "scheduled",
		AlreadyJoined:   true,
	})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyJoined)
}

func TestDecideJoinWaitlistsWhenFull(t *testing.T) {
	outcome, err := DecideJoin(EventState{
		MaxPlayers:      intPtr(10),
		ActiveCount:     10,
		WaitlistEnabled: true,
		Status:          "scheduled",
	})
	require.NoError(t, err)
	assert.Equal(t, Waiting, outcome)
}

func TestDecideJoinRejectsWhenFullWithoutWaitlist(t *testing.T) {
	_, err := DecideJoin(EventState{
		MaxPlayers:  intPtr(10),
		ActiveCount: 10,
		Status:      "scheduled",
	})
	assert.ErrorIs(t, err, apperrors.ErrEventFull)
}

func TestDecideJoinLastSpotIsConfirmed(t *testing.T) {
	outcome, err := DecideJoin(EventState{
		MaxPlayers:      intPtr(10),
		ActiveCount:     9,
		WaitlistEnabled: true,
		Status:          "scheduled",
	})
	require.NoError(t, err)
	assert.Equal(t, Joined, outcome)
}

func TestDecideJoinRejectsCancelledEvent(t *testing.T) {
	_, err := DecideJoin(EventState{
		MaxPlayers:  intPtr(10),
		ActiveCount: 2,
		Status:      "cancelled",
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
}

func TestCountParticipantsModes(t *testing.T) {
	// Two confirmed players, one waitlisted.
	rows := []bool{false, true, false}

	assert.Equal(t, 2, CountParticipants(rows, CountActiveOnly))
	assert.Equal(t, 3, CountParticipants(rows, CountAllRows))
}

func TestIsFullUsesAllRowsForDisplay(t *testing.T) {
	// Waitlisted rows push the display count past capacity; the game
	// still reads as full.
	rows := []bool{false, false, true}
	assert.True(t, IsFull(CountParticipants(rows, CountAllRows), intPtr(2)))
	assert.True(t, IsFull(CountParticipants(rows, CountActiveOnly), intPtr(2)))

	open := []bool{false, true}
	assert.False(t, IsFull(CountParticipants(open, CountActiveOnly), intPtr(2)))
	assert.True(t, IsFull(CountParticipants(open, CountAllRows), intPtr(2)))
}

func TestIsFullUncappedNeverFull(t *testing.T) {
	assert.False(t, IsFull(0, nil))
	assert.False(t, IsFull(500, nil))
}
