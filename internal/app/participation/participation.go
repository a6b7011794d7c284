// Package participation holds the join/leave decision rules for game
// events, kept free of storage concerns so they can be tested directly.
package participation

import (
	"github.com/kickabout/kickabout/internal/pkg/apperrors"
)

// CountMode selects which participant rows count toward a total.
type CountMode int

const (
	// CountActiveOnly counts confirmed players only; waitlisted rows are
	// excluded. Used for the capacity check at join time.
	CountActiveOnly CountMode = iota
	// CountAllRows counts every participant row including the waitlist.
	// Used for display totals.
	CountAllRows
)

// Outcome is the result of a successful join decision.
type Outcome int

const (
	// Joined means the player takes a confirmed spot.
	Joined Outcome = iota
	// Waiting means the player goes on the waitlist.
	Waiting
)

// EventState is the snapshot of an event needed to decide a join. The
// caller is responsible for reading it under a lock so the decision
// stays valid until the insert commits. A nil MaxPlayers means the
// organizer set no cap.
type EventState struct {
	MaxPlayers      *int
	ActiveCount     int
	WaitlistEnabled bool
	Status          string
	AlreadyJoined   bool
}

// DecideJoin applies the join rules to an event snapshot. Players who are
// already attached (confirmed or waitlisted) are rejected; full events
// either waitlist the player or reject them depending on the event's
// waitlist flag. Events without a player cap are never full.
func DecideJoin(state EventState) (Outcome, error) {
	if state.AlreadyJoined {
		return 0, apperrors.ErrAlreadyJoined
	}
	if state.Status != "" && state.Status != "scheduled" {
		return 0, apperrors.NewBadRequestError("This game is no longer open for players")
	}
	if state.MaxPlayers != nil && state.ActiveCount >= *state.MaxPlayers {
		if state.WaitlistEnabled {
			return Waiting, nil
		}
		return 0, apperrors.ErrEventFull
	}
	return Joined, nil
}

// CountParticipants totals waiting flags under the given mode.
func CountParticipants(isWaiting []bool, mode CountMode) int {
	if mode == CountAllRows {
		return len(isWaiting)
	}
	active := 0
	for _, waiting := range isWaiting {
		if !waiting {
			active++
		}
	}
	return active
}

// IsFull reports whether the event shows as full for the given counts.
// Display uses all rows so a full game with a queue reads as full.
// Uncapped events never read as full.
func IsFull(count int, maxPlayers *int) bool {
	return maxPlayers != nil && count >= *maxPlayers
}
