package models

import "time"

// GameStatus is the lifecycle state of a game.
type GameStatus string

const (
	GameStatusScheduled GameStatus = "scheduled"
	GameStatusPlayed    GameStatus = "played"
	GameStatusCancelled GameStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s GameStatus) Valid() bool {
	switch s {
	case GameStatusScheduled, GameStatusPlayed, GameStatusCancelled:
		return true
	}
	return false
}

// Game represents a scheduled event members can RSVP to.
type Game struct {
	// ID is the unique identifier for the game (UUID format).
	ID string

	// Date is the calendar date of the game, at UTC midnight.
	Date time.Time

	// Time is the kick-off time as HH:MM, local to the club.
	Time string

	// Location is where the game takes place.
	Location string

	// Status decides whether RSVPs are accepted. Only scheduled games accept them.
	Status GameStatus

	// Notes is optional free text shown on the invitation.
	Notes string

	// CreatedAt is the Unix timestamp when the game was created.
	CreatedAt int64
}

// AcceptsConfirmations reports whether members may still RSVP.
func (g Game) AcceptsConfirmations() bool {
	return g.Status == GameStatusScheduled
}

// ConfirmationStatus is the state of an RSVP.
type ConfirmationStatus string

const ConfirmationStatusConfirmed ConfirmationStatus = "confirmed"

// Confirmation is a member's attendance acknowledgment for a game.
// At most one exists per (GameID, MemberID).
type Confirmation struct {
	ID        string
	GameID    string
	MemberID  string
	Status    ConfirmationStatus
	CreatedAt int64
}
