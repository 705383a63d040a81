package domain

import "time"

// Registration links one user and one deck to a tournament. At most one
// registration exists per (tournament, user) pair.
type Registration struct {
	ID           uint      `json:"id"`
	TournamentID uint      `json:"tournament_id"`
	UserID       uint      `json:"user_id"`
	DeckID       uint      `json:"deck_id"`
	CreatedAt    time.Time `json:"created_at"`
}
