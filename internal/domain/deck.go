package domain

import "time"

type Deck struct {
	ID        uint      `json:"id"`
	OwnerID   uint      `json:"owner_id"`
	Name      string    `json:"name"`
	GameType  GameType  `json:"game_type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
