package domain

import "github.com/google/uuid"

// Notification is an ephemeral per-user queue entry. Notifications live in
// memory until drained and are not persisted across restarts.
type Notification struct {
	ID      uuid.UUID `json:"id"`
	Message string    `json:"message"`
}
