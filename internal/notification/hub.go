// Package notification holds the in-memory fan-out mechanism that informs
// registered users about tournament status changes. Each user has a pending
// queue that the API layer drains on demand.
package notification

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/tcgarena/tournament-api/internal/domain"
)

type Hub struct {
	mu      sync.Mutex
	pending map[uint][]domain.Notification
}

func NewHub() *Hub {
	return &Hub{
		pending: make(map[uint][]domain.Notification),
	}
}

// Push enqueues a message for a user.
func (h *Hub) Push(userID uint, message string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.pending[userID] = append(h.pending[userID], domain.Notification{
		ID:      uuid.New(),
		Message: message,
	})
}

// DrainPendingForUser returns the user's queued notifications in FIFO order
// and clears the queue.
func (h *Hub) DrainPendingForUser(userID uint) []domain.Notification {
	h.mu.Lock()
	defer h.mu.Unlock()

	drained := h.pending[userID]
	delete(h.pending, userID)

	return drained
}

// UserObserver enqueues a status-change message for a single user. It is the
// only observer variant; one is attached per registrant at transition time.
type UserObserver struct {
	userID uint
	hub    *Hub
}

func NewUserObserver(userID uint, hub *Hub) *UserObserver {
	return &UserObserver{
		userID: userID,
		hub:    hub,
	}
}

func (o *UserObserver) TournamentStatusChanged(t *domain.Tournament) {
	o.hub.Push(o.userID, fmt.Sprintf("tournament %q changed status to %s", t.Name, t.Status))
}
