package domain

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type GameType string

const (
	GameMagic   GameType = "magic"
	GamePokemon GameType = "pokemon"
	GameYugioh  GameType = "yugioh"
)

type TournamentStatus string

const (
	StatusPending  TournamentStatus = "PENDING"
	StatusApproved TournamentStatus = "APPROVED"
	StatusRejected TournamentStatus = "REJECTED"
	StatusReady    TournamentStatus = "READY"
	StatusOngoing  TournamentStatus = "ONGOING"
	StatusFinished TournamentStatus = "FINISHED"
)

// StatusObserver is notified after a tournament's status has changed.
// Observers are attached per transition, derived from the current
// registration list, and invoked synchronously in attachment order.
type StatusObserver interface {
	TournamentStatusChanged(t *Tournament)
}

type Tournament struct {
	ID            uint             `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	OrganizerID   uint             `json:"organizer_id"`
	Capacity      int              `json:"capacity"`
	Deadline      time.Time        `json:"deadline"`
	StartDate     time.Time        `json:"start_date"`
	GameType      GameType         `json:"game_type"`
	Status        TournamentStatus `json:"status"`
	Registrations []Registration   `json:"registrations,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`

	observers []StatusObserver
}

func (t *Tournament) Attach(o StatusObserver) {
	t.observers = append(t.observers, o)
}

func (t *Tournament) NotifyStatusChange() {
	for _, o := range t.observers {
		o.TournamentStatusChanged(t)
	}
}

func (t *Tournament) IsFull() bool {
	return len(t.Registrations) >= t.Capacity
}

// IsTerminal reports whether no further transition leaves the current status.
func (t *Tournament) IsTerminal() bool {
	return t.Status == StatusRejected || t.Status == StatusFinished
}

// HasStarted reports whether the tournament is past the point of admission changes.
func (t *Tournament) HasStarted() bool {
	return t.Status == StatusOngoing || t.Status == StatusFinished
}

// NextStatus applies the automatic transition table for the given day and
// reports whether the tournament should move to a new status. Manual
// transitions (approval, rejection) are not part of the table.
func (t *Tournament) NextStatus(today time.Time) (TournamentStatus, bool) {
	today = DateOnly(today)

	switch t.Status {
	case StatusApproved:
		if !today.Before(DateOnly(t.Deadline)) || t.IsFull() {
			return StatusReady, true
		}
	case StatusReady:
		switch {
		case today.After(DateOnly(t.StartDate)):
			return StatusFinished, true
		case today.Equal(DateOnly(t.StartDate)):
			return StatusOngoing, true
		}
	case StatusOngoing:
		if today.After(DateOnly(t.StartDate)) {
			return StatusFinished, true
		}
	}

	return t.Status, false
}

// Validate checks the field invariants that must hold after create and update.
func (t *Tournament) Validate(now time.Time) error {
	err := validation.ValidateStruct(
		t,
		validation.Field(&t.Name, validation.Required, validation.Length(1, 80)),
		validation.Field(&t.Description, validation.Length(0, 500)),
		validation.Field(&t.Capacity, validation.Required, validation.Min(2).Error("capacity must be at least 2")),
		validation.Field(&t.Deadline, validation.Required.Error("registration deadline is required")),
		validation.Field(&t.StartDate, validation.Required.Error("start date is required")),
		validation.Field(&t.GameType, validation.Required, validation.In(GameMagic, GamePokemon, GameYugioh).Error("unsupported game type")),
	)
	if err != nil {
		return err
	}

	if !DateOnly(t.Deadline).Before(DateOnly(t.StartDate)) {
		return validation.Errors{
			"deadline": validation.NewError("deadline_after_start", "registration deadline must be before the start date"),
		}
	}
	if DateOnly(t.StartDate).Before(DateOnly(now)) {
		return validation.Errors{
			"start_date": validation.NewError("start_date_in_past", "start date must not be in the past"),
		}
	}

	return nil
}

// DateOnly truncates a timestamp to its calendar day in UTC. All lifecycle
// and admission date comparisons work at day granularity.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
