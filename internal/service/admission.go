package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tcgarena/tournament-api/internal/domain"
	"github.com/tcgarena/tournament-api/internal/notification"
	"github.com/tcgarena/tournament-api/internal/repository"
)

var (
	ErrRegistrationClosed = errors.New("tournament is not open for registration")
	ErrAlreadyRegistered  = repository.ErrAlreadyRegistered
	ErrCapacityReached    = errors.New("tournament capacity reached")
	ErrDeadlinePassed     = errors.New("registration deadline has passed")
	ErrDeckMismatch       = errors.New("deck game type does not match the tournament")
	ErrDeckNotOwned       = errors.New("deck does not belong to the caller")
	ErrNotRegistered      = errors.New("user is not registered for this tournament")
	ErrTournamentStarted  = errors.New("tournament has already started")
	ErrDeckNotFound       = repository.ErrDeckNotFound
)

type RegistrationRepository interface {
	Create(ctx context.Context, registration domain.Registration) (domain.Registration, error)
	Delete(ctx context.Context, tournamentID, userID uint) error
	Exists(ctx context.Context, tournamentID, userID uint) (bool, error)
	FindByUser(ctx context.Context, userID uint) ([]domain.Registration, error)
	FindByTournament(ctx context.Context, tournamentID uint) ([]domain.Registration, error)
	FindAll(ctx context.Context) ([]domain.Registration, error)
}

type TournamentReader interface {
	FindByID(ctx context.Context, id uint) (domain.Tournament, error)
}

type DeckReader interface {
	FindByID(ctx context.Context, id uint) (domain.Deck, error)
}

// RegistrationService evaluates the admission rules that gate creating and
// withdrawing registrations against a tournament's current state.
type RegistrationService struct {
	repo           RegistrationRepository
	tournamentRepo TournamentReader
	deckRepo       DeckReader
	hub            *notification.Hub
	now            func() time.Time
}

func NewRegistrationService(repo RegistrationRepository, tournamentRepo TournamentReader, deckRepo DeckReader, hub *notification.Hub) *RegistrationService {
	return &RegistrationService{
		repo:           repo,
		tournamentRepo: tournamentRepo,
		deckRepo:       deckRepo,
		hub:            hub,
		now:            time.Now,
	}
}

// Register admits the caller into a tournament. The rules run in a fixed
// order against a freshly loaded tournament snapshot and the first violated
// rule is reported: open for registration, not already registered, capacity
// left, deadline not passed, deck game type matches.
func (s *RegistrationService) Register(ctx context.Context, caller domain.User, tournamentID, deckID uint) (domain.Registration, error) {
	if caller.ID == 0 {
		return domain.Registration{}, ErrCallerRequired
	}

	tournament, err := s.tournamentRepo.FindByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repository.ErrTournamentNotFound) {
			return domain.Registration{}, ErrTournamentNotFound
		}

		return domain.Registration{}, fmt.Errorf("s.tournamentRepo.FindByID -> %w", err)
	}

	if tournament.Status != domain.StatusApproved {
		return domain.Registration{}, ErrRegistrationClosed
	}

	registered, err := s.repo.Exists(ctx, tournamentID, caller.ID)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("s.repo.Exists -> %w", err)
	}
	if registered {
		return domain.Registration{}, ErrAlreadyRegistered
	}

	if tournament.IsFull() {
		return domain.Registration{}, ErrCapacityReached
	}

	if !domain.DateOnly(s.now()).Before(domain.DateOnly(tournament.Deadline)) {
		return domain.Registration{}, ErrDeadlinePassed
	}

	deck, err := s.deckRepo.FindByID(ctx, deckID)
	if err != nil {
		if errors.Is(err, repository.ErrDeckNotFound) {
			return domain.Registration{}, ErrDeckNotFound
		}

		return domain.Registration{}, fmt.Errorf("s.deckRepo.FindByID -> %w", err)
	}

	if deck.GameType != tournament.GameType {
		return domain.Registration{}, ErrDeckMismatch
	}
	if deck.OwnerID != caller.ID {
		return domain.Registration{}, ErrDeckNotOwned
	}

	created, err := s.repo.Create(ctx, domain.Registration{
		TournamentID: tournamentID,
		UserID:       caller.ID,
		DeckID:       deckID,
		CreatedAt:    s.now(),
	})
	if err != nil {
		// The unique index is the authority under concurrent registrations.
		if errors.Is(err, repository.ErrAlreadyRegistered) {
			return domain.Registration{}, ErrAlreadyRegistered
		}

		return domain.Registration{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

// Unregister withdraws the caller's own registration. Withdrawal is refused
// once the tournament has started.
func (s *RegistrationService) Unregister(ctx context.Context, caller domain.User, tournamentID uint) error {
	if caller.ID == 0 {
		return ErrCallerRequired
	}

	return s.remove(ctx, tournamentID, caller.ID, false)
}

// UnregisterUser removes an arbitrary user's registration on behalf of the
// tournament organizer or an admin, and tells the removed user about it.
// Authorization is enforced by the permission layer before this call.
func (s *RegistrationService) UnregisterUser(ctx context.Context, caller domain.User, tournamentID, userID uint) error {
	if caller.ID == 0 {
		return ErrCallerRequired
	}

	return s.remove(ctx, tournamentID, userID, true)
}

func (s *RegistrationService) remove(ctx context.Context, tournamentID, userID uint, notify bool) error {
	tournament, err := s.tournamentRepo.FindByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repository.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}

		return fmt.Errorf("s.tournamentRepo.FindByID -> %w", err)
	}

	registered, err := s.repo.Exists(ctx, tournamentID, userID)
	if err != nil {
		return fmt.Errorf("s.repo.Exists -> %w", err)
	}
	if !registered {
		return ErrNotRegistered
	}

	if !notify && tournament.HasStarted() {
		return ErrTournamentStarted
	}

	if err := s.repo.Delete(ctx, tournamentID, userID); err != nil {
		if errors.Is(err, repository.ErrRegistrationNotFound) {
			return ErrNotRegistered
		}

		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	if notify {
		s.hub.Push(userID, fmt.Sprintf("you were removed from tournament %q", tournament.Name))
	}

	return nil
}

func (s *RegistrationService) ListByUser(ctx context.Context, caller domain.User, userID uint) ([]domain.Registration, error) {
	if caller.ID == 0 {
		return nil, ErrCallerRequired
	}

	registrations, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByUser -> %w", err)
	}

	return registrations, nil
}

func (s *RegistrationService) ListByTournament(ctx context.Context, caller domain.User, tournamentID uint) ([]domain.Registration, error) {
	if caller.ID == 0 {
		return nil, ErrCallerRequired
	}

	if _, err := s.tournamentRepo.FindByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repository.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}

		return nil, fmt.Errorf("s.tournamentRepo.FindByID -> %w", err)
	}

	registrations, err := s.repo.FindByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByTournament -> %w", err)
	}

	return registrations, nil
}

func (s *RegistrationService) ListAll(ctx context.Context, caller domain.User) ([]domain.Registration, error) {
	if caller.ID == 0 {
		return nil, ErrCallerRequired
	}

	registrations, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return registrations, nil
}
