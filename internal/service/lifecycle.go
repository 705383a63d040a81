package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tcgarena/tournament-api/internal/domain"
	"github.com/tcgarena/tournament-api/internal/notification"
	"github.com/tcgarena/tournament-api/internal/repository"
)

var (
	ErrTournamentNotFound   = repository.ErrTournamentNotFound
	ErrCallerRequired       = errors.New("a logged-in caller is required")
	ErrTournamentNotPending = errors.New("tournament is no longer pending")
)

type TournamentRepository interface {
	Create(ctx context.Context, tournament domain.Tournament) (domain.Tournament, error)
	Update(ctx context.Context, tournament domain.Tournament) (domain.Tournament, error)
	UpdateStatus(ctx context.Context, id uint, from, to domain.TournamentStatus) error
	FindByID(ctx context.Context, id uint) (domain.Tournament, error)
	FindAll(ctx context.Context) ([]domain.Tournament, error)
	FindByOrganizer(ctx context.Context, organizerID uint) ([]domain.Tournament, error)
	FindByStatus(ctx context.Context, status domain.TournamentStatus) ([]domain.Tournament, error)
	FindByGameType(ctx context.Context, gameType domain.GameType) ([]domain.Tournament, error)
	Delete(ctx context.Context, id uint) error
}

// TournamentLifecycleService owns the tournament status state machine:
// field validation, manual approval and rejection, and the automatic
// date/capacity driven advancement.
type TournamentLifecycleService struct {
	repo TournamentRepository
	hub  *notification.Hub
	now  func() time.Time
}

func NewTournamentLifecycleService(repo TournamentRepository, hub *notification.Hub) *TournamentLifecycleService {
	return &TournamentLifecycleService{
		repo: repo,
		hub:  hub,
		now:  time.Now,
	}
}

func (s *TournamentLifecycleService) Create(ctx context.Context, caller domain.User, tournament domain.Tournament) (domain.Tournament, error) {
	if caller.ID == 0 {
		return domain.Tournament{}, ErrCallerRequired
	}

	tournament.ID = 0
	tournament.OrganizerID = caller.ID
	tournament.Status = domain.StatusPending
	tournament.Registrations = nil

	if err := tournament.Validate(s.now()); err != nil {
		return domain.Tournament{}, err
	}

	created, err := s.repo.Create(ctx, tournament)
	if err != nil {
		return domain.Tournament{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

// Update is only permitted while the stored tournament is still pending.
// The stored status decides, not whatever the caller's copy carries.
func (s *TournamentLifecycleService) Update(ctx context.Context, caller domain.User, tournament domain.Tournament) (domain.Tournament, error) {
	if caller.ID == 0 {
		return domain.Tournament{}, ErrCallerRequired
	}

	stored, err := s.repo.FindByID(ctx, tournament.ID)
	if err != nil {
		if errors.Is(err, repository.ErrTournamentNotFound) {
			return domain.Tournament{}, ErrTournamentNotFound
		}

		return domain.Tournament{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if stored.Status != domain.StatusPending {
		return domain.Tournament{}, ErrTournamentNotPending
	}

	tournament.OrganizerID = stored.OrganizerID
	tournament.Status = domain.StatusPending
	tournament.CreatedAt = stored.CreatedAt
	tournament.Registrations = nil

	if err := tournament.Validate(s.now()); err != nil {
		return domain.Tournament{}, err
	}

	updated, err := s.repo.Update(ctx, tournament)
	if err != nil {
		return domain.Tournament{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

// Delete removes a tournament together with its registrations. Ownership and
// role checks happen in the permission layer before this call.
func (s *TournamentLifecycleService) Delete(ctx context.Context, caller domain.User, id uint) error {
	if caller.ID == 0 {
		return ErrCallerRequired
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}

		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

func (s *TournamentLifecycleService) Approve(ctx context.Context, caller domain.User, id uint) (domain.Tournament, error) {
	return s.decide(ctx, caller, id, domain.StatusApproved)
}

func (s *TournamentLifecycleService) Reject(ctx context.Context, caller domain.User, id uint) (domain.Tournament, error) {
	return s.decide(ctx, caller, id, domain.StatusRejected)
}

// decide flips a pending tournament to its admin decision. Registrants are
// attached as observers before the flip so every one of them receives the
// status-change event, on rejection as well.
func (s *TournamentLifecycleService) decide(ctx context.Context, caller domain.User, id uint, to domain.TournamentStatus) (domain.Tournament, error) {
	if caller.ID == 0 {
		return domain.Tournament{}, ErrCallerRequired
	}

	stored, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTournamentNotFound) {
			return domain.Tournament{}, ErrTournamentNotFound
		}

		return domain.Tournament{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if stored.Status != domain.StatusPending {
		return domain.Tournament{}, ErrTournamentNotPending
	}

	s.attachRegistrants(&stored)

	if err := s.repo.UpdateStatus(ctx, id, domain.StatusPending, to); err != nil {
		if errors.Is(err, repository.ErrTournamentNotFound) {
			// Moved by a concurrent decision between load and write.
			return domain.Tournament{}, ErrTournamentNotPending
		}

		return domain.Tournament{}, fmt.Errorf("s.repo.UpdateStatus -> %w", err)
	}

	stored.Status = to
	stored.NotifyStatusChange()

	return stored, nil
}

// AdvanceAll sweeps every stored tournament through the automatic transition
// table. Each transition re-reads the current persisted status through a
// guarded status write, so running the sweep twice in the same instant never
// double-fires notifications. A single tournament's failure is logged and the
// sweep moves on.
func (s *TournamentLifecycleService) AdvanceAll(ctx context.Context) (int, error) {
	tournaments, err := s.repo.FindAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	today := s.now()
	advanced := 0

	for _, t := range tournaments {
		next, ok := t.NextStatus(today)
		if !ok {
			continue
		}

		s.attachRegistrants(&t)

		if err := s.repo.UpdateStatus(ctx, t.ID, t.Status, next); err != nil {
			if errors.Is(err, repository.ErrTournamentNotFound) {
				// Already moved by a concurrent manual action or sweep.
				continue
			}

			zap.L().Error("sweep: failed to advance tournament",
				zap.Uint("tournament_id", t.ID),
				zap.String("from", string(t.Status)),
				zap.String("to", string(next)),
				zap.Error(err))
			continue
		}

		from := t.Status
		t.Status = next
		t.NotifyStatusChange()
		advanced++

		zap.L().Info("sweep: tournament advanced",
			zap.Uint("tournament_id", t.ID),
			zap.String("from", string(from)),
			zap.String("to", string(next)))
	}

	return advanced, nil
}

func (s *TournamentLifecycleService) GetTournament(ctx context.Context, id uint) (domain.Tournament, error) {
	tournament, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTournamentNotFound) {
			return domain.Tournament{}, ErrTournamentNotFound
		}

		return domain.Tournament{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return tournament, nil
}

func (s *TournamentLifecycleService) ListTournaments(ctx context.Context) ([]domain.Tournament, error) {
	tournaments, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return tournaments, nil
}

func (s *TournamentLifecycleService) ListByOrganizer(ctx context.Context, organizerID uint) ([]domain.Tournament, error) {
	tournaments, err := s.repo.FindByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByOrganizer -> %w", err)
	}

	return tournaments, nil
}

func (s *TournamentLifecycleService) ListByStatus(ctx context.Context, status domain.TournamentStatus) ([]domain.Tournament, error) {
	tournaments, err := s.repo.FindByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByStatus -> %w", err)
	}

	return tournaments, nil
}

func (s *TournamentLifecycleService) ListByGameType(ctx context.Context, gameType domain.GameType) ([]domain.Tournament, error) {
	tournaments, err := s.repo.FindByGameType(ctx, gameType)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByGameType -> %w", err)
	}

	return tournaments, nil
}

// Subscribers are derived fresh from the current registration list at every
// transition; there is no persisted subscription table.
func (s *TournamentLifecycleService) attachRegistrants(t *domain.Tournament) {
	for _, reg := range t.Registrations {
		t.Attach(notification.NewUserObserver(reg.UserID, s.hub))
	}
}
