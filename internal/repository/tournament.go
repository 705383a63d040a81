package repository

import (
	"context"

	"github.com/tcgarena/tournament-api/internal/domain"
	"github.com/tcgarena/tournament-api/internal/repository/dao"
)

var (
	ErrTournamentNotFound   = dao.ErrTournamentNotFound
	ErrRegistrationNotFound = dao.ErrRegistrationNotFound
	ErrAlreadyRegistered    = dao.ErrAlreadyRegistered
	ErrUserNotFound         = dao.ErrUserNotFound
	ErrDeckNotFound         = dao.ErrDeckNotFound
)

type TournamentDAO interface {
	Insert(ctx context.Context, tournament dao.Tournament) (dao.Tournament, error)
	Update(ctx context.Context, tournament dao.Tournament) (dao.Tournament, error)
	UpdateStatus(ctx context.Context, id uint, from, to string) error
	FindByID(ctx context.Context, id uint) (dao.Tournament, error)
	FindAll(ctx context.Context) ([]dao.Tournament, error)
	FindByOrganizer(ctx context.Context, organizerID uint) ([]dao.Tournament, error)
	FindByStatus(ctx context.Context, status string) ([]dao.Tournament, error)
	FindByGameType(ctx context.Context, gameType string) ([]dao.Tournament, error)
	Delete(ctx context.Context, id uint) error
}

type TournamentRepository struct {
	dao TournamentDAO
}

func NewTournamentRepository(dao TournamentDAO) *TournamentRepository {
	return &TournamentRepository{
		dao: dao,
	}
}

func (r *TournamentRepository) Create(ctx context.Context, tournament domain.Tournament) (domain.Tournament, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(tournament))
	if err != nil {
		return domain.Tournament{}, err
	}

	return r.daoToDomain(created), nil
}

func (r *TournamentRepository) Update(ctx context.Context, tournament domain.Tournament) (domain.Tournament, error) {
	updated, err := r.dao.Update(ctx, r.domainToDao(tournament))
	if err != nil {
		return domain.Tournament{}, err
	}

	return r.daoToDomain(updated), nil
}

// UpdateStatus performs the conditional status write used by transitions. The
// write only lands when the stored row still carries the expected status.
func (r *TournamentRepository) UpdateStatus(ctx context.Context, id uint, from, to domain.TournamentStatus) error {
	return r.dao.UpdateStatus(ctx, id, string(from), string(to))
}

func (r *TournamentRepository) FindByID(ctx context.Context, id uint) (domain.Tournament, error) {
	tournament, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Tournament{}, err
	}

	return r.daoToDomain(tournament), nil
}

func (r *TournamentRepository) FindAll(ctx context.Context) ([]domain.Tournament, error) {
	tournaments, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	return r.daosToDomain(tournaments), nil
}

func (r *TournamentRepository) FindByOrganizer(ctx context.Context, organizerID uint) ([]domain.Tournament, error) {
	tournaments, err := r.dao.FindByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, err
	}

	return r.daosToDomain(tournaments), nil
}

func (r *TournamentRepository) FindByStatus(ctx context.Context, status domain.TournamentStatus) ([]domain.Tournament, error) {
	tournaments, err := r.dao.FindByStatus(ctx, string(status))
	if err != nil {
		return nil, err
	}

	return r.daosToDomain(tournaments), nil
}

func (r *TournamentRepository) FindByGameType(ctx context.Context, gameType domain.GameType) ([]domain.Tournament, error) {
	tournaments, err := r.dao.FindByGameType(ctx, string(gameType))
	if err != nil {
		return nil, err
	}

	return r.daosToDomain(tournaments), nil
}

func (r *TournamentRepository) Delete(ctx context.Context, id uint) error {
	return r.dao.Delete(ctx, id)
}

func (r *TournamentRepository) domainToDao(t domain.Tournament) dao.Tournament {
	return dao.Tournament{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		OrganizerID: t.OrganizerID,
		Capacity:    t.Capacity,
		Deadline:    t.Deadline,
		StartDate:   t.StartDate,
		GameType:    string(t.GameType),
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (r *TournamentRepository) daoToDomain(t dao.Tournament) domain.Tournament {
	registrations := make([]domain.Registration, len(t.Registrations))
	for i, reg := range t.Registrations {
		registrations[i] = domain.Registration{
			ID:           reg.ID,
			TournamentID: reg.TournamentID,
			UserID:       reg.UserID,
			DeckID:       reg.DeckID,
			CreatedAt:    reg.CreatedAt,
		}
	}

	return domain.Tournament{
		ID:            t.ID,
		Name:          t.Name,
		Description:   t.Description,
		OrganizerID:   t.OrganizerID,
		Capacity:      t.Capacity,
		Deadline:      t.Deadline,
		StartDate:     t.StartDate,
		GameType:      domain.GameType(t.GameType),
		Status:        domain.TournamentStatus(t.Status),
		Registrations: registrations,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func (r *TournamentRepository) daosToDomain(tournaments []dao.Tournament) []domain.Tournament {
	converted := make([]domain.Tournament, len(tournaments))
	for i, t := range tournaments {
		converted[i] = r.daoToDomain(t)
	}

	return converted
}
