package repository

import (
	"context"

	"github.com/tcgarena/tournament-api/internal/domain"
	"github.com/tcgarena/tournament-api/internal/repository/dao"
)

type RegistrationDAO interface {
	Insert(ctx context.Context, registration dao.Registration) (dao.Registration, error)
	Delete(ctx context.Context, tournamentID, userID uint) error
	Exists(ctx context.Context, tournamentID, userID uint) (bool, error)
	FindByUser(ctx context.Context, userID uint) ([]dao.Registration, error)
	FindByTournament(ctx context.Context, tournamentID uint) ([]dao.Registration, error)
	FindAll(ctx context.Context) ([]dao.Registration, error)
}

type RegistrationRepository struct {
	dao RegistrationDAO
}

func NewRegistrationRepository(dao RegistrationDAO) *RegistrationRepository {
	return &RegistrationRepository{
		dao: dao,
	}
}

func (r *RegistrationRepository) Create(ctx context.Context, registration domain.Registration) (domain.Registration, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(registration))
	if err != nil {
		return domain.Registration{}, err
	}

	return r.daoToDomain(created), nil
}

func (r *RegistrationRepository) Delete(ctx context.Context, tournamentID, userID uint) error {
	return r.dao.Delete(ctx, tournamentID, userID)
}

func (r *RegistrationRepository) Exists(ctx context.Context, tournamentID, userID uint) (bool, error) {
	return r.dao.Exists(ctx, tournamentID, userID)
}

func (r *RegistrationRepository) FindByUser(ctx context.Context, userID uint) ([]domain.Registration, error) {
	registrations, err := r.dao.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return r.daosToDomain(registrations), nil
}

func (r *RegistrationRepository) FindByTournament(ctx context.Context, tournamentID uint) ([]domain.Registration, error) {
	registrations, err := r.dao.FindByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	return r.daosToDomain(registrations), nil
}

func (r *RegistrationRepository) FindAll(ctx context.Context) ([]domain.Registration, error) {
	registrations, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	return r.daosToDomain(registrations), nil
}

func (r *RegistrationRepository) domainToDao(reg domain.Registration) dao.Registration {
	return dao.Registration{
		ID:           reg.ID,
		TournamentID: reg.TournamentID,
		UserID:       reg.UserID,
		DeckID:       reg.DeckID,
		CreatedAt:    reg.CreatedAt,
	}
}

func (r *RegistrationRepository) daoToDomain(reg dao.Registration) domain.Registration {
	return domain.Registration{
		ID:           reg.ID,
		TournamentID: reg.TournamentID,
		UserID:       reg.UserID,
		DeckID:       reg.DeckID,
		CreatedAt:    reg.CreatedAt,
	}
}

func (r *RegistrationRepository) daosToDomain(registrations []dao.Registration) []domain.Registration {
	converted := make([]domain.Registration, len(registrations))
	for i, reg := range registrations {
		converted[i] = r.daoToDomain(reg)
	}

	return converted
}
