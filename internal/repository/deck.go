package repository

import (
	"context"

	"github.com/tcgarena/tournament-api/internal/domain"
	"github.com/tcgarena/tournament-api/internal/repository/dao"
)

type DeckDAO interface {
	FindByID(ctx context.Context, id uint) (dao.Deck, error)
	FindByOwner(ctx context.Context, ownerID uint) ([]dao.Deck, error)
}

type DeckRepository struct {
	dao DeckDAO
}

func NewDeckRepository(dao DeckDAO) *DeckRepository {
	return &DeckRepository{
		dao: dao,
	}
}

func (r *DeckRepository) FindByID(ctx context.Context, id uint) (domain.Deck, error) {
	deck, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Deck{}, err
	}

	return r.daoToDomain(deck), nil
}

func (r *DeckRepository) FindByOwner(ctx context.Context, ownerID uint) ([]domain.Deck, error) {
	decks, err := r.dao.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	converted := make([]domain.Deck, len(decks))
	for i, d := range decks {
		converted[i] = r.daoToDomain(d)
	}

	return converted, nil
}

func (r *DeckRepository) daoToDomain(d dao.Deck) domain.Deck {
	return domain.Deck{
		ID:        d.ID,
		OwnerID:   d.OwnerID,
		Name:      d.Name,
		GameType:  domain.GameType(d.GameType),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
