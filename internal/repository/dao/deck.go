package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrDeckNotFound = errors.New("deck not found")

type Deck struct {
	ID       uint   `gorm:"primaryKey"`
	OwnerID  uint   `gorm:"not null;index"`
	Name     string `gorm:"not null"`
	GameType string `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type DeckDAO struct {
	db *gorm.DB
}

func NewDeckDAO(db *gorm.DB) *DeckDAO {
	return &DeckDAO{
		db: db,
	}
}

func (d *DeckDAO) FindByID(ctx context.Context, id uint) (Deck, error) {
	var deck Deck

	result := d.db.WithContext(ctx).First(&deck, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Deck{}, ErrDeckNotFound
		}

		return Deck{}, result.Error
	}

	return deck, nil
}

func (d *DeckDAO) FindByOwner(ctx context.Context, ownerID uint) ([]Deck, error) {
	var decks []Deck

	result := d.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id").Find(&decks)
	if result.Error != nil {
		return nil, result.Error
	}

	return decks, nil
}
