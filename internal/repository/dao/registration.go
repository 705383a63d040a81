package dao

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrAlreadyRegistered    = errors.New("user already registered for this tournament")
)

type Registration struct {
	ID           uint `gorm:"primaryKey"`
	TournamentID uint `gorm:"not null;uniqueIndex:idx_registrations_tournament_user"`
	UserID       uint `gorm:"not null;uniqueIndex:idx_registrations_tournament_user"`
	DeckID       uint `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
}

type RegistrationDAO struct {
	db *gorm.DB
}

func NewRegistrationDAO(db *gorm.DB) *RegistrationDAO {
	return &RegistrationDAO{
		db: db,
	}
}

// Insert relies on the (tournament_id, user_id) unique index as the
// authoritative duplicate check under concurrent registrations.
func (d *RegistrationDAO) Insert(ctx context.Context, registration Registration) (Registration, error) {
	result := d.db.WithContext(ctx).Create(&registration)
	if result.Error != nil {
		var err *pgconn.PgError
		if errors.As(result.Error, &err) && err.Code == pgerrcode.UniqueViolation {
			return Registration{}, ErrAlreadyRegistered
		}

		return Registration{}, result.Error
	}

	return registration, nil
}

func (d *RegistrationDAO) Delete(ctx context.Context, tournamentID, userID uint) error {
	result := d.db.WithContext(ctx).
		Where("tournament_id = ? AND user_id = ?", tournamentID, userID).
		Delete(&Registration{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRegistrationNotFound
	}

	return nil
}

func (d *RegistrationDAO) Exists(ctx context.Context, tournamentID, userID uint) (bool, error) {
	var count int64

	result := d.db.WithContext(ctx).
		Model(&Registration{}).
		Where("tournament_id = ? AND user_id = ?", tournamentID, userID).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}

func (d *RegistrationDAO) FindByUser(ctx context.Context, userID uint) ([]Registration, error) {
	var registrations []Registration

	result := d.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&registrations)
	if result.Error != nil {
		return nil, result.Error
	}

	return registrations, nil
}

func (d *RegistrationDAO) FindByTournament(ctx context.Context, tournamentID uint) ([]Registration, error) {
	var registrations []Registration

	result := d.db.WithContext(ctx).Where("tournament_id = ?", tournamentID).Order("created_at").Find(&registrations)
	if result.Error != nil {
		return nil, result.Error
	}

	return registrations, nil
}

func (d *RegistrationDAO) FindAll(ctx context.Context) ([]Registration, error) {
	var registrations []Registration

	result := d.db.WithContext(ctx).Order("id").Find(&registrations)
	if result.Error != nil {
		return nil, result.Error
	}

	return registrations, nil
}
