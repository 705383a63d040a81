package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrTournamentNotFound = errors.New("tournament not found")

type Tournament struct {
	ID          uint      `gorm:"primaryKey"`
	Name        string    `gorm:"not null"`
	Description string
	OrganizerID uint      `gorm:"not null;index"`
	Capacity    int       `gorm:"not null"`
	Deadline    time.Time `gorm:"not null"`
	StartDate   time.Time `gorm:"not null"`
	GameType    string    `gorm:"not null;index"`
	Status      string    `gorm:"not null;index"`

	Registrations []Registration `gorm:"foreignKey:TournamentID"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type TournamentDAO struct {
	db *gorm.DB
}

func NewTournamentDAO(db *gorm.DB) *TournamentDAO {
	return &TournamentDAO{
		db: db,
	}
}

func (d *TournamentDAO) Insert(ctx context.Context, tournament Tournament) (Tournament, error) {
	result := d.db.WithContext(ctx).Create(&tournament)
	if result.Error != nil {
		return Tournament{}, result.Error
	}

	return tournament, nil
}

func (d *TournamentDAO) Update(ctx context.Context, tournament Tournament) (Tournament, error) {
	result := d.db.WithContext(ctx).Omit("Registrations").Save(&tournament)
	if result.Error != nil {
		return Tournament{}, result.Error
	}

	return tournament, nil
}

// UpdateStatus writes the status column alone, guarded by the expected current
// status. It reports ErrTournamentNotFound when the row no longer carries the
// expected status, so a concurrently moved tournament is simply skipped.
func (d *TournamentDAO) UpdateStatus(ctx context.Context, id uint, from, to string) error {
	result := d.db.WithContext(ctx).
		Model(&Tournament{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTournamentNotFound
	}

	return nil
}

func (d *TournamentDAO) FindByID(ctx context.Context, id uint) (Tournament, error) {
	var tournament Tournament

	result := d.db.WithContext(ctx).Preload("Registrations").First(&tournament, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Tournament{}, ErrTournamentNotFound
		}

		return Tournament{}, result.Error
	}

	return tournament, nil
}

func (d *TournamentDAO) FindAll(ctx context.Context) ([]Tournament, error) {
	var tournaments []Tournament

	result := d.db.WithContext(ctx).Preload("Registrations").Order("id").Find(&tournaments)
	if result.Error != nil {
		return nil, result.Error
	}

	return tournaments, nil
}

func (d *TournamentDAO) FindByOrganizer(ctx context.Context, organizerID uint) ([]Tournament, error) {
	var tournaments []Tournament

	result := d.db.WithContext(ctx).Preload("Registrations").Where("organizer_id = ?", organizerID).Order("id").Find(&tournaments)
	if result.Error != nil {
		return nil, result.Error
	}

	return tournaments, nil
}

func (d *TournamentDAO) FindByStatus(ctx context.Context, status string) ([]Tournament, error) {
	var tournaments []Tournament

	result := d.db.WithContext(ctx).Preload("Registrations").Where("status = ?", status).Order("id").Find(&tournaments)
	if result.Error != nil {
		return nil, result.Error
	}

	return tournaments, nil
}

func (d *TournamentDAO) FindByGameType(ctx context.Context, gameType string) ([]Tournament, error) {
	var tournaments []Tournament

	result := d.db.WithContext(ctx).Preload("Registrations").Where("game_type = ?", gameType).Order("id").Find(&tournaments)
	if result.Error != nil {
		return nil, result.Error
	}

	return tournaments, nil
}

// Delete removes a tournament and its registrations in one transaction, so a
// crash cannot leave orphaned registrations behind.
func (d *TournamentDAO) Delete(ctx context.Context, id uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tournament_id = ?", id).Delete(&Registration{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&Tournament{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTournamentNotFound
		}

		return nil
	})
}
