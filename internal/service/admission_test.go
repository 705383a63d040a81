package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcgarena/tournament-api/internal/domain"
	"github.com/tcgarena/tournament-api/internal/notification"
	"github.com/tcgarena/tournament-api/internal/repository"
)

// fakeRegistrationRepo keeps the registration rows and the preloaded
// Registrations slice on the owning tournament in sync, the way the
// database-backed repositories behave.
type fakeRegistrationRepo struct {
	nextID      uint
	tournaments *fakeTournamentRepo
}

func newFakeRegistrationRepo(tournaments *fakeTournamentRepo) *fakeRegistrationRepo {
	return &fakeRegistrationRepo{nextID: 1, tournaments: tournaments}
}

func (r *fakeRegistrationRepo) Create(_ context.Context, registration domain.Registration) (domain.Registration, error) {
	stored, ok := r.tournaments.tournaments[registration.TournamentID]
	if !ok {
		return domain.Registration{}, repository.ErrTournamentNotFound
	}

	for _, reg := range stored.Registrations {
		if reg.UserID == registration.UserID {
			return domain.Registration{}, repository.ErrAlreadyRegistered
		}
	}

	registration.ID = r.nextID
	r.nextID++
	stored.Registrations = append(stored.Registrations, registration)
	r.tournaments.tournaments[registration.TournamentID] = stored

	return registration, nil
}

func (r *fakeRegistrationRepo) Delete(_ context.Context, tournamentID, userID uint) error {
	stored, ok := r.tournaments.tournaments[tournamentID]
	if !ok {
		return repository.ErrRegistrationNotFound
	}

	for i, reg := range stored.Registrations {
		if reg.UserID == userID {
			stored.Registrations = append(stored.Registrations[:i], stored.Registrations[i+1:]...)
			r.tournaments.tournaments[tournamentID] = stored

			return nil
		}
	}

	return repository.ErrRegistrationNotFound
}

func (r *fakeRegistrationRepo) Exists(_ context.Context, tournamentID, userID uint) (bool, error) {
	stored, ok := r.tournaments.tournaments[tournamentID]
	if !ok {
		return false, nil
	}

	for _, reg := range stored.Registrations {
		if reg.UserID == userID {
			return true, nil
		}
	}

	return false, nil
}

func (r *fakeRegistrationRepo) FindByUser(_ context.Context, userID uint) ([]domain.Registration, error) {
	var registrations []domain.Registration
	for _, t := range r.tournaments.tournaments {
		for _, reg := range t.Registrations {
			if reg.UserID == userID {
				registrations = append(registrations, reg)
			}
		}
	}

	return registrations, nil
}

func (r *fakeRegistrationRepo) FindByTournament(_ context.Context, tournamentID uint) ([]domain.Registration, error) {
	stored, ok := r.tournaments.tournaments[tournamentID]
	if !ok {
		return nil, nil
	}

	return stored.Registrations, nil
}

func (r *fakeRegistrationRepo) FindAll(_ context.Context) ([]domain.Registration, error) {
	var registrations []domain.Registration
	for _, t := range r.tournaments.tournaments {
		registrations = append(registrations, t.Registrations...)
	}

	return registrations, nil
}

type fakeDeckRepo struct {
	decks map[uint]domain.Deck
}

func (r *fakeDeckRepo) FindByID(_ context.Context, id uint) (domain.Deck, error) {
	deck, ok := r.decks[id]
	if !ok {
		return domain.Deck{}, repository.ErrDeckNotFound
	}

	return deck, nil
}

type admissionFixture struct {
	svc         *RegistrationService
	tournaments *fakeTournamentRepo
	decks       *fakeDeckRepo
	hub         *notification.Hub
}

func newAdmissionFixture() admissionFixture {
	tournaments := newFakeTournamentRepo()
	registrations := newFakeRegistrationRepo(tournaments)
	decks := &fakeDeckRepo{decks: make(map[uint]domain.Deck)}
	hub := notification.NewHub()

	svc := NewRegistrationService(registrations, tournaments, decks, hub)
	svc.now = func() time.Time { return testToday }

	return admissionFixture{svc: svc, tournaments: tournaments, decks: decks, hub: hub}
}

// seedTournament stores an approved pokemon tournament open for registration
// and a matching deck per player id passed in.
func (f admissionFixture) seedTournament(capacity int, playerIDs ...uint) uint {
	id := f.tournaments.nextID
	f.tournaments.nextID++

	f.tournaments.tournaments[id] = domain.Tournament{
		ID:          id,
		Name:        "City Open",
		OrganizerID: organizer.ID,
		Capacity:    capacity,
		Deadline:    testToday.AddDate(0, 0, 7),
		StartDate:   testToday.AddDate(0, 0, 14),
		GameType:    domain.GamePokemon,
		Status:      domain.StatusApproved,
	}

	for _, playerID := range playerIDs {
		f.decks.decks[playerID] = domain.Deck{ID: playerID, OwnerID: playerID, GameType: domain.GamePokemon}
	}

	return id
}

func player(id uint) domain.User {
	return domain.User{ID: id, Role: domain.RolePlayer}
}

func TestRegister(t *testing.T) {
	t.Run("admits a player with a matching deck", func(t *testing.T) {
		f := newAdmissionFixture()
		tournamentID := f.seedTournament(4, 21)

		created, err := f.svc.Register(context.Background(), player(21), tournamentID, 21)
		require.NoError(t, err)

		assert.Equal(t, tournamentID, created.TournamentID)
		assert.Equal(t, uint(21), created.UserID)
		assert.Len(t, f.tournaments.tournaments[tournamentID].Registrations, 1)
	})

	t.Run("capacity is enforced", func(t *testing.T) {
		f := newAdmissionFixture()
		tournamentID := f.seedTournament(2, 21, 22, 23)

		_, err := f.svc.Register(context.Background(), player(21), tournamentID, 21)
		require.NoError(t, err)
		_, err = f.svc.Register(context.Background(), player(22), tournamentID, 22)
		require.NoError(t, err)

		_, err = f.svc.Register(context.Background(), player(23), tournamentID, 23)
		assert.ErrorIs(t, err, ErrCapacityReached)
		assert.Len(t, f.tournaments.tournaments[tournamentID].Registrations, 2)
	})

	t.Run("registering twice fails", func(t *testing.T) {
		f := newAdmissionFixture()
		tournamentID := f.seedTournament(4, 21)

		_, err := f.svc.Register(context.Background(), player(21), tournamentID, 21)
		require.NoError(t, err)

		_, err = f.svc.Register(context.Background(), player(21), tournamentID, 21)
		assert.ErrorIs(t, err, ErrAlreadyRegistered)
	})

	t.Run("only approved tournaments accept registrations", func(t *testing.T) {
		f := newAdmissionFixture()

		for _, status := range []domain.TournamentStatus{
			domain.StatusPending,
			domain.StatusRejected,
			domain.StatusReady,
			domain.StatusOngoing,
			domain.StatusFinished,
		} {
			tournamentID := f.seedTournament(4, 21)
			stored := f.tournaments.tournaments[tournamentID]
			stored.Status = status
			f.tournaments.tournaments[tournamentID] = stored

			_, err := f.svc.Register(context.Background(), player(21), tournamentID, 21)
			assert.ErrorIs(t, err, ErrRegistrationClosed, "status %s", status)
		}
	})

	t.Run("deadline day itself is closed", func(t *testing.T) {
		f := newAdmissionFixture()
		tournamentID := f.seedTournament(4, 21)

		stored := f.tournaments.tournaments[tournamentID]
		stored.Deadline = testToday
		f.tournaments.tournaments[tournamentID] = stored

		_, err := f.svc.Register(context.Background(), player(21), tournamentID, 21)
		assert.ErrorIs(t, err, ErrDeadlinePassed)
	})

	t.Run("deck of another game is refused and nothing is recorded", func(t *testing.T) {
		f := newAdmissionFixture()
		tournamentID := f.seedTournament(4)
		f.decks.decks[21] = domain.Deck{ID: 21, OwnerID: 21, GameType: domain.GameYugioh}

		_, err := f.svc.Register(context.Background(), player(21), tournamentID, 21)
		assert.ErrorIs(t, err, ErrDeckMismatch)
		assert.Empty(t, f.tournaments.tournaments[tournamentID].Registrations)
	})

	t.Run("borrowed deck is refused", func(t *testing.T) {
		f := newAdmissionFixture()
		tournamentID := f.seedTournament(4, 22)

		_, err := f.svc.Register(context.Background(), player(21), tournamentID, 22)
		assert.ErrorIs(t, err, ErrDeckNotOwned)
	})

	t.Run("unknown deck fails with not found", func(t *testing.T) {
		f := newAdmissionFixture()
		tournamentID := f.seedTournament(4)

		_, err := f.svc.Register(context.Background(), player(21), tournamentID, 99)
		assert.ErrorIs(t, err, ErrDeckNotFound)
	})

	t.Run("unknown tournament fails with not found", func(t *testing.T) {
		f := newAdmissionFixture()

		_, err := f.svc.Register(context.Background(), player(21), 404, 21)
		assert.ErrorIs(t, err, ErrTournamentNotFound)
	})

	t.Run("already-registered wins over a full tournament", func(t *testing.T) {
		f := newAdmissionFixture()
		tournamentID := f.seedTournament(2, 21, 22)

		_, err := f.svc.Register(context.Background(), player(21), tournamentID, 21)
		require.NoError(t, err)
		_, err = f.svc.Register(context.Background(), player(22), tournamentID, 22)
		require.NoError(t, err)

		_, err = f.svc.Register(context.Background(), player(21), tournamentID, 21)
		assert.ErrorIs(t, err, ErrAlreadyRegistered)
	})
}

func TestUnregister(t *testing.T) {
	t.Run("a registered player can withdraw", func(t *testing.T) {
		f := newAdmissionFixture()
		tournamentID := f.seedTournament(4, 21)

		_, err := f.svc.Register(context.Background(), player(21), tournamentID, 21)
		require.NoError(t, err)

		require.NoError(t, f.svc.Unregister(context.Background(), player(21), tournamentID))
		assert.Empty(t, f.tournaments.tournaments[tournamentID].Registrations)
		assert.Empty(t, f.hub.DrainPendingForUser(21), "self-withdrawal is silent")
	})

	t.Run("withdrawal is refused once the tournament has started", func(t *testing.T) {
		f := newAdmissionFixture()
		tournamentID := f.seedTournament(4, 21)

		_, err := f.svc.Register(context.Background(), player(21), tournamentID, 21)
		require.NoError(t, err)

		stored := f.tournaments.tournaments[tournamentID]
		stored.Status = domain.StatusOngoing
		f.tournaments.tournaments[tournamentID] = stored

		err = f.svc.Unregister(context.Background(), player(21), tournamentID)
		assert.ErrorIs(t, err, ErrTournamentStarted)
		assert.Len(t, f.tournaments.tournaments[tournamentID].Registrations, 1)
	})

	t.Run("withdrawing without a registration fails", func(t *testing.T) {
		f := newAdmissionFixture()
		tournamentID := f.seedTournament(4)

		err := f.svc.Unregister(context.Background(), player(21), tournamentID)
		assert.ErrorIs(t, err, ErrNotRegistered)
	})
}

func TestUnregisterUser(t *testing.T) {
	t.Run("removal by the organizer notifies the removed player", func(t *testing.T) {
		f := newAdmissionFixture()
		tournamentID := f.seedTournament(4, 21)

		_, err := f.svc.Register(context.Background(), player(21), tournamentID, 21)
		require.NoError(t, err)

		require.NoError(t, f.svc.UnregisterUser(context.Background(), organizer, tournamentID, 21))
		assert.Empty(t, f.tournaments.tournaments[tournamentID].Registrations)

		queued := f.hub.DrainPendingForUser(21)
		require.Len(t, queued, 1)
		assert.Equal(t, `you were removed from tournament "City Open"`, queued[0].Message)
	})

	t.Run("removal works even after the tournament has started", func(t *testing.T) {
		f := newAdmissionFixture()
		tournamentID := f.seedTournament(4, 21)

		_, err := f.svc.Register(context.Background(), player(21), tournamentID, 21)
		require.NoError(t, err)

		stored := f.tournaments.tournaments[tournamentID]
		stored.Status = domain.StatusOngoing
		f.tournaments.tournaments[tournamentID] = stored

		require.NoError(t, f.svc.UnregisterUser(context.Background(), admin, tournamentID, 21))
		assert.Empty(t, f.tournaments.tournaments[tournamentID].Registrations)
	})

	t.Run("removing an unregistered user fails", func(t *testing.T) {
		f := newAdmissionFixture()
		tournamentID := f.seedTournament(4)

		err := f.svc.UnregisterUser(context.Background(), admin, tournamentID, 21)
		assert.ErrorIs(t, err, ErrNotRegistered)
	})
}

func TestListRegistrations(t *testing.T) {
	f := newAdmissionFixture()
	firstID := f.seedTournament(4, 21, 22)
	secondID := f.seedTournament(4, 21)

	_, err := f.svc.Register(context.Background(), player(21), firstID, 21)
	require.NoError(t, err)
	_, err = f.svc.Register(context.Background(), player(22), firstID, 22)
	require.NoError(t, err)
	_, err = f.svc.Register(context.Background(), player(21), secondID, 21)
	require.NoError(t, err)

	byUser, err := f.svc.ListByUser(context.Background(), player(21), 21)
	require.NoError(t, err)
	assert.Len(t, byUser, 2)

	byTournament, err := f.svc.ListByTournament(context.Background(), organizer, firstID)
	require.NoError(t, err)
	assert.Len(t, byTournament, 2)

	_, err = f.svc.ListByTournament(context.Background(), organizer, 404)
	assert.ErrorIs(t, err, ErrTournamentNotFound)

	all, err := f.svc.ListAll(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
