package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcgarena/tournament-api/internal/domain"
	"github.com/tcgarena/tournament-api/internal/notification"
	"github.com/tcgarena/tournament-api/internal/repository"
)

var testToday = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

type fakeTournamentRepo struct {
	nextID      uint
	tournaments map[uint]domain.Tournament
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{
		nextID:      1,
		tournaments: make(map[uint]domain.Tournament),
	}
}

func (r *fakeTournamentRepo) Create(_ context.Context, t domain.Tournament) (domain.Tournament, error) {
	t.ID = r.nextID
	r.nextID++
	r.tournaments[t.ID] = t

	return t, nil
}

func (r *fakeTournamentRepo) Update(_ context.Context, t domain.Tournament) (domain.Tournament, error) {
	stored, ok := r.tournaments[t.ID]
	if !ok {
		return domain.Tournament{}, repository.ErrTournamentNotFound
	}

	t.Registrations = stored.Registrations
	r.tournaments[t.ID] = t

	return t, nil
}

func (r *fakeTournamentRepo) UpdateStatus(_ context.Context, id uint, from, to domain.TournamentStatus) error {
	stored, ok := r.tournaments[id]
	if !ok || stored.Status != from {
		return repository.ErrTournamentNotFound
	}

	stored.Status = to
	r.tournaments[id] = stored

	return nil
}

func (r *fakeTournamentRepo) FindByID(_ context.Context, id uint) (domain.Tournament, error) {
	stored, ok := r.tournaments[id]
	if !ok {
		return domain.Tournament{}, repository.ErrTournamentNotFound
	}

	return stored, nil
}

func (r *fakeTournamentRepo) FindAll(_ context.Context) ([]domain.Tournament, error) {
	ids := make([]int, 0, len(r.tournaments))
	for id := range r.tournaments {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)

	tournaments := make([]domain.Tournament, 0, len(ids))
	for _, id := range ids {
		tournaments = append(tournaments, r.tournaments[uint(id)])
	}

	return tournaments, nil
}

func (r *fakeTournamentRepo) FindByOrganizer(_ context.Context, organizerID uint) ([]domain.Tournament, error) {
	var tournaments []domain.Tournament
	for _, t := range r.tournaments {
		if t.OrganizerID == organizerID {
			tournaments = append(tournaments, t)
		}
	}

	return tournaments, nil
}

func (r *fakeTournamentRepo) FindByStatus(_ context.Context, status domain.TournamentStatus) ([]domain.Tournament, error) {
	var tournaments []domain.Tournament
	for _, t := range r.tournaments {
		if t.Status == status {
			tournaments = append(tournaments, t)
		}
	}

	return tournaments, nil
}

func (r *fakeTournamentRepo) FindByGameType(_ context.Context, gameType domain.GameType) ([]domain.Tournament, error) {
	var tournaments []domain.Tournament
	for _, t := range r.tournaments {
		if t.GameType == gameType {
			tournaments = append(tournaments, t)
		}
	}

	return tournaments, nil
}

func (r *fakeTournamentRepo) Delete(_ context.Context, id uint) error {
	if _, ok := r.tournaments[id]; !ok {
		return repository.ErrTournamentNotFound
	}

	delete(r.tournaments, id)

	return nil
}

func newLifecycle() (*TournamentLifecycleService, *fakeTournamentRepo, *notification.Hub) {
	repo := newFakeTournamentRepo()
	hub := notification.NewHub()

	svc := NewTournamentLifecycleService(repo, hub)
	svc.now = func() time.Time { return testToday }

	return svc, repo, hub
}

func pendingTournament() domain.Tournament {
	return domain.Tournament{
		Name:      "Regional Qualifier",
		Capacity:  8,
		Deadline:  testToday.AddDate(0, 0, 7),
		StartDate: testToday.AddDate(0, 0, 14),
		GameType:  domain.GamePokemon,
	}
}

var (
	organizer = domain.User{ID: 10, Role: domain.RoleOrganizer}
	admin     = domain.User{ID: 1, Role: domain.RoleAdmin}
)

func TestLifecycleCreate(t *testing.T) {
	t.Run("valid tournament starts pending and owned by caller", func(t *testing.T) {
		svc, repo, _ := newLifecycle()

		created, err := svc.Create(context.Background(), organizer, pendingTournament())
		require.NoError(t, err)

		assert.Equal(t, domain.StatusPending, created.Status)
		assert.Equal(t, organizer.ID, created.OrganizerID)
		assert.NotZero(t, created.ID)
		assert.Len(t, repo.tournaments, 1)
	})

	t.Run("capacity of one is rejected", func(t *testing.T) {
		svc, repo, _ := newLifecycle()

		tournament := pendingTournament()
		tournament.Capacity = 1

		_, err := svc.Create(context.Background(), organizer, tournament)
		assert.Error(t, err)
		assert.Empty(t, repo.tournaments, "no partial state may be written")
	})

	t.Run("start date in the past is rejected", func(t *testing.T) {
		svc, repo, _ := newLifecycle()

		tournament := pendingTournament()
		tournament.Deadline = testToday.AddDate(0, 0, -5)
		tournament.StartDate = testToday.AddDate(0, 0, -2)

		_, err := svc.Create(context.Background(), organizer, tournament)
		assert.Error(t, err)
		assert.Empty(t, repo.tournaments)
	})

	t.Run("anonymous caller is refused", func(t *testing.T) {
		svc, _, _ := newLifecycle()

		_, err := svc.Create(context.Background(), domain.User{}, pendingTournament())
		assert.ErrorIs(t, err, ErrCallerRequired)
	})
}

func TestLifecycleUpdate(t *testing.T) {
	t.Run("pending tournament can be edited", func(t *testing.T) {
		svc, _, _ := newLifecycle()

		created, err := svc.Create(context.Background(), organizer, pendingTournament())
		require.NoError(t, err)

		created.Name = "Regional Qualifier II"
		created.Capacity = 16

		updated, err := svc.Update(context.Background(), organizer, created)
		require.NoError(t, err)
		assert.Equal(t, "Regional Qualifier II", updated.Name)
		assert.Equal(t, 16, updated.Capacity)
		assert.Equal(t, domain.StatusPending, updated.Status)
	})

	t.Run("approved tournament is no longer editable", func(t *testing.T) {
		svc, repo, _ := newLifecycle()

		created, err := svc.Create(context.Background(), organizer, pendingTournament())
		require.NoError(t, err)
		_, err = svc.Approve(context.Background(), admin, created.ID)
		require.NoError(t, err)

		// The caller's copy still says PENDING; the stored status decides.
		created.Name = "Sneaky Edit"

		_, err = svc.Update(context.Background(), organizer, created)
		assert.ErrorIs(t, err, ErrTournamentNotPending)
		assert.Equal(t, "Regional Qualifier", repo.tournaments[created.ID].Name, "stored record must be unchanged")
	})

	t.Run("unknown tournament id fails", func(t *testing.T) {
		svc, _, _ := newLifecycle()

		tournament := pendingTournament()
		tournament.ID = 999

		_, err := svc.Update(context.Background(), organizer, tournament)
		assert.ErrorIs(t, err, ErrTournamentNotFound)
	})

	t.Run("update re-runs full field validation", func(t *testing.T) {
		svc, _, _ := newLifecycle()

		created, err := svc.Create(context.Background(), organizer, pendingTournament())
		require.NoError(t, err)

		created.Capacity = 1

		_, err = svc.Update(context.Background(), organizer, created)
		assert.Error(t, err)
	})
}

func TestLifecycleDelete(t *testing.T) {
	svc, repo, _ := newLifecycle()

	created, err := svc.Create(context.Background(), organizer, pendingTournament())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), organizer, created.ID))
	assert.Empty(t, repo.tournaments)

	assert.ErrorIs(t, svc.Delete(context.Background(), organizer, created.ID), ErrTournamentNotFound)
}

func TestLifecycleApprove(t *testing.T) {
	t.Run("pending tournament is approved and registrants notified once", func(t *testing.T) {
		svc, repo, hub := newLifecycle()

		created, err := svc.Create(context.Background(), organizer, pendingTournament())
		require.NoError(t, err)

		stored := repo.tournaments[created.ID]
		stored.Registrations = []domain.Registration{
			{TournamentID: created.ID, UserID: 21},
			{TournamentID: created.ID, UserID: 22},
		}
		repo.tournaments[created.ID] = stored

		approved, err := svc.Approve(context.Background(), admin, created.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusApproved, approved.Status)
		assert.Equal(t, domain.StatusApproved, repo.tournaments[created.ID].Status)

		for _, userID := range []uint{21, 22} {
			queued := hub.DrainPendingForUser(userID)
			require.Len(t, queued, 1, "each registrant receives exactly one notification")
			assert.Contains(t, queued[0].Message, string(domain.StatusApproved))
		}
	})

	t.Run("approving twice fails with a state conflict", func(t *testing.T) {
		svc, _, _ := newLifecycle()

		created, err := svc.Create(context.Background(), organizer, pendingTournament())
		require.NoError(t, err)

		_, err = svc.Approve(context.Background(), admin, created.ID)
		require.NoError(t, err)

		_, err = svc.Approve(context.Background(), admin, created.ID)
		assert.ErrorIs(t, err, ErrTournamentNotPending)
	})

	t.Run("unknown tournament fails with not found", func(t *testing.T) {
		svc, _, _ := newLifecycle()

		_, err := svc.Approve(context.Background(), admin, 404)
		assert.ErrorIs(t, err, ErrTournamentNotFound)
	})
}

func TestLifecycleReject(t *testing.T) {
	svc, repo, hub := newLifecycle()

	created, err := svc.Create(context.Background(), organizer, pendingTournament())
	require.NoError(t, err)

	stored := repo.tournaments[created.ID]
	stored.Registrations = []domain.Registration{{TournamentID: created.ID, UserID: 31}}
	repo.tournaments[created.ID] = stored

	rejected, err := svc.Reject(context.Background(), admin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, rejected.Status)

	// Rejection notifies the same way approval does.
	queued := hub.DrainPendingForUser(31)
	require.Len(t, queued, 1)
	assert.Contains(t, queued[0].Message, string(domain.StatusRejected))

	_, err = svc.Reject(context.Background(), admin, created.ID)
	assert.ErrorIs(t, err, ErrTournamentNotPending)
}

func TestAdvanceAllDeadlineReached(t *testing.T) {
	svc, repo, hub := newLifecycle()

	tournament := pendingTournament()
	tournament.Deadline = testToday
	tournament.StartDate = testToday.AddDate(0, 0, 7)

	created, err := svc.Create(context.Background(), organizer, tournament)
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), admin, created.ID)
	require.NoError(t, err)

	stored := repo.tournaments[created.ID]
	stored.Registrations = []domain.Registration{{TournamentID: created.ID, UserID: 41}}
	repo.tournaments[created.ID] = stored
	hub.DrainPendingForUser(41)

	advanced, err := svc.AdvanceAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, advanced)
	assert.Equal(t, domain.StatusReady, repo.tournaments[created.ID].Status)

	queued := hub.DrainPendingForUser(41)
	require.Len(t, queued, 1)
	assert.Contains(t, queued[0].Message, string(domain.StatusReady))

	// Running the sweep again in the same instant changes nothing.
	advanced, err = svc.AdvanceAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, advanced)
	assert.Equal(t, domain.StatusReady, repo.tournaments[created.ID].Status)
	assert.Empty(t, hub.DrainPendingForUser(41), "no duplicate notifications")
}

func TestAdvanceAllTransitionTable(t *testing.T) {
	svc, repo, _ := newLifecycle()

	seed := func(status domain.TournamentStatus, deadline, start time.Time, regs int) uint {
		id := repo.nextID
		repo.nextID++

		tournament := pendingTournament()
		tournament.ID = id
		tournament.Status = status
		tournament.Capacity = 2
		tournament.Deadline = deadline
		tournament.StartDate = start
		for i := 0; i < regs; i++ {
			tournament.Registrations = append(tournament.Registrations, domain.Registration{TournamentID: id, UserID: uint(100 + i)})
		}
		repo.tournaments[id] = tournament

		return id
	}

	future := testToday.AddDate(0, 0, 7)
	farFuture := testToday.AddDate(0, 0, 14)

	pendingID := seed(domain.StatusPending, future, farFuture, 0)
	approvedOpenID := seed(domain.StatusApproved, future, farFuture, 0)
	approvedFullID := seed(domain.StatusApproved, future, farFuture, 2)
	readyTodayID := seed(domain.StatusReady, testToday.AddDate(0, 0, -1), testToday, 0)
	ongoingPastID := seed(domain.StatusOngoing, testToday.AddDate(0, 0, -3), testToday.AddDate(0, 0, -1), 0)
	rejectedID := seed(domain.StatusRejected, future, farFuture, 0)

	advanced, err := svc.AdvanceAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, advanced)

	assert.Equal(t, domain.StatusPending, repo.tournaments[pendingID].Status)
	assert.Equal(t, domain.StatusApproved, repo.tournaments[approvedOpenID].Status)
	assert.Equal(t, domain.StatusReady, repo.tournaments[approvedFullID].Status, "capacity reached moves approved to ready")
	assert.Equal(t, domain.StatusOngoing, repo.tournaments[readyTodayID].Status)
	assert.Equal(t, domain.StatusFinished, repo.tournaments[ongoingPastID].Status)
	assert.Equal(t, domain.StatusRejected, repo.tournaments[rejectedID].Status)
}
